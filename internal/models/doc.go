// Package models defines domain entities and persistence interfaces for the linkhive bookmark service.
//
// The package contains two categories of types:
//
// 1. Transient parser output: Lightweight structs produced while reading a bookmark export file
//   - [TreeNode] : A folder or bookmark with temp-id parent links, never persisted as-is
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Collection] : Bookmark folders forming a parent/child hierarchy
//   - [Bookmark] : Saved links with metadata enrichment state
//   - [Favicon] : Content-addressed favicon assets deduplicated by hash and domain
//
// All persistent entities implement the [Model] interface providing ID generation, timestamps, and validation.
// Temp ids exist only to express parent-child relationships before real ids are assigned at insert time.
package models
