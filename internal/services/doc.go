// Package services implements the outbound half of bookmark enrichment: fetching page
// metadata from the live web.
//
// # Fetch pipeline
//
// [PageFetcher] performs a GET against a bookmark's URL but never reads past the end of the
// document head: the response body streams through a charset decoder into an HTML tokenizer,
// and the connection is dropped as soon as the closing head tag is seen. Redirects are
// followed by hand, resolving each Location header against the current URL up to a bounded
// count, because the automatic client policy would hide the effective base URL that favicon
// resolution needs.
//
// # Retry
//
// Failures pass through a [RetryStrategy] collaborator. The provided [BackoffRetry] retries
// timeouts, connection-level errors, and 5xx responses with capped exponential backoff;
// 4xx responses, scheme rejections, and malformed content surface immediately.
//
// # Favicon selection
//
// Candidate <link rel> icons collected from the head are scored by MIME type, declared size
// hint, and rel priority, resolved against the effective base (honoring <base href>), with
// /favicon.ico as the fallback. Selection is pure given the parsed head.
package services
