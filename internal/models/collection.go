package models

import (
	"fmt"
	"time"
)

// Collection represents a bookmark folder. Collections form a hierarchy through ParentID;
// a nil parent means the collection sits at the root of the user's tree.
type Collection struct {
	id        string
	userID    string
	name      string
	parentID  *string
	createdAt time.Time
	updatedAt time.Time
}

// NewCollection creates a Collection without an ID; the repository assigns one at insert time.
func NewCollection(userID, name string, parentID *string) *Collection {
	now := time.Now()
	return &Collection{
		userID:    userID,
		name:      name,
		parentID:  parentID,
		createdAt: now,
		updatedAt: now,
	}
}

func (c *Collection) ID() string           { return c.id }
func (c *Collection) UserID() string       { return c.userID }
func (c *Collection) Name() string         { return c.name }
func (c *Collection) ParentID() *string    { return c.parentID }
func (c *Collection) CreatedAt() time.Time { return c.createdAt }
func (c *Collection) UpdatedAt() time.Time { return c.updatedAt }

func (c *Collection) SetID(id string)              { c.id = id }
func (c *Collection) SetParentID(parentID *string) { c.parentID = parentID }
func (c *Collection) SetCreatedAt(t time.Time)     { c.createdAt = t }
func (c *Collection) SetUpdatedAt(t time.Time)     { c.updatedAt = t }

// Validate checks that the collection has an owner and a name.
func (c *Collection) Validate() error {
	if c.userID == "" {
		return fmt.Errorf("collection missing user id")
	}
	if c.name == "" {
		return fmt.Errorf("collection missing name")
	}
	return nil
}
