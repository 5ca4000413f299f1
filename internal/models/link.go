package models

import (
	"fmt"
	"time"
)

// Link is a locally cached copy of a shortened link owned by the
// authenticated account.
type Link struct {
	id        string
	sequence  int
	code      string
	target    string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewLink creates a link with the given sequence, short code and target URL.
func NewLink(sequence int, code, target string) *Link {
	now := time.Now()
	return &Link{
		sequence:  sequence,
		code:      code,
		target:    target,
		createdAt: now,
		updatedAt: now,
	}
}

func (l *Link) ID() string            { return l.id }
func (l *Link) Sequence() int         { return l.sequence }
func (l *Link) Code() string          { return l.code }
func (l *Link) Target() string        { return l.target }
func (l *Link) CreatedAt() time.Time  { return l.createdAt }
func (l *Link) UpdatedAt() time.Time  { return l.updatedAt }
func (l *Link) DeletedAt() *time.Time { return l.deletedAt }

func (l *Link) SetID(id string)           { l.id = id }
func (l *Link) SetTarget(target string)   { l.target = target }
func (l *Link) SetCreatedAt(t time.Time)  { l.createdAt = t }
func (l *Link) SetUpdatedAt(t time.Time)  { l.updatedAt = t }
func (l *Link) SetDeletedAt(t *time.Time) { l.deletedAt = t }

// Validate checks that the link has a code and a target URL.
func (l *Link) Validate() error {
	if l.code == "" {
		return fmt.Errorf("link code is required")
	}
	if l.target == "" {
		return fmt.Errorf("link target is required")
	}
	return nil
}
