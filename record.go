package shortstore

import (
	"time"

	"github.com/google/uuid"
)

// Record is one stored association between a long URL and its alias.
// LongURL holds the submitted URL case-folded in full. Alias is assigned
// once and never regenerated. HitCount survives deactivation; Active is
// the soft-delete flag.
type Record struct {
	ID            uuid.UUID
	LongURL       string
	Alias         string
	HitCount      int64
	Active        bool
	CreatedAt     time.Time
	LastHitAt     *time.Time
	DeactivatedAt *time.Time
}

// clone copies the record including its timestamp pointers, so callers
// cannot reach back into store state.
func (r Record) clone() Record {
	c := r
	if r.LastHitAt != nil {
		t := *r.LastHitAt
		c.LastHitAt = &t
	}
	if r.DeactivatedAt != nil {
		t := *r.DeactivatedAt
		c.DeactivatedAt = &t
	}
	return c
}
