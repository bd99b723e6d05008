package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

// Rundown is the running order for one episode. It owns its segments,
// talent roster and story links; deleting a rundown cascades to all three.
type Rundown struct {
	gorm.Model
	Title         string `json:"title"`
	Description   string `json:"description" gorm:"text"`
	CreatedBy     uint   `json:"created_by" gorm:"index"`
	ClassID       *uint  `json:"class_id,omitempty"`
	Status        string `json:"status" gorm:"default:draft"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	TotalDuration int    `json:"total_duration"` // seconds, derived from segments
	ReviewNotes   string `json:"review_notes,omitempty" gorm:"text"`

	Segments   []Segment   `json:"segments,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Talent     []Talent    `json:"talent,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	StoryLinks []StoryLink `json:"story_links,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// Editable reports whether the rundown's content may currently change.
// Owners edit in draft or rejected; admins edit in any status.
func (r *Rundown) Editable(actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.ID == r.CreatedBy &&
		(r.Status == StatusDraft || r.Status == StatusRejected)
}
