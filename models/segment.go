package models

import "gorm.io/gorm"

const (
	SegmentIntro      = "intro"
	SegmentStory      = "story"
	SegmentInterview  = "interview"
	SegmentBreak      = "break"
	SegmentCommercial = "commercial"
	SegmentMusic      = "music"
	SegmentOutro      = "outro"
)

// DefaultSegmentDuration maps a segment type to the duration (seconds) a
// newly inserted segment starts with.
var DefaultSegmentDuration = map[string]int{
	SegmentIntro:      30,
	SegmentStory:      180,
	SegmentInterview:  300,
	SegmentBreak:      60,
	SegmentCommercial: 30,
	SegmentMusic:      120,
	SegmentOutro:      30,
}

// ValidSegmentType reports whether t is one of the known segment types.
func ValidSegmentType(t string) bool {
	_, ok := DefaultSegmentDuration[t]
	return ok
}

// SegmentContent holds the type-dependent body of a segment: intro/outro
// carry script text, interviews carry an ordered question list, everything
// else carries free notes. Unused fields stay empty.
type SegmentContent struct {
	Script    string   `json:"script,omitempty"`
	Questions []string `json:"questions,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	TagRefs   []TagRef `json:"tag_refs,omitempty"`
}

// Segment is one timed block in a rundown's timeline. OrderIndex values
// within a rundown always form a dense 0..N-1 permutation; a pinned intro
// sits at 0 and a pinned outro at N-1.
type Segment struct {
	gorm.Model
	RundownID  uint           `json:"rundown_id" gorm:"index"`
	Title      string         `json:"title"`
	Type       string         `json:"type"`
	Content    SegmentContent `json:"content" gorm:"serializer:json"`
	Duration   int            `json:"duration"` // seconds
	OrderIndex int            `json:"order_index"`
	IsPinned   bool           `json:"is_pinned"`
}
