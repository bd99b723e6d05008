package models

import "gorm.io/gorm"

// StoryLink binds a snapshot of a catalog story into a rundown. SegmentID
// is nil while the story sits in the unassigned bucket. The snapshot fields
// are copied at link time and never refreshed: the rundown keeps a record of
// what was planned even if the catalog row is later edited or deleted.
type StoryLink struct {
	gorm.Model
	RundownID     uint  `json:"rundown_id" gorm:"index:idx_rundown_story,unique"`
	SegmentID     *uint `json:"segment_id,omitempty" gorm:"index"`
	SourceStoryID uint  `json:"source_story_id" gorm:"index:idx_rundown_story,unique"`

	Title        string   `json:"title"`
	Description  string   `json:"description" gorm:"text"`
	Questions    []string `json:"questions,omitempty" gorm:"serializer:json"`
	Interviewees []string `json:"interviewees,omitempty" gorm:"serializer:json"`
	Tags         []string `json:"tags,omitempty" gorm:"serializer:json"`

	OrderIndex int `json:"order_index"` // position within its bucket
}
