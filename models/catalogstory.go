package models

import "gorm.io/gorm"

const CatalogStatusApproved = "approved"

// CatalogStory is a row in the upstream story catalog. The catalog is owned
// by the curation pipeline; this service only ever reads approved rows to
// snapshot them into rundowns.
type CatalogStory struct {
	gorm.Model
	Title        string   `json:"title"`
	Description  string   `json:"description" gorm:"text"`
	Questions    []string `json:"questions,omitempty" gorm:"serializer:json"`
	Interviewees []string `json:"interviewees,omitempty" gorm:"serializer:json"`
	Tags         []string `json:"tags,omitempty" gorm:"serializer:json"`
	Status       string   `json:"status" gorm:"index"`
}
