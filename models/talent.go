package models

import (
	"fmt"

	"gorm.io/gorm"
)

const (
	RoleHost   = "host"
	RoleGuest  = "guest"
	RoleCoHost = "co-host"
	RoleExpert = "expert"
)

// MaxTalentPerRundown caps the roster; four people is the most a student
// episode script can keep readable.
const MaxTalentPerRundown = 4

// ValidTalentRole reports whether role is a known roster role.
func ValidTalentRole(role string) bool {
	switch role {
	case RoleHost, RoleGuest, RoleCoHost, RoleExpert:
		return true
	}
	return false
}

// Talent is one host or guest on a rundown. Names are unique per rundown,
// case-insensitively, so tag text is never ambiguous.
type Talent struct {
	gorm.Model
	RundownID uint   `json:"rundown_id" gorm:"index"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Bio       string `json:"bio,omitempty" gorm:"text"`
	Contact   string `json:"contact,omitempty"`
}

// Tag renders the stable tag string embedded into segment script text,
// e.g. "@Host(Jane Doe)".
func (t Talent) Tag() string {
	return TagRef{Kind: t.Role, TalentID: t.ID}.Render(t.Name)
}

// TagRef is a stored reference to a roster member. The display string is
// produced only at render time so removing the talent leaves references
// inert rather than pointing at stale formatted text.
type TagRef struct {
	Kind     string `json:"kind"`
	TalentID uint   `json:"talent_id"`
}

func (r TagRef) Render(name string) string {
	label := "Guest"
	switch r.Kind {
	case RoleHost:
		label = "Host"
	case RoleCoHost:
		label = "CoHost"
	case RoleExpert:
		label = "Expert"
	}
	return fmt.Sprintf("@%s(%s)", label, name)
}
