package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

type User struct {
	ID            uint   `gorm:"primaryKey"`
	Email         string `gorm:"uniqueIndex"`
	Name          string
	Picture       string
	Auth0ID       string `gorm:"uniqueIndex"`
	Role          string `gorm:"default:student"`
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// Actor is the authenticated caller handed to every rundown operation.
type Actor struct {
	ID   uint
	Role string
}

// CanReview reports whether the actor may approve or reject submitted
// rundowns. Reviewing additionally requires the actor not to be the owner;
// that check lives with the workflow, not here.
func (a Actor) CanReview() bool {
	return a.Role == RoleTeacher || a.Role == RoleAdmin
}

// IsAdmin reports whether the actor may edit any rundown in any status.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (u User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
