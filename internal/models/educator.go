package models

import (
	"strings"
	"time"
)

// Educator is the profile record behind each account. Exactly one row per
// user; messages and posts reference educator ids, never raw user ids.
type Educator struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Title           *string   `json:"title"`
	Headline        *string   `json:"headline"`
	Summary         *string   `json:"summary"`
	Institution     *string   `json:"institution"`
	Subjects        []string  `json:"subjects"`
	Skills          []string  `json:"skills"`
	ProfilePhotoURL *string   `json:"profile_photo_url"`
	CoverPhotoURL   *string   `json:"cover_photo_url"`
	IsProfilePublic bool      `json:"is_profile_public"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (e *Educator) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}
