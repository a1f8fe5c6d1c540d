package models

import "time"

type ProfileSection struct {
	ID           int64     `json:"id"`
	EducatorID   int64     `json:"educator_id"`
	SectionType  string    `json:"section_type"`
	Title        string    `json:"title"`
	Subtitle     *string   `json:"subtitle"`
	Description  *string   `json:"description"`
	StartDate    *string   `json:"start_date"`
	EndDate      *string   `json:"end_date"`
	DisplayOrder int       `json:"display_order"`
	IsVisible    bool      `json:"is_visible"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProfilePhoto struct {
	ID         int64     `json:"id"`
	EducatorID int64     `json:"educator_id"`
	PhotoType  string    `json:"photo_type"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"file_path"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

type ProfileView struct {
	ID             int64     `json:"id"`
	ProfileOwnerID int64     `json:"profile_owner_id"`
	ViewerID       *int64    `json:"viewer_id"`
	ViewedAt       time.Time `json:"viewed_at"`
}

type Connection struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	RecipientID int64     `json:"recipient_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProfileAnalytics is computed per request, never persisted as-is.
type ProfileAnalytics struct {
	ProfileViews      int       `json:"profile_views"`
	PostImpressions   int       `json:"post_impressions"`
	SearchAppearances int       `json:"search_appearances"`
	ConnectionsCount  int       `json:"connections_count"`
	CalculatedAt      time.Time `json:"calculated_at"`
}
