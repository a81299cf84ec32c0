package models

import "time"

type SocialAccount struct {
	ID            string    `json:"id"`
	Platform      Platform  `json:"platform"`
	Username      string    `json:"username"`
	ExternalID    string    `json:"external_id"`
	ProfilePicURL string    `json:"profile_pic_url,omitempty"`
	Connected     bool      `json:"connected"`
	CreatedAt     time.Time `json:"created_at"`
}

type SocialAccountRequest struct {
	Platform      Platform `json:"platform"`
	Username      string   `json:"username"`
	ExternalID    string   `json:"external_id"`
	ProfilePicURL string   `json:"profile_pic_url,omitempty"`
}

// User is the authenticated principal.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}
