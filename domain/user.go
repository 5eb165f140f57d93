package domain

import "time"

// User is a registered member. PasswordHash never leaves the storage and
// service layers.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Location     string    `json:"location,omitempty"`
	TimeZone     string    `json:"timeZone,omitempty"`
	Roles        []string  `json:"roles,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicProfile strips fields that must not be exposed to other users.
func (u User) PublicProfile() User {
	u.PasswordHash = ""
	u.Roles = nil
	return u
}
