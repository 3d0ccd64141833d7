package models

import "time"

// User is a registered SoulBeats account. OwnerID is the subject of the
// caller's identity token.
type User struct {
	ID                int64
	OwnerID           string
	DisplayName       string
	Email             string
	Age               *int
	Bio               *string
	FavoriteGenres    *string
	ProfilePictureURL *string
	RegisteredAt      time.Time
}

// Registration is what a caller supplies to create their account.
type Registration struct {
	DisplayName string `json:"display_name" validate:"omitempty,max=100"`
	Email       string `json:"email" validate:"required,email"`
}

// ProfileUpdate changes only the fields that are set.
type ProfileUpdate struct {
	DisplayName       *string `json:"display_name" validate:"omitempty,min=1,max=100"`
	Email             *string `json:"email" validate:"omitempty,email"`
	Age               *int    `json:"age" validate:"omitempty,min=13,max=120"`
	Bio               *string `json:"bio" validate:"omitempty,max=500"`
	FavoriteGenres    *string `json:"favorite_genres" validate:"omitempty,max=500"`
	ProfilePictureURL *string `json:"profile_picture_url" validate:"omitempty,url"`
}

// History actions recorded for a user.
const (
	UserCreated        = "USER_CREATED"
	UserProfileUpdated = "PROFILE_UPDATED"
)
