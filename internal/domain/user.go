package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Bio          *string   `json:"bio,omitempty"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	JoinedAt     time.Time `json:"joined_at"`
}

// Profile is a user together with the counts shown on their profile page.
type Profile struct {
	User           User `json:"user"`
	FollowersCount int  `json:"followers_count"`
	FollowingCount int  `json:"following_count"`
	PostsCount     int  `json:"posts_count"`
}
