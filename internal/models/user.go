package models

import "time"

// User is a Google-authenticated account.
type User struct {
	ID        string    `json:"id" bson:"_id"`
	GoogleSub string    `json:"-" bson:"googleSub"`
	Email     string    `json:"email" bson:"email"`
	Name      string    `json:"name" bson:"name"`
	Picture   string    `json:"picture" bson:"picture"`
	Username  string    `json:"username,omitempty" bson:"username,omitempty"`
	IsAdmin   bool      `json:"is_admin" bson:"isAdmin"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"`
}

// GoogleProfile is what a verified Google ID token tells us about a user.
type GoogleProfile struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// Session maps a cookie token to a user.
type Session struct {
	Token     string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	ExpiresAt time.Time `bson:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt"`
}

// UserDisplay is the small profile mirrored into the "user" cookie.
type UserDisplay struct {
	Picture  string `json:"picture"`
	Username string `json:"username"`
}
