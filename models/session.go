package models

import "time"

type Session struct {
	ID        string    `json:"id" db:"id"`
	Token     string    `json:"-" db:"token"`
	UserID    string    `json:"userId" db:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	IPAddress *string   `json:"ipAddress" db:"ip_address"`
	UserAgent *string   `json:"userAgent" db:"user_agent"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Expired reports whether the session ended strictly before now.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// SessionWithUser is a session row joined with the columns of its owner.
type SessionWithUser struct {
	Session
	UserName  string `json:"-" db:"user_name"`
	UserEmail string `json:"-" db:"user_email"`
	UserRole  Role   `json:"-" db:"user_role"`
}

func (s SessionWithUser) AuthUser() AuthUser {
	return AuthUser{ID: s.UserID, Name: s.UserName, Email: s.UserEmail, Role: s.UserRole}
}
