package models

import "time"

type PushToken struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	Platform  string    `json:"platform" db:"platform"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type PushTokenRequest struct {
	Token    string `json:"pushToken" binding:"required,min=10,max=500"`
	Platform string `json:"platform" binding:"required,oneof=ios android"`
}
