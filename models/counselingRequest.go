package models

import "time"

const (
	UrgencyNormal     = "normal"
	CounselingPending = "pending"
)

type CounselingRequest struct {
	ID          string       `json:"id" db:"id"`
	Subject     string       `json:"subject" db:"subject"`
	Message     string       `json:"message" db:"message"`
	Urgency     string       `json:"urgency" db:"urgency"`
	IsAnonymous bool         `json:"isAnonymous" db:"is_anonymous"`
	Status      string       `json:"status" db:"status"`
	Response    *string      `json:"response" db:"response"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
	UserID      string       `json:"userId" db:"user_id"`
	User        *UserSummary `json:"user,omitempty" db:"-"`
}

type CounselingRequestRow struct {
	CounselingRequest
	UserName  string `db:"user_name"`
	UserEmail string `db:"user_email"`
}

func (r CounselingRequestRow) WithUser() CounselingRequest {
	cr := r.CounselingRequest
	cr.User = &UserSummary{ID: r.UserID, Name: r.UserName, Email: r.UserEmail}
	return cr
}

type CounselingRequestCreate struct {
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	Urgency     string `json:"urgency"`
	IsAnonymous bool   `json:"isAnonymous"`
}

type CounselingStatusUpdate struct {
	Status   string  `json:"status"`
	Response *string `json:"response"`
}
