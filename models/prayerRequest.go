package models

import "time"

type PrayerRequestStatus string

const (
	StatusActive   PrayerRequestStatus = "active"
	StatusAnswered PrayerRequestStatus = "answered"
	StatusClosed   PrayerRequestStatus = "closed"
)

func (s PrayerRequestStatus) Valid() bool {
	switch s {
	case StatusActive, StatusAnswered, StatusClosed:
		return true
	}
	return false
}

type PrayerRequest struct {
	ID          string              `json:"id" db:"id"`
	Title       string              `json:"title" db:"title"`
	Description string              `json:"description" db:"description"`
	IsAnonymous bool                `json:"isAnonymous" db:"is_anonymous"`
	Status      PrayerRequestStatus `json:"status" db:"status"`
	PrayerCount int                 `json:"prayerCount" db:"prayer_count"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time           `json:"updatedAt" db:"updated_at"`
	UserID      string              `json:"userId" db:"user_id"`
	User        *UserSummary        `json:"user,omitempty" db:"-"`
}

// PrayerRequestDetail is a prayer request together with the prayers offered for it.
type PrayerRequestDetail struct {
	PrayerRequest
	Prayers []Prayer `json:"prayers"`
}

// PrayerRequestRow is a prayer request joined with its owner's user columns.
type PrayerRequestRow struct {
	PrayerRequest
	UserName  string `db:"user_name"`
	UserEmail string `db:"user_email"`
}

func (r PrayerRequestRow) WithUser() PrayerRequest {
	pr := r.PrayerRequest
	pr.User = &UserSummary{ID: r.UserID, Name: r.UserName, Email: r.UserEmail}
	return pr
}

type PrayerRequestCreate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// PrayerRequestUpdate holds the fields an owner may change. Nil means unchanged.
type PrayerRequestUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}
