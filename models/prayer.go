package models

import "time"

// Prayer records that a user prayed for a prayer request. A user prays for a
// given request at most once.
type Prayer struct {
	ID              string       `json:"id" db:"id"`
	UserID          string       `json:"userId" db:"user_id"`
	PrayerRequestID string       `json:"prayerRequestId" db:"prayer_request_id"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	User            *UserSummary `json:"user,omitempty" db:"-"`
}

type PrayerRow struct {
	Prayer
	UserName string `db:"user_name"`
}

func (r PrayerRow) WithUser() Prayer {
	p := r.Prayer
	p.User = &UserSummary{ID: r.UserID, Name: r.UserName}
	return p
}
