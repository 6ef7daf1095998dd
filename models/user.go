package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	Role          Role      `json:"role" db:"role"`
	EmailVerified bool      `json:"emailVerified" db:"email_verified"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// AuthUser is the identity CheckAuth attaches to the request as "currentUser".
type AuthUser struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
	Role  Role   `json:"role" db:"role"`
}

func (u AuthUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserSummary is the owner identity embedded in resource responses.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type UserCounts struct {
	Devotions      int `json:"devotions"`
	PrayerRequests int `json:"prayerRequests"`
	Prayers        int `json:"prayers"`
}

type UserWithCounts struct {
	User
	DevotionCount      int        `json:"-" db:"devotion_count"`
	PrayerRequestCount int        `json:"-" db:"prayer_request_count"`
	PrayerCount        int        `json:"-" db:"prayer_count"`
	Count              UserCounts `json:"_count" db:"-"`
}

func (u *UserWithCounts) FillCounts() {
	u.Count = UserCounts{
		Devotions:      u.DevotionCount,
		PrayerRequests: u.PrayerRequestCount,
		Prayers:        u.PrayerCount,
	}
}

type RecentUser struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type UserSignup struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
