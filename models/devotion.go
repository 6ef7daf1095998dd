package models

import "time"

type Devotion struct {
	ID             string       `json:"id" db:"id"`
	Title          string       `json:"title" db:"title"`
	Content        string       `json:"content" db:"content"`
	VerseReference *string      `json:"verse_reference" db:"verse_reference"`
	ScriptureText  *string      `json:"scriptureText" db:"scripture_text"`
	DevotionDate   time.Time    `json:"devotion_date" db:"devotion_date"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	ImageURL       *string      `json:"imageUrl" db:"image_url"`
	ReadTime       int          `json:"readTime" db:"read_time"`
	Author         string       `json:"author" db:"author"`
	UserID         string       `json:"userId" db:"user_id"`
	User           *UserSummary `json:"user,omitempty" db:"-"`
}

// DevotionRow is a devotion joined with its author's user columns.
type DevotionRow struct {
	Devotion
	UserName  string `db:"user_name"`
	UserEmail string `db:"user_email"`
}

func (r DevotionRow) WithUser() Devotion {
	d := r.Devotion
	d.User = &UserSummary{ID: r.UserID, Name: r.UserName, Email: r.UserEmail}
	return d
}

type DevotionCreate struct {
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	VerseReference string  `json:"verse_reference"`
	ScriptureText  string  `json:"scriptureText"`
	DevotionDate   string  `json:"devotion_date"`
	ImageURL       *string `json:"imageUrl"`
	ReadTime       int     `json:"readTime"`
	Author         string  `json:"author"`
}
