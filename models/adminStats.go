package models

type UserStats struct {
	Total   int64 `json:"total"`
	Admins  int64 `json:"admins"`
	Regular int64 `json:"regular"`
}

type ContentStats struct {
	Devotions      int64 `json:"devotions"`
	PrayerRequests int64 `json:"prayerRequests"`
}

type AdminStats struct {
	Users       UserStats    `json:"users"`
	Content     ContentStats `json:"content"`
	RecentUsers []RecentUser `json:"recentUsers"`
}
