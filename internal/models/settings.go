package models

// Settings holds a user's display preferences. One record per user,
// created lazily on first write.
type Settings struct {
	UserID        string `json:"userId"`
	Name          string `json:"name"`
	Currency      string `json:"currency"`
	Notifications bool   `json:"notifications"`
}
