package models

// Metadata is the per-user document kept encrypted outside the database
// and handed back to the client on login.
type Metadata struct {
	ID            int64         `json:"id"`
	Email         string        `json:"email"`
	LatestSession LatestSession `json:"latest_session"`
}

// LatestSession describes the most recent login. CreatedAt is RFC 3339.
type LatestSession struct {
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}
