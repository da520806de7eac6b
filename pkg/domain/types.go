package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           string    `json:"id"`
	UserName     string    `json:"userName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Corpus is the single accumulated text blob holding every successfully
// extracted upload for one owner, in acceptance order. At most one corpus
// exists per owner, created on the first non-empty extraction.
type Corpus struct {
	OwnerID   string    `json:"ownerId"`
	Text      string    `json:"-"`
	ByteSize  int64     `json:"byteSize"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UploadEvent records the outcome of one upload attempt. It carries
// metadata only; extracted text never appears in an event.
type UploadEvent struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Filename  string    `json:"filename"`
	CharCount int       `json:"charCount"`
	Accepted  bool      `json:"accepted"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
