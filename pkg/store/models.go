package store

import "time"

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	UserName     string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

type CorpusModel struct {
	OwnerID   string    `gorm:"primaryKey"`
	Text      string    `gorm:"type:text;not null"`
	ByteSize  int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type UploadEventModel struct {
	ID        string `gorm:"primaryKey"`
	OwnerID   string `gorm:"not null;index"`
	Filename  string `gorm:"not null"`
	CharCount int
	Accepted  bool
	Reason    string
	CreatedAt time.Time `gorm:"not null;index"`
}
