package store

import "time"

// TokenRecord is the persisted OAuth credential set for one user.
// UserID is the lookup identity; UserEmail is descriptive only and was
// added after the initial schema, hence the separate non-unique index.
type TokenRecord struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       string    `gorm:"uniqueIndex;type:varchar(191);not null"`
	AccessToken  string    `gorm:"type:text;not null"`
	RefreshToken string    `gorm:"type:text"`
	TokenType    string    `gorm:"type:varchar(50);default:Bearer"`
	Scope        string    `gorm:"type:text"`
	Expiry       time.Time `gorm:"not null"`
	IDToken      string    `gorm:"type:text"`
	UserEmail    string    `gorm:"index;type:varchar(255)"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName keeps the table name stable across GORM naming changes.
func (TokenRecord) TableName() string {
	return "oauth_tokens"
}

// SyncState tracks incremental sync positions per user. No server
// component reads it today; the table is part of the shared database
// contract and migrated alongside the token records.
type SyncState struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       string    `gorm:"index;type:varchar(191);not null"`
	SyncToken    string    `gorm:"type:text"`
	LastSyncedAt time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName keeps the table name stable across GORM naming changes.
func (SyncState) TableName() string {
	return "sync_states"
}
