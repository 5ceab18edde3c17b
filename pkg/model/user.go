package model

import "time"

// User is a registration row. Name and School are ciphertext; see
// pkg/crypt.Deterministic.
type User struct {
	ID          int64     `gorm:"primaryKey"`
	Name        []byte    `gorm:"type:bytea;uniqueIndex;not null"`
	School      []byte    `gorm:"type:bytea;not null"`
	DateConsent time.Time `gorm:"column:date_consent;not null"`
}

func (User) TableName() string {
	return "users"
}
