// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account. Records are created by signup and never
// updated or deleted afterwards.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
