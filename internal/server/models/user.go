// Package models defines the server-side data records.
package models

import "time"

// User is one credential record. UserName is the unique, case-sensitive
// key; Salt and PasswordHash together verify a login (the plaintext
// password is never stored). Every user owns exactly one root directory
// under the configured storage root, created at registration.
type User struct {
	ID           string
	UserName     string
	Salt         []byte
	PasswordHash []byte
	CreatedAt    time.Time
}
