// Package models defines the server-side persistence records.
package models

// User is an account row. PasswordHash is a bcrypt digest.
type User struct {
	ID           string
	UserName     string
	PasswordHash []byte
}
