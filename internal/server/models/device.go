package models

import "time"

// Device is a registered client installation. The id is generated once
// per installation on the client and stays stable across sessions.
// Devices are never deleted implicitly.
type Device struct {
	ID       string
	UserID   string
	Name     string
	LastSync time.Time
}
