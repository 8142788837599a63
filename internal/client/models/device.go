package models

import "time"

// Device is the registration record for one installation: the id is
// generated once and stays stable across syncs. Devices are only ever
// deleted by explicit user action.
type Device struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	LastSync time.Time `json:"last_sync"`
}

// PlaybackTarget is one entry from the external device directory.
type PlaybackTarget struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}
