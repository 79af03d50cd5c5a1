package event

import (
	"errors"
	"time"
)

// Event describes a scheduled campus event. Date and time stay opaque
// strings: the service imposes no calendar or time-zone semantics on them.
type Event struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	CreatedAt   time.Time `json:"created_at"`
}

var (
	ErrNotFound      = errors.New("event: not found")
	ErrAlreadyExists = errors.New("event: already exists")
	ErrInvalidInput  = errors.New("event: invalid input")
)
