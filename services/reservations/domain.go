// Package reservations manages table reservations.
package reservations

import "time"

// Status represents the state of a reservation.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ValidStatus reports whether s is a known reservation status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Reservation represents a booked table.
type Reservation struct {
	ID            int64     `json:"id"`
	TableID       int64     `json:"table_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	Guests        int       `json:"guests"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Duration      int       `json:"duration"`
	Notes         string    `json:"notes,omitempty"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Input holds fields for creating or updating a reservation.
type Input struct {
	TableID       int64  `json:"table_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	Guests        int    `json:"guests"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Duration      int    `json:"duration"`
	Notes         string `json:"notes,omitempty"`
}
