// Package floor manages dining tables: status, position, merge groups.
package floor

import "time"

// TableStatus represents the occupancy state of a table.
type TableStatus string

const (
	TableStatusFree     TableStatus = "free"
	TableStatusOccupied TableStatus = "occupied"
	TableStatusReserved TableStatus = "reserved"
)

// ValidTableStatus reports whether s is a known table status.
func ValidTableStatus(s TableStatus) bool {
	switch s {
	case TableStatusFree, TableStatusOccupied, TableStatusReserved:
		return true
	}
	return false
}

// Table represents a dining table on the floor plan.
type Table struct {
	ID             int64       `json:"id"`
	Number         int         `json:"number"`
	Capacity       int         `json:"capacity"`
	Status         TableStatus `json:"status"`
	Notes          string      `json:"notes,omitempty"`
	XPosition      float64     `json:"x_position"`
	YPosition      float64     `json:"y_position"`
	MergedWith     []int64     `json:"merged_with,omitempty"`
	MergedInto     *int64      `json:"merged_into,omitempty"`
	LastOccupiedAt *time.Time  `json:"last_occupied_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// IsMergePrimary reports whether the table owns a merge group.
func (t *Table) IsMergePrimary() bool {
	return len(t.MergedWith) > 0
}

// IsMergeMember reports whether the table is merged into another table.
func (t *Table) IsMergeMember() bool {
	return t.MergedInto != nil
}

// CreateTableInput holds fields for creating a table.
type CreateTableInput struct {
	Number    int     `json:"number"`
	Capacity  int     `json:"capacity"`
	XPosition float64 `json:"x_position"`
	YPosition float64 `json:"y_position"`
}

// UpdateTableInput holds fields for updating table number and capacity.
type UpdateTableInput struct {
	Number   int `json:"number"`
	Capacity int `json:"capacity"`
}
