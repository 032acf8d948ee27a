// Package inventory manages stock items and their append-only
// movement ledger.
package inventory

import "time"

// MovementType represents the direction of a stock movement.
type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

// ValidMovementType reports whether t is a known movement type.
func ValidMovementType(t MovementType) bool {
	return t == MovementIn || t == MovementOut
}

// Item represents a stock item.
type Item struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Quantity        float64   `json:"quantity"`
	Unit            string    `json:"unit"`
	MinimumQuantity float64   `json:"minimum_quantity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsLowStock reports whether the item is at or below its threshold.
func IsLowStock(item Item) bool {
	return item.Quantity <= item.MinimumQuantity
}

// Movement is one row of the stock ledger.
type Movement struct {
	ID              int64        `json:"id"`
	InventoryItemID int64        `json:"inventory_item_id"`
	Type            MovementType `json:"type"`
	Quantity        float64      `json:"quantity"`
	Notes           string       `json:"notes,omitempty"`
	CreatedBy       string       `json:"created_by"`
	Creator         *Creator     `json:"profiles,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// Creator is the profile snapshot embedded in a ledger row.
type Creator struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// ItemInput holds fields for creating or updating a stock item.
type ItemInput struct {
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	MinimumQuantity float64 `json:"minimum_quantity"`
}

// MovementInput holds fields for recording a stock movement.
type MovementInput struct {
	InventoryItemID int64        `json:"inventory_item_id"`
	Type            MovementType `json:"type"`
	Quantity        float64      `json:"quantity"`
	Notes           string       `json:"notes,omitempty"`
}
