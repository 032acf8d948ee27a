// Package menu manages the menu catalog, dish recipes and ingredient
// driven availability.
package menu

import "time"

// Category represents a menu category.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Item represents a dish on the menu.
type Item struct {
	ID              int64     `json:"id"`
	CategoryID      int64     `json:"category_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Price           float64   `json:"price"`
	IsAvailable     bool      `json:"is_available"`
	PreparationTime int       `json:"preparation_time"`
	Allergens       []string  `json:"allergens,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	IsVegetarian    bool      `json:"is_vegetarian"`
	IsVegan         bool      `json:"is_vegan"`
	IsGlutenFree    bool      `json:"is_gluten_free"`
	SpicinessLevel  int       `json:"spiciness_level"`
	IsWeightBased   bool      `json:"is_weight_based"`
	PricePerKg      float64   `json:"price_per_kg"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RecipeLine links a dish to one of its ingredients.
type RecipeLine struct {
	MenuItemID      int64       `json:"menu_item_id"`
	InventoryItemID int64       `json:"inventory_item_id"`
	Quantity        float64     `json:"quantity"`
	Unit            string      `json:"unit"`
	Ingredient      *Ingredient `json:"inventory_items,omitempty"`
}

// Ingredient is the inventory snapshot embedded in a recipe line.
type Ingredient struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	MinimumQuantity float64 `json:"minimum_quantity"`
}

// NewRecipeLine holds fields for replacing a dish's recipe.
type NewRecipeLine struct {
	InventoryItemID int64   `json:"inventory_item_id"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
}

// Shortfall is one ingredient check row for a dish.
type Shortfall struct {
	IngredientName    string  `json:"ingredient_name"`
	RequiredQuantity  float64 `json:"required_quantity"`
	AvailableQuantity float64 `json:"available_quantity"`
	Unit              string  `json:"unit"`
}

// Short reports whether the row is an actual shortfall.
func (s Shortfall) Short() bool {
	return s.AvailableQuantity < s.RequiredQuantity
}

// Availability is the result of an ingredient check for a dish. The
// dish is available exactly when no ingredient is short; Missing lists
// the short rows and nothing else.
type Availability struct {
	MenuItemID int64       `json:"menu_item_id"`
	Available  bool        `json:"available"`
	Missing    []Shortfall `json:"missing,omitempty"`
}

// LowStockImpact pairs a low inventory item with the dishes whose
// recipes depend on it.
type LowStockImpact struct {
	Ingredient Ingredient `json:"ingredient"`
	Dishes     []Item     `json:"dishes"`
}

// CategoryInput holds fields for creating or updating a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
}

// ItemInput holds fields for creating or updating a dish.
type ItemInput struct {
	CategoryID      int64    `json:"category_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Price           float64  `json:"price"`
	PreparationTime int      `json:"preparation_time"`
	Allergens       []string `json:"allergens,omitempty"`
	ImageURL        string   `json:"image_url,omitempty"`
	IsVegetarian    bool     `json:"is_vegetarian"`
	IsVegan         bool     `json:"is_vegan"`
	IsGlutenFree    bool     `json:"is_gluten_free"`
	SpicinessLevel  int      `json:"spiciness_level"`
	IsWeightBased   bool     `json:"is_weight_based"`
	PricePerKg      float64  `json:"price_per_kg"`
}
