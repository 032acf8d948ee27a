package menu

import (
	"context"

	"github.com/ristora/fronthouse/services/base"
	"github.com/ristora/fronthouse/supabase/client"
)

const recipeSelect = "*, inventory_items(id,name,quantity,unit,minimum_quantity)"

// usageLine is a recipe line joined with its ingredient and dish, used
// to compute low stock impact.
type usageLine struct {
	InventoryItemID int64       `json:"inventory_item_id"`
	Ingredient      *Ingredient `json:"inventory_items"`
	Dish            *Item       `json:"menu_items"`
}

// StoreInterface defines the interface for menu storage.
type StoreInterface interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, fields map[string]any) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, fields map[string]any) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id int64) (*Item, error)
	CreateItem(ctx context.Context, fields map[string]any) (*Item, error)
	UpdateItem(ctx context.Context, id int64, fields map[string]any) (*Item, error)
	DeleteItem(ctx context.Context, id int64) error

	Recipe(ctx context.Context, menuItemID int64) ([]RecipeLine, error)
	ReplaceRecipe(ctx context.Context, menuItemID int64, lines []NewRecipeLine) error
	CheckIngredients(ctx context.Context, menuItemID int64) ([]Shortfall, error)
	RecomputeAllAvailability(ctx context.Context) error
	IngredientUsage(ctx context.Context) ([]usageLine, error)
}

// Store manages menu data in Supabase. Recipe replacement and the
// availability checks go through remote procedures.
type Store struct {
	db         *client.Client
	categories *base.Table[Category]
	items      *base.Table[Item]
	recipes    *base.Table[RecipeLine]
}

// NewStore creates a new menu store.
func NewStore(db *client.Client) *Store {
	return &Store{
		db:         db,
		categories: base.NewTable[Category](db, "menu_categories", "*"),
		items:      base.NewTable[Item](db, "menu_items", "*"),
		recipes:    base.NewTable[RecipeLine](db, "menu_item_ingredients", recipeSelect),
	}
}

// ListCategories returns all categories in display order.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	return s.categories.List(ctx, base.OrderBy("sort_order", true))
}

// CreateCategory inserts a category row.
func (s *Store) CreateCategory(ctx context.Context, fields map[string]any) (*Category, error) {
	return s.categories.Insert(ctx, fields)
}

// UpdateCategory patches a category row.
func (s *Store) UpdateCategory(ctx context.Context, id int64, fields map[string]any) (*Category, error) {
	return s.categories.Update(ctx, id, fields)
}

// DeleteCategory removes a category row.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.categories.Delete(ctx, id)
}

// ListItems returns all dishes ordered by name.
func (s *Store) ListItems(ctx context.Context) ([]Item, error) {
	return s.items.List(ctx, base.OrderBy("name", true))
}

// GetItem returns a dish by id.
func (s *Store) GetItem(ctx context.Context, id int64) (*Item, error) {
	return s.items.Get(ctx, id)
}

// CreateItem inserts a dish row.
func (s *Store) CreateItem(ctx context.Context, fields map[string]any) (*Item, error) {
	return s.items.Insert(ctx, fields)
}

// UpdateItem patches a dish row.
func (s *Store) UpdateItem(ctx context.Context, id int64, fields map[string]any) (*Item, error) {
	return s.items.Update(ctx, id, fields)
}

// DeleteItem removes a dish row.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	return s.items.Delete(ctx, id)
}

// Recipe returns a dish's recipe lines with current ingredient
// snapshots.
func (s *Store) Recipe(ctx context.Context, menuItemID int64) ([]RecipeLine, error) {
	return s.recipes.List(ctx,
		base.Eq("menu_item_id", menuItemID),
		base.OrderBy("inventory_item_id", true))
}

// ReplaceRecipe swaps a dish's recipe for the given lines in one
// transaction.
func (s *Store) ReplaceRecipe(ctx context.Context, menuItemID int64, lines []NewRecipeLine) error {
	params := map[string]any{
		"p_menu_item_id": menuItemID,
		"p_ingredients":  lines,
	}
	if err := s.db.RPC(ctx, "replace_menu_item_ingredients", params, nil); err != nil {
		return base.WrapRemote(err, "replace recipe")
	}
	return nil
}

// CheckIngredients returns the ingredient check rows for a dish.
func (s *Store) CheckIngredients(ctx context.Context, menuItemID int64) ([]Shortfall, error) {
	var rows []Shortfall
	params := map[string]any{"p_menu_item_id": menuItemID}
	if err := s.db.RPC(ctx, "check_ingredients_availability", params, &rows); err != nil {
		return nil, base.WrapRemote(err, "check ingredients")
	}
	return rows, nil
}

// RecomputeAllAvailability refreshes is_available on every dish from
// current stock.
func (s *Store) RecomputeAllAvailability(ctx context.Context) error {
	if err := s.db.RPC(ctx, "update_all_menu_items_availability", nil, nil); err != nil {
		return base.WrapRemote(err, "recompute availability")
	}
	return nil
}

// IngredientUsage returns every recipe line joined with its ingredient
// and dish.
func (s *Store) IngredientUsage(ctx context.Context) ([]usageLine, error) {
	var rows []usageLine
	q := s.db.From("menu_item_ingredients").
		Select("inventory_item_id, inventory_items(id,name,quantity,unit,minimum_quantity), menu_items(*)")
	if err := q.Get(ctx, &rows); err != nil {
		return nil, base.WrapRemote(err, "list ingredient usage")
	}
	return rows, nil
}
