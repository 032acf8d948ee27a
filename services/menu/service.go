package menu

import (
	"context"
	"sort"

	"github.com/ristora/fronthouse/internal/errors"
	"github.com/ristora/fronthouse/internal/logging"
	"github.com/ristora/fronthouse/services/base"
	"github.com/ristora/fronthouse/supabase/client"
)

// Service implements menu catalog management and availability
// resolution.
type Service struct {
	*base.BaseService
	store  StoreInterface
	logger *logging.Logger
}

// New creates a new menu service.
func New(db *client.Client, logger *logging.Logger) *Service {
	return &Service{
		BaseService: base.NewBaseService("menu", "menu_items", db, logger),
		store:       NewStore(db),
		logger:      logger,
	}
}

// NewWithStore creates a menu service with a custom store.
func NewWithStore(store StoreInterface, logger *logging.Logger) *Service {
	return &Service{
		BaseService: base.NewBaseService("menu", "menu_items", nil, logger),
		store:       store,
		logger:      logger,
	}
}

// =============================================================================
// Categories
// =============================================================================

// ListCategories returns all categories in display order.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.store.ListCategories(ctx)
}

// CreateCategory creates a category.
func (s *Service) CreateCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	if input.Name == "" {
		return nil, errors.InvalidInput("category name is required")
	}
	return s.store.CreateCategory(ctx, categoryFields(input))
}

// UpdateCategory updates a category.
func (s *Service) UpdateCategory(ctx context.Context, id int64, input CategoryInput) (*Category, error) {
	if input.Name == "" {
		return nil, errors.InvalidInput("category name is required")
	}
	return s.store.UpdateCategory(ctx, id, categoryFields(input))
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.store.DeleteCategory(ctx, id)
}

// =============================================================================
// Items
// =============================================================================

// ListItems returns all dishes ordered by name.
func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	return s.store.ListItems(ctx)
}

// GetItem returns a dish by id.
func (s *Service) GetItem(ctx context.Context, id int64) (*Item, error) {
	return s.store.GetItem(ctx, id)
}

// CreateItem creates a dish. New dishes start available; the next
// availability recompute corrects that from stock.
func (s *Service) CreateItem(ctx context.Context, input ItemInput) (*Item, error) {
	if err := validateItem(input); err != nil {
		return nil, err
	}
	fields := itemFields(input)
	fields["is_available"] = true
	return s.store.CreateItem(ctx, fields)
}

// UpdateItem updates a dish.
func (s *Service) UpdateItem(ctx context.Context, id int64, input ItemInput) (*Item, error) {
	if err := validateItem(input); err != nil {
		return nil, err
	}
	return s.store.UpdateItem(ctx, id, itemFields(input))
}

// DeleteItem removes a dish.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	return s.store.DeleteItem(ctx, id)
}

// =============================================================================
// Recipes and availability
// =============================================================================

// Recipe returns a dish's recipe lines with current ingredient
// snapshots.
func (s *Service) Recipe(ctx context.Context, menuItemID int64) ([]RecipeLine, error) {
	return s.store.Recipe(ctx, menuItemID)
}

// SetRecipe replaces a dish's recipe with the given lines. The end
// state depends only on the lines, so repeating the call is a no-op.
func (s *Service) SetRecipe(ctx context.Context, menuItemID int64, lines []NewRecipeLine) error {
	for _, line := range lines {
		if line.InventoryItemID <= 0 {
			return errors.InvalidInput("recipe line requires an inventory item")
		}
		if line.Quantity <= 0 {
			return errors.InvalidInput("recipe line quantity must be positive")
		}
	}

	if err := s.store.ReplaceRecipe(ctx, menuItemID, lines); err != nil {
		return err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"menu_item_id": menuItemID,
		"lines":        len(lines),
	}).Info("recipe replaced")
	return nil
}

// CheckAvailability checks whether current stock covers a dish's
// recipe. The dish is available exactly when no ingredient is short;
// Missing lists the short rows only.
func (s *Service) CheckAvailability(ctx context.Context, menuItemID int64) (*Availability, error) {
	rows, err := s.store.CheckIngredients(ctx, menuItemID)
	if err != nil {
		return nil, err
	}

	result := &Availability{MenuItemID: menuItemID, Available: true}
	for _, row := range rows {
		if row.Short() {
			result.Available = false
			result.Missing = append(result.Missing, row)
		}
	}
	return result, nil
}

// RecomputeAllAvailability refreshes is_available on every dish. The
// realtime watcher calls it on inventory and recipe changes; the cron
// schedule is the safety net for missed notifications.
func (s *Service) RecomputeAllAvailability(ctx context.Context) error {
	if err := s.store.RecomputeAllAvailability(ctx); err != nil {
		return err
	}
	s.logger.WithContext(ctx).Info("menu availability recomputed")
	return nil
}

// LowStockAffectingMenu returns inventory items at or below their
// threshold that at least one dish depends on, each paired with those
// dishes.
func (s *Service) LowStockAffectingMenu(ctx context.Context) ([]LowStockImpact, error) {
	usage, err := s.store.IngredientUsage(ctx)
	if err != nil {
		return nil, err
	}

	byIngredient := make(map[int64]*LowStockImpact)
	for _, line := range usage {
		if line.Ingredient == nil || line.Dish == nil {
			continue
		}
		if line.Ingredient.Quantity > line.Ingredient.MinimumQuantity {
			continue
		}
		impact, ok := byIngredient[line.InventoryItemID]
		if !ok {
			impact = &LowStockImpact{Ingredient: *line.Ingredient}
			byIngredient[line.InventoryItemID] = impact
		}
		impact.Dishes = append(impact.Dishes, *line.Dish)
	}

	out := make([]LowStockImpact, 0, len(byIngredient))
	for _, impact := range byIngredient {
		out = append(out, *impact)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Ingredient.Name < out[j].Ingredient.Name
	})
	return out, nil
}

// =============================================================================
// Helpers
// =============================================================================

func validateItem(input ItemInput) error {
	if input.Name == "" {
		return errors.InvalidInput("item name is required")
	}
	if input.CategoryID <= 0 {
		return errors.InvalidInput("item category is required")
	}
	if input.Price < 0 || input.PricePerKg < 0 {
		return errors.InvalidInput("item price cannot be negative")
	}
	if input.IsWeightBased && input.PricePerKg <= 0 {
		return errors.InvalidInput("weight based item requires a price per kg")
	}
	if input.SpicinessLevel < 0 || input.SpicinessLevel > 3 {
		return errors.InvalidInput("spiciness level must be between 0 and 3")
	}
	return nil
}

func categoryFields(input CategoryInput) map[string]any {
	return map[string]any{
		"name":        input.Name,
		"description": input.Description,
		"sort_order":  input.SortOrder,
		"is_active":   input.IsActive,
	}
}

func itemFields(input ItemInput) map[string]any {
	return map[string]any{
		"category_id":      input.CategoryID,
		"name":             input.Name,
		"description":      input.Description,
		"price":            input.Price,
		"preparation_time": input.PreparationTime,
		"allergens":        input.Allergens,
		"image_url":        input.ImageURL,
		"is_vegetarian":    input.IsVegetarian,
		"is_vegan":         input.IsVegan,
		"is_gluten_free":   input.IsGlutenFree,
		"spiciness_level":  input.SpicinessLevel,
		"is_weight_based":  input.IsWeightBased,
		"price_per_kg":     input.PricePerKg,
	}
}
