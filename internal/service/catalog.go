package service

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"bistro-service/internal/cart"
	"bistro-service/internal/models"
	"bistro-service/internal/store"
	"bistro-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed seed_menu.yaml
var defaultMenu []byte

const (
	// DefaultCategory is assigned to new items saved without a category
	DefaultCategory = "Main Course"

	// AllCategories disables category filtering
	AllCategories = "All"
)

// Variant is a portion size offered for a menu item
type Variant struct {
	Label      string  `json:"label"`
	Multiplier float64 `json:"multiplier"`
	Price      int64   `json:"price"`
}

var (
	drinkVariants = []Variant{
		{Label: "Small", Multiplier: 0.8},
		{Label: "Regular", Multiplier: 1},
		{Label: "Large", Multiplier: 1.4},
	}
	foodVariants = []Variant{
		{Label: "Standard", Multiplier: 1},
		{Label: "Large Portion", Multiplier: 1.6},
	}
)

// CatalogService handles menu business logic. Writes are serialized so a
// save never reads availability from a menu another write is changing.
type CatalogService struct {
	mu        sync.Mutex
	repo      store.CatalogRepository
	publisher EventPublisher
	seedFile  string
	logger    *zap.Logger
}

// NewCatalogService creates a new catalog service. seedFile, when set,
// replaces the embedded default menu used by Seed.
func NewCatalogService(repo store.CatalogRepository, publisher EventPublisher, seedFile string) *CatalogService {
	return &CatalogService{
		repo:      repo,
		publisher: publisher,
		seedFile:  seedFile,
		logger:    util.GetLogger(),
	}
}

// Seed writes the default menu when the store has none
func (s *CatalogService) Seed(ctx context.Context) error {
	items, err := s.repo.ListMenu(ctx)
	if err != nil {
		return fmt.Errorf("failed to read menu: %w", err)
	}
	if len(items) > 0 {
		return nil
	}

	raw := defaultMenu
	if s.seedFile != "" {
		raw, err = os.ReadFile(s.seedFile)
		if err != nil {
			return fmt.Errorf("failed to read menu seed file: %w", err)
		}
	}

	var seed []models.MenuItem
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("failed to parse menu seed: %w", err)
	}
	if err := validateMenu(seed); err != nil {
		return err
	}

	if err := s.repo.ReplaceMenu(ctx, seed); err != nil {
		return fmt.Errorf("failed to seed menu: %w", err)
	}

	s.logger.Info("Menu seeded", zap.Int("items", len(seed)), zap.String("source", s.seedSource()))
	return nil
}

func (s *CatalogService) seedSource() string {
	if s.seedFile != "" {
		return s.seedFile
	}
	return "embedded"
}

// Menu returns every item in catalog order
func (s *CatalogService) Menu(ctx context.Context) ([]models.MenuItem, error) {
	items, err := s.repo.ListMenu(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}
	return items, nil
}

// ReplaceMenu swaps the whole catalog
func (s *CatalogService) ReplaceMenu(ctx context.Context, items []models.MenuItem) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.ReplaceMenu")
	defer span.End()

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		if items[i].Category == "" {
			items[i].Category = DefaultCategory
		}
	}
	if err := validateMenu(items); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.ReplaceMenu(ctx, items); err != nil {
		return fmt.Errorf("failed to save menu: %w", err)
	}
	s.written(ctx, len(items))
	return nil
}

// SaveItem inserts item, or replaces the item with the same id. New items
// get a generated id and are available unless the caller says otherwise.
func (s *CatalogService) SaveItem(ctx context.Context, item models.MenuItem, available *bool) (*models.MenuItem, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.SaveItem")
	defer span.End()

	if item.Category == "" {
		item.Category = DefaultCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item.Available = true
	if item.ID == "" {
		item.ID = uuid.New().String()
	} else {
		items, err := s.repo.ListMenu(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list menu: %w", err)
		}
		if idx := indexOf(items, item.ID); idx >= 0 {
			item.Available = items[idx].Available
		}
	}
	if available != nil {
		item.Available = *available
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertMenuItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save menu item: %w", err)
	}
	s.written(ctx, -1)
	return &item, nil
}

// DeleteItem removes an item from the catalog
func (s *CatalogService) DeleteItem(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteItem")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteMenuItem(ctx, id); err != nil {
		if errors.Is(err, models.ErrMenuItemNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	s.written(ctx, -1)
	return nil
}

// Lookup returns an item that can be ordered
func (s *CatalogService) Lookup(ctx context.Context, id string) (*models.MenuItem, error) {
	items, err := s.repo.ListMenu(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}

	idx := indexOf(items, id)
	if idx < 0 {
		return nil, fmt.Errorf("menu item %s: %w", id, models.ErrMenuItemNotFound)
	}
	if !items[idx].Available {
		return nil, fmt.Errorf("menu item %s: %w", id, models.ErrItemUnavailable)
	}
	return &items[idx], nil
}

// Categories returns distinct categories in first-seen order
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	items, err := s.Menu(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, item := range items {
		if !seen[item.Category] {
			seen[item.Category] = true
			categories = append(categories, item.Category)
		}
	}
	return categories, nil
}

// Search filters the catalog. Every query term must appear in the name,
// description or category; matching ignores case.
func (s *CatalogService) Search(ctx context.Context, query, category string) ([]models.MenuItem, error) {
	items, err := s.Menu(ctx)
	if err != nil {
		return nil, err
	}
	return FilterMenu(items, query, category), nil
}

// FilterMenu applies the search rules of Search to items
func FilterMenu(items []models.MenuItem, query, category string) []models.MenuItem {
	terms := strings.Fields(strings.ToLower(query))
	result := make([]models.MenuItem, 0, len(items))

	for _, item := range items {
		if category != "" && category != AllCategories && !strings.EqualFold(item.Category, category) {
			continue
		}
		haystack := strings.ToLower(item.Name + " " + item.Description + " " + item.Category)
		matched := true
		for _, term := range terms {
			if !strings.Contains(haystack, term) {
				matched = false
				break
			}
		}
		if matched {
			result = append(result, item)
		}
	}
	return result
}

// Variants returns the portion sizes of item with their rounded prices
func Variants(item models.MenuItem) []Variant {
	base := foodVariants
	if strings.Contains(strings.ToLower(item.Category), "drink") {
		base = drinkVariants
	}

	variants := make([]Variant, len(base))
	for i, v := range base {
		v.Price = int64(math.Round(float64(item.Price) * v.Multiplier))
		variants[i] = v
	}
	return variants
}

// VariantPrice resolves the price of unit for item. An empty unit is the
// default unit at the base price.
func VariantPrice(item models.MenuItem, unit string) (Variant, error) {
	if unit == "" || unit == cart.DefaultUnit {
		return Variant{Label: cart.DefaultUnit, Multiplier: 1, Price: item.Price}, nil
	}
	for _, v := range Variants(item) {
		if v.Label == unit {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("unknown unit %q for %s: %w", unit, item.Name, models.ErrInvalidMenuItem)
}

// written records a catalog write and announces the new item count. A
// negative count is read back from the store.
func (s *CatalogService) written(ctx context.Context, count int) {
	util.MenuWritesTotal.Inc()

	if count < 0 {
		items, err := s.repo.ListMenu(ctx)
		if err != nil {
			s.logger.Warn("Failed to count menu items", zap.Error(err))
			return
		}
		count = len(items)
	}

	if err := s.publisher.PublishMenuUpdated(ctx, count); err != nil {
		s.logger.Error("Failed to publish MenuUpdated event", zap.Error(err))
	}
}

func validateMenu(items []models.MenuItem) error {
	ids := make(map[string]bool, len(items))
	for _, item := range items {
		if err := validateItem(item); err != nil {
			return err
		}
		if ids[item.ID] {
			return fmt.Errorf("duplicate id %s: %w", item.ID, models.ErrInvalidMenuItem)
		}
		ids[item.ID] = true
	}
	return nil
}

func validateItem(item models.MenuItem) error {
	switch {
	case item.ID == "":
		return fmt.Errorf("missing id: %w", models.ErrInvalidMenuItem)
	case strings.TrimSpace(item.Name) == "":
		return fmt.Errorf("missing name: %w", models.ErrInvalidMenuItem)
	case item.Price <= 0:
		return fmt.Errorf("price for %s must be positive: %w", item.Name, models.ErrInvalidMenuItem)
	}
	return nil
}

func indexOf(items []models.MenuItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
