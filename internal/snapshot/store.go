package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shaiso/Fabrica/internal/domain"
	"github.com/shaiso/Fabrica/internal/repo"
	"github.com/shaiso/Fabrica/internal/telemetry"
)

// maxCreateAttempts — сколько раз повторять цикл "прочитать-создать"
// при конфликте версий, прежде чем сдаться.
const maxCreateAttempts = 3

// RecipeSource — источник живых рецептов.
type RecipeSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error)
}

// ProductSource — источник живых изделий.
type ProductSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
}

// RecipeSnapshots — хранилище снапшотов рецептов.
// Create обязан возвращать repo.ErrAlreadyExists при конфликте
// (recipe_id, version).
type RecipeSnapshots interface {
	GetLatest(ctx context.Context, recipeID uuid.UUID) (*domain.RecipeSnapshot, error)
	Create(ctx context.Context, snap *domain.RecipeSnapshot) error
}

// ProductSnapshots — хранилище снапшотов изделий.
type ProductSnapshots interface {
	GetLatest(ctx context.Context, productID uuid.UUID) (*domain.ProductSnapshot, error)
	Create(ctx context.Context, snap *domain.ProductSnapshot) error
}

// Store — read-through кэш неизменяемых версий рецептов и изделий.
type Store struct {
	recipes      RecipeSource
	products     ProductSource
	recipeSnaps  RecipeSnapshots
	productSnaps ProductSnapshots
	logger       *slog.Logger
}

// Config — конфигурация Store.
type Config struct {
	Recipes      RecipeSource
	Products     ProductSource
	RecipeSnaps  RecipeSnapshots
	ProductSnaps ProductSnapshots
	Logger       *slog.Logger
}

// New создаёт новый Store.
func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		recipes:      cfg.Recipes,
		products:     cfg.Products,
		recipeSnaps:  cfg.RecipeSnaps,
		productSnaps: cfg.ProductSnaps,
		logger:       logger,
	}
}

// GetOrCreateRecipeSnapshot возвращает актуальный снапшот рецепта,
// создавая новую версию, если рецепт менялся после последнего снапшота.
//
// Алгоритм:
//  1. Читаем последний снапшот по версии.
//  2. Если его нет — создаём версию 1 копированием живого рецепта.
//  3. Если есть и created_at >= updated_at рецепта — возвращаем его
//     как есть (кэш-попадание).
//  4. Иначе создаём версию latest+1; конфликт уникальности означает,
//     что параллельный вызов успел раньше, и цикл перечитывает его
//     результат.
func (s *Store) GetOrCreateRecipeSnapshot(ctx context.Context, recipeID uuid.UUID) (*domain.RecipeSnapshot, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, recipeID)
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	logger := telemetry.WithRecipeID(s.logger, recipeID.String())

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		latest, err := s.recipeSnaps.GetLatest(ctx, recipeID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("get latest recipe snapshot: %w", err)
		}

		if latest != nil && latest.IsFreshFor(recipe.UpdatedAt) {
			telemetry.SnapshotCacheHits.WithLabelValues("recipe").Inc()
			return latest, nil
		}

		nextVersion := 1
		if latest != nil {
			nextVersion = latest.Version + 1
		}

		snap := copyRecipe(recipe, nextVersion)
		err = s.recipeSnaps.Create(ctx, snap)
		if errors.Is(err, repo.ErrAlreadyExists) {
			// Проиграли гонку за эту версию — перечитываем победителя.
			logger.Debug("recipe snapshot version conflict, retrying",
				"version", nextVersion)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create recipe snapshot: %w", err)
		}

		telemetry.SnapshotCacheMisses.WithLabelValues("recipe").Inc()
		logger.Info("recipe snapshot created", "version", snap.Version)
		return snap, nil
	}

	return nil, fmt.Errorf("%w: recipe %s", ErrVersionConflict, recipeID)
}

// GetOrCreateProductSnapshot возвращает актуальный снапшот изделия.
//
// При создании новой версии каждый рецепт изделия транзитивно
// прогоняется через GetOrCreateRecipeSnapshot, поэтому снапшот
// изделия ссылается только на зафиксированные снапшоты рецептов,
// никогда — на живые рецепты.
func (s *Store) GetOrCreateProductSnapshot(ctx context.Context, productID uuid.UUID) (*domain.ProductSnapshot, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		latest, err := s.productSnaps.GetLatest(ctx, productID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("get latest product snapshot: %w", err)
		}

		if latest != nil && latest.IsFreshFor(product.UpdatedAt) {
			telemetry.SnapshotCacheHits.WithLabelValues("product").Inc()
			return latest, nil
		}

		nextVersion := 1
		if latest != nil {
			nextVersion = latest.Version + 1
		}

		snap, err := s.buildProductSnapshot(ctx, product, nextVersion)
		if err != nil {
			return nil, err
		}

		err = s.productSnaps.Create(ctx, snap)
		if errors.Is(err, repo.ErrAlreadyExists) {
			s.logger.Debug("product snapshot version conflict, retrying",
				"product_id", productID, "version", nextVersion)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create product snapshot: %w", err)
		}

		telemetry.SnapshotCacheMisses.WithLabelValues("product").Inc()
		s.logger.Info("product snapshot created",
			"product_id", productID, "version", snap.Version)
		return snap, nil
	}

	return nil, fmt.Errorf("%w: product %s", ErrVersionConflict, productID)
}

// buildProductSnapshot собирает новую версию снапшота изделия,
// фиксируя снапшоты всех его рецептов.
func (s *Store) buildProductSnapshot(ctx context.Context, product *domain.Product, version int) (*domain.ProductSnapshot, error) {
	entries := make([]domain.SnapshotRecipeEntry, 0, len(product.Recipes))
	for _, entry := range product.Recipes {
		recipeSnap, err := s.GetOrCreateRecipeSnapshot(ctx, entry.RecipeID)
		if err != nil {
			return nil, fmt.Errorf("snapshot recipe %s: %w", entry.RecipeID, err)
		}
		entries = append(entries, domain.SnapshotRecipeEntry{
			RecipeSnapshotID: recipeSnap.ID,
			RecipeID:         entry.RecipeID,
			Quantity:         entry.Quantity,
		})
	}

	return &domain.ProductSnapshot{
		ID:           uuid.New(),
		ProductID:    product.ID,
		Version:      version,
		DesignNumber: product.DesignNumber,
		Name:         product.Name,
		Recipes:      entries,
	}, nil
}

// copyRecipe делает глубокую копию рецепта в снапшот указанной версии.
func copyRecipe(recipe *domain.Recipe, version int) *domain.RecipeSnapshot {
	steps := make([]domain.RecipeStep, len(recipe.Steps))
	for i, step := range recipe.Steps {
		step.DependsOn = append([]string(nil), step.DependsOn...)
		steps[i] = step
	}

	return &domain.RecipeSnapshot{
		ID:            uuid.New(),
		RecipeID:      recipe.ID,
		Version:       version,
		RecipeVersion: recipe.Version,
		Name:          recipe.Name,
		Steps:         steps,
		DurationMin:   recipe.DurationMin,
		Materials:     append([]domain.MaterialRef(nil), recipe.Materials...),
	}
}
