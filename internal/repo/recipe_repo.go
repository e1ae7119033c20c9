package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shaiso/Fabrica/internal/domain"
)

// RecipeRepo — репозиторий для работы с recipes.
type RecipeRepo struct {
	db DB
}

// NewRecipeRepo создаёт новый RecipeRepo.
func NewRecipeRepo(db DB) *RecipeRepo {
	return &RecipeRepo{db: db}
}

// Create создаёт новый рецепт с версией 1.
func (r *RecipeRepo) Create(ctx context.Context, recipe *domain.Recipe) error {
	stepsJSON, err := json.Marshal(recipe.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	materialsJSON, err := json.Marshal(recipe.Materials)
	if err != nil {
		return fmt.Errorf("marshal materials: %w", err)
	}

	query := `
		INSERT INTO recipes (id, name, version, steps, duration_min, materials, created_at, updated_at)
		VALUES ($1, $2, 1, $3, $4, $5, NOW(), NOW())
		RETURNING version, created_at, updated_at
	`
	err = r.db.QueryRow(ctx, query,
		recipe.ID,
		recipe.Name,
		stepsJSON,
		recipe.DurationMin,
		materialsJSON,
	).Scan(&recipe.Version, &recipe.CreatedAt, &recipe.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

// GetByID возвращает рецепт по ID.
func (r *RecipeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	query := `
		SELECT id, name, version, steps, duration_min, materials, created_at, updated_at
		FROM recipes
		WHERE id = $1
	`
	return r.scanRecipe(r.db.QueryRow(ctx, query, id))
}

// List возвращает список всех рецептов.
func (r *RecipeRepo) List(ctx context.Context) ([]domain.Recipe, error) {
	query := `
		SELECT id, name, version, steps, duration_min, materials, created_at, updated_at
		FROM recipes
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []domain.Recipe
	for rows.Next() {
		recipe, err := r.scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *recipe)
	}
	return recipes, rows.Err()
}

// Update обновляет рецепт.
//
// Version инкрементируется, updated_at выставляется в NOW() на стороне
// БД; оба значения возвращаются в переданную структуру. Снапшот-кэш
// сравнивает created_at снапшота именно с этим updated_at.
func (r *RecipeRepo) Update(ctx context.Context, recipe *domain.Recipe) error {
	stepsJSON, err := json.Marshal(recipe.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	materialsJSON, err := json.Marshal(recipe.Materials)
	if err != nil {
		return fmt.Errorf("marshal materials: %w", err)
	}

	query := `
		UPDATE recipes
		SET name = $2, steps = $3, duration_min = $4, materials = $5,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING version, updated_at
	`
	err = r.db.QueryRow(ctx, query,
		recipe.ID,
		recipe.Name,
		stepsJSON,
		recipe.DurationMin,
		materialsJSON,
	).Scan(&recipe.Version, &recipe.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	return nil
}

// Delete удаляет рецепт.
func (r *RecipeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM recipes WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanRecipe сканирует одну строку в Recipe.
func (r *RecipeRepo) scanRecipe(row pgx.Row) (*domain.Recipe, error) {
	var recipe domain.Recipe
	var stepsJSON, materialsJSON []byte

	err := row.Scan(
		&recipe.ID,
		&recipe.Name,
		&recipe.Version,
		&stepsJSON,
		&recipe.DurationMin,
		&materialsJSON,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan recipe: %w", err)
	}

	if err := json.Unmarshal(stepsJSON, &recipe.Steps); err != nil {
		return nil, fmt.Errorf("unmarshal steps: %w", err)
	}
	if materialsJSON != nil {
		if err := json.Unmarshal(materialsJSON, &recipe.Materials); err != nil {
			return nil, fmt.Errorf("unmarshal materials: %w", err)
		}
	}

	return &recipe, nil
}
