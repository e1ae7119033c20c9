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

// RecipeSnapshotRepo — репозиторий для работы с recipe_snapshots.
//
// Таблица несёт уникальный индекс (recipe_id, version): при гонке
// двух создателей одной версии проигравший получает ErrAlreadyExists
// и перечитывает снапшот победителя.
type RecipeSnapshotRepo struct {
	db DB
}

// NewRecipeSnapshotRepo создаёт новый RecipeSnapshotRepo.
func NewRecipeSnapshotRepo(db DB) *RecipeSnapshotRepo {
	return &RecipeSnapshotRepo{db: db}
}

// Create вставляет снапшот.
// Возвращает ErrAlreadyExists при конфликте (recipe_id, version).
func (r *RecipeSnapshotRepo) Create(ctx context.Context, snap *domain.RecipeSnapshot) error {
	stepsJSON, err := json.Marshal(snap.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	materialsJSON, err := json.Marshal(snap.Materials)
	if err != nil {
		return fmt.Errorf("marshal materials: %w", err)
	}

	query := `
		INSERT INTO recipe_snapshots (id, recipe_id, version, recipe_version, name,
		                              steps, duration_min, materials, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`
	err = r.db.QueryRow(ctx, query,
		snap.ID,
		snap.RecipeID,
		snap.Version,
		snap.RecipeVersion,
		snap.Name,
		stepsJSON,
		snap.DurationMin,
		materialsJSON,
	).Scan(&snap.CreatedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert recipe snapshot: %w", err)
	}
	return nil
}

// GetLatest возвращает снапшот рецепта с максимальной версией.
func (r *RecipeSnapshotRepo) GetLatest(ctx context.Context, recipeID uuid.UUID) (*domain.RecipeSnapshot, error) {
	query := `
		SELECT id, recipe_id, version, recipe_version, name,
		       steps, duration_min, materials, created_at
		FROM recipe_snapshots
		WHERE recipe_id = $1
		ORDER BY version DESC
		LIMIT 1
	`
	return r.scanSnapshot(r.db.QueryRow(ctx, query, recipeID))
}

// GetByID возвращает снапшот по ID.
func (r *RecipeSnapshotRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecipeSnapshot, error) {
	query := `
		SELECT id, recipe_id, version, recipe_version, name,
		       steps, duration_min, materials, created_at
		FROM recipe_snapshots
		WHERE id = $1
	`
	return r.scanSnapshot(r.db.QueryRow(ctx, query, id))
}

// ListByRecipeID возвращает все снапшоты рецепта, новые первыми.
func (r *RecipeSnapshotRepo) ListByRecipeID(ctx context.Context, recipeID uuid.UUID) ([]domain.RecipeSnapshot, error) {
	query := `
		SELECT id, recipe_id, version, recipe_version, name,
		       steps, duration_min, materials, created_at
		FROM recipe_snapshots
		WHERE recipe_id = $1
		ORDER BY version DESC
	`
	rows, err := r.db.Query(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("list recipe snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []domain.RecipeSnapshot
	for rows.Next() {
		snap, err := r.scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

// scanSnapshot сканирует одну строку в RecipeSnapshot.
func (r *RecipeSnapshotRepo) scanSnapshot(row pgx.Row) (*domain.RecipeSnapshot, error) {
	var snap domain.RecipeSnapshot
	var stepsJSON, materialsJSON []byte

	err := row.Scan(
		&snap.ID,
		&snap.RecipeID,
		&snap.Version,
		&snap.RecipeVersion,
		&snap.Name,
		&stepsJSON,
		&snap.DurationMin,
		&materialsJSON,
		&snap.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan recipe snapshot: %w", err)
	}

	if err := json.Unmarshal(stepsJSON, &snap.Steps); err != nil {
		return nil, fmt.Errorf("unmarshal steps: %w", err)
	}
	if materialsJSON != nil {
		if err := json.Unmarshal(materialsJSON, &snap.Materials); err != nil {
			return nil, fmt.Errorf("unmarshal materials: %w", err)
		}
	}

	return &snap, nil
}
