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

// ProductSnapshotRepo — репозиторий для работы с product_snapshots.
//
// Как и recipe_snapshots, таблица несёт уникальный индекс
// (product_id, version) для разруливания гонки создателей.
type ProductSnapshotRepo struct {
	db DB
}

// NewProductSnapshotRepo создаёт новый ProductSnapshotRepo.
func NewProductSnapshotRepo(db DB) *ProductSnapshotRepo {
	return &ProductSnapshotRepo{db: db}
}

// Create вставляет снапшот.
// Возвращает ErrAlreadyExists при конфликте (product_id, version).
func (r *ProductSnapshotRepo) Create(ctx context.Context, snap *domain.ProductSnapshot) error {
	recipesJSON, err := json.Marshal(snap.Recipes)
	if err != nil {
		return fmt.Errorf("marshal recipes: %w", err)
	}

	query := `
		INSERT INTO product_snapshots (id, product_id, version, design_number, name, recipes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	err = r.db.QueryRow(ctx, query,
		snap.ID,
		snap.ProductID,
		snap.Version,
		snap.DesignNumber,
		snap.Name,
		recipesJSON,
	).Scan(&snap.CreatedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert product snapshot: %w", err)
	}
	return nil
}

// GetLatest возвращает снапшот изделия с максимальной версией.
func (r *ProductSnapshotRepo) GetLatest(ctx context.Context, productID uuid.UUID) (*domain.ProductSnapshot, error) {
	query := `
		SELECT id, product_id, version, design_number, name, recipes, created_at
		FROM product_snapshots
		WHERE product_id = $1
		ORDER BY version DESC
		LIMIT 1
	`
	return r.scanSnapshot(r.db.QueryRow(ctx, query, productID))
}

// GetByID возвращает снапшот по ID.
func (r *ProductSnapshotRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductSnapshot, error) {
	query := `
		SELECT id, product_id, version, design_number, name, recipes, created_at
		FROM product_snapshots
		WHERE id = $1
	`
	return r.scanSnapshot(r.db.QueryRow(ctx, query, id))
}

// ListByProductID возвращает все снапшоты изделия, новые первыми.
func (r *ProductSnapshotRepo) ListByProductID(ctx context.Context, productID uuid.UUID) ([]domain.ProductSnapshot, error) {
	query := `
		SELECT id, product_id, version, design_number, name, recipes, created_at
		FROM product_snapshots
		WHERE product_id = $1
		ORDER BY version DESC
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list product snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []domain.ProductSnapshot
	for rows.Next() {
		snap, err := r.scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

// scanSnapshot сканирует одну строку в ProductSnapshot.
func (r *ProductSnapshotRepo) scanSnapshot(row pgx.Row) (*domain.ProductSnapshot, error) {
	var snap domain.ProductSnapshot
	var recipesJSON []byte

	err := row.Scan(
		&snap.ID,
		&snap.ProductID,
		&snap.Version,
		&snap.DesignNumber,
		&snap.Name,
		&recipesJSON,
		&snap.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan product snapshot: %w", err)
	}

	if err := json.Unmarshal(recipesJSON, &snap.Recipes); err != nil {
		return nil, fmt.Errorf("unmarshal recipes: %w", err)
	}

	return &snap, nil
}
