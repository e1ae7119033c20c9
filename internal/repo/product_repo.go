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

// ProductRepo — репозиторий для работы с products.
type ProductRepo struct {
	db DB
}

// NewProductRepo создаёт новый ProductRepo.
func NewProductRepo(db DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// Create создаёт новое изделие.
// Возвращает ErrAlreadyExists при дубликате design_number.
func (r *ProductRepo) Create(ctx context.Context, product *domain.Product) error {
	recipesJSON, err := json.Marshal(product.Recipes)
	if err != nil {
		return fmt.Errorf("marshal recipes: %w", err)
	}

	query := `
		INSERT INTO products (id, design_number, name, recipes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err = r.db.QueryRow(ctx, query,
		product.ID,
		product.DesignNumber,
		product.Name,
		recipesJSON,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID возвращает изделие по ID.
func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, design_number, name, recipes, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	return r.scanProduct(r.db.QueryRow(ctx, query, id))
}

// GetByDesignNumber возвращает изделие по конструкторскому номеру.
func (r *ProductRepo) GetByDesignNumber(ctx context.Context, designNumber string) (*domain.Product, error) {
	query := `
		SELECT id, design_number, name, recipes, created_at, updated_at
		FROM products
		WHERE design_number = $1
	`
	return r.scanProduct(r.db.QueryRow(ctx, query, designNumber))
}

// List возвращает список всех изделий.
func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, design_number, name, recipes, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

// Update обновляет изделие. updated_at выставляется в NOW() на стороне БД.
func (r *ProductRepo) Update(ctx context.Context, product *domain.Product) error {
	recipesJSON, err := json.Marshal(product.Recipes)
	if err != nil {
		return fmt.Errorf("marshal recipes: %w", err)
	}

	query := `
		UPDATE products
		SET design_number = $2, name = $3, recipes = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err = r.db.QueryRow(ctx, query,
		product.ID,
		product.DesignNumber,
		product.Name,
		recipesJSON,
	).Scan(&product.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete удаляет изделие.
func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanProduct сканирует одну строку в Product.
func (r *ProductRepo) scanProduct(row pgx.Row) (*domain.Product, error) {
	var product domain.Product
	var recipesJSON []byte

	err := row.Scan(
		&product.ID,
		&product.DesignNumber,
		&product.Name,
		&recipesJSON,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}

	if err := json.Unmarshal(recipesJSON, &product.Recipes); err != nil {
		return nil, fmt.Errorf("unmarshal recipes: %w", err)
	}

	return &product, nil
}
