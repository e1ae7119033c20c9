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

// ProjectRepo — репозиторий для работы с projects.
type ProjectRepo struct {
	db DB
}

// NewProjectRepo создаёт новый ProjectRepo.
func NewProjectRepo(db DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

const projectColumns = `id, name, status, product_lines, recipe_lines, activated_at, created_at, updated_at`

// Create создаёт новый заказ в статусе PLANNING.
func (r *ProjectRepo) Create(ctx context.Context, project *domain.Project) error {
	productLinesJSON, err := json.Marshal(project.ProductLines)
	if err != nil {
		return fmt.Errorf("marshal product lines: %w", err)
	}
	recipeLinesJSON, err := json.Marshal(project.RecipeLines)
	if err != nil {
		return fmt.Errorf("marshal recipe lines: %w", err)
	}

	query := `
		INSERT INTO projects (id, name, status, product_lines, recipe_lines, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err = r.db.QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.Status,
		productLinesJSON,
		recipeLinesJSON,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetByID возвращает заказ по ID.
func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return r.scanProject(r.db.QueryRow(ctx, query, id))
}

// GetByIDForUpdate возвращает заказ по ID, блокируя строку до конца
// транзакции. Используется движком активации, чтобы две конкурентные
// активации одного заказа сериализовались на строке projects.
func (r *ProjectRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 FOR UPDATE`
	return r.scanProject(r.db.QueryRow(ctx, query, id))
}

// List возвращает список всех заказов.
func (r *ProjectRepo) List(ctx context.Context) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := r.scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

// Update обновляет заказ целиком, включая статус и activated_at.
func (r *ProjectRepo) Update(ctx context.Context, project *domain.Project) error {
	productLinesJSON, err := json.Marshal(project.ProductLines)
	if err != nil {
		return fmt.Errorf("marshal product lines: %w", err)
	}
	recipeLinesJSON, err := json.Marshal(project.RecipeLines)
	if err != nil {
		return fmt.Errorf("marshal recipe lines: %w", err)
	}

	query := `
		UPDATE projects
		SET name = $2, status = $3, product_lines = $4, recipe_lines = $5,
		    activated_at = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err = r.db.QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.Status,
		productLinesJSON,
		recipeLinesJSON,
		project.ActivatedAt,
	).Scan(&project.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// Delete удаляет заказ (каскадно удалит его tasks).
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM projects WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanProject сканирует одну строку в Project.
func (r *ProjectRepo) scanProject(row pgx.Row) (*domain.Project, error) {
	var project domain.Project
	var productLinesJSON, recipeLinesJSON []byte

	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Status,
		&productLinesJSON,
		&recipeLinesJSON,
		&project.ActivatedAt,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}

	if productLinesJSON != nil {
		if err := json.Unmarshal(productLinesJSON, &project.ProductLines); err != nil {
			return nil, fmt.Errorf("unmarshal product lines: %w", err)
		}
	}
	if recipeLinesJSON != nil {
		if err := json.Unmarshal(recipeLinesJSON, &project.RecipeLines); err != nil {
			return nil, fmt.Errorf("unmarshal recipe lines: %w", err)
		}
	}

	return &project, nil
}
