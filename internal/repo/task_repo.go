package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shaiso/Fabrica/internal/domain"
)

// TaskRepo — репозиторий для работы с tasks.
type TaskRepo struct {
	db DB
}

// NewTaskRepo создаёт новый TaskRepo.
func NewTaskRepo(db DB) *TaskRepo {
	return &TaskRepo{db: db}
}

// taskColumns — колонки tasks в порядке, общем для CopyFrom и SELECT.
var taskColumns = []string{
	"id", "project_id", "recipe_snapshot_id", "product_snapshot_id",
	"step_id", "step_name", "step_order", "is_last_step", "device_type_id",
	"execution_number", "total_executions", "status",
	"started_at", "finished_at", "created_at",
}

// BulkCreate вставляет пачку tasks одной операцией CopyFrom.
//
// Активация заказа порождает сотни и тысячи tasks; построчные INSERT
// на таких объёмах не укладываются в разумную задержку, поэтому
// вставка идёт бинарным COPY-протоколом. Вызывается внутри транзакции
// активации через tx, удовлетворяющий интерфейсу DB.
func (r *TaskRepo) BulkCreate(ctx context.Context, tasks []domain.Task) (int64, error) {
	if len(tasks) == 0 {
		return 0, nil
	}

	copied, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"tasks"},
		taskColumns,
		pgx.CopyFromSlice(len(tasks), func(i int) ([]any, error) {
			t := &tasks[i]
			return []any{
				t.ID,
				t.ProjectID,
				t.RecipeSnapshotID,
				t.ProductSnapshotID,
				t.StepID,
				t.StepName,
				t.StepOrder,
				t.IsLastStep,
				t.DeviceTypeID,
				t.ExecutionNumber,
				t.TotalExecutions,
				t.Status,
				t.StartedAt,
				t.FinishedAt,
				t.CreatedAt,
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy tasks: %w", err)
	}
	return copied, nil
}

// GetByID возвращает task по ID.
func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT id, project_id, recipe_snapshot_id, product_snapshot_id,
		       step_id, step_name, step_order, is_last_step, device_type_id,
		       execution_number, total_executions, status,
		       started_at, finished_at, created_at
		FROM tasks
		WHERE id = $1
	`
	return r.scanTask(r.db.QueryRow(ctx, query, id))
}

// ListByProjectID возвращает все tasks заказа.
func (r *TaskRepo) ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error) {
	query := `
		SELECT id, project_id, recipe_snapshot_id, product_snapshot_id,
		       step_id, step_name, step_order, is_last_step, device_type_id,
		       execution_number, total_executions, status,
		       started_at, finished_at, created_at
		FROM tasks
		WHERE project_id = $1
		ORDER BY recipe_snapshot_id, execution_number
	`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks by project_id: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// CountByProjectID возвращает количество tasks заказа.
func (r *TaskRepo) CountByProjectID(ctx context.Context, projectID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM tasks WHERE project_id = $1
	`, projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

// scanTask сканирует одну строку в Task.
func (r *TaskRepo) scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task

	err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.RecipeSnapshotID,
		&task.ProductSnapshotID,
		&task.StepID,
		&task.StepName,
		&task.StepOrder,
		&task.IsLastStep,
		&task.DeviceTypeID,
		&task.ExecutionNumber,
		&task.TotalExecutions,
		&task.Status,
		&task.StartedAt,
		&task.FinishedAt,
		&task.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}

	return &task, nil
}
