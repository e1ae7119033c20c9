package activation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Fabrica/internal/domain"
	"github.com/shaiso/Fabrica/internal/mq"
	"github.com/shaiso/Fabrica/internal/repo"
	"github.com/shaiso/Fabrica/internal/telemetry"
)

// Snapshots — провайдер актуальных снапшотов (read-through кэш).
type Snapshots interface {
	GetOrCreateRecipeSnapshot(ctx context.Context, recipeID uuid.UUID) (*domain.RecipeSnapshot, error)
	GetOrCreateProductSnapshot(ctx context.Context, productID uuid.UUID) (*domain.ProductSnapshot, error)
}

// RecipeSnapshotReader читает уже зафиксированные снапшоты рецептов.
// Нужен для product lines: снапшот изделия ссылается на конкретные
// снапшоты рецептов по ID.
type RecipeSnapshotReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RecipeSnapshot, error)
}

// Publisher публикует события активации. Может быть nil —
// тогда события не публикуются.
type Publisher interface {
	PublishProjectActivated(ctx context.Context, projectID uuid.UUID, tasksCreated int) error
	PublishTaskCreated(ctx context.Context, payload mq.TaskCreatedPayload) error
}

// Engine — движок активации заказов.
type Engine struct {
	pool        *pgxpool.Pool
	snapshots   Snapshots
	recipeSnaps RecipeSnapshotReader
	publisher   Publisher
	logger      *slog.Logger
}

// Config — конфигурация Engine.
type Config struct {
	Pool        *pgxpool.Pool
	Snapshots   Snapshots
	RecipeSnaps RecipeSnapshotReader
	Publisher   Publisher
	Logger      *slog.Logger
}

// New создаёт новый Engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		pool:        cfg.Pool,
		snapshots:   cfg.Snapshots,
		recipeSnaps: cfg.RecipeSnaps,
		publisher:   cfg.Publisher,
		logger:      logger,
	}
}

// Result — итог успешной активации.
type Result struct {
	Project *domain.Project
	Tasks   []domain.Task
}

// Activate переводит заказ PLANNING → ACTIVE и разворачивает tasks.
//
// Порядок работы:
//  1. Открывается транзакция, строка заказа блокируется FOR UPDATE —
//     конкурентные активации одного заказа сериализуются.
//  2. Позиции заказа фиксируются снапшотами и раскладываются в tasks.
//     Создание снапшотов идёт вне транзакции (они неизменяемы и
//     безопасно переживают откат).
//  3. Tasks вставляются одной пачкой, заказ помечается ACTIVE.
//  4. После коммита публикуются события project.activated и
//     task.created; ошибки публикации не откатывают активацию.
//
// Любая ошибка до коммита оставляет заказ в PLANNING без единого task.
func (e *Engine) Activate(ctx context.Context, projectID uuid.UUID) (*Result, error) {
	logger := telemetry.WithProjectID(e.logger, projectID.String())

	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	projects := repo.NewProjectRepo(tx)

	project, err := projects.GetByIDForUpdate(ctx, projectID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	if !project.CanActivate() {
		telemetry.Activations.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: status %s", ErrProjectNotActivatable, project.Status)
	}

	tasks, err := e.planTasks(ctx, project)
	if err != nil {
		telemetry.Activations.WithLabelValues("error").Inc()
		return nil, err
	}

	if len(tasks) > 0 {
		inserted, err := repo.NewTaskRepo(tx).BulkCreate(ctx, tasks)
		if err != nil {
			telemetry.Activations.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("bulk create tasks: %w", err)
		}
		if inserted != int64(len(tasks)) {
			telemetry.Activations.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("bulk create tasks: inserted %d of %d", inserted, len(tasks))
		}
	}

	project.MarkActive()
	if err := projects.Update(ctx, project); err != nil {
		telemetry.Activations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("update project: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		telemetry.Activations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	telemetry.Activations.WithLabelValues("ok").Inc()
	telemetry.ActivationTasks.Add(float64(len(tasks)))

	logger.Info("project activated", "tasks_created", len(tasks))

	e.publishEvents(ctx, project.ID, tasks)

	return &Result{Project: project, Tasks: tasks}, nil
}

// planTasks раскладывает позиции заказа в tasks входных шагов.
//
// Для каждой product line берётся (или создаётся) снапшот изделия,
// затем для каждого его рецепта — зафиксированный снапшот рецепта
// по ID из снапшота изделия. Для каждой recipe line снапшот рецепта
// берётся напрямую.
func (e *Engine) planTasks(ctx context.Context, project *domain.Project) ([]domain.Task, error) {
	now := time.Now()
	var tasks []domain.Task

	for _, line := range project.ProductLines {
		productSnap, err := e.snapshots.GetOrCreateProductSnapshot(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("snapshot product %s: %w", line.ProductID, err)
		}

		for _, entry := range productSnap.Recipes {
			recipeSnap, err := e.recipeSnaps.GetByID(ctx, entry.RecipeSnapshotID)
			if err != nil {
				return nil, fmt.Errorf("get recipe snapshot %s: %w", entry.RecipeSnapshotID, err)
			}

			total := line.TargetQuantity * entry.Quantity
			batch, err := buildTasks(project.ID, recipeSnap, &productSnap.ID, total, now)
			if err != nil {
				return nil, err
			}
			if batch == nil {
				e.logger.Warn("recipe has no entry step, skipping",
					"recipe_snapshot_id", recipeSnap.ID, "recipe_id", recipeSnap.RecipeID)
				continue
			}
			tasks = append(tasks, batch...)
		}
	}

	for _, line := range project.RecipeLines {
		recipeSnap, err := e.snapshots.GetOrCreateRecipeSnapshot(ctx, line.RecipeID)
		if err != nil {
			return nil, fmt.Errorf("snapshot recipe %s: %w", line.RecipeID, err)
		}

		batch, err := buildTasks(project.ID, recipeSnap, nil, line.TargetQuantity, now)
		if err != nil {
			return nil, err
		}
		if batch == nil {
			e.logger.Warn("recipe has no entry step, skipping",
				"recipe_snapshot_id", recipeSnap.ID, "recipe_id", recipeSnap.RecipeID)
			continue
		}
		tasks = append(tasks, batch...)
	}

	return tasks, nil
}

// buildTasks создаёт tasks входного шага рецепта, по одному на
// каждое исполнение 1..totalExecutions.
//
// Возвращает nil без ошибки, если у рецепта нет входного шага
// (order = 1) или totalExecutions неположителен — такая позиция
// пропускается. Входной шаг без типа оборудования — ошибка: task
// нельзя маршрутизировать, активация целиком отклоняется.
func buildTasks(projectID uuid.UUID, snap *domain.RecipeSnapshot, productSnapshotID *uuid.UUID, totalExecutions int, now time.Time) ([]domain.Task, error) {
	if totalExecutions <= 0 {
		return nil, nil
	}

	entry := domain.EntryStep(snap.Steps)
	if entry == nil {
		return nil, nil
	}
	if entry.DeviceTypeID == uuid.Nil {
		return nil, fmt.Errorf("%w: recipe snapshot %s, step %s",
			ErrMissingDeviceType, snap.ID, entry.ID)
	}

	isLast := entry.Order == domain.MaxOrder(snap.Steps)

	tasks := make([]domain.Task, 0, totalExecutions)
	for n := 1; n <= totalExecutions; n++ {
		tasks = append(tasks, domain.Task{
			ID:                uuid.New(),
			ProjectID:         projectID,
			RecipeSnapshotID:  snap.ID,
			ProductSnapshotID: productSnapshotID,
			StepID:            entry.ID,
			StepName:          entry.Name,
			StepOrder:         entry.Order,
			IsLastStep:        isLast,
			DeviceTypeID:      entry.DeviceTypeID,
			ExecutionNumber:   n,
			TotalExecutions:   totalExecutions,
			Status:            domain.TaskStatusPending,
			CreatedAt:         now,
		})
	}

	return tasks, nil
}

// publishEvents публикует события об активации. Выполняется после
// коммита: ошибки только логируются.
func (e *Engine) publishEvents(ctx context.Context, projectID uuid.UUID, tasks []domain.Task) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.PublishProjectActivated(ctx, projectID, len(tasks)); err != nil {
		e.logger.Warn("publish project.activated failed",
			"project_id", projectID, "error", err)
	}

	for _, task := range tasks {
		err := e.publisher.PublishTaskCreated(ctx, mq.TaskCreatedPayload{
			TaskID:           task.ID,
			ProjectID:        task.ProjectID,
			RecipeSnapshotID: task.RecipeSnapshotID,
			StepID:           task.StepID,
			DeviceTypeID:     task.DeviceTypeID,
			ExecutionNumber:  task.ExecutionNumber,
			TotalExecutions:  task.TotalExecutions,
		})
		if err != nil {
			telemetry.WithTaskID(e.logger, task.ID.String()).
				Warn("publish task.created failed", "error", err)
			return
		}
	}
}
