package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task — одна отслеживаемая единица работы: одно исполнение
// одного шага рецепта.
//
// Tasks создаются пачкой движком активации при переходе заказа
// PLANNING → ACTIVE (только для входных шагов рецептов) и дальше
// мутируются движком продвижения по шагам.
type Task struct {
	// ID — уникальный идентификатор task.
	ID uuid.UUID `json:"id"`

	// ProjectID — ссылка на родительский заказ.
	ProjectID uuid.UUID `json:"project_id"`

	// RecipeSnapshotID — зафиксированный снапшот рецепта,
	// по которому выполняется работа.
	RecipeSnapshotID uuid.UUID `json:"recipe_snapshot_id"`

	// ProductSnapshotID — снапшот изделия, если task создан из
	// product line. Nil для standalone recipe lines.
	ProductSnapshotID *uuid.UUID `json:"product_snapshot_id,omitempty"`

	// StepID — ID шага из снапшота рецепта.
	StepID string `json:"step_id"`

	// StepName — имя шага (копия для удобства).
	StepName string `json:"step_name,omitempty"`

	// StepOrder — порядковый номер шага в рецепте.
	StepOrder int `json:"step_order"`

	// IsLastStep — true, если это последний шаг рецепта
	// (StepOrder равен максимальному Order снапшота).
	IsLastStep bool `json:"is_last_step"`

	// DeviceTypeID — тип оборудования для маршрутизации task.
	DeviceTypeID uuid.UUID `json:"device_type_id"`

	// ExecutionNumber — номер исполнения рецепта, 1..TotalExecutions.
	// Уникален в рамках одного разворачивания (заказ, рецепт).
	ExecutionNumber int `json:"execution_number"`

	// TotalExecutions — общее количество исполнений рецепта
	// в рамках данной позиции заказа.
	TotalExecutions int `json:"total_executions"`

	// Status — текущий статус task.
	Status TaskStatus `json:"status"`

	// StartedAt — время начала работы над task.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время создания task.
	CreatedAt time.Time `json:"created_at"`
}

// IsFinished возвращает true, если task завершён.
func (t *Task) IsFinished() bool {
	return t.Status.IsTerminal()
}

// MarkInProgress переводит task в статус IN_PROGRESS.
func (t *Task) MarkInProgress() {
	now := time.Now()
	t.Status = TaskStatusInProgress
	t.StartedAt = &now
}

// MarkCompleted переводит task в статус COMPLETED.
func (t *Task) MarkCompleted() {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.FinishedAt = &now
}

// MarkCancelled переводит task в статус CANCELLED.
func (t *Task) MarkCancelled() {
	now := time.Now()
	t.Status = TaskStatusCancelled
	t.FinishedAt = &now
}
