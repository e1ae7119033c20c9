package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Fabrica/internal/domain"
)

// Recipe DTOs

// CreateRecipeRequest — запрос на создание рецепта.
type CreateRecipeRequest struct {
	Name      string               `json:"name"`
	Steps     []domain.RecipeStep  `json:"steps"`
	Materials []domain.MaterialRef `json:"materials,omitempty"`
}

// UpdateRecipeRequest — запрос на обновление рецепта.
type UpdateRecipeRequest struct {
	Name      *string               `json:"name,omitempty"`
	Steps     *[]domain.RecipeStep  `json:"steps,omitempty"`
	Materials *[]domain.MaterialRef `json:"materials,omitempty"`
}

// ValidateStepsRequest — запрос на валидацию шагов без сохранения.
type ValidateStepsRequest struct {
	Steps []domain.RecipeStep `json:"steps"`
}

// ValidateStepsResponse — результат валидации шагов.
type ValidateStepsResponse struct {
	DurationMin int `json:"duration_min"`
}

// RecipeResponse — ответ с рецептом.
type RecipeResponse struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Version     int                  `json:"version"`
	Steps       []domain.RecipeStep  `json:"steps"`
	DurationMin int                  `json:"duration_min"`
	Materials   []domain.MaterialRef `json:"materials,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// RecipeFromDomain конвертирует domain.Recipe в RecipeResponse.
func RecipeFromDomain(r domain.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Version:     r.Version,
		Steps:       r.Steps,
		DurationMin: r.DurationMin,
		Materials:   r.Materials,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// RecipeSnapshotResponse — ответ со снапшотом рецепта.
type RecipeSnapshotResponse struct {
	ID            uuid.UUID            `json:"id"`
	RecipeID      uuid.UUID            `json:"recipe_id"`
	Version       int                  `json:"version"`
	RecipeVersion int                  `json:"recipe_version"`
	Name          string               `json:"name"`
	Steps         []domain.RecipeStep  `json:"steps"`
	DurationMin   int                  `json:"duration_min"`
	Materials     []domain.MaterialRef `json:"materials,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// RecipeSnapshotFromDomain конвертирует domain.RecipeSnapshot в ответ.
func RecipeSnapshotFromDomain(s domain.RecipeSnapshot) RecipeSnapshotResponse {
	return RecipeSnapshotResponse{
		ID:            s.ID,
		RecipeID:      s.RecipeID,
		Version:       s.Version,
		RecipeVersion: s.RecipeVersion,
		Name:          s.Name,
		Steps:         s.Steps,
		DurationMin:   s.DurationMin,
		Materials:     s.Materials,
		CreatedAt:     s.CreatedAt,
	}
}

// Product DTOs

// CreateProductRequest — запрос на создание изделия.
type CreateProductRequest struct {
	DesignNumber string               `json:"design_number"`
	Name         string               `json:"name,omitempty"`
	Recipes      []domain.RecipeEntry `json:"recipes"`
}

// UpdateProductRequest — запрос на обновление изделия.
type UpdateProductRequest struct {
	DesignNumber *string               `json:"design_number,omitempty"`
	Name         *string               `json:"name,omitempty"`
	Recipes      *[]domain.RecipeEntry `json:"recipes,omitempty"`
}

// ProductResponse — ответ с изделием.
type ProductResponse struct {
	ID           uuid.UUID            `json:"id"`
	DesignNumber string               `json:"design_number"`
	Name         string               `json:"name,omitempty"`
	Recipes      []domain.RecipeEntry `json:"recipes"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ProductFromDomain конвертирует domain.Product в ProductResponse.
func ProductFromDomain(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		DesignNumber: p.DesignNumber,
		Name:         p.Name,
		Recipes:      p.Recipes,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ProductSnapshotResponse — ответ со снапшотом изделия.
type ProductSnapshotResponse struct {
	ID           uuid.UUID                    `json:"id"`
	ProductID    uuid.UUID                    `json:"product_id"`
	Version      int                          `json:"version"`
	DesignNumber string                       `json:"design_number"`
	Name         string                       `json:"name,omitempty"`
	Recipes      []domain.SnapshotRecipeEntry `json:"recipes"`
	CreatedAt    time.Time                    `json:"created_at"`
}

// ProductSnapshotFromDomain конвертирует domain.ProductSnapshot в ответ.
func ProductSnapshotFromDomain(s domain.ProductSnapshot) ProductSnapshotResponse {
	return ProductSnapshotResponse{
		ID:           s.ID,
		ProductID:    s.ProductID,
		Version:      s.Version,
		DesignNumber: s.DesignNumber,
		Name:         s.Name,
		Recipes:      s.Recipes,
		CreatedAt:    s.CreatedAt,
	}
}

// Project DTOs

// ProductLineRequest — позиция заказа по изделию.
type ProductLineRequest struct {
	ProductID      uuid.UUID `json:"product_id"`
	TargetQuantity int       `json:"target_quantity"`
}

// RecipeLineRequest — позиция заказа по отдельному рецепту.
type RecipeLineRequest struct {
	RecipeID       uuid.UUID `json:"recipe_id"`
	TargetQuantity int       `json:"target_quantity"`
}

// CreateProjectRequest — запрос на создание заказа.
type CreateProjectRequest struct {
	Name         string               `json:"name"`
	ProductLines []ProductLineRequest `json:"product_lines,omitempty"`
	RecipeLines  []RecipeLineRequest  `json:"recipe_lines,omitempty"`
}

// UpdateProjectRequest — запрос на обновление заказа.
// Позиции можно менять только до активации.
type UpdateProjectRequest struct {
	Name         *string               `json:"name,omitempty"`
	ProductLines *[]ProductLineRequest `json:"product_lines,omitempty"`
	RecipeLines  *[]RecipeLineRequest  `json:"recipe_lines,omitempty"`
}

// ProjectResponse — ответ с заказом.
type ProjectResponse struct {
	ID           uuid.UUID            `json:"id"`
	Name         string               `json:"name"`
	Status       string               `json:"status"`
	ProductLines []domain.ProductLine `json:"product_lines,omitempty"`
	RecipeLines  []domain.RecipeLine  `json:"recipe_lines,omitempty"`
	ActivatedAt  *time.Time           `json:"activated_at,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ProjectFromDomain конвертирует domain.Project в ProjectResponse.
func ProjectFromDomain(p domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:           p.ID,
		Name:         p.Name,
		Status:       string(p.Status),
		ProductLines: p.ProductLines,
		RecipeLines:  p.RecipeLines,
		ActivatedAt:  p.ActivatedAt,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ActivationResponse — результат активации заказа.
type ActivationResponse struct {
	Project      ProjectResponse `json:"project"`
	TasksCreated int             `json:"tasks_created"`
}

// Task DTOs

// TaskResponse — ответ с task.
type TaskResponse struct {
	ID                uuid.UUID  `json:"id"`
	ProjectID         uuid.UUID  `json:"project_id"`
	RecipeSnapshotID  uuid.UUID  `json:"recipe_snapshot_id"`
	ProductSnapshotID *uuid.UUID `json:"product_snapshot_id,omitempty"`
	StepID            string     `json:"step_id"`
	StepName          string     `json:"step_name,omitempty"`
	StepOrder         int        `json:"step_order"`
	IsLastStep        bool       `json:"is_last_step"`
	DeviceTypeID      uuid.UUID  `json:"device_type_id"`
	ExecutionNumber   int        `json:"execution_number"`
	TotalExecutions   int        `json:"total_executions"`
	Status            string     `json:"status"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
	FinishedAt        *time.Time `json:"finished_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// TaskFromDomain конвертирует domain.Task в TaskResponse.
func TaskFromDomain(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:                t.ID,
		ProjectID:         t.ProjectID,
		RecipeSnapshotID:  t.RecipeSnapshotID,
		ProductSnapshotID: t.ProductSnapshotID,
		StepID:            t.StepID,
		StepName:          t.StepName,
		StepOrder:         t.StepOrder,
		IsLastStep:        t.IsLastStep,
		DeviceTypeID:      t.DeviceTypeID,
		ExecutionNumber:   t.ExecutionNumber,
		TotalExecutions:   t.TotalExecutions,
		Status:            string(t.Status),
		StartedAt:         t.StartedAt,
		FinishedAt:        t.FinishedAt,
		CreatedAt:         t.CreatedAt,
	}
}
