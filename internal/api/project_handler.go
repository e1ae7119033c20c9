package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shaiso/Fabrica/internal/activation"
	"github.com/shaiso/Fabrica/internal/domain"
	"github.com/shaiso/Fabrica/internal/repo"
	"github.com/shaiso/Fabrica/internal/snapshot"
)

// ListProjects возвращает список всех заказов.
// GET /api/v1/projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectRepo.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		result[i] = ProjectFromDomain(p)
	}

	List(w, result, len(result))
}

// CreateProject создаёт новый заказ в статусе PLANNING.
// POST /api/v1/projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	productLines, recipeLines, ok := h.checkProjectLines(w, r, req.ProductLines, req.RecipeLines)
	if !ok {
		return
	}

	project := &domain.Project{
		ID:           uuid.New(),
		Name:         req.Name,
		Status:       domain.ProjectStatusPlanning,
		ProductLines: productLines,
		RecipeLines:  recipeLines,
	}

	if err := h.projectRepo.Create(r.Context(), project); err != nil {
		HandleRepoError(w, h.logger, err, "")
		return
	}

	Created(w, ProjectFromDomain(*project))
}

// GetProject возвращает заказ по ID.
// GET /api/v1/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid project id")
		return
	}

	project, err := h.projectRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "project not found") {
		return
	}

	Success(w, ProjectFromDomain(*project))
}

// UpdateProject обновляет заказ. Позиции можно менять только
// в статусе PLANNING.
// PUT /api/v1/projects/{id}
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid project id")
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	project, err := h.projectRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "project not found") {
		return
	}

	if req.Name != nil {
		project.Name = *req.Name
	}

	if req.ProductLines != nil || req.RecipeLines != nil {
		if project.Status != domain.ProjectStatusPlanning {
			InvalidState(w, "project lines can only be changed in PLANNING")
			return
		}

		if req.ProductLines != nil {
			lines, _, ok := h.checkProjectLines(w, r, *req.ProductLines, nil)
			if !ok {
				return
			}
			project.ProductLines = lines
		}
		if req.RecipeLines != nil {
			_, lines, ok := h.checkProjectLines(w, r, nil, *req.RecipeLines)
			if !ok {
				return
			}
			project.RecipeLines = lines
		}
	}

	if err := h.projectRepo.Update(r.Context(), project); err != nil {
		HandleRepoError(w, h.logger, err, "project not found")
		return
	}

	Success(w, ProjectFromDomain(*project))
}

// DeleteProject удаляет заказ. Активный заказ удалить нельзя —
// сначала его нужно отменить.
// DELETE /api/v1/projects/{id}
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid project id")
		return
	}

	project, err := h.projectRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "project not found") {
		return
	}

	if project.Status == domain.ProjectStatusActive {
		InvalidState(w, "active project cannot be deleted, cancel it first")
		return
	}

	if err := h.projectRepo.Delete(r.Context(), id); err != nil {
		HandleRepoError(w, h.logger, err, "project not found")
		return
	}

	NoContent(w)
}

// ActivateProject переводит заказ PLANNING → ACTIVE и разворачивает
// tasks входных шагов.
// POST /api/v1/projects/{id}/activate
func (h *Handler) ActivateProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid project id")
		return
	}

	result, err := h.activator.Activate(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, activation.ErrProjectNotFound):
			NotFound(w, "project not found")
		case errors.Is(err, activation.ErrProjectNotActivatable):
			InvalidState(w, err.Error())
		case errors.Is(err, activation.ErrMissingDeviceType):
			ValidationFailed(w, err.Error())
		case errors.Is(err, snapshot.ErrRecipeNotFound),
			errors.Is(err, snapshot.ErrProductNotFound):
			// Позиция заказа ссылается на удалённую сущность
			ValidationFailed(w, err.Error())
		default:
			InternalError(w, h.logger, err)
		}
		return
	}

	Success(w, ActivationResponse{
		Project:      ProjectFromDomain(*result.Project),
		TasksCreated: len(result.Tasks),
	})
}

// CancelProject отменяет заказ.
// POST /api/v1/projects/{id}/cancel
func (h *Handler) CancelProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid project id")
		return
	}

	project, err := h.projectRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "project not found") {
		return
	}

	if project.Status.IsTerminal() {
		InvalidState(w, "project is already finished")
		return
	}

	project.MarkCancelled()

	if err := h.projectRepo.Update(r.Context(), project); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, ProjectFromDomain(*project))
}

// ListProjectTasks возвращает tasks заказа.
// GET /api/v1/projects/{id}/tasks
func (h *Handler) ListProjectTasks(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid project id")
		return
	}

	// Проверяем, что заказ существует
	_, err = h.projectRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "project not found") {
		return
	}

	tasks, err := h.taskRepo.ListByProjectID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = TaskFromDomain(t)
	}

	List(w, result, len(result))
}

// checkProjectLines валидирует позиции заказа: количества
// положительные, сущности существуют. Возвращает доменные позиции
// и ok=false, если ответ уже отправлен.
func (h *Handler) checkProjectLines(w http.ResponseWriter, r *http.Request, productReqs []ProductLineRequest, recipeReqs []RecipeLineRequest) ([]domain.ProductLine, []domain.RecipeLine, bool) {
	productLines := make([]domain.ProductLine, 0, len(productReqs))
	for _, line := range productReqs {
		if line.TargetQuantity <= 0 {
			BadRequest(w, "target_quantity must be positive")
			return nil, nil, false
		}
		if _, err := h.productRepo.GetByID(r.Context(), line.ProductID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				BadRequest(w, "unknown product "+line.ProductID.String())
				return nil, nil, false
			}
			InternalError(w, h.logger, err)
			return nil, nil, false
		}
		productLines = append(productLines, domain.ProductLine{
			ProductID:      line.ProductID,
			TargetQuantity: line.TargetQuantity,
		})
	}

	recipeLines := make([]domain.RecipeLine, 0, len(recipeReqs))
	for _, line := range recipeReqs {
		if line.TargetQuantity <= 0 {
			BadRequest(w, "target_quantity must be positive")
			return nil, nil, false
		}
		if _, err := h.recipeRepo.GetByID(r.Context(), line.RecipeID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				BadRequest(w, "unknown recipe "+line.RecipeID.String())
				return nil, nil, false
			}
			InternalError(w, h.logger, err)
			return nil, nil, false
		}
		recipeLines = append(recipeLines, domain.RecipeLine{
			RecipeID:       line.RecipeID,
			TargetQuantity: line.TargetQuantity,
		})
	}

	return productLines, recipeLines, true
}
