package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shaiso/Fabrica/internal/domain"
	"github.com/shaiso/Fabrica/internal/engine"
	"github.com/shaiso/Fabrica/internal/snapshot"
)

// ListRecipes возвращает список всех рецептов.
// GET /api/v1/recipes
func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipeRepo.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RecipeResponse, len(recipes))
	for i, recipe := range recipes {
		result[i] = RecipeFromDomain(recipe)
	}

	List(w, result, len(result))
}

// CreateRecipe создаёт новый рецепт.
// POST /api/v1/recipes
func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req CreateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	duration, err := engine.ValidateSteps(req.Steps)
	if err != nil {
		ValidationFailed(w, err.Error())
		return
	}

	recipe := &domain.Recipe{
		ID:          uuid.New(),
		Name:        req.Name,
		Steps:       req.Steps,
		DurationMin: duration,
		Materials:   req.Materials,
	}

	if err := h.recipeRepo.Create(r.Context(), recipe); err != nil {
		HandleRepoError(w, h.logger, err, "")
		return
	}

	Created(w, RecipeFromDomain(*recipe))
}

// ValidateRecipe валидирует граф шагов без сохранения.
// POST /api/v1/recipes/validate
func (h *Handler) ValidateRecipe(w http.ResponseWriter, r *http.Request) {
	var req ValidateStepsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	duration, err := engine.ValidateSteps(req.Steps)
	if err != nil {
		ValidationFailed(w, err.Error())
		return
	}

	Success(w, ValidateStepsResponse{DurationMin: duration})
}

// GetRecipe возвращает рецепт по ID.
// GET /api/v1/recipes/{id}
func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid recipe id")
		return
	}

	recipe, err := h.recipeRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "recipe not found") {
		return
	}

	Success(w, RecipeFromDomain(*recipe))
}

// UpdateRecipe обновляет рецепт. Любое изменение шагов или
// материалов проходит валидацию и инкрементирует версию.
// PUT /api/v1/recipes/{id}
func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid recipe id")
		return
	}

	var req UpdateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	recipe, err := h.recipeRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "recipe not found") {
		return
	}

	if req.Name != nil {
		recipe.Name = *req.Name
	}
	if req.Steps != nil {
		recipe.Steps = *req.Steps
	}
	if req.Materials != nil {
		recipe.Materials = *req.Materials
	}

	duration, err := engine.ValidateSteps(recipe.Steps)
	if err != nil {
		ValidationFailed(w, err.Error())
		return
	}
	recipe.DurationMin = duration

	if err := h.recipeRepo.Update(r.Context(), recipe); err != nil {
		HandleRepoError(w, h.logger, err, "recipe not found")
		return
	}

	Success(w, RecipeFromDomain(*recipe))
}

// DeleteRecipe удаляет рецепт. Снапшоты при этом не удаляются:
// на них могут ссылаться активные работы.
// DELETE /api/v1/recipes/{id}
func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid recipe id")
		return
	}

	if err := h.recipeRepo.Delete(r.Context(), id); err != nil {
		HandleRepoError(w, h.logger, err, "recipe not found")
		return
	}

	NoContent(w)
}

// ListRecipeSnapshots возвращает снапшоты рецепта.
// GET /api/v1/recipes/{id}/snapshots
func (h *Handler) ListRecipeSnapshots(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid recipe id")
		return
	}

	// Проверяем, что рецепт существует
	_, err = h.recipeRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "recipe not found") {
		return
	}

	snaps, err := h.recipeSnapRepo.ListByRecipeID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RecipeSnapshotResponse, len(snaps))
	for i, s := range snaps {
		result[i] = RecipeSnapshotFromDomain(s)
	}

	List(w, result, len(result))
}

// SnapshotRecipe возвращает актуальный снапшот рецепта, создавая
// новую версию при необходимости.
// POST /api/v1/recipes/{id}/snapshots
func (h *Handler) SnapshotRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid recipe id")
		return
	}

	snap, err := h.snapshots.GetOrCreateRecipeSnapshot(r.Context(), id)
	if err != nil {
		if errors.Is(err, snapshot.ErrRecipeNotFound) {
			NotFound(w, "recipe not found")
			return
		}
		if errors.Is(err, snapshot.ErrVersionConflict) {
			Conflict(w, err.Error())
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Success(w, RecipeSnapshotFromDomain(*snap))
}
