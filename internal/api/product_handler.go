package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shaiso/Fabrica/internal/domain"
	"github.com/shaiso/Fabrica/internal/repo"
	"github.com/shaiso/Fabrica/internal/snapshot"
)

// ListProducts возвращает список всех изделий.
// GET /api/v1/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productRepo.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ProductResponse, len(products))
	for i, p := range products {
		result[i] = ProductFromDomain(p)
	}

	List(w, result, len(result))
}

// CreateProduct создаёт новое изделие.
// POST /api/v1/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.DesignNumber == "" {
		BadRequest(w, "design_number is required")
		return
	}

	if h.checkRecipeEntries(w, r, req.Recipes) {
		return
	}

	product := &domain.Product{
		ID:           uuid.New(),
		DesignNumber: req.DesignNumber,
		Name:         req.Name,
		Recipes:      req.Recipes,
	}

	if err := h.productRepo.Create(r.Context(), product); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			Conflict(w, "design_number already in use")
			return
		}
		HandleRepoError(w, h.logger, err, "")
		return
	}

	Created(w, ProductFromDomain(*product))
}

// GetProduct возвращает изделие по ID.
// GET /api/v1/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid product id")
		return
	}

	product, err := h.productRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "product not found") {
		return
	}

	Success(w, ProductFromDomain(*product))
}

// UpdateProduct обновляет изделие.
// PUT /api/v1/products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid product id")
		return
	}

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	product, err := h.productRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "product not found") {
		return
	}

	if req.DesignNumber != nil {
		product.DesignNumber = *req.DesignNumber
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Recipes != nil {
		if h.checkRecipeEntries(w, r, *req.Recipes) {
			return
		}
		product.Recipes = *req.Recipes
	}

	if err := h.productRepo.Update(r.Context(), product); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			Conflict(w, "design_number already in use")
			return
		}
		HandleRepoError(w, h.logger, err, "product not found")
		return
	}

	Success(w, ProductFromDomain(*product))
}

// DeleteProduct удаляет изделие. Снапшоты остаются.
// DELETE /api/v1/products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid product id")
		return
	}

	if err := h.productRepo.Delete(r.Context(), id); err != nil {
		HandleRepoError(w, h.logger, err, "product not found")
		return
	}

	NoContent(w)
}

// ListProductSnapshots возвращает снапшоты изделия.
// GET /api/v1/products/{id}/snapshots
func (h *Handler) ListProductSnapshots(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid product id")
		return
	}

	// Проверяем, что изделие существует
	_, err = h.productRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "product not found") {
		return
	}

	snaps, err := h.productSnapRepo.ListByProductID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ProductSnapshotResponse, len(snaps))
	for i, s := range snaps {
		result[i] = ProductSnapshotFromDomain(s)
	}

	List(w, result, len(result))
}

// SnapshotProduct возвращает актуальный снапшот изделия, создавая
// новую версию при необходимости.
// POST /api/v1/products/{id}/snapshots
func (h *Handler) SnapshotProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid product id")
		return
	}

	snap, err := h.snapshots.GetOrCreateProductSnapshot(r.Context(), id)
	if err != nil {
		if errors.Is(err, snapshot.ErrProductNotFound) {
			NotFound(w, "product not found")
			return
		}
		if errors.Is(err, snapshot.ErrRecipeNotFound) {
			// Изделие ссылается на удалённый рецепт
			InvalidState(w, err.Error())
			return
		}
		if errors.Is(err, snapshot.ErrVersionConflict) {
			Conflict(w, err.Error())
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Success(w, ProductSnapshotFromDomain(*snap))
}

// checkRecipeEntries проверяет вхождения рецептов изделия: рецепты
// должны существовать, количества — быть положительными.
// Возвращает true, если ответ уже отправлен.
func (h *Handler) checkRecipeEntries(w http.ResponseWriter, r *http.Request, entries []domain.RecipeEntry) bool {
	for _, entry := range entries {
		if entry.Quantity <= 0 {
			BadRequest(w, "recipe quantity must be positive")
			return true
		}
		if _, err := h.recipeRepo.GetByID(r.Context(), entry.RecipeID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				BadRequest(w, "unknown recipe "+entry.RecipeID.String())
				return true
			}
			InternalError(w, h.logger, err)
			return true
		}
	}
	return false
}
