package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Recipes
	mux.Handle("GET /api/v1/recipes", chain(http.HandlerFunc(h.ListRecipes)))
	mux.Handle("POST /api/v1/recipes", chain(http.HandlerFunc(h.CreateRecipe)))
	mux.Handle("POST /api/v1/recipes/validate", chain(http.HandlerFunc(h.ValidateRecipe)))
	mux.Handle("GET /api/v1/recipes/{id}", chain(http.HandlerFunc(h.GetRecipe)))
	mux.Handle("PUT /api/v1/recipes/{id}", chain(http.HandlerFunc(h.UpdateRecipe)))
	mux.Handle("DELETE /api/v1/recipes/{id}", chain(http.HandlerFunc(h.DeleteRecipe)))

	// Recipe snapshots
	mux.Handle("GET /api/v1/recipes/{id}/snapshots", chain(http.HandlerFunc(h.ListRecipeSnapshots)))
	mux.Handle("POST /api/v1/recipes/{id}/snapshots", chain(http.HandlerFunc(h.SnapshotRecipe)))

	// Products
	mux.Handle("GET /api/v1/products", chain(http.HandlerFunc(h.ListProducts)))
	mux.Handle("POST /api/v1/products", chain(http.HandlerFunc(h.CreateProduct)))
	mux.Handle("GET /api/v1/products/{id}", chain(http.HandlerFunc(h.GetProduct)))
	mux.Handle("PUT /api/v1/products/{id}", chain(http.HandlerFunc(h.UpdateProduct)))
	mux.Handle("DELETE /api/v1/products/{id}", chain(http.HandlerFunc(h.DeleteProduct)))

	// Product snapshots
	mux.Handle("GET /api/v1/products/{id}/snapshots", chain(http.HandlerFunc(h.ListProductSnapshots)))
	mux.Handle("POST /api/v1/products/{id}/snapshots", chain(http.HandlerFunc(h.SnapshotProduct)))

	// Projects
	mux.Handle("GET /api/v1/projects", chain(http.HandlerFunc(h.ListProjects)))
	mux.Handle("POST /api/v1/projects", chain(http.HandlerFunc(h.CreateProject)))
	mux.Handle("GET /api/v1/projects/{id}", chain(http.HandlerFunc(h.GetProject)))
	mux.Handle("PUT /api/v1/projects/{id}", chain(http.HandlerFunc(h.UpdateProject)))
	mux.Handle("DELETE /api/v1/projects/{id}", chain(http.HandlerFunc(h.DeleteProject)))
	mux.Handle("POST /api/v1/projects/{id}/activate", chain(http.HandlerFunc(h.ActivateProject)))
	mux.Handle("POST /api/v1/projects/{id}/cancel", chain(http.HandlerFunc(h.CancelProject)))
	mux.Handle("GET /api/v1/projects/{id}/tasks", chain(http.HandlerFunc(h.ListProjectTasks)))
}
