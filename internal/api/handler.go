package api

import (
	"log/slog"

	"github.com/shaiso/Fabrica/internal/activation"
	"github.com/shaiso/Fabrica/internal/repo"
	"github.com/shaiso/Fabrica/internal/snapshot"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	recipeRepo      *repo.RecipeRepo
	productRepo     *repo.ProductRepo
	projectRepo     *repo.ProjectRepo
	taskRepo        *repo.TaskRepo
	recipeSnapRepo  *repo.RecipeSnapshotRepo
	productSnapRepo *repo.ProductSnapshotRepo
	snapshots       *snapshot.Store
	activator       *activation.Engine
	logger          *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	RecipeRepo      *repo.RecipeRepo
	ProductRepo     *repo.ProductRepo
	ProjectRepo     *repo.ProjectRepo
	TaskRepo        *repo.TaskRepo
	RecipeSnapRepo  *repo.RecipeSnapshotRepo
	ProductSnapRepo *repo.ProductSnapshotRepo
	Snapshots       *snapshot.Store
	Activator       *activation.Engine
	Logger          *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		recipeRepo:      cfg.RecipeRepo,
		productRepo:     cfg.ProductRepo,
		projectRepo:     cfg.ProjectRepo,
		taskRepo:        cfg.TaskRepo,
		recipeSnapRepo:  cfg.RecipeSnapRepo,
		productSnapRepo: cfg.ProductSnapRepo,
		snapshots:       cfg.Snapshots,
		activator:       cfg.Activator,
		logger:          cfg.Logger,
	}
}
