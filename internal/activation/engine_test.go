package activation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/Fabrica/internal/domain"
)

// fakeSnapshots — in-memory провайдер снапшотов.
type fakeSnapshots struct {
	recipes  map[uuid.UUID]*domain.RecipeSnapshot  // по recipe ID
	products map[uuid.UUID]*domain.ProductSnapshot // по product ID
}

func (f *fakeSnapshots) GetOrCreateRecipeSnapshot(_ context.Context, recipeID uuid.UUID) (*domain.RecipeSnapshot, error) {
	snap, ok := f.recipes[recipeID]
	if !ok {
		return nil, fmt.Errorf("no recipe %s", recipeID)
	}
	return snap, nil
}

func (f *fakeSnapshots) GetOrCreateProductSnapshot(_ context.Context, productID uuid.UUID) (*domain.ProductSnapshot, error) {
	snap, ok := f.products[productID]
	if !ok {
		return nil, fmt.Errorf("no product %s", productID)
	}
	return snap, nil
}

// fakeSnapReader — in-memory чтение снапшотов рецептов по ID.
type fakeSnapReader struct {
	byID map[uuid.UUID]*domain.RecipeSnapshot
}

func (f *fakeSnapReader) GetByID(_ context.Context, id uuid.UUID) (*domain.RecipeSnapshot, error) {
	snap, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("no recipe snapshot %s", id)
	}
	return snap, nil
}

type fixture struct {
	snapshots *fakeSnapshots
	reader    *fakeSnapReader
}

func newFixture() *fixture {
	return &fixture{
		snapshots: &fakeSnapshots{
			recipes:  make(map[uuid.UUID]*domain.RecipeSnapshot),
			products: make(map[uuid.UUID]*domain.ProductSnapshot),
		},
		reader: &fakeSnapReader{byID: make(map[uuid.UUID]*domain.RecipeSnapshot)},
	}
}

func (f *fixture) engine() *Engine {
	return New(Config{
		Snapshots:   f.snapshots,
		RecipeSnaps: f.reader,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// addRecipe регистрирует снапшот рецепта с указанными шагами
// и возвращает его.
func (f *fixture) addRecipe(steps ...domain.RecipeStep) *domain.RecipeSnapshot {
	snap := &domain.RecipeSnapshot{
		ID:       uuid.New(),
		RecipeID: uuid.New(),
		Version:  1,
		Name:     "recipe",
		Steps:    steps,
	}
	f.snapshots.recipes[snap.RecipeID] = snap
	f.reader.byID[snap.ID] = snap
	return snap
}

// addProduct регистрирует снапшот изделия, ссылающийся на указанные
// снапшоты рецептов с их количествами.
func (f *fixture) addProduct(entries ...domain.SnapshotRecipeEntry) *domain.ProductSnapshot {
	snap := &domain.ProductSnapshot{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Version:   1,
		Name:      "product",
		Recipes:   entries,
	}
	f.snapshots.products[snap.ProductID] = snap
	return snap
}

func step(order int) domain.RecipeStep {
	return domain.RecipeStep{
		ID:           fmt.Sprintf("s%d", order),
		Order:        order,
		Name:         fmt.Sprintf("step %d", order),
		DurationMin:  10,
		DeviceTypeID: uuid.New(),
	}
}

func TestPlanTasks_ProductLineFanOut(t *testing.T) {
	f := newFixture()
	recipe := f.addRecipe(step(1), step(2), step(3))
	product := f.addProduct(domain.SnapshotRecipeEntry{
		RecipeSnapshotID: recipe.ID,
		RecipeID:         recipe.RecipeID,
		Quantity:         2,
	})

	project := &domain.Project{
		ID:     uuid.New(),
		Status: domain.ProjectStatusPlanning,
		ProductLines: []domain.ProductLine{
			{ProductID: product.ProductID, TargetQuantity: 3},
		},
	}

	tasks, err := f.engine().planTasks(context.Background(), project)
	if err != nil {
		t.Fatalf("planTasks: %v", err)
	}

	// 3 изделия × 2 исполнения рецепта = 6 tasks
	if len(tasks) != 6 {
		t.Fatalf("len(tasks) = %d, want 6", len(tasks))
	}

	seen := make(map[int]bool)
	for _, task := range tasks {
		if task.ProjectID != project.ID {
			t.Errorf("ProjectID = %s, want %s", task.ProjectID, project.ID)
		}
		if task.RecipeSnapshotID != recipe.ID {
			t.Errorf("RecipeSnapshotID = %s, want %s", task.RecipeSnapshotID, recipe.ID)
		}
		if task.ProductSnapshotID == nil || *task.ProductSnapshotID != product.ID {
			t.Errorf("ProductSnapshotID = %v, want %s", task.ProductSnapshotID, product.ID)
		}
		if task.StepID != "s1" || task.StepOrder != 1 {
			t.Errorf("step = %s order %d, want s1 order 1", task.StepID, task.StepOrder)
		}
		if task.IsLastStep {
			t.Error("IsLastStep = true for entry step of a 3-step recipe")
		}
		if task.TotalExecutions != 6 {
			t.Errorf("TotalExecutions = %d, want 6", task.TotalExecutions)
		}
		if task.Status != domain.TaskStatusPending {
			t.Errorf("Status = %s, want PENDING", task.Status)
		}
		if seen[task.ExecutionNumber] {
			t.Errorf("duplicate ExecutionNumber %d", task.ExecutionNumber)
		}
		seen[task.ExecutionNumber] = true
	}
	for n := 1; n <= 6; n++ {
		if !seen[n] {
			t.Errorf("missing ExecutionNumber %d", n)
		}
	}
}

func TestPlanTasks_RecipeLineSingleStep(t *testing.T) {
	f := newFixture()
	recipe := f.addRecipe(step(1))

	project := &domain.Project{
		ID:     uuid.New(),
		Status: domain.ProjectStatusPlanning,
		RecipeLines: []domain.RecipeLine{
			{RecipeID: recipe.RecipeID, TargetQuantity: 4},
		},
	}

	tasks, err := f.engine().planTasks(context.Background(), project)
	if err != nil {
		t.Fatalf("planTasks: %v", err)
	}

	if len(tasks) != 4 {
		t.Fatalf("len(tasks) = %d, want 4", len(tasks))
	}
	for _, task := range tasks {
		if task.ProductSnapshotID != nil {
			t.Errorf("ProductSnapshotID = %v, want nil for recipe line", task.ProductSnapshotID)
		}
		// Единственный шаг рецепта одновременно входной и последний.
		if !task.IsLastStep {
			t.Error("IsLastStep = false for single-step recipe")
		}
		if task.TotalExecutions != 4 {
			t.Errorf("TotalExecutions = %d, want 4", task.TotalExecutions)
		}
	}
}

func TestPlanTasks_MixedLines(t *testing.T) {
	f := newFixture()
	productRecipe := f.addRecipe(step(1), step(2))
	standalone := f.addRecipe(step(1))
	product := f.addProduct(domain.SnapshotRecipeEntry{
		RecipeSnapshotID: productRecipe.ID,
		RecipeID:         productRecipe.RecipeID,
		Quantity:         3,
	})

	project := &domain.Project{
		ID:     uuid.New(),
		Status: domain.ProjectStatusPlanning,
		ProductLines: []domain.ProductLine{
			{ProductID: product.ProductID, TargetQuantity: 2},
		},
		RecipeLines: []domain.RecipeLine{
			{RecipeID: standalone.RecipeID, TargetQuantity: 5},
		},
	}

	tasks, err := f.engine().planTasks(context.Background(), project)
	if err != nil {
		t.Fatalf("planTasks: %v", err)
	}

	// 2×3 из product line + 5 из recipe line
	if len(tasks) != 11 {
		t.Fatalf("len(tasks) = %d, want 11", len(tasks))
	}

	perSnap := make(map[uuid.UUID]int)
	for _, task := range tasks {
		perSnap[task.RecipeSnapshotID]++
	}
	if perSnap[productRecipe.ID] != 6 {
		t.Errorf("tasks for product recipe = %d, want 6", perSnap[productRecipe.ID])
	}
	if perSnap[standalone.ID] != 5 {
		t.Errorf("tasks for standalone recipe = %d, want 5", perSnap[standalone.ID])
	}
}

func TestPlanTasks_MissingEntryStepSkipsRecipe(t *testing.T) {
	f := newFixture()
	// Рецепт без шага order=1: развернуть нечего, позиция пропускается.
	broken := f.addRecipe(step(2), step(3))
	good := f.addRecipe(step(1))

	project := &domain.Project{
		ID:     uuid.New(),
		Status: domain.ProjectStatusPlanning,
		RecipeLines: []domain.RecipeLine{
			{RecipeID: broken.RecipeID, TargetQuantity: 3},
			{RecipeID: good.RecipeID, TargetQuantity: 2},
		},
	}

	tasks, err := f.engine().planTasks(context.Background(), project)
	if err != nil {
		t.Fatalf("planTasks: %v", err)
	}

	if len(tasks) != 2 {
		t.Fatalf("len(tasks) = %d, want 2", len(tasks))
	}
	for _, task := range tasks {
		if task.RecipeSnapshotID != good.ID {
			t.Errorf("task for snapshot %s, want only %s", task.RecipeSnapshotID, good.ID)
		}
	}
}

func TestPlanTasks_MissingDeviceTypeFailsWholeActivation(t *testing.T) {
	f := newFixture()
	good := f.addRecipe(step(1))

	noDevice := step(1)
	noDevice.DeviceTypeID = uuid.Nil
	bad := f.addRecipe(noDevice)

	project := &domain.Project{
		ID:     uuid.New(),
		Status: domain.ProjectStatusPlanning,
		RecipeLines: []domain.RecipeLine{
			{RecipeID: good.RecipeID, TargetQuantity: 2},
			{RecipeID: bad.RecipeID, TargetQuantity: 2},
		},
	}

	tasks, err := f.engine().planTasks(context.Background(), project)
	if !errors.Is(err, ErrMissingDeviceType) {
		t.Fatalf("err = %v, want ErrMissingDeviceType", err)
	}
	if tasks != nil {
		t.Errorf("tasks = %d, want none on failed planning", len(tasks))
	}
}

func TestPlanTasks_ZeroTargetQuantity(t *testing.T) {
	f := newFixture()
	recipe := f.addRecipe(step(1))

	project := &domain.Project{
		ID:     uuid.New(),
		Status: domain.ProjectStatusPlanning,
		RecipeLines: []domain.RecipeLine{
			{RecipeID: recipe.RecipeID, TargetQuantity: 0},
		},
	}

	tasks, err := f.engine().planTasks(context.Background(), project)
	if err != nil {
		t.Fatalf("planTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("len(tasks) = %d, want 0", len(tasks))
	}
}

func TestPlanTasks_EmptyProject(t *testing.T) {
	f := newFixture()

	project := &domain.Project{
		ID:     uuid.New(),
		Status: domain.ProjectStatusPlanning,
	}

	tasks, err := f.engine().planTasks(context.Background(), project)
	if err != nil {
		t.Fatalf("planTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("len(tasks) = %d, want 0", len(tasks))
	}
}

func TestPlanTasks_UnknownProduct(t *testing.T) {
	f := newFixture()

	project := &domain.Project{
		ID:     uuid.New(),
		Status: domain.ProjectStatusPlanning,
		ProductLines: []domain.ProductLine{
			{ProductID: uuid.New(), TargetQuantity: 1},
		},
	}

	if _, err := f.engine().planTasks(context.Background(), project); err == nil {
		t.Fatal("expected error for unknown product")
	}
}
