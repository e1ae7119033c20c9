package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Fabrica/internal/domain"
	"github.com/shaiso/Fabrica/internal/repo"
)

// --- In-memory fakes ---

type fakeRecipes struct {
	items map[uuid.UUID]*domain.Recipe
}

func (f *fakeRecipes) GetByID(_ context.Context, id uuid.UUID) (*domain.Recipe, error) {
	recipe, ok := f.items[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return recipe, nil
}

type fakeProducts struct {
	items map[uuid.UUID]*domain.Product
}

func (f *fakeProducts) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := f.items[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return product, nil
}

type fakeRecipeSnaps struct {
	items []domain.RecipeSnapshot

	// conflicts — сколько ближайших Create завершить конфликтом,
	// имитируя проигрыш гонки за версию.
	conflicts int
	creates   int

	// onConflict вызывается при каждом сымитированном конфликте —
	// сюда тест подкладывает снапшот "победителя".
	onConflict func()
}

func (f *fakeRecipeSnaps) GetLatest(_ context.Context, recipeID uuid.UUID) (*domain.RecipeSnapshot, error) {
	var latest *domain.RecipeSnapshot
	for i := range f.items {
		snap := &f.items[i]
		if snap.RecipeID != recipeID {
			continue
		}
		if latest == nil || snap.Version > latest.Version {
			latest = snap
		}
	}
	if latest == nil {
		return nil, repo.ErrNotFound
	}
	return latest, nil
}

func (f *fakeRecipeSnaps) Create(_ context.Context, snap *domain.RecipeSnapshot) error {
	f.creates++
	if f.conflicts > 0 {
		f.conflicts--
		if f.onConflict != nil {
			f.onConflict()
		}
		return repo.ErrAlreadyExists
	}
	for i := range f.items {
		if f.items[i].RecipeID == snap.RecipeID && f.items[i].Version == snap.Version {
			return repo.ErrAlreadyExists
		}
	}
	snap.CreatedAt = time.Now()
	f.items = append(f.items, *snap)
	return nil
}

type fakeProductSnaps struct {
	items []domain.ProductSnapshot
}

func (f *fakeProductSnaps) GetLatest(_ context.Context, productID uuid.UUID) (*domain.ProductSnapshot, error) {
	var latest *domain.ProductSnapshot
	for i := range f.items {
		snap := &f.items[i]
		if snap.ProductID != productID {
			continue
		}
		if latest == nil || snap.Version > latest.Version {
			latest = snap
		}
	}
	if latest == nil {
		return nil, repo.ErrNotFound
	}
	return latest, nil
}

func (f *fakeProductSnaps) Create(_ context.Context, snap *domain.ProductSnapshot) error {
	for i := range f.items {
		if f.items[i].ProductID == snap.ProductID && f.items[i].Version == snap.Version {
			return repo.ErrAlreadyExists
		}
	}
	snap.CreatedAt = time.Now()
	f.items = append(f.items, *snap)
	return nil
}

// --- Fixture ---

type fixture struct {
	store        *Store
	recipes      *fakeRecipes
	products     *fakeProducts
	recipeSnaps  *fakeRecipeSnaps
	productSnaps *fakeProductSnaps
}

func newFixture() *fixture {
	recipes := &fakeRecipes{items: make(map[uuid.UUID]*domain.Recipe)}
	products := &fakeProducts{items: make(map[uuid.UUID]*domain.Product)}
	recipeSnaps := &fakeRecipeSnaps{}
	productSnaps := &fakeProductSnaps{}

	return &fixture{
		store: New(Config{
			Recipes:      recipes,
			Products:     products,
			RecipeSnaps:  recipeSnaps,
			ProductSnaps: productSnaps,
		}),
		recipes:      recipes,
		products:     products,
		recipeSnaps:  recipeSnaps,
		productSnaps: productSnaps,
	}
}

func (f *fixture) addRecipe() *domain.Recipe {
	recipe := &domain.Recipe{
		ID:      uuid.New(),
		Name:    "frame-assembly",
		Version: 1,
		Steps: []domain.RecipeStep{
			{ID: "cut", Order: 1, DurationMin: 30, DeviceTypeID: uuid.New()},
			{ID: "weld", Order: 2, DurationMin: 60, DeviceTypeID: uuid.New(), DependsOn: []string{"cut"}},
		},
		DurationMin: 90,
		UpdatedAt:   time.Now(),
	}
	f.recipes.items[recipe.ID] = recipe
	return recipe
}

// --- Recipe snapshot tests ---

func TestGetOrCreateRecipeSnapshot_CreatesVersionOne(t *testing.T) {
	f := newFixture()
	recipe := f.addRecipe()

	snap, err := f.store.GetOrCreateRecipeSnapshot(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Version != 1 {
		t.Errorf("expected version 1, got %d", snap.Version)
	}
	if snap.RecipeID != recipe.ID {
		t.Error("snapshot should reference the original recipe")
	}
	if len(snap.Steps) != len(recipe.Steps) {
		t.Errorf("expected %d steps copied, got %d", len(recipe.Steps), len(snap.Steps))
	}
	if snap.DurationMin != recipe.DurationMin {
		t.Errorf("expected duration %d, got %d", recipe.DurationMin, snap.DurationMin)
	}
}

func TestGetOrCreateRecipeSnapshot_CacheHit(t *testing.T) {
	f := newFixture()
	recipe := f.addRecipe()

	first, err := f.store.GetOrCreateRecipeSnapshot(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := f.store.GetOrCreateRecipeSnapshot(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Без изменений рецепта оба вызова возвращают один и тот же снапшот.
	if first.ID != second.ID {
		t.Errorf("expected same snapshot id, got %s and %s", first.ID, second.ID)
	}
	if second.Version != 1 {
		t.Errorf("expected version 1, got %d", second.Version)
	}
	if f.recipeSnaps.creates != 1 {
		t.Errorf("expected exactly 1 create, got %d", f.recipeSnaps.creates)
	}
}

func TestGetOrCreateRecipeSnapshot_NewVersionAfterEdit(t *testing.T) {
	f := newFixture()
	recipe := f.addRecipe()

	first, err := f.store.GetOrCreateRecipeSnapshot(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Правка рецепта сдвигает updated_at за created_at снапшота.
	recipe.Version++
	recipe.UpdatedAt = first.CreatedAt.Add(time.Second)

	second, err := f.store.GetOrCreateRecipeSnapshot(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.Version != first.Version+1 {
		t.Errorf("expected version %d, got %d", first.Version+1, second.Version)
	}
	if second.ID == first.ID {
		t.Error("edited recipe should produce a new snapshot")
	}
}

func TestGetOrCreateRecipeSnapshot_SnapshotIsIsolatedFromEdits(t *testing.T) {
	f := newFixture()
	recipe := f.addRecipe()

	snap, err := f.store.GetOrCreateRecipeSnapshot(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Мутация живого рецепта не должна отражаться в снапшоте.
	recipe.Steps[0].DurationMin = 999
	recipe.Steps[1].DependsOn[0] = "other"

	if snap.Steps[0].DurationMin == 999 {
		t.Error("snapshot steps should be value copies")
	}
	if snap.Steps[1].DependsOn[0] == "other" {
		t.Error("snapshot depends_on should be a deep copy")
	}
}

func TestGetOrCreateRecipeSnapshot_ConflictRereadsWinner(t *testing.T) {
	f := newFixture()
	recipe := f.addRecipe()

	// Первый Create проигрывает гонку; снапшот победителя появляется
	// ровно в момент конфликта, и повторное чтение возвращает его.
	winnerID := uuid.New()
	f.recipeSnaps.conflicts = 1
	f.recipeSnaps.onConflict = func() {
		f.recipeSnaps.items = append(f.recipeSnaps.items, domain.RecipeSnapshot{
			ID:        winnerID,
			RecipeID:  recipe.ID,
			Version:   1,
			CreatedAt: time.Now().Add(time.Second),
		})
	}

	snap, err := f.store.GetOrCreateRecipeSnapshot(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.ID != winnerID {
		t.Errorf("expected winner snapshot %s, got %s", winnerID, snap.ID)
	}
	if f.recipeSnaps.creates != 1 {
		t.Errorf("expected a single create attempt, got %d", f.recipeSnaps.creates)
	}
}

func TestGetOrCreateRecipeSnapshot_ConflictRetriesCreate(t *testing.T) {
	f := newFixture()
	recipe := f.addRecipe()

	// Конфликт без появившегося победителя: следующая попытка цикла
	// создаёт ту же версию заново.
	f.recipeSnaps.conflicts = 1

	snap, err := f.store.GetOrCreateRecipeSnapshot(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Version != 1 {
		t.Errorf("expected version 1, got %d", snap.Version)
	}
	if f.recipeSnaps.creates != 2 {
		t.Errorf("expected 2 create attempts, got %d", f.recipeSnaps.creates)
	}
}

func TestGetOrCreateRecipeSnapshot_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture()
	recipe := f.addRecipe()

	f.recipeSnaps.conflicts = maxCreateAttempts

	_, err := f.store.GetOrCreateRecipeSnapshot(context.Background(), recipe.ID)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestGetOrCreateRecipeSnapshot_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.store.GetOrCreateRecipeSnapshot(context.Background(), uuid.New())
	if !errors.Is(err, ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}
}

// --- Product snapshot tests ---

func TestGetOrCreateProductSnapshot_BindsRecipeSnapshots(t *testing.T) {
	f := newFixture()
	recipe := f.addRecipe()

	product := &domain.Product{
		ID:           uuid.New(),
		DesignNumber: "DN-100",
		Name:         "bicycle-frame",
		Recipes: []domain.RecipeEntry{
			{RecipeID: recipe.ID, Quantity: 2},
		},
		UpdatedAt: time.Now(),
	}
	f.products.items[product.ID] = product

	snap, err := f.store.GetOrCreateProductSnapshot(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Version != 1 {
		t.Errorf("expected version 1, got %d", snap.Version)
	}
	if len(snap.Recipes) != 1 {
		t.Fatalf("expected 1 recipe entry, got %d", len(snap.Recipes))
	}

	entry := snap.Recipes[0]
	if entry.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", entry.Quantity)
	}
	if entry.RecipeID != recipe.ID {
		t.Error("entry should keep the original recipe id for tracing")
	}

	// Вхождение должно ссылаться на созданный снапшот рецепта.
	recipeSnap, err := f.recipeSnaps.GetLatest(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("recipe snapshot should have been created: %v", err)
	}
	if entry.RecipeSnapshotID != recipeSnap.ID {
		t.Error("entry should reference the recipe snapshot, not the live recipe")
	}
}

func TestGetOrCreateProductSnapshot_CacheHit(t *testing.T) {
	f := newFixture()
	recipe := f.addRecipe()

	product := &domain.Product{
		ID:           uuid.New(),
		DesignNumber: "DN-200",
		Recipes:      []domain.RecipeEntry{{RecipeID: recipe.ID, Quantity: 1}},
		UpdatedAt:    time.Now(),
	}
	f.products.items[product.ID] = product

	first, err := f.store.GetOrCreateProductSnapshot(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.store.GetOrCreateProductSnapshot(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected same snapshot id, got %s and %s", first.ID, second.ID)
	}
}

func TestGetOrCreateProductSnapshot_NewVersionAfterEdit(t *testing.T) {
	f := newFixture()
	recipe := f.addRecipe()

	product := &domain.Product{
		ID:           uuid.New(),
		DesignNumber: "DN-300",
		Recipes:      []domain.RecipeEntry{{RecipeID: recipe.ID, Quantity: 1}},
		UpdatedAt:    time.Now(),
	}
	f.products.items[product.ID] = product

	first, err := f.store.GetOrCreateProductSnapshot(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	product.UpdatedAt = first.CreatedAt.Add(time.Second)

	second, err := f.store.GetOrCreateProductSnapshot(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.Version != 2 {
		t.Errorf("expected version 2, got %d", second.Version)
	}
}

func TestGetOrCreateProductSnapshot_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.store.GetOrCreateProductSnapshot(context.Background(), uuid.New())
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
