package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecipeSnapshot — неизменяемая копия Recipe на момент времени.
//
// Снапшот создаётся лениво при первом обращении и после создания
// никогда не редактируется и не удаляется. Работы в процессе
// ссылаются на снапшот по ID и потому изолированы от последующих
// правок живого рецепта.
//
// Пара (RecipeID, Version) уникальна; Version растёт строго
// монотонно начиная с 1.
type RecipeSnapshot struct {
	// ID — уникальный идентификатор снапшота.
	ID uuid.UUID `json:"id"`

	// RecipeID — ссылка на исходный живой Recipe.
	RecipeID uuid.UUID `json:"recipe_id"`

	// Version — номер снапшота для данного рецепта (1, 2, 3, ...).
	Version int `json:"version"`

	// RecipeVersion — версия живого рецепта на момент копирования.
	RecipeVersion int `json:"recipe_version"`

	// Name — копия имени рецепта.
	Name string `json:"name"`

	// Steps — копия шагов на момент снапшота.
	Steps []RecipeStep `json:"steps"`

	// DurationMin — копия суммарной длительности.
	DurationMin int `json:"duration_min"`

	// Materials — копия ссылок на сырьё.
	Materials []MaterialRef `json:"materials,omitempty"`

	// CreatedAt — время создания снапшота.
	// Снапшот актуален, пока CreatedAt >= Recipe.UpdatedAt.
	CreatedAt time.Time `json:"created_at"`
}

// IsFreshFor возвращает true, если снапшот покрывает состояние
// сущности, изменённой в updatedAt (кэш-попадание).
func (s *RecipeSnapshot) IsFreshFor(updatedAt time.Time) bool {
	return !s.CreatedAt.Before(updatedAt)
}

// ProductSnapshot — неизменяемая копия Product на момент времени.
//
// В отличие от живого Product, ссылается не на живые рецепты,
// а на конкретные RecipeSnapshot, зафиксированные в момент
// создания снапшота.
type ProductSnapshot struct {
	// ID — уникальный идентификатор снапшота.
	ID uuid.UUID `json:"id"`

	// ProductID — ссылка на исходное живое изделие.
	ProductID uuid.UUID `json:"product_id"`

	// Version — номер снапшота для данного изделия (1, 2, 3, ...).
	Version int `json:"version"`

	// DesignNumber — копия конструкторского номера.
	DesignNumber string `json:"design_number"`

	// Name — копия имени изделия.
	Name string `json:"name,omitempty"`

	// Recipes — вхождения рецептов, привязанные к снапшотам.
	Recipes []SnapshotRecipeEntry `json:"recipes"`

	// CreatedAt — время создания снапшота.
	CreatedAt time.Time `json:"created_at"`
}

// IsFreshFor возвращает true, если снапшот покрывает состояние
// сущности, изменённой в updatedAt (кэш-попадание).
func (s *ProductSnapshot) IsFreshFor(updatedAt time.Time) bool {
	return !s.CreatedAt.Before(updatedAt)
}

// SnapshotRecipeEntry — вхождение рецепта в снапшот изделия.
type SnapshotRecipeEntry struct {
	// RecipeSnapshotID — зафиксированный снапшот рецепта.
	RecipeSnapshotID uuid.UUID `json:"recipe_snapshot_id"`

	// RecipeID — исходный живой рецепт (для трассировки).
	RecipeID uuid.UUID `json:"recipe_id"`

	// Quantity — количество исполнений на единицу изделия.
	Quantity int `json:"quantity"`
}
