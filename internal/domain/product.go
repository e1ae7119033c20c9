package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product — физическое изделие, собираемое по одному или
// нескольким рецептам.
type Product struct {
	// ID — уникальный идентификатор изделия.
	ID uuid.UUID `json:"id"`

	// DesignNumber — уникальный конструкторский номер изделия.
	DesignNumber string `json:"design_number"`

	// Name — человекочитаемое имя изделия.
	Name string `json:"name,omitempty"`

	// Recipes — рецепты, входящие в изделие, с количеством
	// исполнений каждого на одну единицу изделия.
	Recipes []RecipeEntry `json:"recipes"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения.
	// Используется снапшот-кэшем для проверки актуальности.
	UpdatedAt time.Time `json:"updated_at"`
}

// RecipeEntry — вхождение рецепта в изделие.
type RecipeEntry struct {
	// RecipeID — ссылка на живой Recipe.
	RecipeID uuid.UUID `json:"recipe_id"`

	// Quantity — сколько исполнений рецепта нужно
	// на одну единицу изделия.
	Quantity int `json:"quantity"`
}
