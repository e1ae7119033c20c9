package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project — производственный заказ.
//
// Project агрегирует целевые количества изделий (product lines)
// и/или отдельных рецептов (recipe lines). При переходе
// PLANNING → ACTIVE заказ разворачивается в набор tasks.
type Project struct {
	// ID — уникальный идентификатор заказа.
	ID uuid.UUID `json:"id"`

	// Name — человекочитаемое имя заказа.
	Name string `json:"name"`

	// Status — текущий статус заказа.
	Status ProjectStatus `json:"status"`

	// ProductLines — позиции заказа по изделиям.
	ProductLines []ProductLine `json:"product_lines,omitempty"`

	// RecipeLines — позиции заказа по отдельным рецептам
	// (без контекста изделия).
	RecipeLines []RecipeLine `json:"recipe_lines,omitempty"`

	// ActivatedAt — время успешной активации.
	// Nil, пока заказ не активирован.
	ActivatedAt *time.Time `json:"activated_at,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения.
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductLine — позиция заказа по изделию.
type ProductLine struct {
	// ProductID — ссылка на изделие.
	ProductID uuid.UUID `json:"product_id"`

	// TargetQuantity — сколько единиц изделия нужно произвести.
	TargetQuantity int `json:"target_quantity"`

	// ProducedQuantity — сколько уже произведено.
	ProducedQuantity int `json:"produced_quantity"`
}

// RecipeLine — позиция заказа по отдельному рецепту.
type RecipeLine struct {
	// RecipeID — ссылка на рецепт.
	RecipeID uuid.UUID `json:"recipe_id"`

	// TargetQuantity — сколько исполнений рецепта нужно.
	TargetQuantity int `json:"target_quantity"`

	// ProducedQuantity — сколько уже произведено.
	ProducedQuantity int `json:"produced_quantity"`
}

// CanActivate возвращает true, если заказ можно активировать.
func (p *Project) CanActivate() bool {
	return p.Status != ProjectStatusActive && !p.Status.IsTerminal()
}

// MarkActive переводит заказ в статус ACTIVE.
func (p *Project) MarkActive() {
	now := time.Now()
	p.Status = ProjectStatusActive
	p.ActivatedAt = &now
	p.UpdatedAt = now
}

// MarkCancelled переводит заказ в статус CANCELLED.
func (p *Project) MarkCancelled() {
	p.Status = ProjectStatusCancelled
	p.UpdatedAt = time.Now()
}
