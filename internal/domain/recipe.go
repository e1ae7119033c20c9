package domain

import (
	"time"

	"github.com/google/uuid"
)

// Recipe — версионированный производственный процесс.
//
// Recipe описывает, как изготовить одну единицу изделия:
// упорядоченный набор шагов с графом зависимостей, требуемыми
// типами оборудования и сырьём.
//
// Поле Version монотонно растёт при каждом изменении шагов или
// материалов. Работы, запущенные до изменения, ссылаются не на
// живой Recipe, а на его RecipeSnapshot.
type Recipe struct {
	// ID — уникальный идентификатор рецепта.
	ID uuid.UUID `json:"id"`

	// Name — человекочитаемое имя рецепта.
	Name string `json:"name"`

	// Version — номер версии (1, 2, 3, ...).
	// Инкрементируется при каждом обновлении.
	Version int `json:"version"`

	// Steps — упорядоченный список шагов.
	Steps []RecipeStep `json:"steps"`

	// DurationMin — суммарная оценка длительности в минутах.
	// Производное поле: всегда равно сумме DurationMin всех шагов,
	// пересчитывается при каждом изменении шагов.
	DurationMin int `json:"duration_min"`

	// Materials — ссылки на сырьё, потребляемое рецептом.
	Materials []MaterialRef `json:"materials,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения.
	// Используется снапшот-кэшем для проверки актуальности.
	UpdatedAt time.Time `json:"updated_at"`
}

// RecipeStep — один шаг производственного процесса.
type RecipeStep struct {
	// ID — идентификатор шага, уникальный в рамках рецепта.
	// Используется в depends_on.
	ID string `json:"id"`

	// Order — порядковый номер шага (положительный, уникальный
	// в рамках рецепта). Шаг с Order=1 — входной шаг рецепта.
	Order int `json:"order"`

	// Name — человекочитаемое имя шага.
	Name string `json:"name,omitempty"`

	// DurationMin — оценка длительности шага в минутах.
	DurationMin int `json:"duration_min"`

	// DeviceTypeID — тип оборудования, на котором выполняется шаг.
	// Обязателен: без него task не может быть маршрутизирован.
	DeviceTypeID uuid.UUID `json:"device_type_id"`

	// DependsOn — ID шагов этого же рецепта, которые должны
	// завершиться до начала этого шага.
	DependsOn []string `json:"depends_on,omitempty"`
}

// MaterialRef — ссылка на сырьё с количеством.
type MaterialRef struct {
	// MaterialID — идентификатор материала.
	MaterialID uuid.UUID `json:"material_id"`

	// Quantity — количество на одно исполнение рецепта.
	Quantity int `json:"quantity"`
}

// EntryStep возвращает входной шаг рецепта (Order=1).
// Возвращает nil, если такого шага нет.
func EntryStep(steps []RecipeStep) *RecipeStep {
	for i := range steps {
		if steps[i].Order == 1 {
			return &steps[i]
		}
	}
	return nil
}

// MaxOrder возвращает максимальный Order среди шагов.
// Возвращает 0 для пустого списка.
func MaxOrder(steps []RecipeStep) int {
	max := 0
	for i := range steps {
		if steps[i].Order > max {
			max = steps[i].Order
		}
	}
	return max
}
