package engine

import (
	"fmt"
	"sort"

	"github.com/shaiso/Fabrica/internal/domain"
)

// Состояния узла при обходе графа.
const (
	stateUnvisited = iota
	stateInProgress
	stateDone
)

// ValidateSteps проверяет граф зависимостей шагов рецепта.
//
// Проверяет:
//   - Непустые и уникальные ID шагов
//   - Положительные и уникальные order
//   - Замкнутость depends_on (все ссылки ведут на шаги этого же рецепта)
//   - Отсутствие циклов
//
// При успехе возвращает суммарную длительность всех шагов в минутах —
// производное поле Recipe.DurationMin пересчитывается из этого значения
// при каждом изменении шагов.
//
// Обход шагов идёт в отсортированном по ID порядке, поэтому для одного
// и того же набора шагов всегда сообщается один и тот же шаг-виновник,
// независимо от порядка элементов в слайсе.
func ValidateSteps(steps []domain.RecipeStep) (int, error) {
	byID := make(map[string]*domain.RecipeStep, len(steps))
	orders := make(map[int]string, len(steps))

	for i := range steps {
		step := &steps[i]

		if step.ID == "" {
			return 0, NewValidationError("", "id", "step has empty ID", ErrEmptyStepID)
		}
		if _, ok := byID[step.ID]; ok {
			return 0, NewValidationError(step.ID, "id",
				fmt.Sprintf("duplicate step ID: %s", step.ID), ErrDuplicateStepID)
		}
		byID[step.ID] = step

		if step.Order <= 0 {
			return 0, NewValidationError(step.ID, "order",
				fmt.Sprintf("order must be positive, got %d", step.Order), ErrInvalidStepOrder)
		}
		if other, ok := orders[step.Order]; ok {
			return 0, NewValidationError(step.ID, "order",
				fmt.Sprintf("order %d already used by step %s", step.Order, other), ErrDuplicateStepOrder)
		}
		orders[step.Order] = step.ID
	}

	// Замкнутость: каждая зависимость должна существовать в этом же рецепте.
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		for _, dep := range byID[id].DependsOn {
			if _, ok := byID[dep]; !ok {
				return 0, NewValidationError(id, "depends_on",
					fmt.Sprintf("depends on unknown step: %s", dep), ErrMissingDependency)
			}
		}
	}

	if err := detectCycle(ids, byID); err != nil {
		return 0, err
	}

	total := 0
	for i := range steps {
		total += steps[i].DurationMin
	}
	return total, nil
}

// frame — кадр явного стека обхода.
type frame struct {
	id   string
	next int // индекс следующей необработанной зависимости
}

// detectCycle ищет цикл трёхцветным обходом в глубину.
//
// Рекурсия заменена явным стеком, чтобы глубина графа не упиралась
// в лимит стека горутины на больших рецептах. Сообщается первый шаг,
// оказавшийся собственным предком на текущем пути обхода.
func detectCycle(ids []string, byID map[string]*domain.RecipeStep) error {
	state := make(map[string]int, len(ids))

	for _, root := range ids {
		if state[root] != stateUnvisited {
			continue
		}

		stack := []frame{{id: root}}
		state[root] = stateInProgress

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			deps := byID[f.id].DependsOn

			if f.next < len(deps) {
				dep := deps[f.next]
				f.next++

				switch state[dep] {
				case stateInProgress:
					// dep лежит на текущем пути — значит, зависит сам от себя
					// транзитивно (или напрямую при dep == f.id).
					return NewValidationError(dep, "depends_on",
						fmt.Sprintf("step %s is part of a dependency cycle", dep), ErrCyclicDependency)
				case stateUnvisited:
					state[dep] = stateInProgress
					stack = append(stack, frame{id: dep})
				}
				continue
			}

			state[f.id] = stateDone
			stack = stack[:len(stack)-1]
		}
	}

	return nil
}
