package engine

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/Fabrica/internal/domain"
)

func step(id string, order, durationMin int, deps ...string) domain.RecipeStep {
	return domain.RecipeStep{
		ID:           id,
		Order:        order,
		Name:         id,
		DurationMin:  durationMin,
		DeviceTypeID: uuid.New(),
		DependsOn:    deps,
	}
}

func TestValidateSteps_SimpleChain(t *testing.T) {
	steps := []domain.RecipeStep{
		step("A", 1, 30),
		step("B", 2, 45, "A"),
	}

	total, err := ValidateSteps(steps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 75 {
		t.Errorf("expected total duration 75, got %d", total)
	}
}

func TestValidateSteps_Diamond(t *testing.T) {
	// A → B → D
	// A → C → D
	steps := []domain.RecipeStep{
		step("A", 1, 10),
		step("B", 2, 20, "A"),
		step("C", 3, 30, "A"),
		step("D", 4, 40, "B", "C"),
	}

	total, err := ValidateSteps(steps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 100 {
		t.Errorf("expected total duration 100, got %d", total)
	}
}

func TestValidateSteps_EmptySet(t *testing.T) {
	// Пустой набор тривиально ацикличен и замкнут.
	total, err := ValidateSteps(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Errorf("expected total duration 0, got %d", total)
	}
}

func TestValidateSteps_OrderIndependent(t *testing.T) {
	a := step("A", 1, 10)
	b := step("B", 2, 20, "A")
	c := step("C", 3, 30, "B")

	total1, err1 := ValidateSteps([]domain.RecipeStep{a, b, c})
	total2, err2 := ValidateSteps([]domain.RecipeStep{c, a, b})

	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if total1 != total2 {
		t.Errorf("result should not depend on slice order: %d vs %d", total1, total2)
	}
}

func TestValidateSteps_CyclicDependency(t *testing.T) {
	steps := []domain.RecipeStep{
		step("A", 1, 10, "B"),
		step("B", 2, 20, "A"),
	}

	_, err := ValidateSteps(steps)
	if !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("expected ErrCyclicDependency, got %v", err)
	}
}

func TestValidateSteps_CycleReportIsDeterministic(t *testing.T) {
	a := step("A", 1, 10, "B")
	b := step("B", 2, 20, "A")

	var stepIDs []string
	for _, steps := range [][]domain.RecipeStep{{a, b}, {b, a}} {
		_, err := ValidateSteps(steps)

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		stepIDs = append(stepIDs, verr.StepID)
	}

	if stepIDs[0] != stepIDs[1] {
		t.Errorf("reported step should not depend on slice order: %s vs %s", stepIDs[0], stepIDs[1])
	}
}

func TestValidateSteps_SelfDependency(t *testing.T) {
	// Шаг, зависящий от самого себя, — цикл из одного узла.
	steps := []domain.RecipeStep{
		step("A", 1, 10, "A"),
	}

	_, err := ValidateSteps(steps)
	if !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("expected ErrCyclicDependency, got %v", err)
	}
}

func TestValidateSteps_LongCycle(t *testing.T) {
	steps := []domain.RecipeStep{
		step("A", 1, 10, "C"),
		step("B", 2, 10, "A"),
		step("C", 3, 10, "B"),
	}

	_, err := ValidateSteps(steps)
	if !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("expected ErrCyclicDependency, got %v", err)
	}
}

func TestValidateSteps_MissingDependency(t *testing.T) {
	steps := []domain.RecipeStep{
		step("A", 1, 10),
		step("B", 2, 20, "ghost"),
	}

	_, err := ValidateSteps(steps)
	if !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("expected ErrMissingDependency, got %v", err)
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.StepID != "B" {
		t.Errorf("expected step B to be reported, got %s", verr.StepID)
	}
}

func TestValidateSteps_EmptyStepID(t *testing.T) {
	steps := []domain.RecipeStep{
		step("", 1, 10),
	}

	_, err := ValidateSteps(steps)
	if !errors.Is(err, ErrEmptyStepID) {
		t.Fatalf("expected ErrEmptyStepID, got %v", err)
	}
}

func TestValidateSteps_DuplicateStepID(t *testing.T) {
	steps := []domain.RecipeStep{
		step("A", 1, 10),
		step("A", 2, 20),
	}

	_, err := ValidateSteps(steps)
	if !errors.Is(err, ErrDuplicateStepID) {
		t.Fatalf("expected ErrDuplicateStepID, got %v", err)
	}
}

func TestValidateSteps_InvalidOrder(t *testing.T) {
	steps := []domain.RecipeStep{
		step("A", 0, 10),
	}

	_, err := ValidateSteps(steps)
	if !errors.Is(err, ErrInvalidStepOrder) {
		t.Fatalf("expected ErrInvalidStepOrder, got %v", err)
	}
}

func TestValidateSteps_DuplicateOrder(t *testing.T) {
	steps := []domain.RecipeStep{
		step("A", 1, 10),
		step("B", 1, 20),
	}

	_, err := ValidateSteps(steps)
	if !errors.Is(err, ErrDuplicateStepOrder) {
		t.Fatalf("expected ErrDuplicateStepOrder, got %v", err)
	}
}

func TestValidateSteps_LargeLinearGraph(t *testing.T) {
	// Итеративный обход не должен упираться в глубину стека.
	const n = 50000

	// Зависимости направлены вперёд, чтобы обход с первого по сортировке
	// шага прошёл всю цепочку за один спуск.
	steps := make([]domain.RecipeStep, n)
	for i := 0; i < n; i++ {
		s := step(stepID(i), i+1, 1)
		if i < n-1 {
			s.DependsOn = []string{stepID(i + 1)}
		}
		steps[i] = s
	}

	total, err := ValidateSteps(steps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != n {
		t.Errorf("expected total duration %d, got %d", n, total)
	}
}

func stepID(i int) string {
	// Фиксированная ширина, чтобы сортировка по ID совпадала с порядком шагов.
	return "step-" + padded(i)
}

func padded(i int) string {
	const digits = "0123456789"
	buf := []byte{'0', '0', '0', '0', '0', '0'}
	for pos := len(buf) - 1; i > 0 && pos >= 0; pos-- {
		buf[pos] = digits[i%10]
		i /= 10
	}
	return string(buf)
}
