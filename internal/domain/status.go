package domain

// ProjectStatus — статус производственного заказа.
//
// Жизненный цикл:
//
//	PLANNING → ACTIVE → COMPLETED
//	         ↘ CANCELLED (из PLANNING или ACTIVE)
type ProjectStatus string

const (
	// ProjectStatusPlanning — заказ формируется, tasks ещё не созданы.
	ProjectStatusPlanning ProjectStatus = "PLANNING"

	// ProjectStatusActive — заказ активирован, tasks развёрнуты.
	ProjectStatusActive ProjectStatus = "ACTIVE"

	// ProjectStatusCompleted — все позиции заказа произведены.
	ProjectStatusCompleted ProjectStatus = "COMPLETED"

	// ProjectStatusCancelled — заказ отменён.
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

// IsTerminal возвращает true, если статус финальный.
func (s ProjectStatus) IsTerminal() bool {
	switch s {
	case ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	default:
		return false
	}
}

// TaskStatus — статус единицы работы.
//
// Жизненный цикл:
//
//	PENDING → IN_PROGRESS → COMPLETED
//	        (или) → CANCELLED (из PENDING или IN_PROGRESS)
type TaskStatus string

const (
	// TaskStatusPending — task создан, работа не начата.
	TaskStatusPending TaskStatus = "PENDING"

	// TaskStatusInProgress — task выполняется на оборудовании.
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"

	// TaskStatusCompleted — task успешно завершён.
	TaskStatusCompleted TaskStatus = "COMPLETED"

	// TaskStatusCancelled — task отменён вместе с заказом.
	TaskStatusCancelled TaskStatus = "CANCELLED"
)

// IsTerminal возвращает true, если статус финальный.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusCancelled:
		return true
	default:
		return false
	}
}
