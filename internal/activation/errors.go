package activation

import "errors"

// Ошибки движка активации.
var (
	// ErrProjectNotFound — заказ не найден.
	ErrProjectNotFound = errors.New("project not found")

	// ErrProjectNotActivatable — заказ уже активен или в финальном статусе.
	ErrProjectNotActivatable = errors.New("project cannot be activated")

	// ErrMissingDeviceType — входной шаг рецепта не указывает тип
	// оборудования, task невозможно маршрутизировать.
	ErrMissingDeviceType = errors.New("entry step has no device type")
)
