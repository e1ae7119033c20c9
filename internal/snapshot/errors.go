package snapshot

import "errors"

// Ошибки снапшот-хранилища.
var (
	// ErrRecipeNotFound — живой рецепт не найден.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrProductNotFound — живое изделие не найдено.
	ErrProductNotFound = errors.New("product not found")

	// ErrVersionConflict — конфликт версий не разрешился за
	// отведённое число попыток.
	ErrVersionConflict = errors.New("snapshot version conflict not resolved")
)
