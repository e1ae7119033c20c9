// Package engine содержит валидатор графа шагов рецепта.
//
// Включает:
//   - graph.go  — проверка графа зависимостей и расчёт длительности
//   - errors.go — ошибки валидации
//
// Пакет чистый: никакого I/O, один и тот же набор шагов всегда
// даёт один и тот же результат независимо от порядка в слайсе.
// Валидация вызывается перед каждой записью рецепта; невалидный
// граф блокирует запись целиком.
package engine
