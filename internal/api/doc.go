// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go         — Handler с DI (репозитории, снапшоты, движок активации)
//   - routes.go          — регистрация маршрутов
//   - middleware.go      — middleware (logging, recovery)
//   - response.go        — унифицированные JSON-ответы и обработка ошибок
//   - dto.go             — Data Transfer Objects (request/response)
//   - recipe_handler.go  — обработчики для /recipes
//   - product_handler.go — обработчики для /products
//   - project_handler.go — обработчики для /projects
//
// API предоставляет REST endpoints для управления рецептами,
// изделиями и производственными заказами.
package api
