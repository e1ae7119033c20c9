// Package cli реализует инструмент командной строки Fabrica.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Fabrica API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для управления рецептами, изделиями и заказами.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Fabrica API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	recipes, err := client.ListRecipes()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: fabrica recipe list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - recipe:  list, create, show, update, delete, validate, snapshots, snapshot
//   - product: list, create, show, update, delete, snapshots, snapshot
//   - project: list, create, show, delete, activate, cancel, tasks
//
// Каждая группа создаётся через фабричную функцию (NewRecipeCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
