// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//
// Типы сообщений:
//   - project.activated — заказ переведён в ACTIVE, задачи развёрнуты
//   - task.created      — создана задача на исполнение шага
//
// Exchanges:
//   - fabrica.projects — события заказов
//   - fabrica.tasks    — события tasks
//   - fabrica.dlq      — dead letter queue
//
// Потребители очередей (диспетчеризация задач на станки) живут
// в отдельных сервисах и в этот репозиторий не входят.
package mq
