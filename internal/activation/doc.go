// Package activation реализует движок активации заказов.
//
// Активация — переход заказа PLANNING → ACTIVE с разворачиванием
// позиций заказа в набор tasks:
//   - каждая product line фиксируется снапшотом изделия, и для
//     каждого рецепта изделия создаётся
//     targetQuantity × quantity задач входного шага;
//   - каждая recipe line фиксируется снапшотом рецепта и создаётся
//     targetQuantity задач входного шага.
//
// Tasks создаются только для входных шагов (order = 1): продвижение
// по последующим шагам — ответственность движка продвижения, который
// живёт в отдельном сервисе.
//
// Активация атомарна: вставка tasks и смена статуса заказа происходят
// в одной транзакции, при любой ошибке заказ остаётся в PLANNING без
// частично созданных tasks. Снапшоты при этом могут пережить неудачную
// активацию — они неизменяемые кэш-записи и вреда не приносят.
package activation
