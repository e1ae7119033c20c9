// Package snapshot создаёт и кэширует неизменяемые версии
// рецептов и изделий.
//
// Store работает как read-through кэш: при обращении он возвращает
// последний снапшот сущности, если тот не старее её updated_at,
// и создаёт новую версию в противном случае. Версии растут строго
// монотонно с единицы; созданный снапшот никогда не меняется.
//
// Гонка двух конкурентных создателей одной версии разрешается
// уникальным индексом (entity_id, version) в БД: проигравший
// получает конфликт и перечитывает снапшот победителя.
package snapshot
