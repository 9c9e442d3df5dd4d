package agent

import "time"

// ChangeEvent — одна зафиксированная плагином пачка изменений модели.
// Создаётся один раз на срабатывание DocumentChanged, неизменяемо, потребляется
// ровно одной отправкой. Локально никогда не сохраняется.
type ChangeEvent struct {
	ActorHandle string    // никнейм из настроек Revit, обязателен
	ProjectName string    // заголовок документа, может быть пустым
	OccurredAt  time.Time // момент фиксации по часам хоста
	Added       int
	Modified    int
	Deleted     int
}
