package domain

// Actor — запись справочника пользователей Revit.
// Никнейм берётся из настроек Revit и служит естественным ключом:
// один никнейм — максимум одна запись.
type Actor struct {
	ID         int64  `json:"id"`
	Nickname   string `json:"nickname"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Patronymic string `json:"patronymic"`
}

// ActorRef — усечённое представление пользователя внутри записи метрики.
// Потребителю агрегации нужен только никнейм.
type ActorRef struct {
	Nickname string `json:"nickname"`
}
