package dashboard

import (
	"fmt"
	"sort"
	"time"
)

// Row — нормализованная строка активности, производная от сырой записи бэкенда.
// Набор строк пересобирается заново при каждой загрузке.
type Row struct {
	ID          int64     `json:"id,omitempty"`
	Project     string    `json:"project"`
	Timestamp   time.Time `json:"timestamp"`
	Added       int       `json:"added"`
	Modified    int       `json:"modified"`
	Deleted     int       `json:"deleted"`
	ActorHandle string    `json:"actor"` // пустой = запись без пользователя
}

// HourBucket — почасовая сводка изменений для графика.
type HourBucket struct {
	Label    string `json:"label"` // YYYY-MM-DD HH:00, лексикографический порядок = хронологический
	Added    int    `json:"added"`
	Modified int    `json:"modified"`
	Deleted  int    `json:"deleted"`
}

// Summary — суммарные счётчики по отфильтрованному набору.
type Summary struct {
	Added    int `json:"added"`
	Modified int `json:"modified"`
	Deleted  int `json:"deleted"`
}

// Ключи скользящих окон фильтрации.
const (
	Window1h  = "1h"
	Window24h = "24h"
	Window7d  = "7d"
)

// WindowDuration переводит ключ окна в длительность.
// Нераспознанный ключ трактуется как сутки.
func WindowDuration(key string) time.Duration {
	switch key {
	case Window1h:
		return time.Hour
	case Window24h:
		return 24 * time.Hour
	case Window7d:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// FilterRows отбирает строки выбранного пользователя внутри скользящего окна.
// Пустой actor означает "пользователь не выбран": сводные данные по всем
// пользователям сразу не показываются никогда, результат — пустой срез.
// Чистая функция: не трогает вход и полностью детерминирована по (rows, actor, window, now).
func FilterRows(rows []Row, actor, window string, now time.Time) []Row {
	if actor == "" {
		return []Row{}
	}
	threshold := now.Add(-WindowDuration(window))
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.ActorHandle == actor && !row.Timestamp.Before(threshold) {
			out = append(out, row)
		}
	}
	return out
}

// BucketByHour группирует строки по календарному часу локального времени и
// суммирует счётчики в каждой корзине. Считается по полному нормализованному
// набору, независимо от фильтра пользователь+окно: так вела себя исходная
// панель, и это сохранено сознательно.
func BucketByHour(rows []Row) []HourBucket {
	byKey := make(map[string]*HourBucket)
	for _, row := range rows {
		t := row.Timestamp.Local()
		key := fmt.Sprintf("%04d-%02d-%02d %02d:00", t.Year(), t.Month(), t.Day(), t.Hour())
		b, ok := byKey[key]
		if !ok {
			b = &HourBucket{Label: key}
			byKey[key] = b
		}
		b.Added += row.Added
		b.Modified += row.Modified
		b.Deleted += row.Deleted
	}

	out := make([]HourBucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Summarize возвращает поколоночные суммы по уже отфильтрованному набору.
func Summarize(rows []Row) Summary {
	var s Summary
	for _, row := range rows {
		s.Added += row.Added
		s.Modified += row.Modified
		s.Deleted += row.Deleted
	}
	return s
}
