package dashboard

import (
	"regexp"
	"strings"
	"time"
)

// Бэкенд отдаёт таймстемпы с произвольной точностью дробной части
// (микро- или наносекунды), стандартный миллисекундный разбор на таком падает.
var fracRe = regexp.MustCompile(`\.(\d{3})\d+`)

// Слои разбора: сначала обрезанная до миллисекунд форма, затем без дробной части.
var (
	fracLayouts = []string{
		"2006-01-02T15:04:05.999Z07:00",
		"2006-01-02T15:04:05.999",
		"2006-01-02 15:04:05.999",
	}
	plainLayouts = []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
)

// ParseTimestamp разбирает текстовый таймстемп записи метрики.
// Дробная часть секунд усекается до трёх цифр: 2025-10-30T18:21:41.928982 ->
// 2025-10-30T18:21:41.928. Если усечённая форма не разобралась, пробуем ещё раз,
// отбросив дробную часть целиком. Невалидный вход — это не ошибка, а признак
// "строка не считается": возвращаем ok=false, и вызывающий обязан выкинуть
// строку, а не подставлять нулевое время.
func ParseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}

	truncated := fracRe.ReplaceAllString(raw, ".$1")
	for _, layout := range fracLayouts {
		if t, err := time.ParseInLocation(layout, truncated, time.Local); err == nil {
			return t, true
		}
	}

	// Фоллбэк: отбрасываем дробную часть по первой точке
	noFrac, _, _ := strings.Cut(raw, ".")
	for _, layout := range plainLayouts {
		if t, err := time.ParseInLocation(layout, noFrac, time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
