package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// flexCount реализует разбор "число или ноль": бэкенд (или рука, правившая базу)
// может прислать счётчик строкой, null или мусором. Поле никогда не валит
// разбор записи — нечисловое значение становится нулём.
type flexCount int

// Максимальное целое, точно представимое в float64. Конверсия float64 → int
// за этим пределом не определена, поэтому всё снаружи — мусор, а не счётчик.
const maxExactCount = 1 << 53

func coerceCount(n float64) flexCount {
	if math.IsNaN(n) || n > maxExactCount || n < -maxExactCount {
		return 0
	}
	return flexCount(int(n))
}

func (c *flexCount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	// Строковое представление: "5" или "abc"
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*c = 0
			return nil
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			*c = 0
			return nil
		}
		*c = coerceCount(n)
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*c = 0
		return nil
	}
	*c = coerceCount(n)
	return nil
}

// flexString принимает строку, null или любое скалярное значение не-строкой —
// всё, что не строка, превращается в пустую строку.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = ""
		return nil
	}
	*f = flexString(s)
	return nil
}

// rawMetric — слабо типизированная запись, как она приходит с провода.
type rawMetric struct {
	ID        int64      `json:"id"`
	Project   flexString `json:"project"`
	Timestamp flexString `json:"timestamp"`
	Added     flexCount  `json:"added"`
	Modified  flexCount  `json:"modified"`
	Deleted   flexCount  `json:"deleted"`
	User      struct {
		Nickname flexString `json:"nickname"`
	} `json:"user"`
}

// Loader забирает сырой список метрик с бэкенда и приводит его к чистому
// временному ряду. Сетевые сбои деградируют до пустого результата —
// наверх ошибки не поднимаются.
type Loader struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewLoader(baseURL string, timeout time.Duration, logger *zap.Logger) *Loader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "metrics-fetch",
		Timeout: 30 * time.Second, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
	return &Loader{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cb:      cb,
		logger:  logger.Named("loader"),
	}
}

// Load возвращает отсортированные по времени строки и список пользователей.
// Контракт сортировки по возрастанию — это то, на что полагаются агрегатор и
// представление: ниже по потоку никто больше не сортирует.
func (l *Loader) Load(ctx context.Context) ([]Row, []string) {
	raw, err := l.fetch(ctx)
	if err != nil {
		l.logger.Warn("metrics fetch degraded to empty set", zap.Error(err))
		return []Row{}, []string{}
	}
	rows := l.normalize(raw)
	return rows, rosterOf(rows)
}

// fetch пробует основной эндпоинт и ровно один фоллбэк.
// Оба пути завёрнуты в circuit breaker: после серии отказов бэкенда
// перестаём долбить его и сразу отдаём пустой набор.
func (l *Loader) fetch(ctx context.Context) ([]json.RawMessage, error) {
	result, err := l.cb.Execute(func() (interface{}, error) {
		raw, primaryErr := l.fetchOne(ctx, l.baseURL+"/api/metrics/")
		if primaryErr == nil {
			return raw, nil
		}
		l.logger.Warn("primary endpoint failed, trying fallback", zap.Error(primaryErr))

		raw, fallbackErr := l.fetchOne(ctx, l.baseURL+"/metrics/")
		if fallbackErr != nil {
			return nil, fmt.Errorf("primary: %v; fallback: %w", primaryErr, fallbackErr)
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]json.RawMessage), nil
}

func (l *Loader) fetchOne(ctx context.Context, url string) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return raw, nil
}

// normalize приводит каждую запись к Row. Запись с нечитаемым таймстемпом
// выбрасывается целиком — нулевое время хуже отсутствия точки.
func (l *Loader) normalize(raw []json.RawMessage) []Row {
	rows := make([]Row, 0, len(raw))
	for _, msg := range raw {
		var m rawMetric
		if err := json.Unmarshal(msg, &m); err != nil {
			// Запись совсем не похожа на метрику — пропускаем её одну,
			// остальной пачке это не мешает
			l.logger.Debug("skipping malformed record", zap.Error(err))
			continue
		}
		ts, ok := ParseTimestamp(string(m.Timestamp))
		if !ok {
			continue
		}
		rows = append(rows, Row{
			ID:          m.ID,
			Project:     string(m.Project),
			Timestamp:   ts,
			Added:       int(m.Added),
			Modified:    int(m.Modified),
			Deleted:     int(m.Deleted),
			ActorHandle: string(m.User.Nickname),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Timestamp.Before(rows[j].Timestamp) })
	return rows
}

// rosterOf собирает отсортированный список уникальных непустых никнеймов.
func rosterOf(rows []Row) []string {
	seen := make(map[string]struct{})
	roster := make([]string, 0)
	for _, row := range rows {
		if row.ActorHandle == "" {
			continue
		}
		if _, ok := seen[row.ActorHandle]; ok {
			continue
		}
		seen[row.ActorHandle] = struct{}{}
		roster = append(roster, row.ActorHandle)
	}
	sort.Strings(roster)
	return roster
}
