package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLoader(t *testing.T, baseURL string) *Loader {
	t.Helper()
	return NewLoader(baseURL, 2*time.Second, zap.NewNop())
}

func TestLoader_NormalizesAndSorts(t *testing.T) {
	payload := `[
		{"id": 2, "project": "Tower", "timestamp": "2025-01-02T10:00:00.123456", "added": 5, "modified": 1, "deleted": 0, "user": {"nickname": "ivanov"}},
		{"id": 1, "project": "Tower", "timestamp": "2025-01-01T09:00:00.000", "added": "3", "modified": "abc", "user": {"nickname": "petrov"}},
		{"id": 3, "project": null, "timestamp": "not-a-date", "added": 100, "user": {"nickname": "ghost"}},
		{"id": 4, "timestamp": "2025-01-03T08:00:00", "added": null}
	]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/metrics/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	rows, roster := newTestLoader(t, srv.URL).Load(context.Background())

	// Запись с нечитаемым таймстемпом выброшена, остальные отсортированы по времени
	require.Len(t, rows, 3)
	require.Equal(t, int64(1), rows[0].ID)
	require.Equal(t, int64(2), rows[1].ID)
	require.Equal(t, int64(4), rows[2].ID)
	for i := 1; i < len(rows); i++ {
		require.False(t, rows[i].Timestamp.Before(rows[i-1].Timestamp))
	}

	// Коэрция "число или ноль"
	require.Equal(t, 3, rows[0].Added)    // "3" -> 3
	require.Equal(t, 0, rows[0].Modified) // "abc" -> 0
	require.Equal(t, 5, rows[1].Added)
	require.Equal(t, 0, rows[2].Added) // null -> 0

	// Пустой никнейм не попадает в список пользователей
	require.Equal(t, "", rows[2].ActorHandle)
	require.Equal(t, []string{"ivanov", "petrov"}, roster)
}

// Счётчик за пределами целочисленного диапазона — мусор, а не большое число:
// коэрция обязана дать ноль, не произвольный результат конверсии.
func TestFlexCount_OutOfRangeBecomesZero(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"huge float", `1e300`, 0},
		{"huge float as string", `"1e300"`, 0},
		{"negative overflow", `-1e300`, 0},
		{"NaN as string", `"NaN"`, 0},
		{"Inf as string", `"Inf"`, 0},
		{"plain number intact", `42`, 42},
		{"fraction truncated", `3.7`, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c flexCount
			require.NoError(t, c.UnmarshalJSON([]byte(tt.in)))
			require.Equal(t, tt.want, int(c))
		})
	}
}

func TestLoader_OutputNeverLongerThanInput(t *testing.T) {
	payload := `[
		{"timestamp": "garbage", "added": 1, "user": {"nickname": "a"}},
		{"timestamp": "", "added": 2, "user": {"nickname": "b"}},
		{"timestamp": "2025-01-01T00:00:00", "added": 3, "user": {"nickname": "c"}}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	rows, _ := newTestLoader(t, srv.URL).Load(context.Background())
	require.LessOrEqual(t, len(rows), 3)
	require.Len(t, rows, 1) // невалидные строки выброшены, не обнулены в эпоху
}

func TestLoader_FallbackEndpoint(t *testing.T) {
	var primaryCalls, fallbackCalls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/metrics/":
			primaryCalls.Add(1)
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/metrics/":
			fallbackCalls.Add(1)
			json.NewEncoder(w).Encode([]map[string]any{
				{"timestamp": "2025-01-01T00:00:00", "added": 7, "user": map[string]any{"nickname": "x"}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	rows, roster := newTestLoader(t, srv.URL).Load(context.Background())
	require.Len(t, rows, 1)
	require.Equal(t, 7, rows[0].Added)
	require.Equal(t, []string{"x"}, roster)

	// Ровно один фоллбэк-заход на неудачный основной
	require.Equal(t, int32(1), primaryCalls.Load())
	require.Equal(t, int32(1), fallbackCalls.Load())
}

func TestLoader_BothEndpointsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	// Деградация до пустого набора, без паники и без ошибки наверх
	rows, roster := newTestLoader(t, srv.URL).Load(context.Background())
	require.Empty(t, rows)
	require.Empty(t, roster)
}

func TestLoader_MalformedRecordSkippedAlone(t *testing.T) {
	payload := `[
		"this is not an object",
		{"timestamp": "2025-01-01T00:00:00", "added": 1, "user": {"nickname": "ok"}}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	rows, _ := newTestLoader(t, srv.URL).Load(context.Background())
	require.Len(t, rows, 1)
	require.Equal(t, "ok", rows[0].ActorHandle)
}
