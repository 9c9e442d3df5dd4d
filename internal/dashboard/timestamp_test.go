package dashboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTimestamp_TruncatesSubMilliseconds(t *testing.T) {
	// Микросекундный хвост обрезается до миллисекунд, момент времени тот же
	full, ok := ParseTimestamp("2025-10-30T18:21:41.928982")
	require.True(t, ok)

	milli, ok := ParseTimestamp("2025-10-30T18:21:41.928")
	require.True(t, ok)

	require.True(t, full.Equal(milli))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{name: "nanosecond precision", input: "2025-10-30T18:21:41.928982123", ok: true},
		{name: "millisecond precision", input: "2025-10-30T18:21:41.928", ok: true},
		{name: "short fraction", input: "2025-10-30T18:21:41.9", ok: true},
		{name: "no fraction", input: "2025-10-30T18:21:41", ok: true},
		{name: "with zone", input: "2025-10-30T18:21:41.928982+03:00", ok: true},
		{name: "utc zulu", input: "2025-10-30T18:21:41.928982Z", ok: true},
		{name: "space separator", input: "2025-10-30 18:21:41.928982", ok: true},
		{name: "garbage", input: "not-a-date", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "date only", input: "2025-10-30", ok: true},
		{name: "numeric junk", input: "1730312501", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := ParseTimestamp(tt.input)
			require.Equal(t, tt.ok, ok)
			if !ok {
				require.True(t, ts.IsZero())
			}
		})
	}
}

func TestParseTimestamp_FallbackStripsFraction(t *testing.T) {
	// Дробная часть, которую не получилось привести к миллисекундам,
	// отбрасывается целиком — секундная точность лучше потери строки
	ts, ok := ParseTimestamp("2025-10-30T18:21:41.bad")
	require.True(t, ok)

	plain, ok := ParseTimestamp("2025-10-30T18:21:41")
	require.True(t, ok)
	require.True(t, ts.Equal(plain))
}
