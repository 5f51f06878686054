package observe

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/bnema/mmwall/internal/domain"
	"github.com/bnema/mmwall/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var line map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &line))
		lines = append(lines, line)
	}
	return lines
}

func TestLoggerSelectionsAreDebugByDefault(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	observer := NewLogger(logger.New("info", false, &buf), false)

	observer.ImageSelected(domain.SelectionEvent{Index: 2, URL: "https://img.example/a.jpg"})
	assert.Zero(t, buf.Len())
}

func TestLoggerDebugSelectionLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	observer := NewLogger(logger.New("warn", false, &buf), true)

	observer.ImageSelected(domain.SelectionEvent{
		Index:    2,
		URL:      "https://img.example/a.jpg",
		Method:   domain.SelectionWeightedRandom,
		PoolSize: 10,
		Tracked:  4,
		At:       time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC),
	})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "image selected", lines[0]["message"])
	assert.Equal(t, "weighted_random", lines[0]["method"])
	assert.EqualValues(t, 2, lines[0]["index"])
	assert.EqualValues(t, 4, lines[0]["tracked"])
}

func TestLoggerPoolAndCollectionEvents(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	observer := NewLogger(logger.New("info", false, &buf), false)

	observer.PoolRotated(domain.PoolEvent{
		Window:         domain.NewPoolWindow(10, 4, 7),
		PoolSize:       4,
		CollectionSize: 10,
	})
	observer.CollectionReplaced(domain.CollectionEvent{Received: 3, Accepted: 3, Changed: false})
	observer.CollectionReplaced(domain.CollectionEvent{Received: 5, Accepted: 4, Changed: true})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2, "unchanged collections log at debug")
	assert.Equal(t, "pool rotated", lines[0]["message"])
	assert.EqualValues(t, 7, lines[0]["bucket"])
	assert.EqualValues(t, 2, lines[0]["cycle"])
	assert.EqualValues(t, 1, lines[0]["active_bucket"])
	assert.Equal(t, "collection replaced", lines[1]["message"])
	assert.EqualValues(t, 4, lines[1]["accepted"])
}
