package logger

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogBufferKeepsNewestEntries(t *testing.T) {
	buffer := NewLogBuffer(3)
	for i := 0; i < 5; i++ {
		buffer.Add("info", fmt.Sprintf("entry %d", i), nil)
	}

	logs := buffer.GetRecentLogs(0)
	require.Len(t, logs, 3)
	assert.Equal(t, "entry 2", logs[0].Message)
	assert.Equal(t, "entry 4", logs[2].Message)
	assert.Equal(t, uint64(5), buffer.GetStats())

	latest := buffer.GetRecentLogs(2)
	require.Len(t, latest, 2)
	assert.Equal(t, "entry 3", latest[0].Message)
	assert.Equal(t, "entry 4", latest[1].Message)
}

func TestLogBufferBeforeWrap(t *testing.T) {
	buffer := NewLogBuffer(10)
	assert.Empty(t, buffer.GetRecentLogs(5))

	buffer.Add("warn", "first", nil)
	buffer.Add("info", "second", nil)

	logs := buffer.GetRecentLogs(1)
	require.Len(t, logs, 1)
	assert.Equal(t, "second", logs[0].Message)
}

func TestLogBufferWriteDecodesJSONLines(t *testing.T) {
	buffer := NewLogBuffer(10)

	payload := `{"level":"warn","time":"2024-05-01T10:00:00Z","msg":"Enrichment failed","symbol":"PEPE"}` + "\n" +
		"plain text line\n\n"
	n, err := buffer.Write([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)

	logs := buffer.GetRecentLogs(0)
	require.Len(t, logs, 2)

	assert.Equal(t, "warn", logs[0].Level)
	assert.Equal(t, "Enrichment failed", logs[0].Message)
	assert.Equal(t, 2024, logs[0].Timestamp.Year())
	assert.Equal(t, map[string]interface{}{"symbol": "PEPE"}, logs[0].Fields)

	assert.Equal(t, "info", logs[1].Level)
	assert.Equal(t, "plain text line", logs[1].Message)
}

func TestLogBufferConcurrentAccess(t *testing.T) {
	buffer := NewLogBuffer(100)

	var wg sync.WaitGroup
	numGoroutines := 10
	logsPerGoroutine := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < logsPerGoroutine; j++ {
				buffer.Add("info", fmt.Sprintf("goroutine %d iteration %d", id, j), nil)
				_ = buffer.GetRecentLogs(10)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, uint64(numGoroutines*logsPerGoroutine), buffer.GetStats())
	assert.Len(t, buffer.GetRecentLogs(0), 100)
}
