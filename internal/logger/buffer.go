package logger

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"
)

// LogEntry represents a single log entry in the buffer
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// LogBuffer is a thread-safe ring buffer of recent log entries.
// It implements io.Writer so a zap JSON core can write into it.
type LogBuffer struct {
	mu           sync.Mutex
	ringBuffer   []LogEntry
	maxSize      int
	currentIndex int
	wrapped      bool
	now          func() time.Time

	totalEntries uint64
}

// NewLogBuffer creates a new log buffer with the specified size
func NewLogBuffer(maxSize int) *LogBuffer {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &LogBuffer{
		ringBuffer: make([]LogEntry, maxSize),
		maxSize:    maxSize,
		now:        time.Now,
	}
}

// Add adds a new log entry to the buffer, overwriting the oldest when full
func (lb *LogBuffer) Add(level, message string, fields map[string]interface{}) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.add(LogEntry{
		Timestamp: lb.now(),
		Level:     level,
		Message:   message,
		Fields:    fields,
	})
}

func (lb *LogBuffer) add(entry LogEntry) {
	lb.ringBuffer[lb.currentIndex] = entry
	lb.currentIndex = (lb.currentIndex + 1) % lb.maxSize
	if lb.currentIndex == 0 {
		lb.wrapped = true
	}
	lb.totalEntries++
}

// Write принимает JSON-строки от zap и раскладывает их в LogEntry.
// Нераспознанные строки сохраняются как есть в Message.
func (lb *LogBuffer) Write(p []byte) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	for _, line := range bytes.Split(p, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		lb.add(lb.decode(line))
	}
	return len(p), nil
}

func (lb *LogBuffer) decode(line []byte) LogEntry {
	var raw map[string]interface{}
	if err := json.Unmarshal(line, &raw); err != nil {
		return LogEntry{Timestamp: lb.now(), Level: "info", Message: string(line)}
	}

	entry := LogEntry{Timestamp: lb.now()}
	if v, ok := raw[levelKey].(string); ok {
		entry.Level = v
	}
	if v, ok := raw[messageKey].(string); ok {
		entry.Message = v
	}
	if v, ok := raw[timeKey].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			entry.Timestamp = ts
		}
	}
	delete(raw, levelKey)
	delete(raw, messageKey)
	delete(raw, timeKey)
	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry
}

// GetRecentLogs returns up to limit of the newest entries, oldest first.
// A non-positive limit returns everything held.
func (lb *LogBuffer) GetRecentLogs(limit int) []LogEntry {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	count := lb.currentIndex
	start := 0
	if lb.wrapped {
		count = lb.maxSize
		start = lb.currentIndex
	}
	if limit > 0 && limit < count {
		start += count - limit
		count = limit
	}

	logs := make([]LogEntry, 0, count)
	for i := 0; i < count; i++ {
		logs = append(logs, lb.ringBuffer[(start+i)%lb.maxSize])
	}
	return logs
}

// GetStats returns the total number of entries ever added
func (lb *LogBuffer) GetStats() uint64 {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.totalEntries
}

// Sync satisfies zapcore.WriteSyncer.
func (lb *LogBuffer) Sync() error { return nil }
