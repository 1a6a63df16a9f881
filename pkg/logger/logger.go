package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type Level string

const (
	Debug Level = "debug"
	Info  Level = "info"
	Warn  Level = "warn"
	Error Level = "error"
)

var order = map[Level]int{Debug: 10, Info: 20, Warn: 30, Error: 40}

func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return Debug
	case "warn":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

// Logger writes one JSON object per line. Safe for concurrent use.
type Logger struct {
	mu        sync.Mutex
	level     Level
	component string
	out       io.Writer
}

func New(levelStr string) *Logger {
	return &Logger{level: ParseLevel(levelStr), out: os.Stdout}
}

// With returns a logger that stamps every entry with the component name.
func (l *Logger) With(component string) *Logger {
	return &Logger{level: l.level, component: component, out: l.out}
}

func (l *Logger) log(level Level, msg string, fields map[string]any) {
	if order[level] < order[l.level] {
		return
	}
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": level,
		"msg":   msg,
	}
	if l.component != "" {
		entry["component"] = l.component
	}
	for k, v := range fields {
		entry[k] = v
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = json.NewEncoder(l.out).Encode(entry)
}

func (l *Logger) Debug(msg string, fields ...any) { l.log(Debug, msg, kv(fields...)) }
func (l *Logger) Info(msg string, fields ...any)  { l.log(Info, msg, kv(fields...)) }
func (l *Logger) Warn(msg string, fields ...any)  { l.log(Warn, msg, kv(fields...)) }
func (l *Logger) Error(msg string, fields ...any) { l.log(Error, msg, kv(fields...)) }

func kv(fields ...any) map[string]any {
	m := map[string]any{}
	for i := 0; i+1 < len(fields); i += 2 {
		k, ok := fields[i].(string)
		if !ok {
			k = fmt.Sprintf("f%d", i)
		}
		m[k] = fields[i+1]
	}
	return m
}
