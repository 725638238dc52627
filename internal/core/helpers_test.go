package core

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"colonywork/plugins/build"
)

type logEntry struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (c *captureLogger) add(level, msg string, args []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, logEntry{level: level, msg: msg, args: args})
}

func (c *captureLogger) Debug(msg string, args ...any) { c.add("debug", msg, args) }
func (c *captureLogger) Info(msg string, args ...any)  { c.add("info", msg, args) }
func (c *captureLogger) Warn(msg string, args ...any)  { c.add("warn", msg, args) }
func (c *captureLogger) Error(msg string, args ...any) { c.add("error", msg, args) }

// find returns the first entry at level whose message is msg.
func (c *captureLogger) find(level, msg string) (logEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.level == level && e.msg == msg {
			return e, true
		}
	}
	return logEntry{}, false
}

func (e logEntry) value(key string) any {
	for i := 0; i+1 < len(e.args); i += 2 {
		if k, ok := e.args[i].(string); ok && k == key {
			return e.args[i+1]
		}
	}
	return nil
}

func (e logEntry) String() string {
	parts := make([]string, 0, len(e.args))
	for _, a := range e.args {
		parts = append(parts, fmt.Sprint(a))
	}
	return e.level + ":" + e.msg + " " + strings.Join(parts, " ")
}

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func newBuildService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc := NewInMemoryService(opts...)
	if _, err := svc.InstallPlugin(build.New()); err != nil {
		t.Fatalf("install build plugin: %v", err)
	}
	return svc
}

func builder(level int) *Citizen {
	return NewCitizen(uuid.New(), "builder", build.JobBuilder, level)
}

func buildPlugin() build.Plugin { return build.New() }

func newRemoval(structure string) *build.RemovalOrder {
	return build.NewRemovalOrder(structure, build.Location{})
}
