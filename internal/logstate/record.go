// Package logstate infers the agent's coarse activity state from its
// structured log.
//
// The agent writes one JSON object per line. A Monitor tails that file,
// parses each appended line into a Record, runs the record through an
// ordered chain of pure classification rules and folds the result into a
// State. Transitions are reported as Events.
package logstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedLogRecord is returned by ParseRecord for lines that are not
// JSON objects. The monitor skips such lines.
var ErrMalformedLogRecord = errors.New("malformed log record")

// Record is one parsed line of the agent's structured log.
type Record struct {
	Time    time.Time
	Level   string
	Message string
	Fields  map[string]any
	Raw     string
}

// reserved keys are lifted out of the object; everything else ends up in Fields.
var reserved = map[string]bool{
	"timestamp": true, "ts": true, "time": true,
	"level": true, "lvl": true,
	"message": true, "msg": true,
	"fields": true,
}

// ParseRecord parses a single log line.
func ParseRecord(line string) (Record, error) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] != '{' {
		return Record{}, ErrMalformedLogRecord
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedLogRecord, err)
	}

	rec := Record{Raw: line, Fields: map[string]any{}}
	rec.Message = firstString(obj, "message", "msg")
	rec.Level = strings.ToLower(firstString(obj, "level", "lvl"))
	rec.Time = parseTime(firstValue(obj, "timestamp", "ts", "time"))

	if nested, ok := obj["fields"].(map[string]any); ok {
		for k, v := range nested {
			rec.Fields[k] = v
		}
	}
	for k, v := range obj {
		if !reserved[k] {
			rec.Fields[k] = v
		}
	}
	return rec, nil
}

// String returns the field value as a string if it is one.
func (r Record) String(key string) (string, bool) {
	s, ok := r.Fields[key].(string)
	return s, ok
}

// ThreadID returns the conversation thread the record belongs to, if any.
func (r Record) ThreadID() string {
	for _, k := range []string{"thread_id", "threadId", "thread"} {
		if s, ok := r.String(k); ok && s != "" {
			return s
		}
	}
	return ""
}

// TokensUsed returns the cumulative token count reported by the record.
func (r Record) TokensUsed() (int64, bool) {
	for _, k := range []string{"total_tokens", "tokens_used", "tokens"} {
		if n, ok := toInt(r.Fields[k]); ok {
			return n, true
		}
	}
	if usage, ok := r.Fields["usage"].(map[string]any); ok {
		for _, k := range []string{"total_tokens", "total"} {
			if n, ok := toInt(usage[k]); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func firstValue(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v
		}
	}
	return nil
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok {
			return s
		}
	}
	return ""
}

func parseTime(v any) time.Time {
	switch t := v.(type) {
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.000", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	case float64:
		// Values above 1e12 are milliseconds.
		if t > 1e12 {
			return time.UnixMilli(int64(t))
		}
		sec := int64(t)
		return time.Unix(sec, int64((t-float64(sec))*1e9))
	}
	return time.Time{}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}
