package logstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, line string) Record {
	t.Helper()
	rec, err := ParseRecord(line)
	require.NoError(t, err)
	return rec
}

func TestParseRecord(t *testing.T) {
	t.Run("standard keys", func(t *testing.T) {
		rec := mustParse(t, `{"timestamp":"2025-01-02T03:04:05Z","level":"INFO","message":"hello","fields":{"thread_id":"T-1"},"extra":1}`)
		assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), rec.Time)
		assert.Equal(t, "info", rec.Level)
		assert.Equal(t, "hello", rec.Message)
		assert.Equal(t, "T-1", rec.ThreadID())
		assert.InDelta(t, 1.0, rec.Fields["extra"], 0)
	})

	t.Run("short keys and epoch millis", func(t *testing.T) {
		rec := mustParse(t, `{"ts":1700000000000,"lvl":"debug","msg":"short"}`)
		assert.Equal(t, time.UnixMilli(1700000000000), rec.Time)
		assert.Equal(t, "short", rec.Message)
	})

	t.Run("token usage", func(t *testing.T) {
		rec := mustParse(t, `{"msg":"done","usage":{"total_tokens":1234}}`)
		n, ok := rec.TokensUsed()
		require.True(t, ok)
		assert.Equal(t, int64(1234), n)

		_, ok = mustParse(t, `{"msg":"x"}`).TokensUsed()
		assert.False(t, ok)
	})

	for _, bad := range []string{"", "plain text", "{not json", `["array"]`} {
		t.Run("malformed "+bad, func(t *testing.T) {
			_, err := ParseRecord(bad)
			assert.ErrorIs(t, err, ErrMalformedLogRecord)
		})
	}
}

func TestTransitionMarker(t *testing.T) {
	tests := []struct {
		msg  string
		want Kind
		ok   bool
	}{
		{"state transition: Initial -> AwaitingUserMessage", KindAwaitingUserMessage, true},
		{"State Transition: AwaitingUserMessage->AwaitingAgent", KindAwaitingAgent, true},
		{"entering state=checking-agent-file", KindCheckingAgentFile, true},
		{"state=Bogus", "", false},
		{"nothing here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			u, ok := TransitionMarker(Record{Message: tt.msg})
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, u.Kind)
		})
	}
}

func TestKeywordFallback(t *testing.T) {
	u, ok := KeywordFallback(Record{Message: "Agent is Ready for input"})
	require.True(t, ok)
	assert.Equal(t, KindAwaitingUserMessage, u.Kind)

	u, ok = KeywordFallback(Record{Message: "thinking..."})
	require.True(t, ok)
	assert.Equal(t, KindAwaitingAgent, u.Kind)
	assert.Equal(t, ThinkingStatus, u.StatusMessage)

	u, ok = KeywordFallback(Record{Message: "loaded AGENTS.md"})
	require.True(t, ok)
	assert.Equal(t, KindCheckingAgentFile, u.Kind)

	_, ok = KeywordFallback(Record{Message: "connected"})
	assert.False(t, ok)
}

func TestStructuredStatus(t *testing.T) {
	u, ok := StructuredStatus(Record{Fields: map[string]any{"status": "AwaitingAgent"}})
	require.True(t, ok)
	assert.Equal(t, KindAwaitingAgent, u.Kind)

	u, ok = StructuredStatus(Record{Fields: map[string]any{"status": map[string]any{"state": "initial"}}})
	require.True(t, ok)
	assert.Equal(t, KindInitial, u.Kind)

	_, ok = StructuredStatus(Record{Fields: map[string]any{"status": 3.0}})
	assert.False(t, ok)
}

func TestAnnotators(t *testing.T) {
	u, ok := InferenceMarker(Record{Fields: map[string]any{"inference_state": "RUNNING"}})
	require.True(t, ok)
	assert.Equal(t, InferenceRunning, u.InferenceState)

	u, ok = InferenceMarker(Record{Message: "inference state: idle"})
	require.True(t, ok)
	assert.Equal(t, InferenceIdle, u.InferenceState)

	u, ok = StatusMessageMarker(Record{Message: "status: Compacting context "})
	require.True(t, ok)
	assert.Equal(t, "Compacting context", u.StatusMessage)
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// The transition marker names AwaitingUserMessage while the keyword
	// rule alone would say awaiting-agent.
	rec := Record{
		Message: "state transition: AwaitingAgent -> AwaitingUserMessage (was thinking)",
		Fields:  map[string]any{"status": "Initial"},
	}
	assert.Equal(t, KindAwaitingUserMessage, Classify(rec).Kind)

	// Keyword beats the structured field.
	rec = Record{Message: "thinking", Fields: map[string]any{"status": "Initial"}}
	assert.Equal(t, KindAwaitingAgent, Classify(rec).Kind)

	// Structured field applies only when nothing else matched.
	rec = Record{Message: "tick", Fields: map[string]any{"status": "Initial"}}
	assert.Equal(t, KindInitial, Classify(rec).Kind)
}

func TestClassify_AnnotatorsIndependentOfKind(t *testing.T) {
	rec := Record{
		Message: "ready for input",
		Fields:  map[string]any{"inference_state": "idle"},
	}
	u := Classify(rec)
	assert.Equal(t, KindAwaitingUserMessage, u.Kind)
	assert.Equal(t, InferenceIdle, u.InferenceState)

	assert.True(t, Classify(Record{Message: "connected"}).Empty())
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"AwaitingUserMessage":   KindAwaitingUserMessage,
		"awaiting-user-message": KindAwaitingUserMessage,
		"awaiting_agent":        KindAwaitingAgent,
		"CheckingAgentFile":     KindCheckingAgentFile,
		" Initial ":             KindInitial,
	} {
		got, ok := ParseKind(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseKind("unknown")
	assert.False(t, ok)
}
