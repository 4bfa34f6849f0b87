package multiplexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSessionName(t *testing.T) {
	t.Run("strips uuid hyphens", func(t *testing.T) {
		got := FormatSessionName("0f8fad5b-d9cb-469f-a165-70867728950e")
		assert.Equal(t, "ovs-0f8fad5bd9cb469fa16570867728950e", got)
	})

	t.Run("short IDs", func(t *testing.T) {
		assert.Equal(t, "ovs-a", FormatSessionName("a"))
	})
}

func TestParseSessionName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "valid format", input: "ovs-abc123", expected: "abc123"},
		{name: "wrong prefix", input: "other-abc123", expected: ""},
		{name: "no prefix", input: "abc123", expected: ""},
		{name: "only prefix", input: "ovs-", expected: ""},
		{name: "extra hyphen", input: "ovs-abc-123", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSessionName(tt.input))
		})
	}
}

func TestFormatAndParseRoundTrip(t *testing.T) {
	for _, id := range []string{"abc123", "0f8fad5b-d9cb-469f-a165-70867728950e"} {
		formatted := FormatSessionName(id)
		assert.True(t, IsManagedSession(formatted), formatted)
		assert.Equal(t, FormatSessionName(id)[len(SessionPrefix)+1:], ParseSessionName(formatted))
	}
	assert.False(t, IsManagedSession("main"))
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "/var/log/agent.log", ShellQuote("/var/log/agent.log"))
	assert.Equal(t, "--log-level=debug", ShellQuote("--log-level=debug"))
	assert.Equal(t, "''", ShellQuote(""))
	assert.Equal(t, "'two words'", ShellQuote("two words"))
	assert.Equal(t, `'it'\''s'`, ShellQuote("it's"))
}
