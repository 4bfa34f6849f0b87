package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmgilman/overseer/internal/model"
)

func TestEvaluate(t *testing.T) {
	gated := model.InstanceConfig{
		RequireApproval:  model.Bool(true),
		CommandAllowlist: []string{"git status", "  ", "LS"},
	}

	tests := []struct {
		name    string
		cfg     model.InstanceConfig
		command string
		execute bool
		matched string
		reason  string
	}{
		{
			name:    "approval unset",
			cfg:     model.InstanceConfig{},
			command: "rm -rf /",
			execute: true,
			reason:  ReasonApprovalNotRequired,
		},
		{
			name:    "approval explicitly off",
			cfg:     model.InstanceConfig{RequireApproval: model.Bool(false)},
			command: "rm -rf /",
			execute: true,
			reason:  ReasonApprovalNotRequired,
		},
		{
			name:    "exact allowlist match",
			cfg:     gated,
			command: "git status",
			execute: true,
			matched: "git status",
			reason:  ReasonAllowlisted,
		},
		{
			name:    "prefix match is case-insensitive",
			cfg:     gated,
			command: "  GIT   Status --short",
			execute: true,
			matched: "git status",
			reason:  ReasonAllowlisted,
		},
		{
			name:    "substring match",
			cfg:     gated,
			command: "please run ls -la",
			execute: true,
			matched: "LS",
			reason:  ReasonAllowlisted,
		},
		{
			name:    "no match is held",
			cfg:     gated,
			command: "rm -rf /",
			execute: false,
			reason:  ReasonNotAllowlisted,
		},
		{
			name:    "empty command is held",
			cfg:     gated,
			command: "   ",
			execute: false,
			reason:  ReasonNotAllowlisted,
		},
		{
			name:    "empty allowlist holds everything",
			cfg:     model.InstanceConfig{RequireApproval: model.Bool(true)},
			command: "git status",
			execute: false,
			reason:  ReasonNotAllowlisted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.cfg, tt.command)
			assert.Equal(t, tt.execute, d.Execute)
			assert.Equal(t, tt.matched, d.MatchedEntry)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestMatch_BlankEntriesNeverMatch(t *testing.T) {
	_, ok := Match([]string{"", "   "}, "anything")
	assert.False(t, ok)
}
