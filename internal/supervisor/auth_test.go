package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyAuth(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  authOutcome
	}{
		{name: "empty", lines: nil, want: authUndetermined},
		{name: "credits", lines: []string{"Your CREDIT BALANCE IS TOO LOW"}, want: authNoCredits},
		{name: "auth failure", lines: []string{"error: Invalid API key"}, want: authFailed},
		{name: "credits win over auth", lines: []string{"unauthorized", "out of credits"}, want: authNoCredits},
		{name: "ready", lines: []string{"? for help"}, want: authReady},
		{name: "failure wins over ready", lines: []string{"? for help", "please log in"}, want: authFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyAuth(tt.lines, DefaultCreditPhrases, DefaultAuthFailurePhrases, DefaultReadyPhrases)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContainsAny_IgnoresBlankPhrases(t *testing.T) {
	assert.False(t, containsAny("anything", []string{"", "  "}))
}
