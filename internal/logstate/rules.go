package logstate

import (
	"regexp"
	"strings"
)

// Kind is the coarse agent activity classification.
type Kind string

// Activity kinds.
const (
	KindAwaitingUserMessage Kind = "awaiting-user-message"
	KindAwaitingAgent       Kind = "awaiting-agent"
	KindCheckingAgentFile   Kind = "checking-agent-file"
	KindInitial             Kind = "initial"
	KindUnknown             Kind = "unknown"
)

// Inference is the binary idle/running flag some records carry.
type Inference string

// Inference states. The zero value means no marker was seen.
const (
	InferenceIdle    Inference = "idle"
	InferenceRunning Inference = "running"
)

// ThinkingStatus is the canonical status message for an agent that is
// working on a reply.
const ThinkingStatus = "Thinking"

// Update is a partial state change proposed by a rule. Empty fields leave
// the corresponding State field untouched.
type Update struct {
	Kind           Kind
	StatusMessage  string
	InferenceState Inference
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u == Update{}
}

// Rule classifies a record. ok is false when the rule has nothing to say.
type Rule func(rec Record) (u Update, ok bool)

// KindRules decide Kind. They are tried in order and the first match wins.
var KindRules = []Rule{
	TransitionMarker,
	KeywordFallback,
	StructuredStatus,
}

// Annotators run on every record regardless of which kind rule matched.
var Annotators = []Rule{
	InferenceMarker,
	StatusMessageMarker,
}

// Classify runs rec through the kind rules and annotators and merges the
// results. Annotator values override those of the kind rule.
func Classify(rec Record) Update {
	var out Update
	for _, rule := range KindRules {
		if u, ok := rule(rec); ok {
			out = u
			break
		}
	}
	for _, rule := range Annotators {
		u, ok := rule(rec)
		if !ok {
			continue
		}
		if u.StatusMessage != "" {
			out.StatusMessage = u.StatusMessage
		}
		if u.InferenceState != "" {
			out.InferenceState = u.InferenceState
		}
	}
	return out
}

var (
	transitionRe  = regexp.MustCompile(`(?i)state\s+transition:\s*([\w-]+)\s*->\s*([\w-]+)`)
	stateAssignRe = regexp.MustCompile(`(?i)\bstate\s*=\s*"?([\w-]+)`)
	inferenceRe   = regexp.MustCompile(`(?i)inference\s+state:\s*(idle|running)\b`)
	statusMsgRe   = regexp.MustCompile(`(?i)^\s*status:\s*(.+?)\s*$`)
)

// TransitionMarker matches explicit state machine markers such as
// "state transition: Initial -> AwaitingUserMessage" or "state=AwaitingAgent".
func TransitionMarker(rec Record) (Update, bool) {
	if m := transitionRe.FindStringSubmatch(rec.Message); m != nil {
		if k, ok := ParseKind(m[2]); ok {
			return Update{Kind: k}, true
		}
	}
	if m := stateAssignRe.FindStringSubmatch(rec.Message); m != nil {
		if k, ok := ParseKind(m[1]); ok {
			return Update{Kind: k}, true
		}
	}
	return Update{}, false
}

type keyword struct {
	phrase string
	update Update
}

var keywords = []keyword{
	{"ready for input", Update{Kind: KindAwaitingUserMessage}},
	{"waiting for user input", Update{Kind: KindAwaitingUserMessage}},
	{"awaiting user message", Update{Kind: KindAwaitingUserMessage}},
	{"reading agent file", Update{Kind: KindCheckingAgentFile}},
	{"agents.md", Update{Kind: KindCheckingAgentFile}},
	{"thinking", Update{Kind: KindAwaitingAgent, StatusMessage: ThinkingStatus}},
	{"calling tool", Update{Kind: KindAwaitingAgent, StatusMessage: "Calling tool"}},
	{"running command", Update{Kind: KindAwaitingAgent, StatusMessage: "Running command"}},
	{"streaming response", Update{Kind: KindAwaitingAgent, StatusMessage: "Streaming response"}},
}

// KeywordFallback matches well-known phrases in the message.
func KeywordFallback(rec Record) (Update, bool) {
	msg := strings.ToLower(rec.Message)
	if msg == "" {
		return Update{}, false
	}
	for _, kw := range keywords {
		if strings.Contains(msg, kw.phrase) {
			return kw.update, true
		}
	}
	return Update{}, false
}

// StructuredStatus reads a nested status field, either a string or an
// object with a kind or state member.
func StructuredStatus(rec Record) (Update, bool) {
	switch v := rec.Fields["status"].(type) {
	case string:
		if k, ok := ParseKind(v); ok {
			return Update{Kind: k}, true
		}
	case map[string]any:
		for _, key := range []string{"kind", "state"} {
			if s, ok := v[key].(string); ok {
				if k, ok := ParseKind(s); ok {
					return Update{Kind: k}, true
				}
			}
		}
	}
	return Update{}, false
}

// InferenceMarker extracts the idle/running flag.
func InferenceMarker(rec Record) (Update, bool) {
	if s, ok := rec.String("inference_state"); ok {
		switch Inference(strings.ToLower(s)) {
		case InferenceIdle:
			return Update{InferenceState: InferenceIdle}, true
		case InferenceRunning:
			return Update{InferenceState: InferenceRunning}, true
		}
	}
	if m := inferenceRe.FindStringSubmatch(rec.Message); m != nil {
		return Update{InferenceState: Inference(strings.ToLower(m[1]))}, true
	}
	return Update{}, false
}

// StatusMessageMarker records "status: <text>" messages verbatim.
func StatusMessageMarker(rec Record) (Update, bool) {
	if m := statusMsgRe.FindStringSubmatch(rec.Message); m != nil {
		return Update{StatusMessage: m[1]}, true
	}
	return Update{}, false
}

// ParseKind maps the agent's state names (CamelCase, kebab-case or
// snake_case) to a Kind.
func ParseKind(name string) (Kind, bool) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(name)))
	switch norm {
	case "awaitingusermessage":
		return KindAwaitingUserMessage, true
	case "awaitingagent":
		return KindAwaitingAgent, true
	case "checkingagentfile":
		return KindCheckingAgentFile, true
	case "initial":
		return KindInitial, true
	}
	return "", false
}
