package supervisor

import (
	"log/slog"
	"time"

	"github.com/jmgilman/overseer/internal/events"
	"github.com/jmgilman/overseer/internal/logstate"
	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/multiplexer"
	"github.com/jmgilman/overseer/internal/slogger"
)

// Default timings and buffer sizes.
const (
	DefaultStartupDelay       = 1500 * time.Millisecond
	DefaultSubmitDelay        = 300 * time.Millisecond
	DefaultAuthSettleDelay    = 5 * time.Second
	DefaultOutputPollInterval = 2 * time.Second
	DefaultOutputLines        = 1000
	DefaultCaptureLines       = 200
	DefaultContinuationMarker = `\`
	DefaultInactivityTimeout  = 300
	monitorEventBuffer        = 256
	outputCaptureConcurrency  = 8
)

// Default phrases for authentication inference. Matching is
// case-insensitive.
var (
	DefaultCreditPhrases = []string{
		"insufficient credits",
		"credit balance is too low",
		"out of credits",
		"quota exceeded",
	}
	DefaultAuthFailurePhrases = []string{
		"not authenticated",
		"authentication failed",
		"please log in",
		"please login",
		"invalid api key",
		"unauthorized",
	}
	DefaultReadyPhrases = []string{
		"ready for input",
		"type your message",
		"for help",
	}
)

// AgentOptions describes how the external agent is started.
type AgentOptions struct {
	Command string
	Args    []string
	Env     map[string]string
	// LogFileEnv names the variable that tells the agent where to write its
	// structured log.
	LogFileEnv string
	// LogLevelEnv names the variable carrying the effective log level.
	LogLevelEnv string
	// ThreadFlag is passed with the thread id when resuming a thread.
	ThreadFlag string
	// ContinuationMarker is typed before Enter on every line of a
	// multi-line prompt except the last.
	ContinuationMarker string
	// InterruptKey is the named key sent to stop the agent.
	InterruptKey string
}

// Options configures a Supervisor.
type Options struct {
	Agent    AgentOptions
	Defaults model.InstanceConfig
	Tools    []string
	LogsDir  string

	// Catalog persists instance snapshots. Nil disables persistence.
	Catalog catalogStore
	// Events receives every AgentEvent. Nil discards.
	Events events.Publisher
	Logger *slog.Logger
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	Monitor logstate.Options

	StartupDelay       time.Duration
	SubmitDelay        time.Duration
	AuthSettleDelay    time.Duration
	OutputPollInterval time.Duration
	OutputLines        int
	CaptureLines       int

	// OptimisticAuth treats output with neither failure nor ready phrases
	// as authenticated.
	OptimisticAuth     bool
	CreditPhrases      []string
	AuthFailurePhrases []string
	ReadyPhrases       []string
}

// DefaultOptions returns Options with every default applied and
// optimistic authentication enabled.
func DefaultOptions() Options {
	o := Options{OptimisticAuth: true}
	return o.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.Agent.ContinuationMarker == "" {
		o.Agent.ContinuationMarker = DefaultContinuationMarker
	}
	if o.Agent.InterruptKey == "" {
		o.Agent.InterruptKey = multiplexer.KeyInterrupt
	}
	if o.Defaults.InactivityThresholdSeconds <= 0 {
		o.Defaults.InactivityThresholdSeconds = DefaultInactivityTimeout
	}
	if o.Events == nil {
		o.Events = events.Noop{}
	}
	o.Logger = slogger.OrDiscard(o.Logger)
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.StartupDelay < 0 {
		o.StartupDelay = 0
	} else if o.StartupDelay == 0 {
		o.StartupDelay = DefaultStartupDelay
	}
	if o.SubmitDelay < 0 {
		o.SubmitDelay = 0
	} else if o.SubmitDelay == 0 {
		o.SubmitDelay = DefaultSubmitDelay
	}
	if o.AuthSettleDelay <= 0 {
		o.AuthSettleDelay = DefaultAuthSettleDelay
	}
	if o.OutputPollInterval <= 0 {
		o.OutputPollInterval = DefaultOutputPollInterval
	}
	if o.OutputLines <= 0 {
		o.OutputLines = DefaultOutputLines
	}
	if o.CaptureLines <= 0 {
		o.CaptureLines = DefaultCaptureLines
	}
	if o.CreditPhrases == nil {
		o.CreditPhrases = DefaultCreditPhrases
	}
	if o.AuthFailurePhrases == nil {
		o.AuthFailurePhrases = DefaultAuthFailurePhrases
	}
	if o.ReadyPhrases == nil {
		o.ReadyPhrases = DefaultReadyPhrases
	}
	if o.Monitor.Logger == nil {
		o.Monitor.Logger = o.Logger
	}
	if o.Monitor.Clock == nil {
		o.Monitor.Clock = o.Clock
	}
	return o
}
