package model

import "slices"

// InstanceConfig is the per-instance supervision policy.
//
// The same type carries global defaults, per-instance overrides and the
// effective merge of both. Pointer fields distinguish "unset" from false.
type InstanceConfig struct {
	AutoRestart                *bool    `json:"autoRestart,omitempty"`
	InactivityThresholdSeconds int      `json:"inactivityThresholdSeconds,omitempty"`
	RequireApproval            *bool    `json:"requireApproval,omitempty"`
	ErrorPatterns              []string `json:"errorPatterns,omitempty"`
	LogLevel                   string   `json:"logLevel,omitempty"`
	CommandAllowlist           []string `json:"commandAllowlist,omitempty"`
}

// Merge returns c with every field set in over replacing the default.
func (c InstanceConfig) Merge(over InstanceConfig) InstanceConfig {
	out := c.Clone()
	if over.AutoRestart != nil {
		out.AutoRestart = Bool(*over.AutoRestart)
	}
	if over.InactivityThresholdSeconds > 0 {
		out.InactivityThresholdSeconds = over.InactivityThresholdSeconds
	}
	if over.RequireApproval != nil {
		out.RequireApproval = Bool(*over.RequireApproval)
	}
	if over.ErrorPatterns != nil {
		out.ErrorPatterns = slices.Clone(over.ErrorPatterns)
	}
	if over.LogLevel != "" {
		out.LogLevel = over.LogLevel
	}
	if over.CommandAllowlist != nil {
		out.CommandAllowlist = slices.Clone(over.CommandAllowlist)
	}
	return out
}

// Clone returns a deep copy of the config.
func (c InstanceConfig) Clone() InstanceConfig {
	out := c
	if c.AutoRestart != nil {
		out.AutoRestart = Bool(*c.AutoRestart)
	}
	if c.RequireApproval != nil {
		out.RequireApproval = Bool(*c.RequireApproval)
	}
	out.ErrorPatterns = slices.Clone(c.ErrorPatterns)
	out.CommandAllowlist = slices.Clone(c.CommandAllowlist)
	return out
}

// AutoRestartEnabled reports whether automatic restarts are allowed.
// Only an explicit false disables them.
func (c InstanceConfig) AutoRestartEnabled() bool {
	return c.AutoRestart == nil || *c.AutoRestart
}

// ApprovalRequired reports whether commands need a manual decision by default.
func (c InstanceConfig) ApprovalRequired() bool {
	return c.RequireApproval != nil && *c.RequireApproval
}

// IsZero reports whether no field is set.
func (c InstanceConfig) IsZero() bool {
	return c.AutoRestart == nil &&
		c.InactivityThresholdSeconds == 0 &&
		c.RequireApproval == nil &&
		c.ErrorPatterns == nil &&
		c.LogLevel == "" &&
		c.CommandAllowlist == nil
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}
