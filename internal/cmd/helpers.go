package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/overseer/internal/config"
	"github.com/jmgilman/overseer/internal/control"
	"github.com/jmgilman/overseer/internal/model"
)

// dialTimeout bounds connecting to the daemon.
const dialTimeout = 5 * time.Second

// Output formats accepted by --output.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	errDaemonUnavailable = errors.New("overseer daemon not reachable")
	errNoInstance        = errors.New("no matching instance")
	errAmbiguousInstance = errors.New("instance reference is ambiguous")
)

func requireConfig(ctx context.Context) (*config.Config, error) {
	cfg := ConfigFromContext(ctx)
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

// serverAddr returns --server, or the configured listen address.
func serverAddr(cmd *cobra.Command) string {
	if addr, err := cmd.Flags().GetString("server"); err == nil && addr != "" {
		return addr
	}
	if cfg := ConfigFromContext(cmd.Context()); cfg != nil && cfg.Server.Listen != "" {
		return cfg.Server.Listen
	}
	return config.DefaultListen
}

// connect dials the daemon. Callers close the returned client.
func connect(cmd *cobra.Command) (*control.Client, error) {
	addr := serverAddr(cmd)
	ctx, cancel := context.WithTimeout(cmd.Context(), dialTimeout)
	defer cancel()

	c, err := control.Dial(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("%w at %s (is 'overseer serve' running?): %v", errDaemonUnavailable, addr, err)
	}
	return c, nil
}

// withClient runs fn with a connected client.
func withClient(cmd *cobra.Command, fn func(c *control.Client) error) error {
	c, err := connect(cmd)
	if err != nil {
		return err
	}
	defer c.Close() //nolint:errcheck // best-effort cleanup
	return fn(c)
}

// resolveInstance finds the instance ref names on the daemon.
func resolveInstance(ctx context.Context, c *control.Client, ref string) (model.Instance, error) {
	var list []model.Instance
	if err := c.Call(ctx, control.TypeListInstances, nil, &list); err != nil {
		return model.Instance{}, fmt.Errorf("list instances: %w", err)
	}
	return matchInstance(list, ref)
}

// matchInstance selects an instance by exact id, exact name, or a unique id
// prefix, in that order.
func matchInstance(list []model.Instance, ref string) (model.Instance, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Instance{}, fmt.Errorf("%w: empty reference", errNoInstance)
	}

	for _, inst := range list {
		if inst.ID == ref {
			return inst, nil
		}
	}
	for _, inst := range list {
		if inst.Name == ref {
			return inst, nil
		}
	}

	var matches []model.Instance
	for _, inst := range list {
		if strings.HasPrefix(inst.ID, ref) {
			matches = append(matches, inst)
		}
	}
	switch len(matches) {
	case 0:
		return model.Instance{}, fmt.Errorf("%w: %s", errNoInstance, ref)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = model.ShortID(m.ID)
		}
		return model.Instance{}, fmt.Errorf("%w: %s matches %s", errAmbiguousInstance, ref, formatList(ids))
	}
}

// outputFormat returns the validated --output flag.
func outputFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", fmt.Errorf("get output flag: %w", err)
	}
	switch format {
	case formatTable, formatJSON, formatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (valid: table, json, yaml)", format)
	}
}

// writeStructured renders v as JSON or YAML. YAML keys follow the JSON
// field names so both formats describe the same document.
func writeStructured(w io.Writer, format string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if format == formatJSON {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("convert output: %w", err)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func defaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, config.DefaultDataDir), nil
}

// formatTimeAgo formats a time as a human-readable relative time.
func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	default:
		return fmt.Sprintf("%dmo ago", int(d.Hours()/24/30))
	}
}
