// Package cmdtest builds command contexts for tests of the cli/cmd packages.
package cmdtest

import (
	"bytes"
	"context"
	"testing"

	"github.com/municrud/municrud/cli/helpers"
	"github.com/municrud/municrud/pkg/config"
	"github.com/municrud/municrud/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// Context returns a context carrying a loaded config manager that points at
// baseURL and forces JSON output. Extra flags override the defaults.
func Context(t *testing.T, baseURL, role string, flags map[string]any) context.Context {
	t.Helper()
	values := map[string]any{
		"api-url": baseURL,
		"token":   "test-token",
		"role":    role,
		"format":  "json",
	}
	for k, v := range flags {
		values[k] = v
	}
	ctx := logger.ContextWithLogger(context.Background(), logger.NewLogger(logger.TestConfig()))
	m := config.NewManager(config.NewService())
	cfg, err := m.Load(ctx, config.NewCLIProvider(values))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close(ctx) })
	ctx = config.ContextWithManager(ctx, m)
	return context.WithValue(ctx, helpers.ConfigKey, cfg)
}

// Run executes c with args and returns what it wrote to stdout
func Run(ctx context.Context, c *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&bytes.Buffer{})
	c.SetArgs(args)
	c.SilenceUsage = true
	c.SilenceErrors = true
	err := c.ExecuteContext(ctx)
	return out.String(), err
}
