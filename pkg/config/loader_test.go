package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "municrud.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Load(t *testing.T) {
	t.Run("Should load registry defaults", func(t *testing.T) {
		cfg, err := NewService().Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:3000", cfg.API.BaseURL)
		assert.Equal(t, 15*time.Second, cfg.API.Timeout)
		assert.Equal(t, 10, cfg.Grid.PageSize)
		assert.Equal(t, 500*time.Millisecond, cfg.Grid.SearchDebounce)
		assert.Equal(t, "auto", cfg.CLI.DefaultFormat)
		assert.Equal(t, "info", cfg.Runtime.LogLevel)
	})

	t.Run("Should merge a partial YAML file over defaults", func(t *testing.T) {
		path := writeYAML(t, "api:\n  base_url: https://staff.muni.cl\ngrid:\n  page_size: 30\n  search_debounce: 250ms\n")
		svc := NewService()
		cfg, err := svc.Load(context.Background(), NewYAMLProvider(path))
		require.NoError(t, err)
		assert.Equal(t, "https://staff.muni.cl", cfg.API.BaseURL)
		assert.Equal(t, 15*time.Second, cfg.API.Timeout)
		assert.Equal(t, 30, cfg.Grid.PageSize)
		assert.Equal(t, 250*time.Millisecond, cfg.Grid.SearchDebounce)
		assert.Equal(t, SourceYAML, svc.GetSource("grid.page_size"))
		assert.Equal(t, SourceDefault, svc.GetSource("api.timeout"))
	})

	t.Run("Should let environment override YAML", func(t *testing.T) {
		path := writeYAML(t, "grid:\n  page_size: 30\n")
		t.Setenv("MUNICRUD_PAGE_SIZE", "40")
		t.Setenv("MUNICRUD_TOKEN", "env-token")
		svc := NewService()
		cfg, err := svc.Load(context.Background(), NewYAMLProvider(path))
		require.NoError(t, err)
		assert.Equal(t, 40, cfg.Grid.PageSize)
		assert.Equal(t, "env-token", cfg.Session.Token.Value())
		assert.Equal(t, SourceEnv, svc.GetSource("grid.page_size"))
	})

	t.Run("Should map unlisted variables by naming convention", func(t *testing.T) {
		t.Setenv("MUNICRUD_GRID_DEPARTMENT_CACHE_SIZE", "4")
		cfg, err := NewService().Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.Grid.DepartmentCacheSize)
	})

	t.Run("Should let CLI flags win over everything", func(t *testing.T) {
		t.Setenv("MUNICRUD_ROLE", "user")
		path := writeYAML(t, "session:\n  role: admin\n")
		svc := NewService()
		cfg, err := svc.Load(
			context.Background(),
			NewCLIProvider(map[string]any{"role": "superAdmin", "unknown-flag": "x"}),
			NewYAMLProvider(path),
		)
		require.NoError(t, err)
		assert.Equal(t, "superAdmin", cfg.Session.Role)
		assert.Equal(t, SourceCLI, svc.GetSource("session.role"))
	})

	t.Run("Should reject a page size outside the allowed set", func(t *testing.T) {
		path := writeYAML(t, "grid:\n  page_size: 25\n")
		_, err := NewService().Load(context.Background(), NewYAMLProvider(path))
		assert.Error(t, err)
	})

	t.Run("Should reject an unknown viewer role", func(t *testing.T) {
		_, err := NewService().Load(context.Background(), NewCLIProvider(map[string]any{"role": "root"}))
		assert.Error(t, err)
	})

	t.Run("Should treat a missing YAML file as empty", func(t *testing.T) {
		cfg, err := NewService().Load(context.Background(), NewYAMLProvider(filepath.Join(t.TempDir(), "nope.yaml")))
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Grid.PageSize)
	})
}

func TestTransformEnvKey(t *testing.T) {
	t.Run("Should split section from field", func(t *testing.T) {
		assert.Equal(t, "grid.search_debounce", transformEnvKey("MUNICRUD_GRID_SEARCH_DEBOUNCE"))
		assert.Equal(t, "", transformEnvKey("MUNICRUD_TOKEN"))
		assert.Equal(t, "api.base_url", transformEnvKey("MUNICRUD__API__BASE_URL"))
	})
}

func TestEnvMappings(t *testing.T) {
	t.Run("Should derive mappings from struct tags", func(t *testing.T) {
		m := GenerateEnvToConfigMap()
		assert.Equal(t, "api.base_url", m["MUNICRUD_API_URL"])
		assert.Equal(t, "session.token", m["MUNICRUD_TOKEN"])
		assert.Equal(t, "grid.page_size", m["MUNICRUD_PAGE_SIZE"])
	})
	t.Run("Should flag the session token as sensitive", func(t *testing.T) {
		assert.True(t, IsSensitiveConfigPath("session.token"))
		assert.False(t, IsSensitiveConfigPath("session.role"))
		assert.False(t, IsSensitiveConfigPath("grid"))
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("Should export variables without overriding existing ones", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("MUNICRUD_TEST_FROM_FILE=file\nMUNICRUD_TEST_EXISTING=file\n"), 0o600))
		t.Setenv("MUNICRUD_TEST_EXISTING", "process")
		t.Setenv("MUNICRUD_TEST_FROM_FILE", "")
		require.NoError(t, os.Unsetenv("MUNICRUD_TEST_FROM_FILE"))
		_, err := LoadEnvFile(path)
		require.NoError(t, err)
		assert.Equal(t, "file", os.Getenv("MUNICRUD_TEST_FROM_FILE"))
		assert.Equal(t, "process", os.Getenv("MUNICRUD_TEST_EXISTING"))
	})
	t.Run("Should ignore a missing file", func(t *testing.T) {
		_, err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
		assert.NoError(t, err)
	})
}
