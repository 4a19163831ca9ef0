package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/dialectshift/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name     string
		existing bool
		args     []string
		wantErr  bool
	}{
		{name: "init empty directory"},
		{name: "init existing config without force", existing: true, wantErr: true},
		{name: "init existing config with force", existing: true, args: []string{"--force"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetConfig(t)
			tmpDir := t.TempDir()
			t.Chdir(tmpDir)

			if tt.existing {
				require.NoError(t, os.WriteFile(config.ConfigFileName, []byte("existing"), 0600))
			}

			cmd := NewInitCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "--force")
				data, _ := os.ReadFile(config.ConfigFileName)
				assert.Equal(t, "existing", string(data))
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "wrote")

			info, err := os.Stat(filepath.Join(tmpDir, config.ConfigFileName))
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
		})
	}
}

func TestInitCommand_WritesLoadableConfig(t *testing.T) {
	resetConfig(t)
	dir := filepath.Join(t.TempDir(), "project")

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{dir})
	require.NoError(t, cmd.Execute())

	t.Setenv("PGPASSWORD", "s3cret")
	cfg, err := config.LoadConfig(filepath.Join(dir, config.ConfigFileName), nil)
	require.NoError(t, err)

	def := config.Default()
	assert.Equal(t, filepath.Join(dir, def.RoutesDir), cfg.RoutesDir)
	assert.Equal(t, def.Files, cfg.Files)
	assert.Equal(t, def.Rewrite.Imports, cfg.Rewrite.Imports)
	assert.Equal(t, def.Rewrite.Helpers, cfg.Rewrite.Helpers)
	assert.Equal(t, filepath.Join(dir, "data", "app.db"), cfg.Migrate.SQLite)
	assert.Contains(t, cfg.Migrate.Postgres, "user:s3cret@")
}
