package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openpointing/glidepoint/gesture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTunablesJSON(t *testing.T) {
	path := writeFile(t, "tunables.json", `{"ZFinger": 45, "Tapping": false}`)

	cfg, err := loadTunables(path, gesture.DefaultTunables())
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.ZFinger)
	assert.False(t, cfg.Tapping)
	// Fields the file does not name keep their defaults.
	assert.Equal(t, gesture.DefaultTunables().DivisorX, cfg.DivisorX)
}

func TestLoadTunablesYAML(t *testing.T) {
	path := writeFile(t, "tunables.yaml", "zfinger: 50\nswipedx: 300\n")

	cfg, err := loadTunables(path, gesture.DefaultTunables())
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.ZFinger)
	assert.Equal(t, 300, cfg.SwipeDX)
}

func TestLoadTunablesTOML(t *testing.T) {
	path := writeFile(t, "tunables.toml", "ZFinger = 40\nDragging = false\n")

	cfg, err := loadTunables(path, gesture.DefaultTunables())
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.ZFinger)
	assert.False(t, cfg.Dragging)
}

func TestLoadTunablesMissingFileKeepsBase(t *testing.T) {
	base := gesture.DefaultTunables()
	cfg, err := loadTunables(filepath.Join(t.TempDir(), "absent.json"), base)
	assert.Error(t, err)
	assert.Equal(t, base, cfg)
}

func TestLoadTunablesBadSyntax(t *testing.T) {
	path := writeFile(t, "tunables.json", `{"ZFinger": `)

	base := gesture.DefaultTunables()
	cfg, err := loadTunables(path, base)
	assert.Error(t, err)
	assert.Equal(t, base, cfg)
}
