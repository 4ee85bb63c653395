package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinReturnsCopy(t *testing.T) {
	a := Builtin()
	require.NotEmpty(t, a)
	a[0].Name = "mutated"
	a[0].ConfigDirs[0] = "mutated"

	b := Builtin()
	assert.NotEqual(t, "mutated", b[0].Name)
	assert.NotEqual(t, "mutated", b[0].ConfigDirs[0])
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"claude", "factory", "opencode", "pi"}, Names())
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantOK  bool
		wantDir string
	}{
		{name: "exact", input: "claude", wantOK: true, wantDir: ".claude"},
		{name: "case insensitive", input: "OpenCode", wantOK: true, wantDir: ".config/opencode"},
		{name: "surrounding space", input: "  pi ", wantOK: true, wantDir: ".pi"},
		{name: "unknown", input: "vim", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Lookup(tt.input)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantDir, p.ConfigDirs[0])
			}
		})
	}
}

func TestConfigDirs(t *testing.T) {
	home := filepath.FromSlash("/home/dev")
	dirs := ConfigDirs(home, Builtin())
	assert.Equal(t, []string{
		filepath.Join(home, ".claude"),
		filepath.Join(home, ".factory"),
		filepath.Join(home, ".config", "opencode"),
		filepath.Join(home, ".pi"),
	}, dirs)
}

func TestConfigDirsDeduplicates(t *testing.T) {
	p, _ := Lookup("claude")
	dirs := ConfigDirs("/h", []Platform{p, p})
	assert.Len(t, dirs, 1)
}

func TestConfigDirsWithoutHome(t *testing.T) {
	assert.Nil(t, ConfigDirs("", Builtin()))
}
