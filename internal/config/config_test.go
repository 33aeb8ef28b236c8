package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name string
		want uint32
	}{
		{"F1", 0x70},
		{"F9", 0x78},
		{"f12", 0x7B},
		{"F24", 0x87},
		{"Shift", 0x10},
		{"ctrl", 0x11},
		{"Control", 0x11},
		{"Alt", 0x12},
		{"Esc", 0x1B},
		{"A", 'A'},
		{"z", 'Z'},
		{"5", '5'},
		{" F9 ", 0x78},
	}
	for _, tt := range tests {
		got, err := ParseKey(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	for _, bad := range []string{"", "F0", "F25", "Foo", "!!", "Num5"} {
		_, err := ParseKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestConfig_ToggleKeys(t *testing.T) {
	key, mod, err := Default().ToggleKeys()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x78), key)
	assert.Equal(t, uint32(0x10), mod)

	bad := Default()
	bad.Toggle.Key = "nope"
	_, _, err = bad.ToggleKeys()
	assert.Error(t, err)
}

func TestManager_LoadMissingFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	m, err := NewManager(path)
	require.NoError(t, err)

	require.NoError(t, m.Load())
	assert.Equal(t, Default(), m.Get())
}

func TestManager_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	m, err := NewManager(path)
	require.NoError(t, err)
	cfg := m.Get()
	cfg.Toggle = ToggleConfig{Key: "G", Modifier: "Ctrl"}
	cfg.Diagnostics = DiagConfig{Enabled: true, Port: 9999}
	require.NoError(t, m.Save())

	m2, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, m2.Load())
	got := m2.Get()
	assert.Equal(t, ToggleConfig{Key: "G", Modifier: "Ctrl"}, got.Toggle)
	assert.Equal(t, DiagConfig{Enabled: true, Port: 9999}, got.Diagnostics)
}

func TestManager_LoadPartialFileKeepsUnsetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"toggle":{"key":"F2","modifier":"Alt"}}`), 0o644))

	m, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, m.Load())

	got := m.Get()
	assert.Equal(t, "F2", got.Toggle.Key)
	assert.Equal(t, "info", got.Log.Level, "unset fields keep defaults")
	assert.Equal(t, 18081, got.Diagnostics.Port)
}

func TestManager_LoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	m, err := NewManager(path)
	require.NoError(t, err)
	assert.Error(t, m.Load())
}
