package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSource_Priority(t *testing.T) {
	src := &DefaultSource{}
	assert.Equal(t, 10, src.Priority())
	assert.Equal(t, "defaults", src.Name())
}

func TestDefaultSource_Load(t *testing.T) {
	k := koanf.New(".")
	src := &DefaultSource{}

	require.NoError(t, src.Load(k))

	assert.Equal(t, "127.0.0.1", k.String("address"))
	assert.Equal(t, 1, k.Int("start"))
	assert.Equal(t, 65535, k.Int("end"))
	assert.Equal(t, "text", k.String("output"))
	assert.Equal(t, "error", k.String("log-level"))
}

func TestFileSource_Priority(t *testing.T) {
	src := &FileSource{Path: "/tmp/test.yaml"}
	assert.Equal(t, 20, src.Priority())
	assert.Equal(t, "file:/tmp/test.yaml", src.Name())
}

func TestFileSource_Load_EmptyPath(t *testing.T) {
	k := koanf.New(".")
	src := &FileSource{Path: ""}

	require.NoError(t, src.Load(k), "Empty path should skip silently")
	assert.Empty(t, k.Keys())
}

func TestFileSource_Load_NonExistentFile(t *testing.T) {
	k := koanf.New(".")
	src := &FileSource{Path: "/nonexistent/path/config.yaml"}

	err := src.Load(k)
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestFileSource_Load_ValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `
address: 192.168.1.10
start: 20
end: 1024
timeout: 750ms
concurrency: 64
log-level: warn
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	k := koanf.New(".")
	src := &FileSource{Path: configPath}
	require.NoError(t, src.Load(k))

	assert.Equal(t, "192.168.1.10", k.String("address"))
	assert.Equal(t, 20, k.Int("start"))
	assert.Equal(t, 1024, k.Int("end"))
	assert.Equal(t, "750ms", k.String("timeout"))
	assert.Equal(t, 64, k.Int("concurrency"))
	assert.Equal(t, "warn", k.String("log-level"))
}

func TestFileSource_Load_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("address: [unterminated"), 0o644))

	k := koanf.New(".")
	err := (&FileSource{Path: configPath}).Load(k)
	assert.Error(t, err)
}

func TestEnvSource_Priority(t *testing.T) {
	src := &EnvSource{}
	assert.Equal(t, 30, src.Priority())
	assert.Equal(t, "env", src.Name())
}

func TestEnvSource_Load(t *testing.T) {
	t.Setenv("IPSNIFFER_LOG_LEVEL", "info")
	t.Setenv("IPSNIFFER_NO_COLOR", "true")
	t.Setenv("IPSNIFFER_ADDRESS", "10.0.0.5")

	k := koanf.New(".")
	src := &EnvSource{Prefix: "IPSNIFFER_"}
	require.NoError(t, src.Load(k))

	assert.Equal(t, "info", k.String("log-level"))
	assert.Equal(t, "10.0.0.5", k.String("address"))
	assert.True(t, k.Bool("no-color"))
}

func TestEnvSource_Load_DefaultPrefix(t *testing.T) {
	t.Setenv("IPSNIFFER_OUTPUT", "json")

	k := koanf.New(".")
	src := &EnvSource{}
	require.NoError(t, src.Load(k))

	assert.Equal(t, "json", k.String("output"))
}

func TestFlagSource_Priority(t *testing.T) {
	src := &FlagSource{}
	assert.Equal(t, 40, src.Priority())
	assert.Equal(t, "flags", src.Name())
}

func TestFlagSource_Load_NilFlags(t *testing.T) {
	k := koanf.New(".")
	src := &FlagSource{Flags: nil}

	require.NoError(t, src.Load(k), "Nil flags should skip silently")
}

func TestFlagSource_Load(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "text", "")
	_ = flags.Set("output", "json")

	k := koanf.New(".")
	require.NoError(t, (&DefaultSource{}).Load(k))

	src := &FlagSource{Flags: flags}
	require.NoError(t, src.Load(k))

	assert.Equal(t, "json", k.String("output"))
}

func TestFlagSource_Load_UnchangedDoesNotOverride(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "text", "")

	k := koanf.New(".")
	require.NoError(t, k.Set("output", "json"))

	require.NoError(t, (&FlagSource{Flags: flags}).Load(k))
	assert.Equal(t, "json", k.String("output"))
}

func TestDefaultSources_Order(t *testing.T) {
	sources := DefaultSources("/tmp/config.yaml", nil)

	require.Len(t, sources, 4)
	assert.Equal(t, "defaults", sources[0].Name())
	assert.Equal(t, "file:/tmp/config.yaml", sources[1].Name())
	assert.Equal(t, "env", sources[2].Name())
	assert.Equal(t, "flags", sources[3].Name())
}

func TestDefaultSources_Priorities(t *testing.T) {
	sources := DefaultSources("", nil)

	for i := 1; i < len(sources); i++ {
		assert.Greater(t, sources[i].Priority(), sources[i-1].Priority(),
			"Source %s should have higher priority than %s",
			sources[i].Name(), sources[i-1].Name())
	}
}

func TestLoadSources_CustomSource(t *testing.T) {
	customSource := &mockConfigSource{
		name:     "custom",
		priority: 25, // Between file (20) and env (30)
		loadFunc: func(k *koanf.Koanf) error {
			return k.Set("concurrency", 32)
		},
	}

	manager := NewManager()
	require.NoError(t, manager.LoadSources(&DefaultSource{}, customSource, &EnvSource{}))

	assert.Equal(t, 32, manager.Get().Concurrency)
}

func TestLoadSources_PriorityOrdering(t *testing.T) {
	t.Setenv("IPSNIFFER_START", "443")

	manager := NewManager()
	// Defaults are listed last but still load first.
	require.NoError(t, manager.LoadSources(&EnvSource{}, &DefaultSource{}))

	assert.Equal(t, 443, manager.Get().Start)
}

// mockConfigSource is a test helper for custom config sources
type mockConfigSource struct {
	name     string
	priority int
	loadFunc func(k *koanf.Koanf) error
}

func (m *mockConfigSource) Name() string  { return m.name }
func (m *mockConfigSource) Priority() int { return m.priority }
func (m *mockConfigSource) Load(k *koanf.Koanf) error {
	if m.loadFunc != nil {
		return m.loadFunc(k)
	}
	return nil
}
