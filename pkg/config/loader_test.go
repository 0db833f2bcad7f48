package config_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngolasuite/ngola/pkg/config"
)

type refreshConfig struct {
	Interval string `env:"TEST_REFRESH_INTERVAL" envDefault:"60s"`
	Enabled  bool   `env:"TEST_REFRESH_ENABLED" envDefault:"true"`
}

type storeConfig struct {
	URL string `env:"TEST_STORE_URL,required"`
}

type fileConfig struct {
	Token string `env:"TEST_FILE_TOKEN"`
}

func TestLoad_Defaults(t *testing.T) {
	config.ResetCache()
	os.Unsetenv("TEST_REFRESH_INTERVAL")
	os.Unsetenv("TEST_REFRESH_ENABLED")

	var cfg refreshConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "60s", cfg.Interval)
	assert.True(t, cfg.Enabled)
}

func TestLoad_FromEnvironment(t *testing.T) {
	config.ResetCache()
	t.Setenv("TEST_REFRESH_INTERVAL", "5s")
	t.Setenv("TEST_REFRESH_ENABLED", "false")

	var cfg refreshConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "5s", cfg.Interval)
	assert.False(t, cfg.Enabled)
}

func TestLoad_CachesPerType(t *testing.T) {
	config.ResetCache()
	t.Setenv("TEST_REFRESH_INTERVAL", "10s")

	var first refreshConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("TEST_REFRESH_INTERVAL", "20s")

	var second refreshConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "10s", second.Interval, "cached value should be returned")

	config.ResetCache()

	var third refreshConfig
	require.NoError(t, config.Load(&third))
	assert.Equal(t, "20s", third.Interval)
}

func TestLoad_RequiredMissing(t *testing.T) {
	config.ResetCache()
	os.Unsetenv("TEST_STORE_URL")

	var cfg storeConfig
	err := config.Load(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *refreshConfig
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
}

func TestLoad_Concurrent(t *testing.T) {
	config.ResetCache()
	t.Setenv("TEST_REFRESH_INTERVAL", "30s")

	var wg sync.WaitGroup
	results := make([]refreshConfig, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = config.Load(&results[i])
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "30s", r.Interval)
	}
}

func TestMustLoad_Panics(t *testing.T) {
	config.ResetCache()
	os.Unsetenv("TEST_STORE_URL")

	assert.Panics(t, func() {
		var cfg storeConfig
		config.MustLoad(&cfg)
	})
}

func TestLoadEnv(t *testing.T) {
	config.ResetCache()
	os.Unsetenv("TEST_FILE_TOKEN")
	t.Cleanup(func() { os.Unsetenv("TEST_FILE_TOKEN") })

	path := filepath.Join(t.TempDir(), ".env.test")
	require.NoError(t, os.WriteFile(path, []byte("TEST_FILE_TOKEN=from-file\n"), 0o600))

	require.NoError(t, config.LoadEnv(path))

	var cfg fileConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "from-file", cfg.Token)

	err := config.LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
}
