package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hujiyo/Mhuixs-sub001/config"
	"github.com/hujiyo/Mhuixs-sub001/internal/logger"
)

func TestConfigCommand(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		json        bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "defaults",
			wantContain: []string{"buckets: 1024", "hasher: murmur"},
		},
		{
			name:        "file overrides",
			file:        "store:\n  buckets: 64\n  hasher: xxhash\n",
			wantContain: []string{"buckets: 64", "hasher: xxhash"},
		},
		{
			name:        "environment wins over file",
			file:        "store:\n  buckets: 64\n",
			env:         map[string]string{config.EnvPrefix + "BUCKETS": "256"},
			wantContain: []string{"buckets: 256"},
		},
		{
			name:        "json output",
			json:        true,
			wantContain: []string{`"Buckets": 1024`},
		},
		{
			name:    "unknown field",
			file:    "store:\n  bukets: 64\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			jsonOut = tt.json
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.file != "" {
				configPath = writeFile(t, "mhuixs.yaml", tt.file)
			}

			output, err := captureOutput(t, func() error {
				if err := loadConfig(); err != nil {
					return err
				}
				return runConfig()
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestLoadConfig_LogFlags(t *testing.T) {
	t.Cleanup(func() { _ = logger.Init(logger.Options{}) })
	resetFlags(t)
	logLevel = "trace"
	require.Error(t, loadConfig(), "unknown log level")

	resetFlags(t)
	logLevel = "debug"
	require.NoError(t, loadConfig())
	require.True(t, cfg.Log.Enabled)
	require.Equal(t, "debug", cfg.Log.Level)
}
