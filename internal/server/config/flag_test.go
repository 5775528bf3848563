package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", ":9090",
				"-d", "postgres://u:p@db:5432/tj2",
				"-s", "supersecret",
				"-t", "15",
				"-r", "120",
				"-u", "minio",
				"-p", "miniopw",
				"-b", "bucket1",
				"-g", "eu-west-1",
				"-e", "http://minio:9000/",
			},
			expected: &Config{
				EndpointAddr:                 ":9090",
				DatabaseDSN:                  "postgres://u:p@db:5432/tj2",
				SecretKey:                    "supersecret",
				AccessTokenValidityDuration:  15 * time.Minute,
				RefreshTokenValidityDuration: 120 * time.Minute,
				S3AccessKey:                  "minio",
				S3SecretKey:                  "miniopw",
				S3Bucket:                     "bucket1",
				S3Region:                     "eu-west-1",
				S3BaseEndpoint:               "http://minio:9000/",
			},
		},
		{
			name:        "incorrect token validity",
			args:        []string{"cmd", "-t", "abc"},
			expectPanic: true,
			expected:    &Config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			t.Cleanup(func() { os.Args = oldArgs })
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}

			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}
