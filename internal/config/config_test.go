package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	const secret = "dGVzdC1zaWduaW5nLWtleQ==" // base64 of "test-signing-key"

	tcases := []struct {
		name           string
		serverAddr     string
		databaseDSN    string
		adminPassword  string
		base64Secret   string
		allowedOrigins []string
		expectedErr    string
	}{
		{
			name:           "valid config",
			serverAddr:     "localhost:8000",
			databaseDSN:    "host=localhost dbname=postgres",
			adminPassword:  "hunter2",
			base64Secret:   secret,
			allowedOrigins: []string{"http://localhost:3000"},
		},
		{
			name:          "empty server address",
			databaseDSN:   "host=localhost dbname=postgres",
			adminPassword: "hunter2",
			base64Secret:  secret,
			expectedErr:   "server address cannot be empty",
		},
		{
			name:          "empty database DSN",
			serverAddr:    "localhost:8000",
			adminPassword: "hunter2",
			base64Secret:  secret,
			expectedErr:   "database DSN cannot be empty",
		},
		{
			name:         "empty admin password",
			serverAddr:   "localhost:8000",
			databaseDSN:  "host=localhost dbname=postgres",
			base64Secret: secret,
			expectedErr:  "admin password cannot be empty",
		},
		{
			name:          "empty signing secret",
			serverAddr:    "localhost:8000",
			databaseDSN:   "host=localhost dbname=postgres",
			adminPassword: "hunter2",
			expectedErr:   "signing secret cannot be empty",
		},
		{
			name:          "invalid base64 signing secret",
			serverAddr:    "localhost:8000",
			databaseDSN:   "host=localhost dbname=postgres",
			adminPassword: "hunter2",
			base64Secret:  "not base64!!!",
			expectedErr:   "decode signing secret",
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.serverAddr, tc.databaseDSN, tc.adminPassword, tc.base64Secret, tc.allowedOrigins)

			if tc.expectedErr != "" {
				assert.Nil(t, cfg)
				assert.ErrorContains(t, err, tc.expectedErr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.serverAddr, cfg.ServerAddr)
			assert.Equal(t, tc.databaseDSN, cfg.DatabaseDSN)
			assert.Equal(t, tc.adminPassword, cfg.AdminPassword)
			assert.Equal(t, []byte("test-signing-key"), cfg.SigningKey)
			assert.Equal(t, tc.allowedOrigins, cfg.AllowedOrigins)
		})
	}
}
