package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "kafka:9092", want: []string{"kafka:9092"}},
		{name: "spaces and blanks", in: " a:1 , ,b:2 ", want: []string{"a:1", "b:2"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CSV(tt.in))
		})
	}
}

func TestEnvIntDefault(t *testing.T) {
	t.Setenv("TEST_INT_OK", "42")
	t.Setenv("TEST_INT_BAD", "forty-two")

	assert.Equal(t, 42, EnvIntDefault("TEST_INT_OK", 1))
	assert.Equal(t, 1, EnvIntDefault("TEST_INT_BAD", 1))
	assert.Equal(t, 7, EnvIntDefault("TEST_INT_MISSING", 7))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "")
	t.Setenv("ES_INDEX", "")

	cfg := Load()

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "products", cfg.ES.Index)
}

func TestValidate(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://x", JWTAccessSecret: []byte("a"), JWTRefreshSecret: []byte("r")}
	assert.NoError(t, cfg.Validate())

	cfg.SuperAdminUsername = "root"
	assert.ErrorContains(t, cfg.Validate(), "SUPERADMIN_USERNAME")

	err := Config{}.Validate()
	assert.ErrorContains(t, err, "DATABASE_URL, JWT_SECRET, JWT_REFRESH_SECRET")
}
