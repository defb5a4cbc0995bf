package config

import (
	"errors"
	"strings"
	"testing"
)

// validConfig returns a config that passes Validate() when GEMINI_API_KEY is set.
func validConfig() *Config {
	return &Config{
		ModelName:        DefaultModelName,
		EmbedderModel:    DefaultEmbedderModel,
		TopN:             DefaultTopN,
		GCSBucket:        "rca-bucket",
		PostgresHost:     "localhost",
		PostgresPort:     5432,
		PostgresUser:     "rca",
		PostgresPassword: "super-secret-password",
		PostgresDBName:   "rca",
		PostgresSSLMode:  "disable",
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "empty model name",
			mutate:  func(c *Config) { c.ModelName = "" },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "empty embedder model",
			mutate:  func(c *Config) { c.EmbedderModel = "" },
			wantErr: ErrInvalidEmbedderModel,
		},
		{
			name:    "top_n zero",
			mutate:  func(c *Config) { c.TopN = 0 },
			wantErr: ErrInvalidTopN,
		},
		{
			name:    "top_n too large",
			mutate:  func(c *Config) { c.TopN = 50 },
			wantErr: ErrInvalidTopN,
		},
		{
			name:    "empty bucket",
			mutate:  func(c *Config) { c.GCSBucket = "" },
			wantErr: ErrInvalidBucket,
		},
		{
			name:    "empty postgres host",
			mutate:  func(c *Config) { c.PostgresHost = "" },
			wantErr: ErrInvalidPostgresHost,
		},
		{
			name:    "postgres port out of range",
			mutate:  func(c *Config) { c.PostgresPort = 70000 },
			wantErr: ErrInvalidPostgresPort,
		},
		{
			name:    "empty database name",
			mutate:  func(c *Config) { c.PostgresDBName = "" },
			wantErr: ErrInvalidPostgresDBName,
		},
		{
			name:    "empty password",
			mutate:  func(c *Config) { c.PostgresPassword = "" },
			wantErr: ErrInvalidPostgresPassword,
		},
		{
			name:    "bad ssl mode",
			mutate:  func(c *Config) { c.PostgresSSLMode = "yolo" },
			wantErr: ErrInvalidPostgresSSLMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	err := validConfig().Validate()
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("Validate() = %v, want %v", err, ErrMissingAPIKey)
	}
}

func TestMarshalJSON_MasksPassword(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "super-secret-password"

	data, err := cfg.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if strings.Contains(string(data), "super-secret-password") {
		t.Errorf("password leaked in JSON output: %s", data)
	}
	if !strings.Contains(string(data), maskedValue) {
		t.Errorf("expected masked placeholder in output: %s", data)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short", maskedValue},
		{"12345678", maskedValue},
		{"my_long_secret_key", "my<" + maskedValue + ">ey"},
	}
	for _, tt := range tests {
		if got := maskSecret(tt.in); got != tt.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFullModelName(t *testing.T) {
	cfg := validConfig()

	if got := cfg.FullModelName(); got != "googleai/"+DefaultModelName {
		t.Errorf("FullModelName() = %q", got)
	}

	cfg.ModelName = "googleai/gemini-2.5-pro"
	if got := cfg.FullModelName(); got != "googleai/gemini-2.5-pro" {
		t.Errorf("FullModelName() with qualified name = %q", got)
	}
}

func TestPostgresConnectionString_QuotesPassword(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "pa'ss word"

	dsn := cfg.PostgresConnectionString()
	if !strings.Contains(dsn, `password='pa\'ss word'`) {
		t.Errorf("expected quoted password in DSN, got %q", dsn)
	}
}

func TestPostgresURL(t *testing.T) {
	cfg := validConfig()

	u := cfg.PostgresURL()
	if !strings.HasPrefix(u, "postgres://") {
		t.Errorf("expected postgres:// scheme, got %q", u)
	}
	if !strings.Contains(u, "sslmode=disable") {
		t.Errorf("expected sslmode query param, got %q", u)
	}
}
