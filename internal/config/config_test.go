package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Generate.MaxConcurrent != 4 {
		t.Errorf("Generate.MaxConcurrent = %d, want %d", cfg.Generate.MaxConcurrent, 4)
	}
	if cfg.Generate.MaxFileSize != 25<<20 {
		t.Errorf("Generate.MaxFileSize = %d, want %d", cfg.Generate.MaxFileSize, 25<<20)
	}
	if cfg.Generate.MarkerText != "INSERIR CAMPO PORTARIAS" {
		t.Errorf("Generate.MarkerText = %q", cfg.Generate.MarkerText)
	}
	if cfg.Generate.LineSeparator != " - " {
		t.Errorf("Generate.LineSeparator = %q, want %q", cfg.Generate.LineSeparator, " - ")
	}
	if cfg.Generate.SpaceAfterPt != 6 {
		t.Errorf("Generate.SpaceAfterPt = %d, want %d", cfg.Generate.SpaceAfterPt, 6)
	}
	if cfg.Rate.RequestsPerMinute != 100 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 100)
	}
}

func TestDefaults_IgnoresEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")

	cfg := Defaults()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GENERATE_MAX_CONCURRENT", "10")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MARKER_SCOPE", "all")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Generate.MaxConcurrent != 10 {
		t.Errorf("Generate.MaxConcurrent = %d, want %d", cfg.Generate.MaxConcurrent, 10)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Generate.MarkerScope != "all" {
		t.Errorf("Generate.MarkerScope = %q, want %q", cfg.Generate.MarkerScope, "all")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	// PORT is honored when SERVER_PORT is unset
	t.Setenv("SERVER_PORT", "")
	t.Setenv("PORT", "3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 3000)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("SPACE_AFTER_PT", "six")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for non-numeric SPACE_AFTER_PT")
	}
	if !strings.Contains(err.Error(), "SPACE_AFTER_PT") {
		t.Errorf("error should mention SPACE_AFTER_PT: %v", err)
	}
}

func TestLoad_Duration(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("GENERATE_MAX_WAIT_TIME", "1m30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Generate.MaxWaitTime != 90*time.Second {
		t.Errorf("Generate.MaxWaitTime = %v, want %v", cfg.Generate.MaxWaitTime, 90*time.Second)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(expected) {
		t.Fatalf("TrustedProxies length = %d, want %d", len(cfg.Security.TrustedProxies), len(expected))
	}
	for i, v := range expected {
		if cfg.Security.TrustedProxies[i] != v {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], v)
		}
	}
}

func TestLoad_Globals(t *testing.T) {
	t.Setenv("GENERATE_GLOBALS", "ORGAO=Polícia Militar, UNIDADE = 3º BPM,EXPR=a=b")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := map[string]string{"ORGAO": "Polícia Militar", "UNIDADE": "3º BPM", "EXPR": "a=b"}
	if len(cfg.Generate.Globals) != len(want) {
		t.Fatalf("Globals = %v, want %v", cfg.Generate.Globals, want)
	}
	for k, v := range want {
		if cfg.Generate.Globals[k] != v {
			t.Errorf("Globals[%q] = %q, want %q", k, cfg.Generate.Globals[k], v)
		}
	}
}

func TestLoad_MalformedGlobals(t *testing.T) {
	t.Setenv("GENERATE_GLOBALS", "ORGAO")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for pair without '='")
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
		Generate: GenerateConfig{
			MaxFileSize:   1,
			MaxConcurrent: 1,
			MaxWaitTime:   time.Second,
			Timeout:       time.Minute,
			MarkerText:    "INSERIR",
			MarkerScope:   "body",
		},
		Rate:    RateLimitConfig{Enabled: true, RequestsPerMinute: 100, GenerateLimit: 10},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "invalid port", mutate: func(c *Config) { c.Server.Port = 99999 }, wantErr: "SERVER_PORT"},
		{name: "zero concurrency", mutate: func(c *Config) { c.Generate.MaxConcurrent = 0 }, wantErr: "GENERATE_MAX_CONCURRENT"},
		{name: "blank marker", mutate: func(c *Config) { c.Generate.MarkerText = "  " }, wantErr: "MARKER_TEXT"},
		{name: "unknown scope", mutate: func(c *Config) { c.Generate.MarkerScope = "tables" }, wantErr: "MARKER_SCOPE"},
		{name: "negative spacing", mutate: func(c *Config) { c.Generate.SpaceAfterPt = -1 }, wantErr: "SPACE_AFTER_PT"},
		{name: "invalid log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: "LOG_LEVEL"},
		{name: "rate disabled skips limits", mutate: func(c *Config) { c.Rate = RateLimitConfig{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should mention %s: %v", tt.wantErr, err)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
		{"localhost", 443, "localhost:443"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		got := cfg.Addr()
		if got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString_HidesGlobalValues(t *testing.T) {
	cfg := validConfig()
	cfg.Generate.Globals = map[string]string{"SECRETARIO": "Fulano de Tal"}

	str := cfg.String()
	if strings.Contains(str, "Fulano") {
		t.Error("String() should not print global values")
	}
	if !strings.Contains(str, "1 keys") {
		t.Errorf("String() should count globals: %s", str)
	}
}
