package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("unexpected Port: %s", cfg.Port)
	}
	if cfg.MaxFileSize != 5242880 {
		t.Errorf("unexpected MaxFileSize: %d", cfg.MaxFileSize)
	}
	if cfg.JobTTLSeconds != 3600 {
		t.Errorf("unexpected JobTTLSeconds: %d", cfg.JobTTLSeconds)
	}
	if cfg.ConvertTimeoutSeconds != 120 {
		t.Errorf("unexpected ConvertTimeoutSeconds: %d", cfg.ConvertTimeoutSeconds)
	}
	if cfg.HTMLToPDFPath == "" {
		t.Error("expected HTMLToPDFPath default")
	}
	if cfg.LibreOfficePath == "" {
		t.Error("expected LibreOfficePath default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE", "1024")
	t.Setenv("JOB_TTL_SECONDS", "60")
	t.Setenv("REDIS_URL", "redis://example:6379/1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.MaxFileSize != 1024 {
		t.Errorf("unexpected MaxFileSize: %d", cfg.MaxFileSize)
	}
	if cfg.JobTTLSeconds != 60 {
		t.Errorf("unexpected JobTTLSeconds: %d", cfg.JobTTLSeconds)
	}
	if cfg.RedisURL != "redis://example:6379/1" {
		t.Errorf("unexpected RedisURL: %s", cfg.RedisURL)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.MaxFileSize != 5242880 {
		t.Errorf("expected default MaxFileSize, got %d", cfg.MaxFileSize)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		RedisURL:      "redis://127.0.0.1:6379/0",
		MaxFileSize:   1,
		JobTTLSeconds: 1,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	cfg.RedisURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing REDIS_URL")
	}
}
