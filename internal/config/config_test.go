package config

import (
	"testing"
)

// TestLoad_MissingRequired は必須環境変数が未設定の場合にエラーになることを検証する。
func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing required env vars, got nil")
	}
}

// TestLoad_Defaults は任意項目にデフォルト値が適用されることを検証する。
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/nomicho?sslmode=disable")
	t.Setenv("BASE_URL", "http://localhost:8080")
	t.Setenv("SESSION_MAX_AGE", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("RATE_LIMIT_GENERAL", "")
	t.Setenv("RATE_LIMIT_RECORDING", "")
	t.Setenv("COOKIE_DOMAIN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.SessionMaxAge != 86400*30 {
		t.Errorf("SessionMaxAge = %d, want %d", cfg.SessionMaxAge, 86400*30)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want 120", cfg.RateLimitGeneral)
	}
	if cfg.RateLimitRecording != 30 {
		t.Errorf("RateLimitRecording = %d, want 30", cfg.RateLimitRecording)
	}
	// http:// のBaseURLではCookieはSecureにしない
	if cfg.CookieSecure {
		t.Error("CookieSecure = true, want false for http base URL")
	}
}

// TestLoad_CookieSecureFromBaseURL はhttpsのBASE_URLでSecure Cookieになることを検証する。
func TestLoad_CookieSecureFromBaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/nomicho?sslmode=disable")
	t.Setenv("BASE_URL", "https://nomicho.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure = false, want true for https base URL")
	}
}

// TestLoad_Overrides は環境変数による上書きを検証する。
func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/nomicho?sslmode=disable")
	t.Setenv("BASE_URL", "http://localhost:8080")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RATE_LIMIT_RECORDING", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "9090")
	}
	if cfg.RateLimitRecording != 10 {
		t.Errorf("RateLimitRecording = %d, want 10", cfg.RateLimitRecording)
	}
}
