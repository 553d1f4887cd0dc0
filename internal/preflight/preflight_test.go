package preflight

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cinechat/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckLLM(t *testing.T) {
	llmServer := testsupport.NewLLMServer(t, `{"ok":true}`)
	cfg := testsupport.NewConfig(t, testsupport.WithLLMURL(llmServer.URL))

	result := CheckLLM(context.Background(), cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "gpt-3.5-turbo") {
		t.Fatalf("expected model in detail, got %q", result.Detail)
	}

	llmServer.SetError(http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided"}}`)
	result = CheckLLM(context.Background(), cfg)
	if result.Passed || !strings.Contains(result.Detail, "Incorrect API key") {
		t.Fatalf("expected auth failure, got %#v", result)
	}
	if got := len(llmServer.Requests()); got != 2 {
		t.Fatalf("expected single attempt per check, got %d requests", got)
	}
}

func TestCheckLLMMissingKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.LLM.APIKey = ""
	if result := CheckLLM(context.Background(), cfg); result.Passed || result.Detail != "API key missing" {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestCheckCatalog(t *testing.T) {
	tmdbServer := testsupport.NewTMDBServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithTMDBURL(tmdbServer.URL))

	result := CheckCatalog(context.Background(), cfg)
	if !result.Passed || result.Detail != "Reachable (19 genres)" {
		t.Fatalf("unexpected result %#v", result)
	}

	tmdbServer.SetError(http.StatusUnauthorized, `{"status_code":7,"status_message":"Invalid API key: You must be granted a valid key."}`)
	result = CheckCatalog(context.Background(), cfg)
	if result.Passed || !strings.Contains(result.Detail, "Invalid API key") {
		t.Fatalf("expected auth failure, got %#v", result)
	}
}

func TestRunAll(t *testing.T) {
	llmServer := testsupport.NewLLMServer(t, `{"ok":true}`)
	tmdbServer := testsupport.NewTMDBServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithLLMURL(llmServer.URL), testsupport.WithTMDBURL(tmdbServer.URL))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) != 3 {
		t.Fatalf("expected data dir, llm and catalog checks, got %#v", results)
	}
	if !AllPassed(results) {
		t.Fatalf("expected every check to pass, got %#v", results)
	}
	if RunAll(context.Background(), nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
