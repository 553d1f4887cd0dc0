package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cinechat/internal/testsupport"
)

type cliTestEnv struct {
	llm        *testsupport.LLMServer
	tmdb       *testsupport.TMDBServer
	configPath string
	dataDir    string
}

func setupCLITestEnv(t *testing.T, reply string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "TMDB_API_KEY", "CINECHAT_API_TOKEN"} {
		t.Setenv(key, "")
	}

	llmServer := testsupport.NewLLMServer(t, reply)
	tmdbServer := testsupport.NewTMDBServer(t,
		testsupport.SampleMovie(496243, "기생충", 35, 53, 18),
		testsupport.SampleMovie(396535, "부산행", 27, 28),
	)

	dataDir := filepath.Join(base, "data")
	configPath := filepath.Join(homeDir, ".config", "cinechat", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	content := fmt.Sprintf(`[server]
bind = "127.0.0.1:0"
data_dir = %q

[llm]
api_key = "test-llm"
base_url = %q

[tmdb]
api_key = "test-tmdb"
base_url = %q

[logging]
level = "error"

[favorites]
path = %q
capacity = 3
`, dataDir, llmServer.URL, tmdbServer.URL, filepath.Join(dataDir, "favorites.db"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		llm:        llmServer,
		tmdb:       tmdbServer,
		configPath: configPath,
		dataDir:    dataDir,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
