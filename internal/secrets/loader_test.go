package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "key")
	if err := os.WriteFile(file, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}
	t.Setenv("SECRETS_TEST_KEY", "from-env")

	cases := []struct {
		name     string
		src      Source
		expected string
	}{
		{
			name:     "file wins over env and value",
			src:      Source{File: file, Env: "SECRETS_TEST_KEY", Value: "from-value"},
			expected: "from-file",
		},
		{
			name:     "env wins over value",
			src:      Source{Env: "SECRETS_TEST_KEY", Value: "from-value"},
			expected: "from-env",
		},
		{
			name:     "inline value as last resort",
			src:      Source{Value: " from-value "},
			expected: "from-value",
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(Source{Name: "gemini api key"}); err == nil || !strings.Contains(err.Error(), "gemini api key") {
		t.Fatalf("expected the secret name in the error, got %v", err)
	}

	if _, err := Load(Source{File: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatalf("expected an error for a missing secret file")
	}

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("writing empty file: %v", err)
	}
	if _, err := Load(Source{File: empty}); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Fatalf("expected an empty file error, got %v", err)
	}
}
