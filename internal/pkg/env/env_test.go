package env

import (
	"testing"
	"time"
)

func TestGetEnvPrefersLoadedMap(t *testing.T) {
	t.Setenv("TB_TEST_KEY", "from-os")
	Env = map[string]string{"TB_TEST_KEY": "from-file"}
	defer func() { Env = nil }()

	if got := GetEnv("TB_TEST_KEY", "def"); got != "from-file" {
		t.Fatalf("GetEnv = %q, want from-file", got)
	}
}

func TestGetEnvFallsBackToOSAndDefault(t *testing.T) {
	Env = nil
	t.Setenv("TB_TEST_OS_ONLY", "os")
	if got := GetEnv("TB_TEST_OS_ONLY", "def"); got != "os" {
		t.Fatalf("GetEnv = %q, want os", got)
	}
	if got := GetEnv("TB_TEST_MISSING", "def"); got != "def" {
		t.Fatalf("GetEnv = %q, want def", got)
	}
}

func TestGetEnvDuration(t *testing.T) {
	Env = map[string]string{
		"TB_DUR_GO":    "1500ms",
		"TB_DUR_SECS":  "7",
		"TB_DUR_BROKE": "soon",
	}
	defer func() { Env = nil }()

	tests := []struct {
		key  string
		want time.Duration
	}{
		{key: "TB_DUR_GO", want: 1500 * time.Millisecond},
		{key: "TB_DUR_SECS", want: 7 * time.Second},
		{key: "TB_DUR_BROKE", want: 3 * time.Second},
		{key: "TB_DUR_NONE", want: 3 * time.Second},
	}
	for _, tt := range tests {
		if got := GetEnvDuration(tt.key, 3*time.Second); got != tt.want {
			t.Fatalf("GetEnvDuration(%q) = %s, want %s", tt.key, got, tt.want)
		}
	}
}

func TestGetEnvInt(t *testing.T) {
	Env = map[string]string{"TB_INT": "42", "TB_INT_BAD": "x"}
	defer func() { Env = nil }()

	if got := GetEnvInt("TB_INT", 1); got != 42 {
		t.Fatalf("GetEnvInt = %d, want 42", got)
	}
	if got := GetEnvInt("TB_INT_BAD", 1); got != 1 {
		t.Fatalf("GetEnvInt = %d, want 1", got)
	}
}
