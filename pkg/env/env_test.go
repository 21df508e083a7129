package env

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("FOODDASH_TEST_ENV_KEY", "set")
	if got := Get("FOODDASH_TEST_ENV_KEY", "fallback"); got != "set" {
		t.Fatalf("expected set value but got %q", got)
	}
}

func TestGetFallsBackWhenUnset(t *testing.T) {
	if got := Get("FOODDASH_TEST_ENV_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback but got %q", got)
	}
}

func TestGetTreatsWhitespaceAsUnset(t *testing.T) {
	t.Setenv("FOODDASH_TEST_ENV_BLANK", "   ")
	if got := Get("FOODDASH_TEST_ENV_BLANK", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback but got %q", got)
	}
}
