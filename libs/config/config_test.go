package config

import (
	"reflect"
	"testing"
	"time"
)

func TestPort(t *testing.T) {
	t.Setenv("TEST_PORT", "70000")
	if _, err := Port("TEST_PORT", "8085"); err == nil {
		t.Fatal("expected error for out of range port")
	}
	t.Setenv("TEST_PORT", "")
	if p, err := Port("TEST_PORT", "8085"); err != nil || p != "8085" {
		t.Fatalf("expected fallback 8085, got %q (%v)", p, err)
	}
}

func TestPositiveIntAndSeconds(t *testing.T) {
	t.Setenv("TEST_INT", "-3")
	if got := PositiveInt("TEST_INT", 60); got != 60 {
		t.Fatalf("expected fallback 60, got %d", got)
	}
	t.Setenv("TEST_INT", "15")
	if got := Seconds("TEST_INT", time.Second); got != 15*time.Second {
		t.Fatalf("expected 15s, got %s", got)
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("TEST_BOOL", "yes")
	if !Bool("TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("TEST_BOOL", "")
	if !Bool("TEST_BOOL", true) {
		t.Fatal("expected fallback true")
	}
	t.Setenv("TEST_LIST", "")
	if got := List("TEST_LIST", "GET, POST,,"); !reflect.DeepEqual(got, []string{"GET", "POST"}) {
		t.Fatalf("unexpected list %v", got)
	}
}
