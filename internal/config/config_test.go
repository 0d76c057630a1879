package config

import "testing"

func TestEnvIntList(t *testing.T) {
	t.Setenv("TEST_IDS", "5, 9 ,12")
	got := envIntList("TEST_IDS", []int{1})
	want := []int{5, 9, 12}
	if len(got) != len(want) {
		t.Fatalf("envIntList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("envIntList = %v, want %v", got, want)
		}
	}
}

func TestEnvIntListMalformedFallsBack(t *testing.T) {
	t.Setenv("TEST_IDS", "5,banana")
	got := envIntList("TEST_IDS", []int{20, 25, 30})
	if len(got) != 3 || got[0] != 20 {
		t.Fatalf("envIntList = %v, want fallback", got)
	}
}

func TestEnvFloat(t *testing.T) {
	t.Setenv("TEST_RPS", "2.5")
	if got := envFloat("TEST_RPS", 1); got != 2.5 {
		t.Fatalf("envFloat = %v, want 2.5", got)
	}
	t.Setenv("TEST_RPS", "")
	if got := envFloat("TEST_RPS", 1); got != 1 {
		t.Fatalf("envFloat fallback = %v, want 1", got)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("TEST_FLAG", "true")
	if !envBool("TEST_FLAG", false) {
		t.Fatal("envBool = false, want true")
	}
	t.Setenv("TEST_FLAG", "banana")
	if envBool("TEST_FLAG", false) {
		t.Fatal("envBool = true, want fallback false")
	}
	t.Setenv("TEST_FLAG", "")
	if !envBool("TEST_FLAG", true) {
		t.Fatal("envBool = false, want fallback true")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "  ", "x", "y"); got != "x" {
		t.Fatalf("firstNonEmpty = %q, want x", got)
	}
	if got := firstNonEmpty("", "  "); got != "" {
		t.Fatalf("firstNonEmpty = %q, want empty", got)
	}
}
