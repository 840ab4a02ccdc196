package cache_test

import (
	"strings"
	"testing"

	"github.com/meenmo/loancast/cache"
)

func TestMemory(t *testing.T) {
	t.Parallel()
	c := cache.NewMemory()

	if _, ok := c.Get("absent"); ok {
		t.Error("empty cache reported a hit")
	}
	if err := c.Set("k", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok := c.Get("k"); !ok || v != "v1" {
		t.Errorf("Get = %q/%v, want v1/true", v, ok)
	}
	if err := c.Set("k", "v2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := c.Get("k"); v != "v2" {
		t.Errorf("Get after overwrite = %q, want v2", v)
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	k := cache.Key("excel:curves.xlsx", `{"grade":"C4"}`)
	if !strings.HasPrefix(k, "loancast:") {
		t.Errorf("key %q lacks the namespace prefix", k)
	}
	if k != cache.Key("excel:curves.xlsx", `{"grade":"C4"}`) {
		t.Error("identical parts produced different keys")
	}
	if k == cache.Key("excel:curves.xlsx", `{"grade":"A1"}`) {
		t.Error("different parts produced the same key")
	}

	// Part boundaries must be part of the hash.
	if cache.Key("ab", "c") == cache.Key("a", "bc") {
		t.Error("shifting a boundary between parts produced the same key")
	}
	if cache.Key("ab") == cache.Key("ab", "") {
		t.Error("trailing empty part produced the same key")
	}
}
