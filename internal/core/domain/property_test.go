package domain

import (
	"errors"
	"slices"
	"testing"
)

func TestSourceSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    SourceSpec
		wantErr bool
	}{
		{"valid", SourceSpec{Name: "local", Location: "/etc/local.properties"}, false},
		{"empty name", SourceSpec{Location: "/x"}, true},
		{"blank location", SourceSpec{Name: "x", Location: "  "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSource) {
				t.Errorf("Validate() error = %v, want ErrInvalidSource", err)
			}
		})
	}
}

func TestMergedConfiguration_CopiesInputs(t *testing.T) {
	values := map[string]string{"a": "1"}
	src := PropertySource{Name: "one", Values: map[string]string{"a": "1"}}
	cfg := NewMergedConfiguration(values, values, []PropertySource{src}, []string{"z", "m"})

	values["a"] = "changed"
	src.Values["a"] = "changed"

	if v, _ := cfg.Get("a"); v != "1" {
		t.Errorf("Get(a) = %q, want %q", v, "1")
	}
	if s, _ := cfg.Source("one"); s["a"] != "1" {
		t.Errorf("Source(one)[a] = %q, want %q", s["a"], "1")
	}

	out := cfg.Values()
	out["a"] = "changed"
	if v, _ := cfg.Get("a"); v != "1" {
		t.Error("Values() must return a copy")
	}

	if got := cfg.Unresolved(); !slices.Equal(got, []string{"m", "z"}) {
		t.Errorf("Unresolved() = %v, want sorted", got)
	}
}

func TestMergedConfiguration_Accessors(t *testing.T) {
	cfg := NewMergedConfiguration(
		map[string]string{"b": "2", "a": "1"},
		map[string]string{"b": "${x}", "a": "1"},
		[]PropertySource{{Name: "kernel"}, {Name: "local"}},
		nil,
	)

	if got := cfg.Keys(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v", got)
	}
	if got := cfg.SourceNames(); !slices.Equal(got, []string{"kernel", "local"}) {
		t.Errorf("SourceNames() = %v", got)
	}
	if cfg.GetString("missing", "def") != "def" {
		t.Error("GetString should fall back to default")
	}
	if cfg.Raw()["b"] != "${x}" {
		t.Errorf("Raw()[b] = %q", cfg.Raw()["b"])
	}
	if _, ok := cfg.Source("nope"); ok {
		t.Error("Source(nope) should miss")
	}
	if cfg.Len() != 2 {
		t.Errorf("Len() = %d", cfg.Len())
	}
}

func TestMergedConfiguration_Fingerprint(t *testing.T) {
	a := NewMergedConfiguration(map[string]string{"k": "v", "x": "y"}, nil, nil, nil)
	b := NewMergedConfiguration(map[string]string{"x": "y", "k": "v"}, nil, nil, nil)
	c := NewMergedConfiguration(map[string]string{"k": "v", "x": "z"}, nil, nil, nil)

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprint must not depend on map order")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("fingerprint should change with values")
	}
	if len(a.Fingerprint()) != 16 {
		t.Errorf("fingerprint length = %d, want 16", len(a.Fingerprint()))
	}
}

func TestEmptyConfiguration(t *testing.T) {
	cfg := EmptyConfiguration()
	if cfg.Len() != 0 || len(cfg.SourceNames()) != 0 {
		t.Error("EmptyConfiguration should be empty")
	}
}
