package types

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseFields(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		fields, err := ParseFields([]byte(`{"type":"redirect_to_url","redirect_to_url":{"url":"https://example.com"}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, _ := fields.String("type"); got != "redirect_to_url" {
			t.Errorf("expected type redirect_to_url, got %q", got)
		}
	})

	tests := []struct {
		name string
		data string
	}{
		{name: "array", data: `[1,2,3]`},
		{name: "null", data: `null`},
		{name: "string", data: `"hello"`},
		{name: "malformed", data: `{"type":`},
		{name: "empty", data: ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFields([]byte(tt.data)); err == nil {
				t.Errorf("expected error for %s input", tt.name)
			}
		})
	}
}

func TestFieldsAccessorsFailSoft(t *testing.T) {
	fields := Fields{
		"str":      "value",
		"empty":    "",
		"null":     nil,
		"num":      float64(42),
		"frac":     1.5,
		"bool":     true,
		"nested":   map[string]interface{}{"a": "b"},
		"list":     []interface{}{"x", "y"},
		"mixed":    []interface{}{"x", 1.0},
		"jsonnum":  json.Number("1700000000"),
		"nan":      math.NaN(),
		"huge":     1e30,
		"url":      "https://hooks.example.com/return?x=1",
		"relative": "/just/a/path",
	}

	t.Run("String", func(t *testing.T) {
		tests := []struct {
			key  string
			want string
			ok   bool
		}{
			{"str", "value", true},
			{"empty", "", true},
			{"null", "", false},
			{"num", "", false},
			{"nested", "", false},
			{"missing", "", false},
		}
		for _, tt := range tests {
			got, ok := fields.String(tt.key)
			if got != tt.want || ok != tt.ok {
				t.Errorf("String(%q) = (%q, %v), want (%q, %v)", tt.key, got, ok, tt.want, tt.ok)
			}
		}
	})

	t.Run("Bool", func(t *testing.T) {
		if !fields.Bool("bool", false) {
			t.Error("expected stored true")
		}
		if !fields.Bool("str", true) {
			t.Error("expected default for wrong type")
		}
		if fields.Bool("missing", false) {
			t.Error("expected default for missing key")
		}
		if !fields.Bool("null", true) {
			t.Error("expected default for null")
		}
	})

	t.Run("Date", func(t *testing.T) {
		got, ok := fields.Date("jsonnum")
		if !ok || !got.Equal(time.Unix(1700000000, 0)) {
			t.Errorf("unexpected date %v, %v", got, ok)
		}
		if got.Location() != time.UTC {
			t.Errorf("expected UTC, got %v", got.Location())
		}
		for _, key := range []string{"str", "nan", "huge", "null", "missing"} {
			if _, ok := fields.Date(key); ok {
				t.Errorf("Date(%q) should report no value", key)
			}
		}
	})

	t.Run("Date fractional seconds", func(t *testing.T) {
		got, ok := fields.Date("frac")
		if !ok || !got.Equal(time.Unix(1, 5e8)) {
			t.Errorf("Date(frac) = (%v, %v), want 1.5s after the epoch", got, ok)
		}

		dated := Fields{
			"created": json.Number("1700000000.25"),
			"inf":     math.Inf(1),
		}
		got, ok = dated.Date("created")
		if !ok || !got.Equal(time.Unix(1700000000, 25e7)) {
			t.Errorf("Date(created) = (%v, %v)", got, ok)
		}
		if _, ok := dated.Date("inf"); ok {
			t.Error("Date(inf) should report no value")
		}
	})

	t.Run("Mapping", func(t *testing.T) {
		nested, ok := fields.Mapping("nested")
		if !ok {
			t.Fatal("expected nested mapping")
		}
		if v, _ := nested.String("a"); v != "b" {
			t.Errorf("expected nested a=b, got %q", v)
		}
		for _, key := range []string{"str", "list", "null", "missing"} {
			if _, ok := fields.Mapping(key); ok {
				t.Errorf("Mapping(%q) should report no value", key)
			}
		}
	})

	t.Run("StringSlice", func(t *testing.T) {
		got, ok := fields.StringSlice("list")
		if !ok {
			t.Fatal("expected list")
		}
		if diff := cmp.Diff([]string{"x", "y"}, got); diff != "" {
			t.Errorf("list mismatch (-want +got)\n%s", diff)
		}
		if _, ok := fields.StringSlice("mixed"); ok {
			t.Error("mixed array should report no value")
		}
	})

	t.Run("URL", func(t *testing.T) {
		u, ok := fields.URL("url")
		if !ok || u.Host != "hooks.example.com" {
			t.Errorf("unexpected url %v, %v", u, ok)
		}
		for _, key := range []string{"relative", "empty", "num", "missing"} {
			if _, ok := fields.URL(key); ok {
				t.Errorf("URL(%q) should report no value", key)
			}
		}
	})

	t.Run("Has", func(t *testing.T) {
		if !fields.Has("str") || fields.Has("null") || fields.Has("missing") {
			t.Error("unexpected Has result")
		}
	})
}

func TestNilFieldsAreSafe(t *testing.T) {
	var fields Fields
	if _, ok := fields.String("type"); ok {
		t.Error("expected no value from nil fields")
	}
	if _, ok := fields.Mapping("x"); ok {
		t.Error("expected no mapping from nil fields")
	}
	if fields.Clone() != nil {
		t.Error("expected nil clone")
	}
}

func TestFieldsClone(t *testing.T) {
	original := Fields{
		"type": "redirect_to_url",
		"redirect_to_url": map[string]interface{}{
			"url":  "https://example.com",
			"tags": []interface{}{"a", map[string]interface{}{"deep": "x"}},
		},
	}

	clone := original.Clone()
	if diff := cmp.Diff(original, clone); diff != "" {
		t.Fatalf("clone differs (-original +clone)\n%s", diff)
	}

	nested, _ := clone.Mapping("redirect_to_url")
	nested["url"] = "https://evil.example.com"
	nested["tags"].([]interface{})[1].(map[string]interface{})["deep"] = "y"
	clone["type"] = "changed"

	if v, _ := original.String("type"); v != "redirect_to_url" {
		t.Errorf("original top level mutated: %q", v)
	}
	origNested, _ := original.Mapping("redirect_to_url")
	if v, _ := origNested.String("url"); v != "https://example.com" {
		t.Errorf("original nested mutated: %q", v)
	}
	deep := origNested["tags"].([]interface{})[1].(map[string]interface{})["deep"]
	if deep != "x" {
		t.Errorf("original deep value mutated: %v", deep)
	}
}
