// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scales

import "testing"

func TestAll(t *testing.T) {
	defs := All()
	if len(defs) != 8 {
		t.Fatalf("expected 8 scales, got %d", len(defs))
	}

	seen := map[string]bool{}
	for _, def := range defs {
		if def.Name == "" {
			t.Error("scale with empty name")
		}
		if seen[def.Name] {
			t.Errorf("duplicate scale name %s", def.Name)
		}
		seen[def.Name] = true
		if len(def.Options) == 0 {
			t.Errorf("scale %s has no options", def.Name)
		}
	}
}

func TestGet(t *testing.T) {
	def, ok := Get(Fibonacci)
	if !ok {
		t.Fatal("fibonacci scale missing")
	}
	if def.Unit != "points" {
		t.Errorf("expected points unit, got %s", def.Unit)
	}

	if _, ok := Get("golden-ratio"); ok {
		t.Error("expected lookup miss for unknown scale")
	}
}

func TestIsValidVote(t *testing.T) {
	cases := []struct {
		scale, value string
		want         bool
	}{
		{Fibonacci, "5", true},
		{Fibonacci, "?", true},
		{Fibonacci, "☕", true},
		{Fibonacci, "4", false},
		{Fibonacci, "", false},
		{TShirt, "M", true},
		{TShirt, "XXXL", false},
		{ModifiedFibonacci, "0.5", true},
		{StoryPoints, "∞", true},
		{Linear, "∞", false},
		{"golden-ratio", "5", false},
	}
	for _, tc := range cases {
		if got := IsValidVote(tc.scale, tc.value); got != tc.want {
			t.Errorf("IsValidVote(%s, %q) = %v, want %v", tc.scale, tc.value, got, tc.want)
		}
	}
}

func TestNumericValue(t *testing.T) {
	v, ok := NumericValue(Fibonacci, "13")
	if !ok || v != 13 {
		t.Errorf("NumericValue(fibonacci, 13) = %v, %v", v, ok)
	}

	// T-shirt sizes map onto a numeric ladder for aggregation
	v, ok = NumericValue(TShirt, "L")
	if !ok || v != 5 {
		t.Errorf("NumericValue(tshirt, L) = %v, %v", v, ok)
	}

	if _, ok := NumericValue(Fibonacci, "?"); ok {
		t.Error("qualitative tokens have no numeric value")
	}
	if _, ok := NumericValue(Fibonacci, "4"); ok {
		t.Error("off-scale values have no numeric value")
	}
	if _, ok := NumericValue("golden-ratio", "5"); ok {
		t.Error("unknown scales have no numeric values")
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	defs := All()
	defs[0] = Definition{Name: "clobbered"}
	if _, ok := Get(Fibonacci); !ok {
		t.Error("mutating the All result must not affect the catalog")
	}
	if All()[0].Name == "clobbered" {
		t.Error("All must return a fresh slice")
	}
}
