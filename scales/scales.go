// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scales

// Scale name constants
const (
	Fibonacci         = "fibonacci"
	ModifiedFibonacci = "modified-fibonacci"
	TShirt            = "tshirt"
	Hours             = "hours"
	Days              = "days"
	Linear            = "linear"
	PowerOfTwo        = "power-of-2"
	StoryPoints       = "story-points"
)

// Option is one legal vote token on a scale. Numeric is nil for
// qualitative tokens ("?", "☕", "∞") and for sizes whose scale has no
// numeric unit at all.
type Option struct {
	Value       string   `json:"value"`
	Numeric     *float64 `json:"numeric,omitempty"`
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
}

// Definition is a complete estimation scale.
type Definition struct {
	Name    string   `json:"name"`
	Unit    string   `json:"unit"`
	Options []Option `json:"options"`
}

func num(v float64) *float64 { return &v }

var unsure = Option{Value: "?", Label: "Unsure", Description: "Not enough information to estimate"}
var coffee = Option{Value: "☕", Label: "Break", Description: "Too tired, time for a break"}
var infinity = Option{Value: "∞", Label: "Infinite", Description: "Too large to estimate, split the issue"}

var catalog = []Definition{
	{
		Name: Fibonacci,
		Unit: "points",
		Options: []Option{
			{Value: "0", Numeric: num(0), Label: "0"},
			{Value: "1", Numeric: num(1), Label: "1"},
			{Value: "2", Numeric: num(2), Label: "2"},
			{Value: "3", Numeric: num(3), Label: "3"},
			{Value: "5", Numeric: num(5), Label: "5"},
			{Value: "8", Numeric: num(8), Label: "8"},
			{Value: "13", Numeric: num(13), Label: "13"},
			{Value: "21", Numeric: num(21), Label: "21"},
			{Value: "34", Numeric: num(34), Label: "34"},
			{Value: "55", Numeric: num(55), Label: "55"},
			{Value: "89", Numeric: num(89), Label: "89"},
			unsure,
			coffee,
		},
	},
	{
		Name: ModifiedFibonacci,
		Unit: "points",
		Options: []Option{
			{Value: "0", Numeric: num(0), Label: "0"},
			{Value: "0.5", Numeric: num(0.5), Label: "½"},
			{Value: "1", Numeric: num(1), Label: "1"},
			{Value: "2", Numeric: num(2), Label: "2"},
			{Value: "3", Numeric: num(3), Label: "3"},
			{Value: "5", Numeric: num(5), Label: "5"},
			{Value: "8", Numeric: num(8), Label: "8"},
			{Value: "13", Numeric: num(13), Label: "13"},
			{Value: "20", Numeric: num(20), Label: "20"},
			{Value: "40", Numeric: num(40), Label: "40"},
			{Value: "100", Numeric: num(100), Label: "100"},
			unsure,
			coffee,
		},
	},
	{
		Name: TShirt,
		Unit: "size",
		Options: []Option{
			{Value: "XS", Numeric: num(1), Label: "Extra small", Description: "Trivial change"},
			{Value: "S", Numeric: num(2), Label: "Small"},
			{Value: "M", Numeric: num(3), Label: "Medium"},
			{Value: "L", Numeric: num(5), Label: "Large"},
			{Value: "XL", Numeric: num(8), Label: "Extra large"},
			{Value: "XXL", Numeric: num(13), Label: "Double extra large", Description: "Consider splitting"},
			unsure,
		},
	},
	{
		Name: Hours,
		Unit: "hours",
		Options: []Option{
			{Value: "1", Numeric: num(1), Label: "1h"},
			{Value: "2", Numeric: num(2), Label: "2h"},
			{Value: "4", Numeric: num(4), Label: "4h"},
			{Value: "8", Numeric: num(8), Label: "1 day"},
			{Value: "16", Numeric: num(16), Label: "2 days"},
			{Value: "24", Numeric: num(24), Label: "3 days"},
			{Value: "40", Numeric: num(40), Label: "1 week"},
			unsure,
		},
	},
	{
		Name: Days,
		Unit: "days",
		Options: []Option{
			{Value: "0.5", Numeric: num(0.5), Label: "Half a day"},
			{Value: "1", Numeric: num(1), Label: "1 day"},
			{Value: "2", Numeric: num(2), Label: "2 days"},
			{Value: "3", Numeric: num(3), Label: "3 days"},
			{Value: "5", Numeric: num(5), Label: "1 week"},
			{Value: "10", Numeric: num(10), Label: "2 weeks"},
			unsure,
		},
	},
	{
		Name: Linear,
		Unit: "points",
		Options: []Option{
			{Value: "1", Numeric: num(1), Label: "1"},
			{Value: "2", Numeric: num(2), Label: "2"},
			{Value: "3", Numeric: num(3), Label: "3"},
			{Value: "4", Numeric: num(4), Label: "4"},
			{Value: "5", Numeric: num(5), Label: "5"},
			{Value: "6", Numeric: num(6), Label: "6"},
			{Value: "7", Numeric: num(7), Label: "7"},
			{Value: "8", Numeric: num(8), Label: "8"},
			{Value: "9", Numeric: num(9), Label: "9"},
			{Value: "10", Numeric: num(10), Label: "10"},
			unsure,
		},
	},
	{
		Name: PowerOfTwo,
		Unit: "points",
		Options: []Option{
			{Value: "1", Numeric: num(1), Label: "1"},
			{Value: "2", Numeric: num(2), Label: "2"},
			{Value: "4", Numeric: num(4), Label: "4"},
			{Value: "8", Numeric: num(8), Label: "8"},
			{Value: "16", Numeric: num(16), Label: "16"},
			{Value: "32", Numeric: num(32), Label: "32"},
			{Value: "64", Numeric: num(64), Label: "64"},
			unsure,
		},
	},
	{
		Name: StoryPoints,
		Unit: "points",
		Options: []Option{
			{Value: "1", Numeric: num(1), Label: "1"},
			{Value: "2", Numeric: num(2), Label: "2"},
			{Value: "3", Numeric: num(3), Label: "3"},
			{Value: "5", Numeric: num(5), Label: "5"},
			{Value: "8", Numeric: num(8), Label: "8"},
			{Value: "13", Numeric: num(13), Label: "13"},
			{Value: "21", Numeric: num(21), Label: "21"},
			unsure,
			infinity,
		},
	},
}

var byName = func() map[string]Definition {
	m := make(map[string]Definition, len(catalog))
	for _, def := range catalog {
		m[def.Name] = def
	}
	return m
}()

// All returns every scale definition in catalog order.
func All() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Get returns the definition for a scale name.
func Get(name string) (Definition, bool) {
	def, ok := byName[name]
	return def, ok
}

// IsValidVote reports whether value is a legal token on the named scale.
func IsValidVote(scale, value string) bool {
	def, ok := byName[scale]
	if !ok {
		return false
	}
	for _, opt := range def.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// NumericValue maps a vote token to its numeric estimate. Qualitative
// tokens ("?", "☕", "∞") return ok=false rather than an error so a vote
// can still be recorded without contributing to numeric aggregation.
func NumericValue(scale, value string) (float64, bool) {
	def, ok := byName[scale]
	if !ok {
		return 0, false
	}
	for _, opt := range def.Options {
		if opt.Value == value {
			if opt.Numeric == nil {
				return 0, false
			}
			return *opt.Numeric, true
		}
	}
	return 0, false
}
