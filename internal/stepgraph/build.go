// Package stepgraph parses raw instruction text into a structured step
// sequence: action kind, timing, temperature, ingredient references, and
// reorder eligibility. It is a best-effort heuristic parser, not a validator:
// malformed input yields a degraded graph with general action kinds rather
// than an error.
package stepgraph

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/recipe-share/internal/types"
)

// KeywordSet maps an action kind to the keywords that indicate it.
type KeywordSet struct {
	Action   types.ActionKind
	Keywords []string
}

// Config holds the patterns and keyword tables used by the builder. All
// matching state is explicit so tests can inject alternate tables.
type Config struct {
	// TimePattern extracts the first duration expression; group 1 is the
	// integer value, group 2 the unit word.
	TimePattern *regexp.Regexp
	// TempPattern extracts the first temperature expression; group 1 is the
	// integer value, group 2 the unit word.
	TempPattern *regexp.Regexp
	// Keywords are checked in order; the first set with a match decides the
	// action kind.
	Keywords []KeywordSet
	// MinIngredientNameLen skips very short ingredient names during
	// substring matching ("oil" matches, "g" does not).
	MinIngredientNameLen int
}

// DefaultConfig returns the standard parsing configuration.
func DefaultConfig() Config {
	return Config{
		TimePattern: regexp.MustCompile(`(?i)\b(\d+)\s*(minutes?|mins?|min|hours?|hrs?|hr)\b`),
		TempPattern: regexp.MustCompile(`(?i)\b(\d+)\s*°?\s*(celsius|fahrenheit|c|f)\b`),
		Keywords: []KeywordSet{
			{Action: types.ActionPreheat, Keywords: []string{"preheat", "pre-heat", "heat the oven", "warm the oven"}},
			{Action: types.ActionPrep, Keywords: []string{"chop", "dice", "slice", "cut", "peel", "mince", "grate", "wash", "trim", "rinse", "measure"}},
			{Action: types.ActionMix, Keywords: []string{"mix", "stir", "whisk", "combine", "fold", "beat", "toss", "blend"}},
			{Action: types.ActionBake, Keywords: []string{"bake", "roast", "broil", "grill", "oven"}},
			{Action: types.ActionFry, Keywords: []string{"fry", "saute", "sauté", "sear", "brown", "crisp"}},
			{Action: types.ActionBoil, Keywords: []string{"boil", "simmer", "poach", "steam", "blanch", "reduce"}},
			{Action: types.ActionServe, Keywords: []string{"serve", "plate", "garnish", "enjoy"}},
		},
		MinIngredientNameLen: 3,
	}
}

// Builder builds step graphs from instruction lists.
type Builder struct {
	cfg Config
}

// NewBuilder creates a Builder with the given configuration.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// Build parses instructions into a StepGraph. It never fails: instructions
// that match nothing become general steps with no timing or references.
func (b *Builder) Build(instructions []string, ingredients []types.IngredientFact) types.StepGraph {
	graph := types.StepGraph{Steps: make([]types.Step, 0, len(instructions))}
	used := make(map[string]bool)

	for i, text := range instructions {
		step := types.Step{
			Order:  i + 1,
			Action: types.ActionGeneral,
		}

		if minutes, ok := b.extractTime(text); ok {
			step.TimeMinutes = minutes
			graph.TotalTimeMinutes += minutes
		}

		if temp, ok := b.extractTemperature(text); ok {
			step.Temperature = &temp
			// Running max compares raw numeric values; no C/F conversion is
			// performed. Accepted heuristic, not a correctness guarantee.
			if graph.MaxTemperature == nil || temp.Value > graph.MaxTemperature.Value {
				t := temp
				graph.MaxTemperature = &t
			}
		}

		step.Action = b.classify(text)
		step.CanReorder = step.Action == types.ActionPreheat || step.Action == types.ActionPrep

		lower := strings.ToLower(text)
		for _, ing := range ingredients {
			name := strings.ToLower(strings.TrimSpace(ing.Name))
			if len(name) < b.cfg.MinIngredientNameLen {
				continue
			}
			if strings.Contains(lower, name) {
				step.IngredientRefs = append(step.IngredientRefs, ing.Name)
				if !used[name] {
					used[name] = true
					graph.IngredientsUsed = append(graph.IngredientsUsed, ing.Name)
				}
			}
		}

		graph.Steps = append(graph.Steps, step)
	}

	return graph
}

// extractTime returns the first duration in the text, in minutes.
func (b *Builder) extractTime(text string) (int, bool) {
	m := b.cfg.TimePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	value, err := strconv.Atoi(m[1])
	if err != nil || value < 0 {
		return 0, false
	}
	unit := strings.ToLower(m[2])
	if strings.HasPrefix(unit, "h") {
		value *= 60
	}
	return value, true
}

// extractTemperature returns the first temperature in the text.
func (b *Builder) extractTemperature(text string) (types.Temperature, bool) {
	m := b.cfg.TempPattern.FindStringSubmatch(text)
	if m == nil {
		return types.Temperature{}, false
	}
	value, err := strconv.Atoi(m[1])
	if err != nil {
		return types.Temperature{}, false
	}
	unit := types.UnitCelsius
	if strings.HasPrefix(strings.ToLower(m[2]), "f") {
		unit = types.UnitFahrenheit
	}
	return types.Temperature{Value: value, Unit: unit}, true
}

// classify returns the action kind of the first keyword set that matches.
func (b *Builder) classify(text string) types.ActionKind {
	lower := strings.ToLower(text)
	for _, set := range b.cfg.Keywords {
		for _, kw := range set.Keywords {
			if strings.Contains(lower, kw) {
				return set.Action
			}
		}
	}
	return types.ActionGeneral
}
