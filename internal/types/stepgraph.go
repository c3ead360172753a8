package types

// ActionKind classifies what a parsed instruction step does.
type ActionKind string

// Action kinds, from most to least specific for classification purposes.
const (
	ActionPreheat ActionKind = "preheat"
	ActionPrep    ActionKind = "prep"
	ActionMix     ActionKind = "mix"
	ActionBake    ActionKind = "bake"
	ActionFry     ActionKind = "fry"
	ActionBoil    ActionKind = "boil"
	ActionServe   ActionKind = "serve"
	ActionGeneral ActionKind = "general"
)

// TemperatureUnit is the unit a temperature was expressed in.
type TemperatureUnit string

// Supported temperature units.
const (
	UnitCelsius    TemperatureUnit = "C"
	UnitFahrenheit TemperatureUnit = "F"
)

// Temperature is a temperature value with its unit.
type Temperature struct {
	Value int             `json:"value"`
	Unit  TemperatureUnit `json:"unit"`
}

// Step is one parsed instruction unit. Steps are created once per rewrite
// attempt and never mutated afterwards.
type Step struct {
	Order          int          `json:"order"` // 1-based position
	Action         ActionKind   `json:"action"`
	TimeMinutes    int          `json:"time_minutes,omitempty"`
	Temperature    *Temperature `json:"temperature,omitempty"`
	IngredientRefs []string     `json:"ingredient_refs,omitempty"`
	CanReorder     bool         `json:"can_reorder"`
}

// StepGraph is the structured view of a recipe's instructions. It is derived
// and ephemeral: rebuilt from the recipe's current instructions each time a
// share is requested, never persisted.
type StepGraph struct {
	Steps            []Step       `json:"steps"`
	IngredientsUsed  []string     `json:"ingredients_used,omitempty"`
	TotalTimeMinutes int          `json:"total_time_minutes"`
	MaxTemperature   *Temperature `json:"max_temperature,omitempty"`
}
