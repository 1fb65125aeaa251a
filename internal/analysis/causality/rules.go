package causality

import "time"

// Window and distance limits
const (
	MaxTimeWindow          = 24 * time.Hour
	MaxDistanceMeters      = 500.0
	DefaultProximityMeters = 50.0
	DefaultStrength        = 0.5
	DefaultCategory        = "Others"
)

type matrixEntry struct {
	cause   string
	effects []string
}

// Ordered so PossibleCauses is deterministic.
var causalMatrix = []matrixEntry{
	// water
	{"Flooding", []string{"Traffic", "Stranded", "Blackout", "Road Damage", "Accident", "Evacuation", "Health Hazard"}},
	{"Flood", []string{"Traffic", "Stranded", "Blackout", "Road Damage", "Accident", "Evacuation", "Health Hazard"}},
	{"Flash Flood", []string{"Traffic", "Stranded", "Blackout", "Accident", "Evacuation", "Building Collapse"}},
	{"Heavy Rain", []string{"Flooding", "Flood", "Traffic", "Landslide", "Accident"}},
	{"Pipe Leak", []string{"Flooding", "Flood", "No Water", "Road Damage"}},
	{"Clogged Drainage", []string{"Flooding", "Flood"}},
	{"Clogged Canal", []string{"Flooding", "Flood"}},

	// fire and explosions
	{"Fire", []string{"Traffic", "Smoke", "Evacuation", "Blackout", "Road Obstruction", "Medical", "Panic"}},
	{"Explosion", []string{"Fire", "Traffic", "Evacuation", "Medical", "Building Collapse", "Blackout"}},
	{"Gas Leak", []string{"Fire", "Explosion", "Evacuation"}},
	{"Transformer Explosion", []string{"Fire", "Blackout"}},
	{"Power Line Down", []string{"Fire", "Blackout"}},

	// road
	{"Accident", []string{"Traffic", "Road Obstruction", "Medical"}},
	{"Vehicle Breakdown", []string{"Traffic", "Road Obstruction"}},
	{"Reckless Driving", []string{"Accident"}},
	{"Drunk Driving", []string{"Accident"}},
	{"Traffic", []string{"Noise", "Air Pollution"}},
	{"Road Obstruction", []string{"Traffic"}},

	// infrastructure
	{"Landslide", []string{"Road Obstruction", "Traffic", "Stranded", "Evacuation"}},
	{"Bridge Collapse", []string{"Traffic", "Stranded"}},
	{"Fallen Tree", []string{"Road Obstruction", "Traffic", "Blackout"}},
	{"Building Collapse", []string{"Traffic", "Evacuation", "Medical"}},
	{"Pothole", []string{"Accident"}},
	{"Road Damage", []string{"Accident", "Traffic"}},

	// utilities
	{"Blackout", []string{"Traffic", "Accident", "Crime"}},
	{"No Water", []string{"Health Hazard"}},

	// public safety
	{"Crime", []string{"Traffic", "Panic"}},
	{"Robbery", []string{"Traffic", "Panic"}},
	{"Gang Activity", []string{"Panic"}},
	{"Gunshot", []string{"Panic"}},

	// sanitation
	{"Sewage Leak", []string{"Health Hazard", "Bad Odor"}},
	{"Mosquito Breeding", []string{"Health Hazard"}},
	{"Pest Infestation", []string{"Health Hazard"}},
	{"Trash", []string{"Pest Infestation", "Bad Odor", "Clogged Drainage"}},
	{"Overflowing Trash", []string{"Pest Infestation", "Bad Odor", "Clogged Drainage"}},

	// natural
	{"Earthquake", []string{"Building Collapse", "Fire", "Landslide", "Panic"}},
}

// Meters, keyed by cause category
var distanceOverrides = map[string]float64{
	"Flooding":    200,
	"Flood":       200,
	"Flash Flood": 300,
	"Fire":        150,
	"Explosion":   250,
	"Smoke":       300,
	"Blackout":    500,
	"Earthquake":  1000,
	"Landslide":   200,
	"Heavy Rain":  500,
}

var strengths = map[string]float64{
	"Flooding->Traffic":             0.85,
	"Flood->Traffic":                0.85,
	"Fire->Smoke":                   0.95,
	"Fire->Evacuation":              0.90,
	"Fire->Traffic":                 0.80,
	"Accident->Traffic":             0.90,
	"Accident->Medical":             0.70,
	"Pipe Leak->Flooding":           0.92,
	"Clogged Drainage->Flooding":    0.88,
	"Explosion->Fire":               0.85,
	"Gas Leak->Fire":                0.75,
	"Heavy Rain->Flooding":          0.90,
	"Landslide->Road Obstruction":   0.95,
	"Blackout->Crime":               0.65,
	"Earthquake->Building Collapse": 0.75,
}

// Rules is the read-only view of the causal tables
type Rules struct {
	effects map[string][]string
	order   []string
}

var defaultRules = newRules()

func newRules() *Rules {
	r := &Rules{
		effects: make(map[string][]string, len(causalMatrix)),
		order:   make([]string, 0, len(causalMatrix)),
	}
	for _, e := range causalMatrix {
		r.effects[e.cause] = e.effects
		r.order = append(r.order, e.cause)
	}
	return r
}

// DefaultRules returns the built-in causal rules
func DefaultRules() *Rules {
	return defaultRules
}

// CanCause reports whether the matrix lets cause produce effect
func (r *Rules) CanCause(cause, effect string) bool {
	for _, e := range r.effects[cause] {
		if e == effect {
			return true
		}
	}
	return false
}

// PossibleEffects returns a copy of the effects listed for cause
func (r *Rules) PossibleEffects(cause string) []string {
	effects := r.effects[cause]
	out := make([]string, len(effects))
	copy(out, effects)
	return out
}

// PossibleCauses returns every cause category that lists effect
func (r *Rules) PossibleCauses(effect string) []string {
	causes := []string{}
	for _, cause := range r.order {
		if r.CanCause(cause, effect) {
			causes = append(causes, cause)
		}
	}
	return causes
}

// DistanceThreshold returns the spatial limit in meters for a cause category
func (r *Rules) DistanceThreshold(cause string) float64 {
	if d, ok := distanceOverrides[cause]; ok {
		return d
	}
	return DefaultProximityMeters
}

// Strength returns the cause->effect strength, DefaultStrength if unlisted
func (r *Rules) Strength(cause, effect string) float64 {
	if s, ok := strengths[cause+"->"+effect]; ok {
		return s
	}
	return DefaultStrength
}

// Categories returns cause categories in matrix order
func (r *Rules) Categories() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
