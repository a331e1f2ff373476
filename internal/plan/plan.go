package plan

// Plan is an immutable set of ceilings tied to an owner's subscription
// tier. Plans are process constants, not database rows; an owner row
// only stores the plan name.
type Plan struct {
	Name string

	// Categories and Events cap how many of each an owner may create
	// through the management surface.
	Categories int
	Events     int

	// Triggers is the number of successful deliveries allowed per
	// billing window (calendar month). The ceiling is inclusive: once
	// Triggers sends exist in the window, the next attempt is blocked.
	Triggers int
}

var (
	Free = Plan{Name: "FREE", Categories: 3, Events: 3, Triggers: 10}
	Pro  = Plan{Name: "PRO", Categories: 10, Events: 100, Triggers: 100}
)

// MaxAPIKeysPerUser caps how many API keys a single owner may hold.
const MaxAPIKeysPerUser = 10

// ByName maps a stored plan name to its ceilings. Unknown names fall
// back to FREE so a corrupt row can never unlock PRO limits.
func ByName(name string) Plan {
	if name == Pro.Name {
		return Pro
	}
	return Free
}
