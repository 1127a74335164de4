// Package tag parses component custom IDs into typed tags. Custom IDs follow
// the scheme "system:action" or "system:action:arg"; parsing happens once at
// dispatch, so feature handlers receive a typed tag and never re-split the
// raw string.
package tag

import "strings"

// System names the feature that owns an interactive component.
type System string

const (
	SystemAbsence      System = "absence"
	SystemSanction     System = "sanction"
	SystemBlacklist    System = "blacklist"
	SystemRegistration System = "registration"
	SystemTicket       System = "ticket"
)

// ComponentTag is a parsed component custom ID.
type ComponentTag struct {
	System System
	Action string
	Arg    string
}

// ID renders the tag back into a custom ID string.
func (t ComponentTag) ID() string {
	if t.Arg == "" {
		return string(t.System) + ":" + t.Action
	}
	return string(t.System) + ":" + t.Action + ":" + t.Arg
}

// Parse parses a custom ID into its tag. It reports false for IDs that do
// not follow the scheme, which lets the dispatcher ignore components it does
// not own.
func Parse(customID string) (ComponentTag, bool) {
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ComponentTag{}, false
	}
	t := ComponentTag{System: System(parts[0]), Action: parts[1]}
	if len(parts) == 3 {
		t.Arg = parts[2]
	}
	switch t.System {
	case SystemAbsence, SystemSanction, SystemBlacklist, SystemRegistration, SystemTicket:
		return t, true
	}
	return ComponentTag{}, false
}
