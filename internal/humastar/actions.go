package humastar

import (
	"fmt"
	"strings"
)

// Action is a state-dependent hypermedia action. Response bodies that
// implement Actor get one RFC 8288 Link header per action, e.g.
//
//	</api/v1/sessions/42/location>; rel="locate"; method="POST"; title="Show a location fix"
type Action struct {
	Rel    string // IANA rel or custom, e.g. "pan"
	Href   string
	Method string // POST, PUT, DELETE, ...
	Title  string
}

// Actor is implemented by response bodies that offer actions.
type Actor interface {
	Actions() []Action
}

// LinkHeader formats the action as a Link header value.
func (a Action) LinkHeader() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<%s>; rel="%s"`, a.Href, a.Rel)
	if a.Method != "" {
		fmt.Fprintf(&b, `; method="%s"`, a.Method)
	}
	if a.Title != "" {
		fmt.Fprintf(&b, `; title="%s"`, a.Title)
	}
	return b.String()
}

// ActionDef is an action template whose Pattern has one %s for the
// resource id.
type ActionDef struct {
	Rel     string
	Pattern string
	Method  string
	Title   string

	// When, if set, decides per resource state whether the action applies.
	When func(state any) bool
}

// ActionsFor expands defs for the resource id in the given state.
func ActionsFor(id string, state any, defs []ActionDef) []Action {
	actions := make([]Action, 0, len(defs))
	for _, d := range defs {
		if d.When != nil && !d.When(state) {
			continue
		}
		actions = append(actions, Action{
			Rel:    d.Rel,
			Href:   fmt.Sprintf(d.Pattern, id),
			Method: d.Method,
			Title:  d.Title,
		})
	}
	return actions
}
