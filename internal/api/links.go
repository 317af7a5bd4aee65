package api

import (
	"github.com/joeblew999/plat-radar/internal/humastar"
	"github.com/joeblew999/plat-radar/internal/session"
)

// SessionBody is a session snapshot plus the actions it offers.
type SessionBody struct {
	session.Snapshot
}

func newSessionBody(s *session.Session) SessionBody {
	return SessionBody{Snapshot: s.Snapshot()}
}

// sessionActions are the Link header actions of a session resource.
var sessionActions = []humastar.ActionDef{
	{Rel: "events", Pattern: "/api/v1/sessions/%s/events", Method: "GET", Title: "Live state stream"},
	{Rel: "target", Pattern: "/api/v1/sessions/%s/target", Method: "PUT", Title: "Show a capability"},
	{Rel: "baselayer", Pattern: "/api/v1/sessions/%s/baselayer", Method: "PUT", Title: "Switch the base layer"},
	{Rel: "locate", Pattern: "/api/v1/sessions/%s/location", Method: "POST", Title: "Show a location fix"},
	{Rel: "unlocate", Pattern: "/api/v1/sessions/%s/location", Method: "DELETE", Title: "Hide the location",
		When: func(s any) bool { return hasFix(s.(session.Snapshot)) }},
	{Rel: "pan", Pattern: "/api/v1/sessions/%s/pan", Method: "POST", Title: "Move the view"},
	{Rel: "prev", Pattern: "/api/v1/sessions/%s/history/back", Method: "POST", Title: "Go back",
		When: func(s any) bool { return s.(session.Snapshot).Index > 0 }},
	{Rel: "next", Pattern: "/api/v1/sessions/%s/history/forward", Method: "POST", Title: "Go forward",
		When: func(s any) bool {
			snap := s.(session.Snapshot)
			return snap.Index < snap.History-1
		}},
	{Rel: "delete", Pattern: "/api/v1/sessions/%s", Method: "DELETE", Title: "End the session"},
}

// Actions implements humastar.Actor.
func (b SessionBody) Actions() []humastar.Action {
	return humastar.ActionsFor(b.ID, b.Snapshot, sessionActions)
}

func hasFix(s session.Snapshot) bool {
	for _, m := range s.Maps {
		if m.Position || m.Accuracy {
			return true
		}
	}
	return false
}
