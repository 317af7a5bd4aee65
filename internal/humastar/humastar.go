// Package humastar serves Huma operations as Datastar event streams.
//
// A radar session is mirrored to the browser as a stream of signal patches
// (shared map state) and element patches (status and control fragments).
// Browser actions come back as the Datastar signal object in the request
// body. Responses also carry RFC 8288 links derived from the OpenAPI paths
// (see [Links]) and per-resource actions (see [Actor]).
package humastar

import (
	"bytes"
	"encoding/json"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/joeblew999/plat-radar/internal/templates"
)

// Handler is embedded by handlers whose operations answer with a stream.
type Handler struct {
	Renderer *templates.Renderer
}

// Stream runs fn against the request's event stream once Huma hands over
// the response writer.
func (h *Handler) Stream(fn func(sse SSE)) *huma.StreamResponse {
	return &huma.StreamResponse{
		Body: func(ctx huma.Context) {
			fn(NewSSE(ctx))
		},
	}
}

// SSE is a Datastar event stream on one response.
type SSE struct {
	*datastar.ServerSentEventGenerator
}

// NewSSE opens the stream. ctx must come from the humago adapter.
func NewSSE(ctx huma.Context) SSE {
	r, w := humago.Unwrap(ctx)
	return SSE{datastar.NewSSE(w, r)}
}

// Patch swaps the children of the element matching selector.
func (s SSE) Patch(html, selector string) {
	s.PatchElements(html, datastar.WithSelector(selector), datastar.WithModeInner())
}

// Signals merges values into the page's signals.
func (s SSE) Signals(values map[string]any) {
	s.MarshalAndPatchSignals(values)
}

// Error and Success set the page's notice signals.
func (s SSE) Error(msg string)   { s.Signals(map[string]any{"error": msg, "success": ""}) }
func (s SSE) Success(msg string) { s.Signals(map[string]any{"success": msg, "error": ""}) }

// Signals is the flat signal object a Datastar action posts.
type Signals map[string]any

// ParseSignals decodes a request body.
func ParseSignals(body []byte) (Signals, error) {
	var s Signals
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, err
	}
	return s, nil
}

func lookup[T any](s Signals, key string) T {
	v, _ := s[key].(T)
	return v
}

// String, Float and Bool return the zero value for missing or mistyped keys.
func (s Signals) String(key string) string { return lookup[string](s, key) }
func (s Signals) Float(key string) float64 { return lookup[float64](s, key) }
func (s Signals) Bool(key string) bool     { return lookup[bool](s, key) }

// Has reports whether key was sent at all.
func (s Signals) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// SignalsInput captures the raw signal body of an action.
type SignalsInput struct {
	RawBody []byte
}

// MustParse decodes the body, answering 400 on bad JSON.
func (i *SignalsInput) MustParse() (Signals, error) {
	s, err := ParseSignals(i.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid signals: " + err.Error())
	}
	return s, nil
}

// Option is one entry of a <select>, rendered by the select-option fragment.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// RenderOptions renders opts as <option> elements.
func RenderOptions(r *templates.Renderer, opts []Option) string {
	var buf bytes.Buffer
	for _, o := range opts {
		r.RenderToBuffer(&buf, "select-option", o)
	}
	return buf.String()
}

// Empty is what RenderItems shows for an empty list.
type Empty struct {
	Title   string
	Message string
}

// RenderItems renders each item with tmpl, or the empty-state fragment.
func RenderItems(r *templates.Renderer, tmpl string, items []any, empty Empty) string {
	var buf bytes.Buffer
	if len(items) == 0 {
		r.RenderToBuffer(&buf, "empty-state", empty)
		return buf.String()
	}
	for _, it := range items {
		r.RenderToBuffer(&buf, tmpl, it)
	}
	return buf.String()
}
