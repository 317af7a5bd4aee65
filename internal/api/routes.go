// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-radar/internal/baselayer"
	"github.com/joeblew999/plat-radar/internal/config"
	"github.com/joeblew999/plat-radar/internal/layermanager"
	"github.com/joeblew999/plat-radar/internal/mapview"
	"github.com/joeblew999/plat-radar/internal/session"
)

// Services holds the dependencies of the API handlers.
type Services struct {
	Config   *config.Config
	Catalog  *baselayer.Catalog
	Sessions *session.Registry
}

// Types

type SessionInput struct {
	ID string `path:"id" doc:"Session ID" example:"5f0e9f4e-2b7c-4bb8-9d0b-6a4f8f4fbd0e"`
}

type SessionOutput struct {
	Body SessionBody
}

type SessionsOutput struct {
	Body []SessionBody
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type CreateSessionBody struct {
	URL string `json:"url,omitempty" doc:"Page URL the session starts at" example:"http://localhost/?latLonZ=52.52,13.40,9"`
}

type TargetBody struct {
	Capability string `json:"capability" minLength:"1" doc:"Capability to show" example:"lightning"`
	Target     string `json:"target,omitempty" doc:"Surface to attach the map to" example:"map"`
}

type BaseLayerBody struct {
	Layer string `json:"layer" doc:"Base layer identifier; unknown ones select the default" example:"dark"`
}

type LocationBody struct {
	Lat      float64 `json:"lat" minimum:"-90" maximum:"90" doc:"Latitude in degrees, -1 with lon and accuracy -1 for no fix" example:"52.52"`
	Lon      float64 `json:"lon" minimum:"-180" maximum:"180" doc:"Longitude in degrees" example:"13.405"`
	Accuracy float64 `json:"accuracy" doc:"Accuracy radius in metres; negative hides the halo" example:"500"`
	ZoomIn   *bool   `json:"zoomIn,omitempty" doc:"Zoom to a level matching the accuracy (default false)"`
	Refocus  *bool   `json:"refocus,omitempty" doc:"Center the view on the fix (default true)"`
}

type PanBody struct {
	Capability string  `json:"capability" minLength:"1" doc:"Map the gesture happens on" example:"radar"`
	Lat        float64 `json:"lat" minimum:"-90" maximum:"90" doc:"New center latitude" example:"48.85"`
	Lon        float64 `json:"lon" minimum:"-180" maximum:"180" doc:"New center longitude" example:"2.35"`
	Zoom       float64 `json:"zoom" minimum:"0" maximum:"24" doc:"New zoom level" example:"10"`
}

type HistoryInput struct {
	SessionInput
	Direction string `path:"direction" enum:"back,forward" doc:"Navigation direction"`
}

type HistoryBody struct {
	Moved   bool        `json:"moved" doc:"Whether there was an entry in that direction"`
	Session SessionBody `json:"session" doc:"Session after navigating"`
}

// APIHandler holds the REST handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterCatalog registers the base layer and capability listings.
func (h *APIHandler) RegisterCatalog(api huma.API) {
	huma.Get(api, "/api/v1/baselayers", h.GetBaseLayers, huma.OperationTags("catalog"))
	huma.Get(api, "/api/v1/capabilities", h.GetCapabilities, huma.OperationTags("catalog"))
}

// RegisterSessions registers session routes.
func (h *APIHandler) RegisterSessions(api huma.API) {
	huma.Get(api, "/api/v1/sessions", h.ListSessions, huma.OperationTags("sessions"))
	huma.Post(api, "/api/v1/sessions", h.CreateSession, huma.OperationTags("sessions"))
	huma.Get(api, "/api/v1/sessions/{id}", h.GetSession, huma.OperationTags("sessions"))
	huma.Delete(api, "/api/v1/sessions/{id}", h.DeleteSession, huma.OperationTags("sessions"))

	huma.Put(api, "/api/v1/sessions/{id}/target", h.PutTarget, huma.OperationTags("sessions"))
	huma.Put(api, "/api/v1/sessions/{id}/baselayer", h.PutBaseLayer, huma.OperationTags("sessions"))
	huma.Post(api, "/api/v1/sessions/{id}/location", h.PostLocation, huma.OperationTags("sessions"))
	huma.Delete(api, "/api/v1/sessions/{id}/location", h.DeleteLocation, huma.OperationTags("sessions"))
	huma.Post(api, "/api/v1/sessions/{id}/pan", h.PostPan, huma.OperationTags("sessions"))
	huma.Post(api, "/api/v1/sessions/{id}/history/{direction}", h.PostHistory, huma.OperationTags("sessions"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetBaseLayers(ctx context.Context, input *struct{}) (*struct{ Body []baselayer.Info }, error) {
	return &struct{ Body []baselayer.Info }{Body: h.svc.Catalog.Describe()}, nil
}

func (h *APIHandler) GetCapabilities(ctx context.Context, input *struct{}) (*struct{ Body []config.Capability }, error) {
	return &struct{ Body []config.Capability }{Body: h.svc.Config.Capabilities}, nil
}

func (h *APIHandler) ListSessions(ctx context.Context, input *struct{}) (*SessionsOutput, error) {
	out := &SessionsOutput{Body: []SessionBody{}}
	for _, s := range h.svc.Sessions.List() {
		out.Body = append(out.Body, newSessionBody(s))
	}
	return out, nil
}

func (h *APIHandler) CreateSession(ctx context.Context, input *struct {
	UserAgent string `header:"User-Agent"`
	Body      *CreateSessionBody
}) (*SessionOutput, error) {
	var pageURL string
	if input.Body != nil {
		pageURL = input.Body.URL
	}
	s, err := h.svc.Sessions.Create(pageURL, input.UserAgent)
	if err != nil {
		return nil, mapError(err)
	}
	return &SessionOutput{Body: newSessionBody(s)}, nil
}

func (h *APIHandler) GetSession(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: newSessionBody(s)}, nil
}

func (h *APIHandler) DeleteSession(ctx context.Context, input *SessionInput) (*struct{ Body MessageBody }, error) {
	if err := h.svc.Sessions.Delete(input.ID); err != nil {
		return nil, mapError(err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Session deleted"}}, nil
}

func (h *APIHandler) PutTarget(ctx context.Context, input *struct {
	SessionInput
	Body TargetBody
}) (*SessionOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	target := mapview.Target(input.Body.Target)
	if target == "" {
		target = session.DefaultTarget
	}
	err = s.Do(func(m *layermanager.Manager) error {
		return m.SetTarget(input.Body.Capability, target)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &SessionOutput{Body: newSessionBody(s)}, nil
}

func (h *APIHandler) PutBaseLayer(ctx context.Context, input *struct {
	SessionInput
	Body BaseLayerBody
}) (*SessionOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	s.SetBaseLayer(input.Body.Layer)
	return &SessionOutput{Body: newSessionBody(s)}, nil
}

func (h *APIHandler) PostLocation(ctx context.Context, input *struct {
	SessionInput
	Body LocationBody
}) (*SessionOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	b := input.Body
	var opts []layermanager.LocationOption
	if b.ZoomIn != nil {
		opts = append(opts, layermanager.WithZoomIn(*b.ZoomIn))
	}
	if b.Refocus != nil {
		opts = append(opts, layermanager.WithRefocus(*b.Refocus))
	}
	s.Locate(b.Lat, b.Lon, b.Accuracy, opts...)
	return &SessionOutput{Body: newSessionBody(s)}, nil
}

func (h *APIHandler) DeleteLocation(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	s.Unlocate()
	return &SessionOutput{Body: newSessionBody(s)}, nil
}

func (h *APIHandler) PostPan(ctx context.Context, input *struct {
	SessionInput
	Body PanBody
}) (*SessionOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	b := input.Body
	if err := s.Pan(b.Capability, b.Lat, b.Lon, b.Zoom); err != nil {
		return nil, mapError(err)
	}
	return &SessionOutput{Body: newSessionBody(s)}, nil
}

func (h *APIHandler) PostHistory(ctx context.Context, input *HistoryInput) (*struct{ Body HistoryBody }, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	delta := -1
	if input.Direction == "forward" {
		delta = 1
	}
	moved := s.Navigate(delta)
	return &struct{ Body HistoryBody }{Body: HistoryBody{Moved: moved, Session: newSessionBody(s)}}, nil
}

func (h *APIHandler) session(id string) (*session.Session, error) {
	s, ok := h.svc.Sessions.Get(id)
	if !ok {
		return nil, huma.Error404NotFound("session not found")
	}
	return s, nil
}

// mapError turns domain errors into Huma status errors.
func mapError(err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, layermanager.ErrUnknownCapability):
		return huma.Error404NotFound(err.Error())
	default:
		return huma.Error500InternalServerError("session operation failed", err)
	}
}
