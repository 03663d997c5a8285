package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fleetedge/engine"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	engine   *engine.Engine
	eventHub *EventHub
}

// NewRouter creates the chi router and returns it along with a stop function.
func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	h := &Handlers{
		engine:   eng,
		eventHub: NewEventHub(),
	}

	h.eventHub.Start()
	h.eventHub.SetupEngineListeners(eng)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// SSE stream for dashboards
	r.Get("/events", h.eventHub.HandleSSE)

	r.Route("/api", func(r chi.Router) {
		r.Get("/fleet", h.apiFleetSnapshot)
		r.Get("/robots", h.apiListRobots)
		r.Get("/robots/{robotID}", h.apiGetRobot)
		r.Post("/robots/{robotID}/goal", h.apiAssignGoal)
		r.Get("/hazards", h.apiListHazards)
		r.Get("/missions", h.apiListMissions)
		r.Get("/logs/status", h.apiStatusLog)
		r.Get("/logs/hazards", h.apiHazardLog)
		r.Get("/config", h.apiGetConfig)
		r.Get("/health", h.apiHealth)
	})

	return r, func() {
		h.eventHub.Stop()
	}
}
