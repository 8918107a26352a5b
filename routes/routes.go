package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/courtside/league-engine/handlers"
)

// SetupRoutes wires the read API: stage views, the schedule feed, season
// lookup, the correction hook and the live-update websocket.
func SetupRoutes(
	router *chi.Mux,
	allowedOrigins []string,
	seasonHandler *handlers.SeasonHandler,
	stageHandler *handlers.StageHandler,
	scheduleHandler *handlers.ScheduleHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/seasons", func(r chi.Router) {
		r.Get("/current", seasonHandler.GetCurrentSeasonHandler)
		r.Get("/{seasonID}", seasonHandler.GetSeasonHandler)
	})

	router.Get("/categories/{categoryID}/stages", stageHandler.ListCategoryStagesHandler)

	router.Route("/stages/{stageID}", func(r chi.Router) {
		r.Get("/", stageHandler.GetStageViewHandler)
		r.Get("/standings", stageHandler.GetStandingsHandler)
		r.Get("/bracket", stageHandler.GetBracketHandler)
		r.Get("/playins", stageHandler.GetPlayinsHandler)
		// Called by the result-entry collaborator after a correction.
		r.Post("/invalidate", stageHandler.InvalidateStageHandler)
	})

	router.Get("/schedule", scheduleHandler.GetSchedulePageHandler)

	router.Get("/ws/stages/{stageID}", webSocketHandler.ServeStageWs)
}
