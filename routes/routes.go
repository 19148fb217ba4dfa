package routes

import (
	"github.com/aldiyar-dev/knockout-system/handlers"
	"github.com/aldiyar-dev/knockout-system/middleware"
	"github.com/aldiyar-dev/knockout-system/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	teamHandler *handlers.TeamHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	secret := []byte(jwtSecret)
	adminOnly := func(r chi.Router) {
		r.Use(middleware.Authenticate(secret))
		r.Use(middleware.Authorize(models.RoleAdmin))
	}

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/teams", teamHandler.ListHandler)
		r.Get("/{tournamentID}/matches", matchHandler.ListByTournamentHandler)
		r.Get("/{tournamentID}/bracket", matchHandler.GetBracketHandler)

		// Team registration stays open to the public while the
		// tournament is in the registration phase.
		r.Post("/{tournamentID}/teams", teamHandler.RegisterHandler)

		r.Group(func(r chi.Router) {
			adminOnly(r)

			r.Post("/", tournamentHandler.CreateHandler)
			r.Post("/{tournamentID}/cancel", tournamentHandler.CancelHandler)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteHandler)
			r.Post("/{tournamentID}/bracket", tournamentHandler.GenerateBracketHandler)
			r.Post("/{tournamentID}/propagate", matchHandler.PropagateHandler)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", teamHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Delete("/{teamID}", teamHandler.DeleteHandler)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/{matchID}/winner", matchHandler.RecordWinnerHandler)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
