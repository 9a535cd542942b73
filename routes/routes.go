package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/minhkhoa23/npcnpm-final-sub001/handlers"
	"github.com/minhkhoa23/npcnpm-final-sub001/middleware"
	"github.com/minhkhoa23/npcnpm-final-sub001/models"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Tournament   *handlers.TournamentHandler
	Registration *handlers.RegistrationHandler
	Match        *handlers.MatchHandler
	News         *handlers.NewsHandler
	Highlight    *handlers.HighlightHandler
	WebSocket    *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, auth *middleware.Authenticator) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/users/signup", h.Auth.SignUp)
	router.Post("/users/signin", h.Auth.SignIn)

	router.Route("/users", func(r chi.Router) {
		r.Get("/{userID}", h.User.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Put("/{userID}", h.User.Update)
			r.Post("/{userID}/avatar", h.User.UploadAvatar)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты для просмотра турниров
		r.Get("/", h.Tournament.List)
		r.Get("/{tournamentID}", h.Tournament.GetByID)
		r.Get("/{tournamentID}/stats", h.Tournament.Stats)
		r.Get("/{tournamentID}/matches", h.Match.ListByTournament)
		r.Get("/{tournamentID}/highlights", h.Highlight.ListByTournament)

		// Регистрация участников: любой аутентифицированный пользователь
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/{tournamentID}/competitors", h.Registration.Register)
			r.Delete("/{tournamentID}/competitors/{competitorID}", h.Registration.Withdraw)
		})

		// Управление турниром: организаторы и администраторы
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize(string(models.RoleOrganizer), string(models.RoleAdmin)))

			r.Post("/", h.Tournament.Create)
			r.Put("/{tournamentID}", h.Tournament.Update)
			r.Delete("/{tournamentID}", h.Tournament.Delete)
			r.Post("/{tournamentID}/logo", h.Tournament.UploadLogo)
			r.Post("/{tournamentID}/matches", h.Match.Create)
			r.Post("/{tournamentID}/highlights", h.Highlight.Create)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", h.Match.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize(string(models.RoleOrganizer), string(models.RoleAdmin)))
			r.Put("/{matchID}/score", h.Match.SetScore)
			r.Delete("/{matchID}", h.Match.Delete)
		})
	})

	router.Route("/news", func(r chi.Router) {
		r.Get("/", h.News.List)
		r.Get("/{newsID}", h.News.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize(string(models.RoleOrganizer), string(models.RoleAdmin)))
			r.Post("/", h.News.Create)
			r.Put("/{newsID}", h.News.Update)
			r.Post("/{newsID}/image", h.News.UploadImage)
			r.Delete("/{newsID}", h.News.Delete)
		})
	})

	router.Route("/highlights", func(r chi.Router) {
		r.Get("/{highlightID}", h.Highlight.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize(string(models.RoleOrganizer), string(models.RoleAdmin)))
			r.Put("/{highlightID}", h.Highlight.Update)
			r.Post("/{highlightID}/thumbnail", h.Highlight.UploadThumbnail)
			r.Delete("/{highlightID}", h.Highlight.Delete)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	return router
}
