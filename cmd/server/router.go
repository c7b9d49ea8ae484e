package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/shareplate-api/internal/api"
	apiMiddleware "github.com/phrazzld/shareplate-api/internal/api/middleware"
)

// rootBanner is served at GET / so load balancers and humans can see the process is up.
const rootBanner = "SharePlate Server is Running..."

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	foodHandler := api.NewFoodHandler(app.foodService, app.logger)
	requestHandler := api.NewRequestHandler(app.requestService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.verifier)

	r.Get("/", app.writeText(rootBanner))
	r.Get("/health", app.writeText("OK"))

	// Public listing endpoints
	r.Get("/foods", foodHandler.ListFoods)
	r.Get("/foods/featured", foodHandler.ListFeaturedFoods)
	r.Get("/foods/{id}", foodHandler.GetFood)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/foods", foodHandler.CreateFood)
		r.Put("/foods/{id}", foodHandler.UpdateFood)
		r.Delete("/foods/{id}", foodHandler.DeleteFood)
		r.Get("/my-foods/{email}", foodHandler.ListMyFoods)

		r.Post("/requests", requestHandler.CreateRequest)
		// GET takes the requester's email in the {id} slot; chi needs one
		// parameter name per path shape.
		r.Get("/requests/{id}", requestHandler.ListMyRequests)
		r.Patch("/requests/{id}", requestHandler.DecideRequest)
		r.Delete("/requests/{id}", requestHandler.DeleteRequest)
	})

	return r
}

// writeText returns a handler answering 200 with a fixed plain-text body.
func (app *application) writeText(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(body)); err != nil {
			app.logger.Error("Failed to write response", "path", r.URL.Path, "error", err)
		}
	}
}
