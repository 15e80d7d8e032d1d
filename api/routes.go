package main

import (
	"net/http"
)

func composeRoutes(app *application) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthcheck", app.healthCheckHandler)

	mux.HandleFunc("POST /api/register", app.registerHandler)
	mux.HandleFunc("POST /api/login", app.loginHandler)
	mux.HandleFunc("GET /api/user", app.requireAuth(app.currentUserHandler))

	mux.HandleFunc("GET /api/crops", app.requireAuth(app.listCropsHandler))
	mux.HandleFunc("POST /api/crops", app.requireAuth(app.createCropHandler))

	mux.HandleFunc("GET /api/inventory", app.requireAuth(app.listInventoryHandler))
	mux.HandleFunc("POST /api/inventory", app.requireAuth(app.createInventoryItemHandler))

	mux.HandleFunc("GET /api/tasks", app.requireAuth(app.listTasksHandler))
	mux.HandleFunc("POST /api/tasks", app.requireAuth(app.createTaskHandler))
	mux.HandleFunc("PATCH /api/tasks/{id}/complete", app.requireAuth(app.completeTaskHandler))

	mux.HandleFunc("GET /api/weather", app.requireAuth(app.weatherHandler))

	var handler http.Handler = mux
	if len(app.config.CORS.TrustedOrigins) > 0 {
		handler = app.enableCORS(handler)
	}
	if app.config.Limiter.Enabled {
		handler = app.rateLimit(handler)
	}
	return handler
}
