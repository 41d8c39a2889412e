package rest

import "net/http"

// NewRouter registers every route on a fresh mux. Middleware is applied by
// the caller around the returned handler.
func NewRouter(health *HealthHandler, authH *AuthHandler, entity *EntityHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)

	mux.HandleFunc("POST /api/v1/auth/login", authH.Login)

	mux.HandleFunc("POST /api/v1/{entity}", entity.Create)
	mux.HandleFunc("GET /api/v1/{entity}", entity.List)
	mux.HandleFunc("GET /api/v1/{entity}/archived", entity.ListArchived)
	mux.HandleFunc("GET /api/v1/{entity}/archived/{id}", entity.GetArchived)
	mux.HandleFunc("GET /api/v1/{entity}/{id}", entity.Get)
	mux.HandleFunc("PATCH /api/v1/{entity}/{id}", entity.Update)
	mux.HandleFunc("DELETE /api/v1/{entity}/{id}", entity.Delete)
	mux.HandleFunc("POST /api/v1/{entity}/{id}/archive", entity.Archive)
	mux.HandleFunc("POST /api/v1/{entity}/{id}/restore", entity.Restore)
	mux.HandleFunc("GET /api/v1/{entity}/{id}/export", entity.Export)
	mux.HandleFunc("GET /api/v1/{entity}/{id}/audit", entity.AuditTrail)
	mux.HandleFunc("GET /api/v1/staff_members/{id}/activity", entity.ActorActivity)

	return mux
}
