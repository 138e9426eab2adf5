// Package router arma el árbol de rutas HTTP del servicio.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/authkit/internal/domain/repository"
	ctrl "github.com/dropDatabas3/authkit/internal/http/controllers/auth"
	mw "github.com/dropDatabas3/authkit/internal/http/middlewares"
	"github.com/dropDatabas3/authkit/internal/metrics"
	"github.com/dropDatabas3/authkit/internal/security/token"
)

// Deps contiene las dependencias del router.
type Deps struct {
	Controllers *ctrl.Controllers
	Issuer      *token.Issuer
	Repo        repository.UserRepository

	CORSAllowedOrigins []string

	// MetricsHandler handler de /metrics; nil lo deshabilita.
	MetricsHandler http.Handler
}

// New construye el router con todas las rutas montadas.
func New(deps Deps) http.Handler {
	c := deps.Controllers

	r := chi.NewRouter()

	r.Use(mw.WithRecover())
	r.Use(mw.WithRequestID())
	r.Use(mw.WithCORS(deps.CORSAllowedOrigins))
	r.Use(mw.WithLogging())
	r.Use(metrics.WithMetrics)

	r.Get("/healthz", healthz)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/sign-up", c.SignUp.SignUp)
		r.Post("/sign-in", c.SignIn.SignIn)
		r.Post("/verify-email", c.VerifyEmail.VerifyEmail)
		r.Post("/refresh-token", c.Refresh.Refresh)

		// OAuth: start redirige al provider, callback vuelve con code+state.
		r.Get("/{provider}", c.OAuth.Start)
		r.Get("/callback/{provider}", c.OAuth.Callback)

		// Rutas protegidas: sesión válida y usuario vivo.
		r.Group(func(r chi.Router) {
			r.Use(mw.WithAuth(deps.Issuer, deps.Repo))
			r.Post("/sign-out", c.SignOut.SignOut)
		})
	})

	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
