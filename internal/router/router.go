package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/agrosig/agrosig-api/internal/auth"
	"github.com/agrosig/agrosig-api/internal/filestore"
	"github.com/agrosig/agrosig-api/internal/plot"
	plotrepo "github.com/agrosig/agrosig-api/internal/plot/repo"
	rolerepo "github.com/agrosig/agrosig-api/internal/role/repo"
	"github.com/agrosig/agrosig-api/internal/user"
	userentity "github.com/agrosig/agrosig-api/internal/user/entity"
	userrepo "github.com/agrosig/agrosig-api/internal/user/repo"
	"github.com/agrosig/agrosig-api/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware tags each request with a ksuid request ID and logs
// method/path/status/duration at debug level.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := utilities.NewKSUID()
			w.Header().Set("X-Request-Id", requestID)
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers. It is
// intentionally simple and conservative so it works with most setups.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes wires repositories, services, handlers, and middleware onto
// a standard library ServeMux.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB, tokens *auth.TokenService, uploads *filestore.Store) http.Handler {
	mux := http.NewServeMux()

	userRepo := userrepo.NewUserRepo(db)
	roleRepo := rolerepo.NewRoleRepo(db)
	plotRepo := plotrepo.NewPlotRepo(db)

	hasher := auth.BcryptHasher{}

	authHandler := auth.NewHandler(auth.NewService(userRepo, hasher, tokens), logger)
	userHandler := user.NewHandler(user.NewService(userRepo, hasher), uploads, logger)
	plotHandler := plot.NewHandler(plot.NewService(plotRepo), logger)

	authn := auth.Authenticate(tokens, logger)
	adminOnly := auth.Authorize(roleRepo, logger, userentity.RoleAdmin)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"description": "AGROSIG plot management API",
			"version":     "1.0.0",
		})
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)

	mux.Handle("GET /plots", authn(adminOnly(http.HandlerFunc(plotHandler.List))))
	mux.Handle("GET /plots/ubication-plot/{id}", authn(http.HandlerFunc(plotHandler.UbicationCoords)))
	mux.Handle("POST /plots/register", authn(http.HandlerFunc(plotHandler.Create)))
	mux.Handle("GET /plots/{plotId}", authn(http.HandlerFunc(plotHandler.GetByID)))
	mux.Handle("PATCH /plots/{plotId}", authn(http.HandlerFunc(plotHandler.Update)))
	mux.Handle("DELETE /plots/{plotId}", authn(http.HandlerFunc(plotHandler.Delete)))

	mux.Handle("GET /users", authn(adminOnly(http.HandlerFunc(userHandler.List))))
	mux.Handle("GET /users/{id}", authn(http.HandlerFunc(userHandler.GetByID)))
	mux.Handle("PATCH /users/{id}", authn(http.HandlerFunc(userHandler.UpdateProfile)))
	mux.Handle("PATCH /users/password/{id}", authn(http.HandlerFunc(userHandler.UpdatePassword)))
	mux.Handle("PATCH /users/image/{id}", authn(http.HandlerFunc(userHandler.UpdateImage)))
	mux.Handle("DELETE /users/{id}", authn(http.HandlerFunc(userHandler.Delete)))

	return LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
}
