package briefeeinfach

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/briefe-einfach/internal/config"
	"github.com/magabrotheeeer/briefe-einfach/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/briefe-einfach/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/briefe-einfach/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/briefe-einfach/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/briefe-einfach/internal/http/handlers/checkout/checkoutcreate"
	"github.com/magabrotheeeer/briefe-einfach/internal/http/handlers/checkout/checkoutwebhook"
	"github.com/magabrotheeeer/briefe-einfach/internal/http/handlers/explain"
	"github.com/magabrotheeeer/briefe-einfach/internal/http/handlers/health"
	"github.com/magabrotheeeer/briefe-einfach/internal/http/handlers/translate"
	"github.com/magabrotheeeer/briefe-einfach/internal/http/middlewarectx"
	"github.com/magabrotheeeer/briefe-einfach/internal/http/response"
	authservice "github.com/magabrotheeeer/briefe-einfach/internal/services/auth"
	checkoutservice "github.com/magabrotheeeer/briefe-einfach/internal/services/checkout"
	explainservice "github.com/magabrotheeeer/briefe-einfach/internal/services/explain"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	authSvc *authservice.AuthService, explainSvc *explainservice.ExplainService,
	checkoutSvc *checkoutservice.CheckoutService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	explainLimiter := rate.NewLimiter(rate.Limit(5), 10)
	explainHandler := explain.New(logger, explainSvc).ServeHTTP

	// Открытые конечные точки
	r.Get("/health", health.New().ServeHTTP)
	r.Post("/auth/register", register.New(logger, authSvc).ServeHTTP)
	r.Post("/auth/login", login.New(logger, authSvc).ServeHTTP)
	r.Post("/auth/logout", logout.New(logger, authSvc).ServeHTTP)
	r.Get("/auth/me", me.New(logger, authSvc).ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, explainLimiter))
		r.Post("/erklaeren", explainHandler)
		r.Post("/api/explain", explainHandler)
	})

	// Группа с JWT аутентификацией
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(authSvc, logger))
		r.Post("/create-checkout-session", checkoutcreate.New(logger, checkoutSvc).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireSubscription(logger))
			r.Post("/api/translate", translate.New(logger, explainSvc).ServeHTTP)
		})
	})

	// Webhook endpoint (без аутентификации: подпись проверяется в обработчике)
	r.Post("/stripe/webhook", checkoutwebhook.New(logger, checkoutSvc, cfg.PaymentProvider.WebhookSecret).ServeHTTP)

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)

	registerStatic(r, cfg.StaticDir)
}

// registerStatic отдает файлы интерфейса, непойманные пути получают
// стартовую страницу.
func registerStatic(r chi.Router, staticDir string) {
	fileServer := http.FileServer(http.Dir(staticDir))
	indexPath := filepath.Join(staticDir, "index.html")

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			http.NotFound(w, req)
			return
		}
		path := filepath.Join(staticDir, filepath.Clean("/"+req.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, req)
			return
		}
		if strings.HasPrefix(req.URL.Path, "/api/") {
			render.Status(req, http.StatusNotFound)
			render.JSON(w, req, response.Err(response.CodeNotFound, "not found"))
			return
		}
		http.ServeFile(w, req, indexPath)
	})
}
