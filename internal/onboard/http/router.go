package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vaultsuite/onboard/internal/onboard/queue"
	"github.com/vaultsuite/onboard/internal/onboard/service"
	"github.com/vaultsuite/onboard/internal/onboard/store"
	"github.com/vaultsuite/onboard/pkg/httpx"
	"github.com/vaultsuite/onboard/pkg/slogx"

	_ "github.com/vaultsuite/onboard/api/onboard" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// QueuePinger reports whether the message transport is reachable. The
// Kafka dispatcher implements it; the readiness probe uses it.
type QueuePinger interface {
	Ping(ctx context.Context) error
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	authSecret   []byte
	issuer       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	// Dispatcher serves the submit endpoint and, through its Ping, the
	// readiness probe's queue check. ResendService serves the manual
	// resend endpoint. Both are assigned before ApplyRoutes.
	Dispatcher    queue.Dispatcher
	ResendService *service.ResendService
	QueuePinger   QueuePinger

	// Gatherer backs the /metrics endpoint.
	Gatherer prometheus.Gatherer
}

func NewRouter(
	authSecret []byte,
	issuer, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		authSecret:   authSecret,
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerInvitations()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Tenant Onboarding Service API
//	@version					0.1.0
//	@description				Queue-backed delivery of directory invitations to tenant
//	@description				administrators, with automated retries and manual resend.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerInvitations() {
	submitHandler := &InvitationSubmitHandler{Dispatcher: r.Dispatcher}

	// POST /v1/invitations - authenticated, moderate rate limit by caller
	r.Mux.Handle("POST /v1/invitations",
		httpx.Chain(submitHandler,
			httpx.AuthnMiddleware(r.authSecret, r.issuer),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)

	// POST /v1/invitations/resend - authenticated, strict rate limit:
	// manual resends are an operator action, not a bulk path
	resendHandler := &InvitationResendHandler{ResendService: r.ResendService}
	r.Mux.Handle("POST /v1/invitations/resend",
		httpx.Chain(resendHandler,
			httpx.AuthnMiddleware(r.authSecret, r.issuer),
			httpx.RateLimitBySubject(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.QueuePinger),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if r.Gatherer != nil {
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{}))
	}
}
