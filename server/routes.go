package server

import "github.com/subiehq/subie/internal/metrics"

const (
	routeSignUp         = "POST /v1/auth/signup"
	routeLogin          = "POST /v1/auth/login"
	routeLogout         = "POST /v1/auth/logout"
	routePasswordReset  = "POST /v1/auth/password/reset"
	routePasswordUpdate = "POST /v1/auth/password/update"
	routeOAuthBegin     = "GET /v1/auth/oauth/{provider}"
	routeMe             = "GET /v1/me"
	routeMeUpdate       = "PATCH /v1/me"
	routeBillingSync    = "POST /v1/billing/reconcile"
	routePurchase       = "POST /v1/billing/purchase"
	routeRestore        = "POST /v1/billing/restore"
	routeHealth         = "GET /healthz"
	routeMetrics        = "GET /metrics"
)

func (s *Server) initRoutes() {
	api := s.APIMiddleware()
	protected := s.APIMiddleware(s.RequireSession)

	s.RegisterRouteFunc(routeSignUp, ChainMiddleware(s.SignUpHandler(), api...))
	s.RegisterRouteFunc(routeLogin, ChainMiddleware(s.LoginHandler(), api...))
	s.RegisterRouteFunc(routePasswordReset, ChainMiddleware(s.PasswordResetHandler(), api...))
	s.RegisterRouteFunc(routeOAuthBegin, ChainMiddleware(s.OAuthBeginHandler(), api...))

	s.RegisterRouteFunc(routeLogout, ChainMiddleware(s.LogoutHandler(), protected...))
	s.RegisterRouteFunc(routePasswordUpdate, ChainMiddleware(s.PasswordUpdateHandler(), protected...))
	s.RegisterRouteFunc(routeMe, ChainMiddleware(s.MeHandler(), protected...))
	s.RegisterRouteFunc(routeMeUpdate, ChainMiddleware(s.MeUpdateHandler(), protected...))
	s.RegisterRouteFunc(routeBillingSync, ChainMiddleware(s.BillingReconcileHandler(), protected...))
	s.RegisterRouteFunc(routePurchase, ChainMiddleware(s.PurchaseHandler(), protected...))
	s.RegisterRouteFunc(routeRestore, ChainMiddleware(s.RestoreHandler(), protected...))

	s.RegisterRouteFunc(routeHealth, s.HealthHandler())
	s.RegisterRouteHandler(routeMetrics, metrics.Handler(s.registry))
}
