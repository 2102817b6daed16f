package httpserver

import (
	"net/http"

	"duobroker/internal/accounts"
	"duobroker/internal/auth"
	"duobroker/internal/brokerage"
	"duobroker/internal/health"
	"duobroker/internal/httputil"
	"duobroker/internal/invitations"
	"duobroker/internal/limits"
	"duobroker/internal/marketdata"
	"duobroker/internal/transactions"

	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	AuthHandler        *auth.Handler
	AccountsHandler    *accounts.Handler
	BrokerageHandler   *brokerage.Handler
	InvitationsHandler *invitations.Handler
	LimitsHandler      *limits.Handler
	MarketHandler      *marketdata.Handler
	TransactionHandler *transactions.Handler
	HealthHandler      *health.Handler
	AuthService        *auth.Service
	InternalToken      string
	QuoteWS            http.Handler
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS middleware for development
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = "*"
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Use(SecurityHeaders)
	r.Use(RateLimitMiddleware)

	r.Get("/health", d.HealthHandler.Live)
	r.Get("/health/ready", d.HealthHandler.Ready)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.AuthHandler.Register)
			r.Post("/login", d.AuthHandler.Login)
		})

		r.Post("/invitations/verify", d.InvitationsHandler.Verify)

		r.Get("/market/quote", d.MarketHandler.Quote)
		r.Get("/market/history", d.MarketHandler.History)
		r.Get("/market/ws", d.QuoteWS.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(WithAuth(d.AuthService))
			r.Get("/me", authed(d.AuthHandler.Me))
			r.Post("/invitations", authed(d.InvitationsHandler.Send))

			r.Post("/accounts/link", authed(d.AccountsHandler.Link))
			r.Get("/accounts/me", authed(d.AccountsHandler.Me))
			r.Get("/accounts/partner", authed(d.AccountsHandler.Partner))

			r.Post("/brokerage/accounts", authed(d.BrokerageHandler.CreateAccount))
			r.Get("/brokerage/account", authed(d.BrokerageHandler.Account))
			r.Get("/brokerage/account/trading", authed(d.BrokerageHandler.TradingAccount))
			r.Get("/brokerage/assets", d.BrokerageHandler.Assets)
			r.Post("/brokerage/banks", authed(d.BrokerageHandler.LinkBank))
			r.Get("/brokerage/banks", authed(d.BrokerageHandler.Banks))
			r.Delete("/brokerage/banks", authed(d.BrokerageHandler.UnlinkBank))
			r.Post("/brokerage/transfers", authed(d.BrokerageHandler.Fund))
			r.Get("/brokerage/transfers", authed(d.BrokerageHandler.Transfers))
			r.Post("/brokerage/orders", authed(d.BrokerageHandler.PlaceOrder))
			r.Get("/brokerage/orders", authed(d.BrokerageHandler.Orders))
			r.Get("/brokerage/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
				userID, ok := UserID(r)
				if !ok {
					httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "unauthorized"})
					return
				}
				d.BrokerageHandler.Order(w, r, userID, chi.URLParam(r, "id"))
			})

			r.Post("/limits/propose", authed(d.BrokerageHandler.ProposeLimit))
			r.Post("/limits/approve", authed(d.BrokerageHandler.ApproveLimit))
			r.Post("/limits/reject", authed(d.BrokerageHandler.RejectLimit))
			r.Get("/limits/remaining", authed(d.BrokerageHandler.LimitRemaining))

			r.Get("/transactions", authed(d.TransactionHandler.List))
		})

		// Back-office surface over the limit engine, keyed by raw
		// account id rather than the caller's own link.
		r.Group(func(r chi.Router) {
			r.Use(InternalAuth(d.InternalToken))
			r.Post("/internal/limits", d.LimitsHandler.Create)
			r.Post("/internal/limits/propose", d.LimitsHandler.Propose)
			r.Post("/internal/limits/approve", d.LimitsHandler.Approve)
			r.Post("/internal/limits/reject", d.LimitsHandler.Reject)
			r.Post("/internal/limits/spend", d.LimitsHandler.Spend)
			r.Get("/internal/limits/remaining", d.LimitsHandler.Remaining)
		})
	})

	return r
}
