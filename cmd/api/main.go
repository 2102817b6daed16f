package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"duobroker/internal/accounts"
	"duobroker/internal/auth"
	"duobroker/internal/brokerage"
	"duobroker/internal/config"
	"duobroker/internal/db"
	"duobroker/internal/health"
	"duobroker/internal/httpserver"
	"duobroker/internal/invitations"
	"duobroker/internal/limits"
	"duobroker/internal/marketdata"
	"duobroker/internal/transactions"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal(err)
	}

	limitEngine := limits.NewEngine(limits.NewPGStore(pool))
	limitEngine.SetRetryLimit(cfg.SpendRetryLimit)
	limitsHandler := limits.NewHandler(limitEngine)

	authSvc := auth.NewService(pool, cfg.JWTIssuer, []byte(cfg.JWTSecret), cfg.JWTTTL)

	inviteSvc := invitations.NewService(
		invitations.NewPGStore(pool),
		invitations.NewLogMailer(),
		[]byte(cfg.JWTSecret),
		cfg.InvitationTTL,
		cfg.SignupBaseURL,
	)
	inviteHandler := invitations.NewHandler(inviteSvc)

	authHandler := auth.NewHandler(authSvc, inviteSvc)

	accountsSvc := accounts.NewService(pool)
	accountsHandler := accounts.NewHandler(accountsSvc)

	txStore := transactions.NewStore(pool)
	txHandler := transactions.NewHandler(txStore, accountsSvc)

	quoteCache := marketdata.NewQuoteCache()
	quoteClient := marketdata.NewClient(cfg.MarketDataBaseURL, cfg.MarketDataAPIKey)
	marketSvc := marketdata.NewService(quoteClient, quoteCache)
	marketHandler := marketdata.NewHandler(marketSvc)
	quoteWS := marketdata.NewQuoteWS(cfg.WebSocketOrigin, marketSvc)

	var broker brokerage.Client
	if cfg.BrokerBaseURL != "" {
		broker = brokerage.NewHTTPClient(cfg.BrokerBaseURL, cfg.BrokerAPIKey, cfg.BrokerAPISecret)
	} else {
		log.Warn("BROKER_BASE_URL not set, brokerage operations disabled")
		broker = brokerage.NewDisabledClient()
	}
	brokerHandler := brokerage.NewHandler(broker, limitEngine, accountsSvc, txStore, marketSvc)

	healthHandler := health.NewHandler(pool)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandler:        authHandler,
		AccountsHandler:    accountsHandler,
		BrokerageHandler:   brokerHandler,
		InvitationsHandler: inviteHandler,
		LimitsHandler:      limitsHandler,
		MarketHandler:      marketHandler,
		TransactionHandler: txHandler,
		HealthHandler:      healthHandler,
		AuthService:        authSvc,
		InternalToken:      cfg.InternalToken,
		QuoteWS:            quoteWS,
	})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	log.WithFields(log.Fields{"addr": cfg.HTTPAddr}).Info("server listening")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
