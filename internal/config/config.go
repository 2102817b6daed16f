package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr          string
	DBDSN             string
	JWTIssuer         string
	JWTSecret         string
	JWTTTL            time.Duration
	InternalToken     string
	WebSocketOrigin   string
	BrokerBaseURL     string
	BrokerAPIKey      string
	BrokerAPISecret   string
	MarketDataBaseURL string
	MarketDataAPIKey  string
	InvitationTTL     time.Duration
	SignupBaseURL     string
	SpendRetryLimit   int
}

func Load() (Config, error) {
	var c Config
	var missing []string
	c.HTTPAddr = os.Getenv("HTTP_ADDR")
	if c.HTTPAddr == "" {
		missing = append(missing, "HTTP_ADDR")
	}
	c.DBDSN = os.Getenv("DB_DSN")
	if c.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	c.JWTIssuer = os.Getenv("JWT_ISSUER")
	if c.JWTIssuer == "" {
		missing = append(missing, "JWT_ISSUER")
	}
	c.JWTSecret = os.Getenv("JWT_SECRET")
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	jwtTTL := os.Getenv("JWT_TTL")
	if jwtTTL == "" {
		missing = append(missing, "JWT_TTL")
	} else {
		d, err := time.ParseDuration(jwtTTL)
		if err != nil {
			return c, err
		}
		c.JWTTTL = d
	}
	c.InternalToken = os.Getenv("INTERNAL_API_TOKEN")
	if c.InternalToken == "" {
		missing = append(missing, "INTERNAL_API_TOKEN")
	}
	c.WebSocketOrigin = os.Getenv("WS_ORIGIN")
	if c.WebSocketOrigin == "" {
		c.WebSocketOrigin = "*"
	}
	c.BrokerBaseURL = strings.TrimRight(os.Getenv("BROKER_BASE_URL"), "/")
	c.BrokerAPIKey = os.Getenv("BROKER_API_KEY")
	c.BrokerAPISecret = os.Getenv("BROKER_API_SECRET")
	if c.BrokerBaseURL != "" && (c.BrokerAPIKey == "" || c.BrokerAPISecret == "") {
		return c, errors.New("BROKER_API_KEY and BROKER_API_SECRET are required when BROKER_BASE_URL is set")
	}
	c.MarketDataBaseURL = strings.TrimRight(os.Getenv("MARKETDATA_BASE_URL"), "/")
	if c.MarketDataBaseURL == "" {
		c.MarketDataBaseURL = "https://www.alphavantage.co/query"
	}
	c.MarketDataAPIKey = os.Getenv("MARKETDATA_API_KEY")
	invTTL := os.Getenv("INVITATION_TTL")
	if invTTL == "" {
		c.InvitationTTL = 7 * 24 * time.Hour
	} else {
		d, err := time.ParseDuration(invTTL)
		if err != nil {
			return c, err
		}
		c.InvitationTTL = d
	}
	c.SignupBaseURL = os.Getenv("SIGNUP_BASE_URL")
	if c.SignupBaseURL == "" {
		c.SignupBaseURL = "https://app.duobroker.local/signup"
	}
	retries := os.Getenv("SPEND_RETRY_LIMIT")
	if retries == "" {
		c.SpendRetryLimit = 5
	} else {
		n, err := strconv.Atoi(retries)
		if err != nil || n <= 0 {
			return c, errors.New("invalid SPEND_RETRY_LIMIT")
		}
		c.SpendRetryLimit = n
	}
	if len(missing) > 0 {
		return c, errors.New("missing required env: " + strings.Join(missing, ","))
	}
	return c, nil
}
