package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	adapthttp "prochecka/internal/adapter/http"
	"prochecka/internal/adapter/openrouter"
	"prochecka/internal/adapter/postgres"
	"prochecka/internal/app"
	"prochecka/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func main() {
	_ = godotenv.Load()

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := zl.Sugar()

	addr := env("ADDR", ":8080")
	webDir := env("WEB_DIR", "web")

	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	db, err := postgres.Open(connStr)
	if err != nil {
		logger.Fatalw("db open", "err", err)
	}
	defer func() { _ = db.Close() }()

	sessionRepo := postgres.NewSessionRepo(db)

	var chatClient domain.ChatClient
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		client, err := openrouter.New(openrouter.Config{
			BaseURL: os.Getenv("OPENROUTER_BASE_URL"),
			APIKey:  key,
			Model:   os.Getenv("OPENROUTER_MODEL"),
		}, logger)
		if err != nil {
			logger.Fatalw("openrouter", "err", err)
		}
		chatClient = client
	} else {
		logger.Info("OPENROUTER_API_KEY not set, chat disabled")
	}

	oidcCfg, err := loadOIDC(context.Background())
	if err != nil {
		logger.Fatalw("oidc", "err", err)
	}

	assessSvc := app.NewAssessmentService(db, db)
	guestSvc := app.NewGuestService(db, db, db)
	chatSvc := app.NewChatService(chatClient, db, db)
	progressSvc := app.NewProgressService(db)
	authSvc := app.NewAuthService(db, sessionRepo)

	h := adapthttp.New(assessSvc, guestSvc, chatSvc, progressSvc, authSvc, oidcCfg, logger, webDir).Handler()
	logger.Infow("listening", "addr", addr)
	if err := http.ListenAndServe(addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("serve", "err", err)
	}
}

// loadOIDC reads the OIDC_* environment and returns a disabled config when
// the issuer is unset.
func loadOIDC(ctx context.Context) (adapthttp.OIDCConfig, error) {
	issuer := os.Getenv("OIDC_ISSUER")
	if issuer == "" {
		return adapthttp.OIDCConfig{}, nil
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, err
	}

	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
