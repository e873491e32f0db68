package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/taskhive/auth-service/internal/auth"
	"github.com/taskhive/auth-service/internal/config"
	api "github.com/taskhive/auth-service/internal/http"
	"github.com/taskhive/auth-service/internal/log"
	"github.com/taskhive/auth-service/internal/mail"
	"github.com/taskhive/auth-service/internal/metrics"
	"github.com/taskhive/auth-service/internal/oauth"
	"github.com/taskhive/auth-service/internal/queue"
	"github.com/taskhive/auth-service/internal/repo"
	"github.com/taskhive/auth-service/internal/verification"
)

func main() {
	cfg := config.Load()

	logger, err := log.Init(cfg.Prod)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}

	rds := repo.NewRedis(cfg.RedisAddr)
	defer rds.Close()

	events := queue.NewNoop()
	if cfg.RabbitURL != "" {
		events, err = queue.NewRabbit(cfg.RabbitURL, queue.Exchange)
		if err != nil {
			logger.Fatal("rabbit connect", zap.Error(err))
		}
	}
	defer events.Close()

	var sender auth.MailSender = mail.Noop{}
	if cfg.SMTPHost != "" {
		sender = mail.NewSMTP(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.MailFrom,
		})
	} else {
		logger.Warn("SMTP not configured, outbound mail is discarded")
	}

	svc := auth.NewService(store, store, store, verification.NewStore(), sender,
		cfg.VerificationCodeLen, cfg.VerificationCodeTTL)

	state := oauth.NewStateSigner(cfg.OAuthStateSecret)
	registry := oauth.NewRegistry(state,
		oauth.NewGoogle(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURI),
		oauth.NewKakao(cfg.Kakao.ClientID, cfg.Kakao.ClientSecret, cfg.Kakao.RedirectURI),
		oauth.NewNaver(cfg.Naver.ClientID, cfg.Naver.ClientSecret, cfg.Naver.RedirectURI),
	)

	h := api.NewHandler(svc, store, []api.Pinger{store, rds}, registry, events, rds,
		cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTLDays, cfg.RateLimitPerMin)
	r := api.NewRouter(h)

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	logger.Info("auth-service listening", zap.String("port", cfg.Port))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		logger.Error("server error", zap.Error(err))
	}
}
