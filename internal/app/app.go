package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/drstein77/batterycatalog/internal/catalog"
	"github.com/drstein77/batterycatalog/internal/config"
	"github.com/drstein77/batterycatalog/internal/contact"
	"github.com/drstein77/batterycatalog/internal/controllers"
	"github.com/drstein77/batterycatalog/internal/dbkeeper"
	"github.com/drstein77/batterycatalog/internal/logger"
	"github.com/drstein77/batterycatalog/internal/mailer"
	"github.com/drstein77/batterycatalog/internal/messaging"
	"github.com/drstein77/batterycatalog/internal/metrics"
	"github.com/drstein77/batterycatalog/internal/middleware"
	"github.com/drstein77/batterycatalog/internal/ratelimit"
	"github.com/drstein77/batterycatalog/internal/recaptcha"
	"github.com/drstein77/batterycatalog/internal/storage"
)

type Server struct {
	srv     *http.Server
	ctx     context.Context
	closers []func()
	Log     *logger.Logger
}

// NewServer parses the options and wires every component of the service.
// Optional backends that cannot be reached are logged and left out.
func NewServer(ctx context.Context, args []string) (*Server, error) {
	server := &Server{ctx: ctx}

	// create and initialize a new option instance
	option := config.NewOptions()
	if err := option.ParseFlags(args); err != nil {
		return nil, err
	}

	// get a new logger
	nLogger, err := logger.NewLogger(option.LogLevel(), option.LogFile())
	if err != nil {
		return nil, err
	}
	server.Log = nLogger

	cat, err := catalog.Load(option.DataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from %q: %w", option.DataDir(), err)
	}

	// initialize the keeper instance
	var keeper storage.Keeper
	if kp := dbkeeper.NewDBKeeper(ctx, option.DataBaseDSN, option.MigrationsDir(), nLogger); kp != nil {
		keeper = kp
	}

	// initialize the storage instance
	memoryStorage := storage.NewMemoryStorage(ctx, cat, keeper, nLogger)
	server.closers = append(server.closers, memoryStorage.Close)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry, option.MetricsPrefix())

	contactSvc := contact.NewService(
		memoryStorage,
		recaptcha.NewVerifier(option.RecaptchaSecret(), option.RecaptchaVerifyURL(), option.RecaptchaMinScore()),
		nLogger,
		server.contactOptions(option, m)...,
	)

	ctrlOpts := []controllers.Option{
		controllers.WithMetrics(m, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	}
	if option.StaticDir() != "" {
		ctrlOpts = append(ctrlOpts, controllers.WithStatic(option.StaticDir()))
	}
	if option.AdminEnabled() {
		ctrlOpts = append(ctrlOpts, controllers.WithAdmin(option.AdminUser(), option.AdminPassword()))
	} else {
		nLogger.Info("admin credentials are not set, admin routes are disabled")
	}

	// create a new controller to process incoming requests
	basecontr := controllers.NewBaseController(memoryStorage, contactSvc, nLogger, ctrlOpts...)
	basecontr.RecordCatalogSize()

	// create router and mount routes
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLogger(nLogger))
	r.Use(middleware.MetricsMiddleware(m))
	r.Use(chimw.Recoverer)
	r.Mount("/", basecontr.Route())

	// configure the server
	server.srv = &http.Server{
		Addr:              option.RunAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server, nil
}

// contactOptions connects the optional rate limiter and notification channel.
// Notifications go through RabbitMQ when AMQP_URL is set and by SMTP otherwise.
func (server *Server) contactOptions(option *config.Options, m *metrics.Metrics) []contact.Option {
	opts := []contact.Option{
		contact.WithMetrics(m),
		contact.WithTrustedProxies(option.TrustedProxies()),
	}

	if addr := option.RedisAddr(); addr != "" {
		limiter, err := ratelimit.NewLimiter(server.ctx, addr, option.RateLimit(), option.RateWindow())
		if err != nil {
			server.Log.Error("rate limiting is disabled", zap.Error(err))
		} else {
			opts = append(opts, contact.WithLimiter(limiter))
			server.closers = append(server.closers, func() { limiter.Close() })
		}
	}

	mail := mailer.New(mailer.Config{
		Host:      option.SMTPHost(),
		Port:      option.SMTPPort(),
		User:      option.SMTPUser(),
		Password:  option.SMTPPassword(),
		FromEmail: option.FromEmail(),
		FromName:  option.FromName(),
		To:        option.NotificationEmail(),
	})
	if !mail.Enabled() {
		server.Log.Info("smtp is not configured, contact notifications are disabled")
		return opts
	}

	if url := option.AMQPURL(); url != "" {
		publisher, err := server.startQueue(url, mail)
		if err == nil {
			return append(opts, contact.WithNotifier(publisher, "queue"))
		}
		server.Log.Error("notification queue is unavailable, sending mail directly", zap.Error(err))
	}
	return append(opts, contact.WithNotifier(mail, "email"))
}

// startQueue declares the contact queue and mails its events in the background.
func (server *Server) startQueue(url string, mail *mailer.Mailer) (*messaging.ContactPublisher, error) {
	mq, err := messaging.NewRabbitMQ(url)
	if err != nil {
		return nil, err
	}
	if err := mq.DeclareQueue(messaging.ContactQueue); err != nil {
		mq.Close()
		return nil, err
	}
	deliveries, err := mq.Consume(messaging.ContactQueue)
	if err != nil {
		mq.Close()
		return nil, err
	}

	consumerLog := server.Log.With(zap.String("component", "contact-consumer"))
	go messaging.NewContactConsumer(mail, consumerLog).Run(server.ctx, deliveries)
	server.closers = append(server.closers, mq.Close)
	server.Log.Info("contact notifications are queued", zap.String("queue", messaging.ContactQueue))
	return messaging.NewContactPublisher(mq), nil
}

// Serve starts the server and blocks until it is shut down
func (server *Server) Serve() error {
	server.Log.Info("Running server", zap.String("address", server.srv.Addr))
	if err := server.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server and releases its backends
func (server *Server) Shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.srv.Shutdown(ctx); err != nil {
		server.Log.Error("Server shutdown error", zap.Error(err))
	}
	for i := len(server.closers) - 1; i >= 0; i-- {
		server.closers[i]()
	}

	server.Log.Info("Server stopped gracefully")
	server.Log.Sync()
}
