package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/gomail.v2"

	attendeeHandler "confreg/internal/attendee/handler"
	attendeeMetrics "confreg/internal/attendee/metrics"
	attendeeService "confreg/internal/attendee/service"
	attendeeStore "confreg/internal/attendee/store"
	conferenceHandler "confreg/internal/conference/handler"
	conferenceMetrics "confreg/internal/conference/metrics"
	conferenceService "confreg/internal/conference/service"
	conferenceStore "confreg/internal/conference/store"
	"confreg/internal/directory"
	"confreg/internal/gateway"
	"confreg/internal/notification"
	"confreg/internal/platform/config"
	"confreg/internal/platform/httpserver"
	"confreg/internal/platform/logger"
	platformMetrics "confreg/internal/platform/metrics"
	"confreg/internal/platform/middleware"
	registrationHandler "confreg/internal/registration/handler"
	registrationMetrics "confreg/internal/registration/metrics"
	registrationService "confreg/internal/registration/service"
	registrationStore "confreg/internal/registration/store"
	vendorHandler "confreg/internal/vendors/handler"
	vendorService "confreg/internal/vendors/service"
	vendorStore "confreg/internal/vendors/store"
)

// main wires the dependency graph and owns the server lifecycle.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := gateway.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	gw := gateway.NewPostgres(db)

	confStore := conferenceStore.New(gw)
	conf, err := confStore.Metadata(ctx, cfg.ConferenceID)
	if err != nil {
		log.Error("conference metadata load failed", "error", err, "conference_id", cfg.ConferenceID)
		os.Exit(1)
	}

	vendors := vendorService.New(vendorStore.New(gw), vendorService.WithLogger(log))
	venue, err := vendors.Venue(ctx, conf.VenueID)
	if err != nil {
		log.Warn("venue load failed, calendar entries will omit the location", "error", err)
	}

	attendees := attendeeService.New(
		attendeeStore.New(gw),
		directory.NewHTTPClient(cfg.DirectoryURL, directory.WithLogger(log)),
		conf.ID,
		attendeeService.WithLogger(log),
		attendeeService.WithMetrics(attendeeMetrics.New()),
	)

	mailerOpts := []notification.MailerOption{notification.WithMailerLogger(log)}
	if !cfg.SendEmail {
		mailerOpts = append(mailerOpts, notification.WithSendingDisabled())
	}
	if cfg.TestingOnly {
		mailerOpts = append(mailerOpts, notification.WithTestingOnly())
	}
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, "", "")
	notifier := notification.NewNotifier(
		notification.NewComposer(cfg.TemplateURL, cfg.AssetDir, notification.WithComposerLogger(log)),
		notification.NewMailer(dialer, cfg.FromAddress, cfg.SysadminInbox, mailerOpts...),
		notification.NewCalendarBuilder(conf, venue, cfg.FromAddress),
		conf,
		cfg.SysadminInbox,
		notification.WithNotifierLogger(log),
	)

	registrations := registrationService.New(
		registrationStore.New(gw),
		attendees,
		notifier,
		conf,
		registrationService.WithLogger(log),
		registrationService.WithMetrics(registrationMetrics.New()),
	)

	conferences := conferenceService.New(
		confStore,
		attendees,
		registrations,
		vendors,
		notifier,
		conf,
		conferenceService.WithLogger(log),
		conferenceService.WithMetrics(conferenceMetrics.New()),
		conferenceService.WithStaffRegistrationURL(cfg.RegistrationURL),
	)

	procMetrics := platformMetrics.New()
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log, procMetrics))
	router.Use(middleware.Recovery(log, procMetrics))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	attendeeHandler.New(attendees, log).Register(router)
	registrationHandler.New(registrations, attendees, notification.NewCalendarBuilder(conf, venue, cfg.FromAddress), log).Register(router)

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminToken(cfg.AdminToken, log))
		conferenceHandler.New(conferences, log).Register(r)
		vendorHandler.New(vendors, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting confreg", "addr", cfg.Addr, "conference", conf.Title)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("confreg stopped")
}
