package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/praxishealth/praxis/internal/config"
	"github.com/praxishealth/praxis/internal/domain/analytics"
	"github.com/praxishealth/praxis/internal/domain/appointment"
	"github.com/praxishealth/praxis/internal/domain/patient"
	"github.com/praxishealth/praxis/internal/domain/portal"
	"github.com/praxishealth/praxis/internal/domain/report"
	"github.com/praxishealth/praxis/internal/domain/template"
	"github.com/praxishealth/praxis/internal/platform/auth"
	"github.com/praxishealth/praxis/internal/platform/db"
	"github.com/praxishealth/praxis/internal/platform/httperr"
	"github.com/praxishealth/praxis/internal/platform/middleware"
	"github.com/praxishealth/praxis/internal/platform/notification"
	"github.com/praxishealth/praxis/internal/platform/tasks"
)

// visitSource adapts the appointment repository to the patient package's
// visit-frequency enrichment, keeping patient free of a direct dependency on
// appointment storage.
type visitSource struct {
	appts appointment.Repository
}

func (v *visitSource) VisitsFor(ctx context.Context, patientID uuid.UUID) (analytics.VisitFrequency, error) {
	items, err := v.appts.ListByPatient(ctx, patientID)
	if err != nil {
		return analytics.VisitFrequency{}, err
	}
	return analytics.Visits(items, time.Now()), nil
}

// patientResolver adapts the patient service to report.PatientResolver so
// portal uploads land under the owning clinician.
type patientResolver struct {
	patients *patient.Service
}

func (r *patientResolver) BindingForPortalUser(ctx context.Context, portalUserID string) (report.PatientBinding, error) {
	p, err := r.patients.ByPortalUser(ctx, portalUserID)
	if err != nil {
		return report.PatientBinding{}, err
	}
	return report.PatientBinding{PatientID: p.ID, ClinicianID: p.ClinicianID}, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "praxisd",
		Short: "Praxis practice management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httperr.Handler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Every request shares one pooled connection across its repository calls.
	e.Use(db.ConnMiddleware(pool))

	// Public routes carry no auth; everything under /api/v1 does.
	public := e.Group("/api/v1")

	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}))
	}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Background task runner for fire-and-forget side effects
	runner := tasks.NewRunner(logger)

	// Notifications (log delivery until an email provider is wired)
	templates := notification.NewTemplateEngine()
	templates.RegisterTemplate(notification.Template{
		ID:      "appointment-reminder",
		Name:    "Appointment Reminder",
		Subject: "Appointment reminder for {{patient_name}}",
		Body:    "Dear {{patient_name}}, this is a reminder of your {{type}} appointment on {{date}} at {{time}}.",
	})
	notifier := notification.NewService(templates, &notification.LogSender{Logger: logger})

	// -- Repositories --
	apptRepo := appointment.NewRepoPG(pool)
	patientRepo := patient.NewRepoPG(pool)
	reportRepo := report.NewRepoPG(pool)
	templateRepo := template.NewRepoPG(pool)

	// -- Services and handlers --
	apptSvc := appointment.NewService(apptRepo)
	apptHandler := appointment.NewHandler(apptSvc)
	apptHandler.RegisterRoutes(apiV1)

	patientSvc := patient.NewService(
		patientRepo,
		&visitSource{appts: apptRepo},
		notifier,
		runner,
		&patient.LocalProvisioner{Logger: logger},
		cfg.PortalBaseURL,
	)
	patientHandler := patient.NewHandler(patientSvc)
	patientHandler.RegisterRoutes(apiV1)

	reportSvc := report.NewService(reportRepo, &report.LogTrigger{Logger: logger}, runner)
	reportHandler := report.NewHandler(reportSvc, &patientResolver{patients: patientSvc})
	reportHandler.RegisterRoutes(apiV1)

	templateSvc := template.NewService(templateRepo)
	templateHandler := template.NewHandler(templateSvc)
	templateHandler.RegisterRoutes(apiV1)

	analyticsSvc := analytics.NewService(apptRepo, patientRepo, reportRepo)
	analyticsHandler := analytics.NewHandler(analyticsSvc)
	analyticsHandler.RegisterRoutes(apiV1)

	portalHandler := portal.NewHandler(patientSvc, apptRepo, reportRepo)
	portalHandler.RegisterRoutes(apiV1, public)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	runner.Wait()
	return nil
}
