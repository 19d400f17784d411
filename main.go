package main

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"timesheet/config"
	"timesheet/database"
	"timesheet/handlers"
	"timesheet/middleware"
	"timesheet/models"
	"timesheet/services"
)

func main() {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Seed(db, log); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}

	middleware.SetJWTSecrets(cfg.JWTSecret, cfg.JWTRefreshSecret)

	team := services.NewTeamService(db)
	notifications := services.NewNotificationService(db)
	auth := services.NewAuthService(db, cfg, log)
	timesheets := services.NewTimesheetService(db, team, log)
	approvals := services.NewApprovalService(db, team, notifications, log)
	projects := services.NewProjectService(db)
	users := services.NewUserService(db, team)
	settings := services.NewSettingsService(db)
	holidays := services.NewHolidayService(db)
	reports := services.NewReportService(db, team)

	authHandler := handlers.NewAuthHandler(auth, log)
	timesheetHandler := handlers.NewTimesheetHandler(timesheets, log)
	approvalHandler := handlers.NewApprovalHandler(approvals, log)
	teamHandler := handlers.NewTeamHandler(team, log)
	projectHandler := handlers.NewProjectHandler(projects, log)
	userHandler := handlers.NewUserHandler(users, log)
	settingsHandler := handlers.NewSettingsHandler(settings, holidays, log)
	notificationHandler := handlers.NewNotificationHandler(notifications, log)
	reportHandler := handlers.NewReportHandler(reports, log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(log))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate)

			r.Get("/me", userHandler.Me)

			r.Route("/timesheets", func(r chi.Router) {
				r.Get("/", timesheetHandler.List)
				r.Post("/", timesheetHandler.Create)
				r.Post("/copy-previous-week", timesheetHandler.CopyPreviousWeek)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", timesheetHandler.Get)
					r.Put("/", timesheetHandler.Update)
					r.Delete("/", timesheetHandler.Delete)
					r.Post("/submit", timesheetHandler.Submit)
					r.Route("/entries", func(r chi.Router) {
						r.Get("/", timesheetHandler.ListEntries)
						r.Post("/", timesheetHandler.CreateEntry)
						r.Put("/{entryID}", timesheetHandler.UpdateEntry)
						r.Delete("/{entryID}", timesheetHandler.DeleteEntry)
					})
				})
			})

			r.Route("/approvals", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleManager, models.RoleAdmin))
				r.Get("/", approvalHandler.ListPending)
				r.Get("/stats", approvalHandler.Stats)
				r.Post("/{id}/approve", approvalHandler.Approve)
				r.Post("/{id}/reject", approvalHandler.Reject)
			})

			r.Route("/team", func(r chi.Router) {
				r.With(middleware.RequireRole(models.RoleManager, models.RoleAdmin)).
					Get("/members", teamHandler.Members)
				r.Get("/{userID}/managers", teamHandler.Managers)
				r.With(middleware.RequireRole(models.RoleAdmin)).
					Put("/{userID}/managers", teamHandler.AssignManagers)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(models.RoleManager, models.RoleAdmin))
					r.Post("/", projectHandler.Create)
					r.Put("/{id}", projectHandler.Update)
					r.Put("/{id}/employees", projectHandler.ReplaceEmployees)
				})
				r.With(middleware.RequireRole(models.RoleAdmin)).
					Delete("/{id}", projectHandler.Delete)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleManager, models.RoleAdmin))
				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Deactivate)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", settingsHandler.Get)
				r.With(middleware.RequireRole(models.RoleAdmin)).
					Put("/", settingsHandler.Update)
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", settingsHandler.ListHolidays)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(models.RoleAdmin))
					r.Post("/", settingsHandler.CreateHoliday)
					r.Delete("/{id}", settingsHandler.DeleteHoliday)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Put("/read-all", notificationHandler.MarkAllRead)
				r.Put("/{id}/read", notificationHandler.MarkRead)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/", reportHandler.Generate)
				r.Get("/csv", reportHandler.ExportCSV)
				r.Get("/monthly", reportHandler.Monthly)
			})
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info().Str("port", cfg.ServerPort).Msg("server starting")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}
