package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/word-forge/wordforge-lms/internal/api/http"
	auth "github.com/word-forge/wordforge-lms/internal/auth/middleware"
	"github.com/word-forge/wordforge-lms/internal/config"
	"github.com/word-forge/wordforge-lms/internal/db"
	"github.com/word-forge/wordforge-lms/internal/drill"
	"github.com/word-forge/wordforge-lms/internal/grading"
	"github.com/word-forge/wordforge-lms/internal/notify"
	"github.com/word-forge/wordforge-lms/internal/progression"
	"github.com/word-forge/wordforge-lms/internal/rbac"
	syncx "github.com/word-forge/wordforge-lms/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	store := drill.NewSQLStore(dbh, cfg.DBDriver)
	badges := progression.NewSQLStore(dbh)
	feed := notify.NewFeedStore(dbh)
	events := syncx.NewEventRepo(dbh, cfg.SiteID)

	if cfg.SeedBadges {
		if err := badges.SeedBadges(ctx, progression.DefaultBadges()); err != nil {
			log.Fatalf("seed badges: %v", err)
		}
	}
	if cfg.SeedAdmin {
		if err := ensureAdminUser(ctx, dbh, cfg.AdminUser, cfg.AdminPassHash); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
	}

	ledger := progression.NewLedger(store, badges, feed)
	engine := grading.NewEngine(store, ledger)

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.Mode == config.ModeOffline))

		pr.With(rbac.Require("drill:create")).
			Post("/drills", api.CreateDrillHandler(store))
		pr.With(rbac.Require("drill:view")).
			Get("/drills/{drillID}", api.GetDrillHandler(store))
		pr.With(rbac.Require("enrollment:manage")).
			Post("/drills/{drillID}/enrollments", api.EnrollHandler(store))

		// Student flow: one answer at a time, graded on arrival
		pr.With(rbac.Require("answer:submit")).
			Post("/drills/{drillID}/questions/{questionID}/answer", api.SubmitAnswerHandler(engine, events))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(store))

		pr.With(rbac.RequireAny("progression:view-own", "progression:view-all")).
			Get("/students/{studentID}/progression", api.GetProgressionHandler(badges))
		pr.With(rbac.Require("progression:rebuild")).
			Post("/students/{studentID}/progression/rebuild", api.RebuildProgressionHandler(ledger))
		pr.Get("/badges", api.ListBadgesHandler(badges))

		pr.With(rbac.Require("notifications:view")).
			Get("/notifications", api.ListNotificationsHandler(feed))
		pr.With(rbac.Require("notifications:view")).
			Post("/notifications/{notificationID}/read", api.MarkNotificationReadHandler(feed))

		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func ensureAdminUser(ctx context.Context, dbh *sql.DB, username, passHash string) error {
	var one int
	err := dbh.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username=$1`, username).Scan(&one)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}
	_, err = dbh.ExecContext(ctx,
		`INSERT INTO users (id,username,password_hash,role) VALUES ($1,$2,$3,'admin')`,
		"admin", username, passHash)
	return err
}
