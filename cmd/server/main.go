package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nyayamitra/nyaya-mitra/internal/analysis"
	"github.com/nyayamitra/nyaya-mitra/internal/config"
	"github.com/nyayamitra/nyaya-mitra/internal/database"
	"github.com/nyayamitra/nyaya-mitra/internal/handler"
	"github.com/nyayamitra/nyaya-mitra/internal/queue"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
	"github.com/nyayamitra/nyaya-mitra/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	docs := repository.NewDocumentRepo(db)
	cases := repository.NewCaseRepo(db)
	alerts := repository.NewSOSRepo(db)
	feedback := repository.NewFeedbackRepo(db)
	reports := repository.NewWhistleblowerRepo(db)
	consultations := repository.NewConsultationRepo(db)
	notifications := repository.NewNotificationRepo(db)

	analyzer := analysis.NewAnalyzer(docs, notifications, cfg.AnalysisDelay)
	analyzer.Start(cfg.AnalysisWorkers)

	// The event consumer keeps its own reconnect loop for the process
	// lifetime.
	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			log.Printf("event consumer stopped: %v", err)
		}
	}()

	h := router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users, sessions, notifications),
		Users:         handler.NewUserHandler(users, sessions),
		Documents:     handler.NewDocumentHandler(cfg, docs, cases, analyzer),
		Cases:         handler.NewCaseHandler(cases, notifications),
		SOS:           handler.NewSOSHandler(alerts, notifications, nil),
		Feedback:      handler.NewFeedbackHandler(feedback),
		Whistleblower: handler.NewWhistleblowerHandler(reports),
		Consultations: handler.NewConsultationHandler(consultations, notifications),
		Notifications: handler.NewNotificationHandler(notifications),
	}

	e := router.New(cfg, sessions, rdb, h)

	go func() {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	// Drain in-flight analyses after the HTTP server stops accepting new
	// uploads.
	analyzer.Stop()
}
