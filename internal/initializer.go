package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"

	"campus-server/internal/config"
	"campus-server/internal/managers"
	"campus-server/internal/routing"
	"campus-server/internal/session"
)

func Init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}

	setLogLevel(cfg.LogLevel)

	// One session manager owns every per-user pool set
	resolver := config.NewResolver(cfg)
	sessions := session.NewManager(cfg, resolver)

	// Verify the store is reachable before accepting requests
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sessions.Ping(ctx); err != nil {
		log.Fatal("Database not reachable: ", err)
	}
	log.Info("Connected to database")

	// Tokens expire after 24 hours; sessions abandoned without a logout
	// are reaped on the same horizon so their pools get released
	stopSweeper := sessions.StartSweeper(10*time.Minute, 24*time.Hour)

	// Initialize mail manager
	mailMgr := managers.NewMailManager()

	// Initialize JWT manager
	jwtMgr, err := managers.NewJWTManagerFromFile(cfg.KeyPairPath)
	if err != nil {
		log.Fatal("Error loading key pair: ", err)
	}

	// Initialize router
	router := routing.InitRouter(sessions, jwtMgr, mailMgr)
	log.Println("Initialized router")

	// Handle interrupt signal gracefully
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)

		<-c
		log.Println("Server shutting down...")
		stopSweeper()
		sessions.CloseAll()
		os.Exit(0)
	}()

	// Start server on the specified port
	log.Printf("Starting server on port %s...\n", cfg.Port)
	err = http.ListenAndServe(":"+cfg.Port, router)
	if err != nil {
		log.Fatal("Error starting server: ", err)
	}
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "INFO":
		log.SetLevel(log.InfoLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
	case "FATAL":
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	log.SetReportCaller(true)

	log.SetOutput(os.Stdout)
}
