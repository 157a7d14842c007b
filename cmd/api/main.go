package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/agrosig/agrosig-api/internal/auth"
	"github.com/agrosig/agrosig-api/internal/filestore"
	plotrepo "github.com/agrosig/agrosig-api/internal/plot/repo"
	rolerepo "github.com/agrosig/agrosig-api/internal/role/repo"
	"github.com/agrosig/agrosig-api/internal/router"
	userrepo "github.com/agrosig/agrosig-api/internal/user/repo"
	"github.com/agrosig/agrosig-api/pkg/database"
	"github.com/agrosig/agrosig-api/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.InitLogger(utilities.LogConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting agrosig-api")

	// init db
	db, err := database.Connect(database.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// idempotent schema setup; role table first, users references it,
	// plots references users
	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelSchema()
	if err := rolerepo.NewRoleRepo(db).EnsureSchema(schemaCtx); err != nil {
		sugar.Fatalf("ensure role schema: %v", err)
	}
	if err := userrepo.NewUserRepo(db).EnsureSchema(schemaCtx); err != nil {
		sugar.Fatalf("ensure users schema: %v", err)
	}
	if err := plotrepo.NewPlotRepo(db).EnsureSchema(schemaCtx); err != nil {
		sugar.Fatalf("ensure plots schema: %v", err)
	}

	tokens := auth.NewTokenService(auth.TokenConfigFromEnv())
	uploads := filestore.New(filestore.DirFromEnv())

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	handler := router.RegisterRoutes(sugar, db, tokens, uploads)
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: handler,
	}

	// run server in background
	go func() {
		sugar.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(doneCtx); err != nil {
		sugar.Warnf("db ping on shutdown failed: %v", err)
	}

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
