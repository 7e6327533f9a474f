package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learning-yogi/internal/bootstrap"
	httptransport "learning-yogi/internal/transport/http"
)

func main() {
	app, err := bootstrap.New(context.Background())
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("close resources failed: %v", err)
		}
	}()

	server := &http.Server{
		Addr:              app.Config.HTTPAddr(),
		Handler:           httptransport.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("%s (%s) listening on %s", app.Config.App.Name, app.Config.App.Env, server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}
}
