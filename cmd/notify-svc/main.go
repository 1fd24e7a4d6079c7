package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"thriveup/internal/dbmysql"
	"thriveup/internal/di"
)

func main() {
	app, err := di.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Log.Sync()

	if err := app.DB.AutoMigrate(&dbmysql.User{}, &dbmysql.Friend{}); err != nil {
		app.Log.Fatal("database migration failed", zap.Error(err))
	}

	ctx := context.Background()
	if err := app.Service.StartListening(ctx); err != nil {
		app.Log.Fatal("failed to start listening", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("shutting down")
	app.Service.Shutdown()
	if err := app.Mongo.Close(ctx); err != nil {
		app.Log.Warn("mongo disconnect failed", zap.Error(err))
	}
	app.Log.Info("stopped")
}
