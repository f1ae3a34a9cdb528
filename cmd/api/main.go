package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apula/responder-api/internal/application/dispatch"
	"github.com/apula/responder-api/internal/config"
	"github.com/apula/responder-api/internal/infrastructure/dynamo"
	"github.com/apula/responder-api/internal/infrastructure/fcm"
	"github.com/apula/responder-api/internal/infrastructure/smtp"
	"github.com/apula/responder-api/internal/infrastructure/sns"
	transporthttp "github.com/apula/responder-api/internal/transport/http"
	"github.com/apula/responder-api/internal/transport/stream"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	tokenRepo := dynamo.NewTokenRepo(dynamoClient, cfg.DynamoTables.DeviceTokens)
	dispatchRepo := dynamo.NewDispatchRepo(dynamoClient, cfg.DynamoTables.Dispatches)
	notificationRepo := dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	// FCM push sender (optional — without it dispatches are stored but the
	// fan-out consumer is not started).
	var pushSender fcm.PushSender
	if sender, err := fcm.NewSender(ctx, cfg.FCMCredentialsFile); err == nil {
		pushSender = sender
	} else {
		log.Printf("WARN: FCM sender not available, dispatch fan-out disabled: %v", err)
	}

	deps := &transporthttp.Deps{
		UserRepo:         userRepo,
		TokenRepo:        tokenRepo,
		DispatchRepo:     dispatchRepo,
		NotificationRepo: notificationRepo,
		Mailer:           mailer,
		SMSSender:        smsSender,
		PushSender:       pushSender,
	}

	if pushSender != nil {
		dispatchSvc := dispatch.NewService(dispatch.ServiceDeps{
			DispatchRepo:     dispatchRepo,
			TokenRepo:        tokenRepo,
			NotificationRepo: notificationRepo,
			Push:             pushSender,
		})
		consumer := stream.NewConsumer(
			dynamoClient,
			dynamo.NewStreamsClient(cfg),
			cfg.DynamoTables.Dispatches,
			dispatchSvc,
			time.Duration(cfg.StreamPollSeconds)*time.Second,
		)
		go func() {
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("WARN: dispatch stream consumer exited: %v", err)
			}
		}()
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
