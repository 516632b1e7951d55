package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/emilythestrangee/forum/backend/internal/config"
	"github.com/emilythestrangee/forum/backend/internal/database"
	"github.com/emilythestrangee/forum/backend/internal/forum"
	"github.com/emilythestrangee/forum/backend/internal/identity"
	"github.com/emilythestrangee/forum/backend/internal/notify"
	"github.com/emilythestrangee/forum/backend/internal/server"
)

func main() {
	conf, err := config.New(".env")
	if err != nil {
		log.Fatalf("[SETUP ERROR] error when reading config: %v", err)
	}

	if err := run(*conf); err != nil {
		log.Fatalf("[APPLICATION ERROR] error: %v", err)
	}

	log.Println("[SHUTDOWN] service shut down gracefully")
}

func run(conf config.Config) error {
	db, err := database.New(conf.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	var opts []forum.Option
	if conf.Twilio.Enabled() {
		opts = append(opts, forum.WithNotifier(notify.NewSMS(conf.Twilio)))
		log.Println("[SETUP] reply notifications enabled")
	}
	svc := forum.New(db.GetDB(), opts...)
	defer svc.Wait()

	broker := identity.NewBroker()
	defer broker.Close()

	srv, err := server.NewServer(conf.HTTPServer, server.Deps{
		DB:     db,
		Forum:  svc,
		Tokens: identity.NewTokens(conf.Auth.JWTSecret, conf.Auth.TokenTTL),
		Broker: broker,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
