package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/AtoyanMikhail/tokenauth/internal/cache"
	"github.com/AtoyanMikhail/tokenauth/internal/config"
	"github.com/AtoyanMikhail/tokenauth/internal/handler"
	"github.com/AtoyanMikhail/tokenauth/internal/logger"
	"github.com/AtoyanMikhail/tokenauth/internal/middleware"
	"github.com/AtoyanMikhail/tokenauth/internal/password"
	"github.com/AtoyanMikhail/tokenauth/internal/repository"
	"github.com/AtoyanMikhail/tokenauth/internal/repository/models"
	"github.com/AtoyanMikhail/tokenauth/internal/service"
	"github.com/AtoyanMikhail/tokenauth/internal/session"
	"github.com/AtoyanMikhail/tokenauth/internal/token"
)

const usage = `usage:
  tokenauth                                   run the HTTP server
  tokenauth create-admin <username> <password>  create or promote an administrator`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err.Error())
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatal(err.Error())
	}
	l := logger.New(level, os.Stdout)
	defer l.Sync()

	storage, err := repository.NewPostgresStorage(cfg.Database, l.With(logger.Component("postgres")))
	if err != nil {
		l.Fatal("Failed to connect to Postgres", logger.Error(err))
	}
	defer storage.Close()

	if err := storage.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		l.Fatal("Failed to apply migrations", logger.Error(err))
	}

	hasher := password.NewHasher()
	roles := service.NewRoleService(storage, storage, hasher, l)

	if len(os.Args) > 1 {
		if err := runCommand(os.Args[1:], roles); err != nil {
			l.Fatal("Command failed", logger.Error(err))
		}
		return
	}

	if err := serve(cfg, l, storage, roles, hasher); err != nil {
		l.Fatal("Server stopped", logger.Error(err))
	}
}

func runCommand(args []string, roles *service.RoleService) error {
	switch args[0] {
	case "create-admin":
		if len(args) != 3 {
			return errors.New(usage)
		}
		user, err := roles.CreateAdmin(context.Background(), args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("User %s is an administrator\n", user.Username)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func serve(cfg *config.Config, l logger.Logger, storage models.Storage, roles *service.RoleService, hasher *password.Hasher) error {
	client, err := cache.Connect(cfg.Redis, l)
	if err != nil {
		return err
	}

	store := session.NewRedisStore(client, cfg.Redis.Timeout.Std(), l.With(logger.Component("session")))
	defer store.Close()

	codec, err := token.NewCodec(cfg.JWT, l)
	if err != nil {
		return err
	}

	attempts := cache.NewAttemptCounter(client, cfg.SignIn.Window.Std(), cfg.Redis.Timeout.Std(), l.With(logger.Component("attempts")))
	tokens := service.NewTokenService(codec, store, l)
	auth := service.NewAuthService(storage, storage, storage, tokens, hasher, l,
		service.WithAttemptLimit(attempts, cfg.SignIn.MaxAttempts))

	h := handler.New(auth, roles, middleware.NewAuth(codec, roles, l), l.With(logger.Component("http")))

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      h.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		l.Info("HTTP server listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	l.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
