package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calorie-tracker/auth"
	"calorie-tracker/config"
	"calorie-tracker/dal"
	"calorie-tracker/db"
	"calorie-tracker/db/migrations"
	"calorie-tracker/logger"
	"calorie-tracker/router"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "calorie-tracker",
	Short: "Food and water tracking API",
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the tracking database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		conn, err := db.OpenSQL(cfg.Database)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := migrations.MigrateUp(conn.DB, cfg.Database.Driver); err != nil {
			return err
		}
		fmt.Println("database is up to date")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the schema version against this binary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		conn, err := db.OpenSQL(cfg.Database)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := migrations.CheckStatus(conn.DB, cfg.Database.Driver); err != nil {
			return err
		}
		fmt.Println("database schema is current")
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd)
	rootCmd.SilenceUsage = true
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(log.GetLevel())

	auth.JwtSecret = []byte(cfg.Auth.JWTSecret)
	auth.TokenTTL = cfg.Auth.TokenTTL
	auth.FrontendURL = cfg.Server.FrontendURL
	if cfg.GoogleEnabled() {
		auth.GoogleOauthConfig = auth.NewGoogleConfig(cfg.Auth.GoogleClientID, cfg.Auth.GoogleClientSecret, cfg.Server.GoogleRedirect)
		log.WithField("redirect_url", cfg.Server.GoogleRedirect).Info("google login enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := db.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background())
	log.Info("connected to mongo")

	sqlDB, err := db.OpenSQL(cfg.Database)
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if cfg.Database.AutoMigrate {
		if err := migrations.MigrateUp(sqlDB.DB, cfg.Database.Driver); err != nil {
			return err
		}
	}
	log.WithField("driver", cfg.Database.Driver).Info("tracking database ready")

	accounts := mongoClient.Database(cfg.Mongo.Database)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.Router(router.Dependencies{
		Config:   cfg,
		Log:      log,
		Users:    dal.NewUserMongoDAO(accounts),
		Profiles: dal.NewProfileMongoDAO(accounts),
		Food:     dal.NewFoodSQLDAO(sqlDB),
		Probes: map[string]router.Probe{
			"sql":   sqlDB.PingContext,
			"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
