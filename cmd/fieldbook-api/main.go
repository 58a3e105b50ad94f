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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/substrata-labs/fieldbook/internal/auth"
	"github.com/substrata-labs/fieldbook/internal/config"
	"github.com/substrata-labs/fieldbook/internal/database"
	"github.com/substrata-labs/fieldbook/internal/ids"
	"github.com/substrata-labs/fieldbook/internal/locations"
	"github.com/substrata-labs/fieldbook/internal/logging"
	"github.com/substrata-labs/fieldbook/internal/records"
	"github.com/substrata-labs/fieldbook/internal/server"
	"github.com/substrata-labs/fieldbook/internal/sites"
	"github.com/substrata-labs/fieldbook/internal/users"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fieldbook-api",
		Short: "Fieldbook investigation records backend service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	tokenCmd := &cobra.Command{
		Use:   "token <caller-id>",
		Short: "Mint a bearer token for the given caller identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mintToken(cmd, args[0])
		},
	}
	rootCmd.AddCommand(tokenCmd)

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().Int("token-ttl-minutes", defaults.GetInt("auth.token_ttl_minutes"), "Caller token TTL in minutes")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("signing-secret", "", "Token signing secret (overrides env)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "auth.token_ttl_minutes", "token-ttl-minutes")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "auth.signing_secret", "signing-secret")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func newTokenManager(appConfig config.AppConfig) *auth.TokenManager {
	return auth.NewTokenManager(auth.TokenManagerConfig{
		SigningSecret: []byte(appConfig.SigningSecret),
		Issuer:        appConfig.TokenIssuer,
		Audience:      appConfig.TokenAudience,
		TokenTTL:      appConfig.TokenTTL,
	})
}

func mintToken(cmd *cobra.Command, callerIdentity string) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	token, expiresIn, err := newTokenManager(appConfig).IssueToken(callerIdentity)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires in %d seconds\n", expiresIn)
	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	idProvider := ids.NewUUIDProvider()

	sitesStore, err := sites.NewStore(sites.StoreConfig{Database: db, IDProvider: idProvider})
	if err != nil {
		return err
	}
	locationsStore, err := locations.NewStore(locations.StoreConfig{Database: db, IDProvider: idProvider})
	if err != nil {
		return err
	}
	recordsStore, err := records.NewStore(records.StoreConfig{Database: db, IDProvider: idProvider})
	if err != nil {
		return err
	}

	sitesService, err := sites.NewService(sites.ServiceConfig{
		Store:      sitesStore,
		Dependents: []sites.DependentCounter{locationsStore, recordsStore},
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	locationsService, err := locations.NewService(locations.ServiceConfig{
		Store:      locationsStore,
		Dependents: []locations.DependentCounter{recordsStore},
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	recordsService, err := records.NewService(records.ServiceConfig{
		Store:  recordsStore,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	identityService, err := users.NewService(users.ServiceConfig{Database: db})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		TokenManager: newTokenManager(appConfig),
		Sites:        sitesService,
		Records:      recordsService,
		Locations:    locationsService,
		Identities:   identityService,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
