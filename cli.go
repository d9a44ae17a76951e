package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MarkoPoloResearchLab/stringkit/stringutil"
)

const (
	flagEnvFile  = "env-file"
	flagLogLevel = "log-level"
	flagPrefix   = "prefix"
	flagCount    = "count"
	flagFormat   = "format"
	flagLifetime = "lifetime"
)

type rootOptions struct {
	envFile  string
	logLevel string

	// set once the persistent flags are parsed; nil keeps LOG_LEVEL
	logLevelOverride *slog.Level
}

func (options *rootOptions) parsePersistentFlags() error {
	if options.logLevel == "" {
		return nil
	}
	flagLevel, parseLevelError := parseLogLevel(options.logLevel)
	if parseLevelError != nil {
		return fmt.Errorf("bad --%s: %w", flagLogLevel, parseLevelError)
	}
	options.logLevelOverride = &flagLevel
	return nil
}

func newRootCommand() *cobra.Command {
	options := &rootOptions{}
	rootCommand := &cobra.Command{
		Use:   "stringkit",
		Short: "Prefix and suffix checks and unique identifiers, as a CLI and an HTTP API",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if loadError := loadEnvFile(options.envFile); loadError != nil {
				return loadError
			}
			return options.parsePersistentFlags()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeCommand(cmd, options)
		},
	}
	rootCommand.SilenceUsage = true
	rootCommand.PersistentFlags().StringVar(&options.envFile, flagEnvFile, "", "dotenv file to load before reading configuration (default ./.env when present)")
	rootCommand.PersistentFlags().StringVar(&options.logLevel, flagLogLevel, "", "log level: debug, info, warn or error (overrides "+envKeyLogLevel+")")

	rootCommand.AddCommand(newServeCommand(options))
	rootCommand.AddCommand(newMatchCommand("begins-with", "Report whether HAYSTACK begins with NEEDLE", stringutil.BeginsWith))
	rootCommand.AddCommand(newMatchCommand("ends-with", "Report whether HAYSTACK ends with NEEDLE", stringutil.EndsWith))
	rootCommand.AddCommand(newUniqueIDCommand())
	rootCommand.AddCommand(newGenerateJwtKeyCommand())
	rootCommand.AddCommand(newIssueTokenCommand())
	return rootCommand
}

func newServeCommand(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the stringkit HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeCommand(cmd, options)
		},
	}
}

// resolveServeConfig reads the environment and applies flag overrides.
func resolveServeConfig(options *rootOptions) (serverConfig, error) {
	serviceConfig, loadConfigError := loadConfig()
	if loadConfigError != nil {
		return serverConfig{}, fmt.Errorf("config error: %w", loadConfigError)
	}
	if options.logLevelOverride != nil {
		serviceConfig.LogLevel = *options.logLevelOverride
	}
	return serviceConfig, nil
}

func runServeCommand(cmd *cobra.Command, options *rootOptions) error {
	serviceConfig, resolveError := resolveServeConfig(options)
	if resolveError != nil {
		return resolveError
	}

	logger := newLogger(cmd.ErrOrStderr(), serviceConfig.LogLevel)
	httpServer, serverError := newHTTPServer(serviceConfig, logger, newServiceMetrics())
	if serverError != nil {
		return fmt.Errorf("server error: %w", serverError)
	}

	signalContext, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	serveErrors := make(chan error, 1)
	go func() {
		serveErrors <- httpServer.ListenAndServe()
	}()
	logger.Info("stringkit listening",
		"addr", serviceConfig.ListenAddress,
		"unique_id_format", string(serviceConfig.UniqueIDFormat),
		"bearer_required", serviceConfig.requiresBearer(),
	)

	select {
	case serveError := <-serveErrors:
		if serveError != nil && !errors.Is(serveError, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", serveError)
		}
		return nil
	case <-signalContext.Done():
	}

	shutdownContext, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if shutdownError := httpServer.Shutdown(shutdownContext); shutdownError != nil {
		return fmt.Errorf("shutdown: %w", shutdownError)
	}
	logger.Info("stringkit stopped")
	return nil
}

func newMatchCommand(use string, short string, match matchFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " HAYSTACK NEEDLE",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			matched, matchError := match(args[0], args[1])
			if matchError != nil {
				return fmt.Errorf("%s: %w", use, matchError)
			}
			if _, writeError := fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(matched)); writeError != nil {
				return fmt.Errorf("write result: %w", writeError)
			}
			return nil
		},
	}
}

func newUniqueIDCommand() *cobra.Command {
	var (
		prefix     string
		count      int
		formatName string
	)
	uniqueIDCommand := &cobra.Command{
		Use:   "unique-id",
		Short: "Print unique identifiers that contain no dots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--%s must be at least 1, got %d", flagCount, count)
			}
			if formatName == "" {
				formatName = os.Getenv(envKeyUniqueIDFormat)
			}
			format, parseFormatError := stringutil.ParseFormat(formatName)
			if parseFormatError != nil {
				return fmt.Errorf("unique-id: %w", parseFormatError)
			}
			generator, generatorError := stringutil.NewGenerator(format)
			if generatorError != nil {
				return fmt.Errorf("unique-id: %w", generatorError)
			}
			for index := 0; index < count; index++ {
				if _, writeError := fmt.Fprintln(cmd.OutOrStdout(), generator.Generate(prefix)); writeError != nil {
					return fmt.Errorf("write id: %w", writeError)
				}
			}
			return nil
		},
	}
	uniqueIDCommand.Flags().StringVar(&prefix, flagPrefix, "", "text prepended to every id")
	uniqueIDCommand.Flags().IntVar(&count, flagCount, 1, "number of ids to print")
	uniqueIDCommand.Flags().StringVar(&formatName, flagFormat, "", "token format: ulid, uuid or timestamp (default from "+envKeyUniqueIDFormat+", else ulid)")
	return uniqueIDCommand
}

const secretByteLength = 32

func newGenerateJwtKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-jwt-key",
		Short: "Generate a HS256 signing key for API bearer tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenSecret, tokenSecretError := generateRandomHex(secretByteLength)
			if tokenSecretError != nil {
				return fmt.Errorf("generate %s: %w", envKeyJwtHmacKey, tokenSecretError)
			}
			if _, writeError := fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", envKeyJwtHmacKey, tokenSecret); writeError != nil {
				return fmt.Errorf("write %s: %w", envKeyJwtHmacKey, writeError)
			}
			return nil
		},
	}
}

func newIssueTokenCommand() *cobra.Command {
	var lifetime time.Duration
	issueTokenCommand := &cobra.Command{
		Use:   "issue-token",
		Short: "Mint a bearer token for the HTTP API from " + envKeyJwtHmacKey,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceConfig, loadConfigError := loadConfig()
			if loadConfigError != nil {
				return fmt.Errorf("config error: %w", loadConfigError)
			}
			if lifetime == 0 {
				lifetime = serviceConfig.TokenLifetime
			}
			signedToken, issueError := issueAccessToken(serviceConfig.JwtHmacKey, lifetime, timeNow())
			if issueError != nil {
				return fmt.Errorf("issue token: %w", issueError)
			}
			if _, writeError := fmt.Fprintln(cmd.OutOrStdout(), signedToken); writeError != nil {
				return fmt.Errorf("write token: %w", writeError)
			}
			return nil
		},
	}
	issueTokenCommand.Flags().DurationVar(&lifetime, flagLifetime, 0, "token lifetime (default from "+envKeyTokenLifetimeSeconds+")")
	return issueTokenCommand
}

var randomRead = rand.Read

func generateRandomHex(byteLength int) (string, error) {
	randomBytes := make([]byte, byteLength)
	if _, readError := randomRead(randomBytes); readError != nil {
		return "", fmt.Errorf("read random bytes: %w", readError)
	}
	return hex.EncodeToString(randomBytes), nil
}
