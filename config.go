package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/MarkoPoloResearchLab/stringkit/stringutil"
)

const (
	envKeyListenAddress        = "LISTEN_ADDR"
	envKeyOriginAllowlist      = "ORIGIN_ALLOWLIST"
	envKeyJwtHmacKey           = "STRINGKIT_JWT_HS256_KEY"
	envKeyTokenLifetimeSeconds = "TOKEN_LIFETIME_SECONDS"
	envKeyRateLimitPerMinute   = "RATE_LIMIT_PER_MINUTE"
	envKeyUniqueIDFormat       = "UNIQUE_ID_FORMAT"
	envKeyUniqueIDMaxBatch     = "UNIQUE_ID_MAX_BATCH"
	envKeyLogLevel             = "LOG_LEVEL"

	defaultListenAddress        = ":8080"
	defaultTokenLifetimeSeconds = 3600
	defaultRateLimitPerMinute   = 600
	defaultUniqueIDMaxBatch     = 100

	minimumJwtHmacKeyLength = 16
)

type serverConfig struct {
	ListenAddress      string
	AllowedOrigins     map[string]struct{}
	JwtHmacKey         []byte
	TokenLifetime      time.Duration
	RateLimitPerMinute int
	UniqueIDFormat     stringutil.Format
	UniqueIDMaxBatch   int
	LogLevel           slog.Level
}

// requiresBearer reports whether /v1 calls must carry a signed token.
func (config serverConfig) requiresBearer() bool {
	return len(config.JwtHmacKey) > 0
}

func loadConfig() (serverConfig, error) {
	allowedOrigins := make(map[string]struct{})
	if originAllowlistEnv := stringsTrimSpace(os.Getenv(envKeyOriginAllowlist)); originAllowlistEnv != "" {
		for _, originItem := range stringsSplit(originAllowlistEnv, ",") {
			trimmed := stringsTrimSpace(originItem)
			if trimmed != "" {
				allowedOrigins[trimmed] = struct{}{}
			}
		}
	}

	listenAddress := stringsTrimSpace(os.Getenv(envKeyListenAddress))
	if listenAddress == "" {
		listenAddress = defaultListenAddress
	}

	tokenLifetimeSeconds := positiveIntFromEnv(envKeyTokenLifetimeSeconds, defaultTokenLifetimeSeconds)
	rateLimitPerMinute := positiveIntFromEnv(envKeyRateLimitPerMinute, defaultRateLimitPerMinute)
	uniqueIDMaxBatch := positiveIntFromEnv(envKeyUniqueIDMaxBatch, defaultUniqueIDMaxBatch)

	jwtHmacSecret := stringsTrimSpace(os.Getenv(envKeyJwtHmacKey))
	if jwtHmacSecret != "" && len(jwtHmacSecret) < minimumJwtHmacKeyLength {
		return serverConfig{}, fmt.Errorf("weak %s: need at least %d characters", envKeyJwtHmacKey, minimumJwtHmacKeyLength)
	}
	var jwtHmacKey []byte
	if jwtHmacSecret != "" {
		jwtHmacKey = []byte(jwtHmacSecret)
	}

	uniqueIDFormat, parseFormatError := stringutil.ParseFormat(os.Getenv(envKeyUniqueIDFormat))
	if parseFormatError != nil {
		return serverConfig{}, fmt.Errorf("bad %s: %w", envKeyUniqueIDFormat, parseFormatError)
	}

	logLevel, parseLevelError := parseLogLevel(os.Getenv(envKeyLogLevel))
	if parseLevelError != nil {
		return serverConfig{}, fmt.Errorf("bad %s: %w", envKeyLogLevel, parseLevelError)
	}

	return serverConfig{
		ListenAddress:      listenAddress,
		AllowedOrigins:     allowedOrigins,
		JwtHmacKey:         jwtHmacKey,
		TokenLifetime:      time.Duration(tokenLifetimeSeconds) * time.Second,
		RateLimitPerMinute: rateLimitPerMinute,
		UniqueIDFormat:     uniqueIDFormat,
		UniqueIDMaxBatch:   uniqueIDMaxBatch,
		LogLevel:           logLevel,
	}, nil
}

// positiveIntFromEnv falls back to defaultValue when the variable is unset,
// malformed or not positive.
func positiveIntFromEnv(envKey string, defaultValue int) int {
	rawValue := stringsTrimSpace(os.Getenv(envKey))
	if rawValue == "" {
		return defaultValue
	}
	parsedValue, parseError := strconv.Atoi(rawValue)
	if parseError != nil || parsedValue <= 0 {
		return defaultValue
	}
	return parsedValue
}

// loadEnvFile never overrides variables already present in the process
// environment. Without an explicit path a missing ./.env is not an error.
func loadEnvFile(envFilePath string) error {
	if envFilePath != "" {
		if loadError := godotenv.Load(envFilePath); loadError != nil {
			return fmt.Errorf("load env file %s: %w", envFilePath, loadError)
		}
		return nil
	}
	if loadError := godotenv.Load(); loadError != nil && !errors.Is(loadError, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", loadError)
	}
	return nil
}
