package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/activationgate/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// parseEnv loads the .env file named by -env (or ./.env when present) into the
// process environment without overriding variables that are already set, and
// then overlays recognised variables onto config.
//
// A missing default .env is ignored; an explicitly named file that cannot be
// read panics, like an unreadable JSON config does.
func parseEnv(config *Config, args []string) {
	envFile := flagx.Lookup(args, "env")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString("GRPC_ADDR", &config.EndpointAddrGRPC)
	envString("HTTP_ADDR", &config.EndpointAddrHTTP)
	envString("STORAGE", &config.Storage)
	envString("DATABASE_DSN", &config.DatabaseDSN)
	envString("SECRET_KEY", &config.SecretKey)
	envDuration("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	envString("REDIS_URI", &config.RedisURI)
	envDuration("REGISTRATION_GUARD_TTL", &config.RegistrationGuardTTL)
	envString("AMQP_URL", &config.AMQPURL)
	envString("NOTIFICATION_QUEUE", &config.NotificationQueue)
	envString("SITE_NAME", &config.SiteName)
	envString("LOGIN_URL", &config.LoginURL)
	envString("ADMIN_EMAIL", &config.AdminEmail)
	envString("ADMIN_USERNAME", &config.AdminUserName)
	envString("ADMIN_PASSWORD", &config.AdminPassword)
	envInt("BATCH_SIZE", &config.BatchSize)
	envBool("INSTALL_BACKFILL", &config.InstallBackfill)
	envString("LOG_LEVEL", &config.LogLevel)
	envString("SMTP_ADDR", &config.SMTPAddr)
	envString("SMTP_FROM", &config.SMTPFrom)
	envString("SMTP_USER", &config.SMTPUser)
	envString("SMTP_PASSWORD", &config.SMTPPassword)

	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok && v != "" {
		config.AllowedOrigins = splitList(v)
	}
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic("invalid duration for " + key + ": " + v)
	}
	*dst = d
}

func envInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic("invalid int for " + key + ": " + v)
	}
	*dst = n
}

func envBool(key string, dst *bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic("invalid bool for " + key + ": " + v)
	}
	*dst = b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
