package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/activationgate/internal/flagx"
	"github.com/dmitrijs2005/activationgate/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// both "15m" style strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	Storage                     string         `json:"storage"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	RedisURI                    string         `json:"redis_uri"`
	RegistrationGuardTTL        timex.Duration `json:"registration_guard_ttl"`
	AMQPURL                     string         `json:"amqp_url"`
	NotificationQueue           string         `json:"notification_queue"`
	SiteName                    string         `json:"site_name"`
	LoginURL                    string         `json:"login_url"`
	AdminEmail                  string         `json:"admin_email"`
	AdminUserName               string         `json:"admin_username"`
	AdminPassword               string         `json:"admin_password"`
	AllowedOrigins              []string       `json:"allowed_origins"`
	BatchSize                   int            `json:"batch_size"`
	InstallBackfill             bool           `json:"install_backfill"`
	LogLevel                    string         `json:"log_level"`
	SMTPAddr                    string         `json:"smtp_addr"`
	SMTPFrom                    string         `json:"smtp_from"`
	SMTPUser                    string         `json:"smtp_user"`
	SMTPPassword                string         `json:"smtp_password"`
}

// parseJson overlays the JSON file named by -c / -config onto config. Only
// fields present with a non-zero value replace the current ones. Without the
// flag nothing is loaded; an unreadable or invalid file panics.
func parseJson(config *Config, args []string) {
	path := flagx.Lookup(args, "c", "config")
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.Storage, c.Storage)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.RedisURI, c.RedisURI)
	if c.RegistrationGuardTTL.Duration != 0 {
		config.RegistrationGuardTTL = c.RegistrationGuardTTL.Duration
	}
	setString(&config.AMQPURL, c.AMQPURL)
	setString(&config.NotificationQueue, c.NotificationQueue)
	setString(&config.SiteName, c.SiteName)
	setString(&config.LoginURL, c.LoginURL)
	setString(&config.AdminEmail, c.AdminEmail)
	setString(&config.AdminUserName, c.AdminUserName)
	setString(&config.AdminPassword, c.AdminPassword)
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.BatchSize > 0 {
		config.BatchSize = c.BatchSize
	}
	if c.InstallBackfill {
		config.InstallBackfill = true
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.SMTPAddr, c.SMTPAddr)
	setString(&config.SMTPFrom, c.SMTPFrom)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
