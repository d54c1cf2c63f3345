package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/activationgate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-w string   HTTP bind address of the login form (e.g. ":8080")
//	-m string   storage backend: postgres | memory
//	-d string   PostgreSQL DSN
//	-s string   access token HMAC secret
//	-t int      access token validity, minutes
//	-r string   Redis URI for the registration guard
//	-q string   AMQP URL for the notification queue
//	-b int      backfill/cleanup batch size
//	-install-backfill
//	            run the install backfill at startup
//	-l string   log level
//
// Other arguments are filtered out with flagx.FilterArgs so that -c and -env
// handled elsewhere do not make parsing fail.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-w", "-m", "-d", "-s", "-t", "-r", "-q", "-b", "-l", "-install-backfill"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port of the gRPC API")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "address and port of the login form")
	fs.StringVar(&config.Storage, "m", config.Storage, "storage backend (postgres|memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.StringVar(&config.RedisURI, "r", config.RedisURI, "redis URI")
	fs.StringVar(&config.AMQPURL, "q", config.AMQPURL, "AMQP URL")
	fs.IntVar(&config.BatchSize, "b", config.BatchSize, "backfill/cleanup batch size")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.InstallBackfill, "install-backfill", config.InstallBackfill, "mark accounts without an activation code as activated at startup")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
}
