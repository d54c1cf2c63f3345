package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/activationgate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Arguments it does not know about are dropped with flagx.FilterArgs so the
// subcommand and its operands do not make parsing fail.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-u"})
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.UserName, "u", cfg.UserName, "administrator username")
	if err := fs.Parse(args); err != nil {
		panic(err)
	}
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
