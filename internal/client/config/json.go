package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/activationgate/internal/flagx"
	"github.com/dmitrijs2005/activationgate/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	UserName           string         `json:"username"`
}

// parseJson overlays Config with values loaded from the file named by -c or
// -config. Without the flag nothing is loaded. Read and unmarshal errors
// panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.Lookup(args, "c", "config")
	if path == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.UserName != "" {
		cfg.UserName = jc.UserName
	}
}
