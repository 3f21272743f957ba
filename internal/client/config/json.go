package config

import (
	"encoding/json"
	"os"

	"github.com/outfitcal/daybook/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Parsed
// values are copied into the runtime Config.
type JsonConfig struct {
	ServerEndpointAddr string `json:"server_endpoint_addr"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c or -config flag; when absent nothing is loaded.
// Read or unmarshal errors panic, callers should recover if desired.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
}
