package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/filekeeper/internal/flagx"
	"github.com/dmitrijs2005/filekeeper/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON
// configuration files. It uses timex.Duration for interval fields, which
// allows parsing both string values such as "5s" and integer nanoseconds.
// After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr    string         `json:"endpoint_addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	StorageRoot     string         `json:"storage_root"`
	MaxUploadBytes  int64          `json:"max_upload_bytes"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; if neither
// is set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics: a broken config file must abort
// startup visibly rather than run with half-applied settings.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.StorageRoot = c.StorageRoot
	config.MaxUploadBytes = c.MaxUploadBytes
	config.ShutdownTimeout = c.ShutdownTimeout.Duration
}
