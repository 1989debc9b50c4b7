package config

import (
	"encoding/json"
	"os"
	"time"

	"postboard/internal/flagx"
	"postboard/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON config
// files. After unmarshalling, its fields are copied into the runtime
// Config struct which uses time.Duration.
type JsonConfig struct {
	StoreBackend   string         `json:"store_backend"`
	DatabaseDSN    string         `json:"database_dsn"`
	AuthSecret     string         `json:"auth_secret"`
	SubmitTimeout  timex.Duration `json:"submit_timeout"`
	S3AccessKey    string         `json:"s3_access_key"`
	S3SecretKey    string         `json:"s3_secret_key"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
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

	config.StoreBackend = c.StoreBackend
	config.DatabaseDSN = c.DatabaseDSN
	config.AuthSecret = c.AuthSecret
	config.SubmitTimeout = time.Duration(c.SubmitTimeout.Duration)
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
