package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/outfitcal/daybook/internal/flagx"
	"github.com/outfitcal/daybook/internal/timex"
)

// JsonConfig is the DTO used only for reading JSON configuration files.
// Interval fields use timex.Duration, which accepts both "15m"-style
// strings and integer nanoseconds. After unmarshalling, set values are
// copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr                 *string         `json:"endpoint_addr"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   *string         `json:"s3_root_user"`
	S3RootPassword               *string         `json:"s3_root_password"`
	S3Bucket                     *string         `json:"s3_bucket"`
	S3Region                     *string         `json:"s3_region"`
	S3BaseEndpoint               *string         `json:"s3_base_endpoint"`
	SignedURLTTL                 *timex.Duration `json:"signed_url_ttl"`
	GeocodingBaseURL             *string         `json:"geocoding_base_url"`
	WeatherBaseURL               *string         `json:"weather_base_url"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. Fields absent from the file
// keep their current values. An unreadable or invalid file panics, since
// an explicitly requested config file that cannot be used is fatal.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != nil {
		config.EndpointAddr = *c.EndpointAddr
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	}
	if c.S3RootUser != nil {
		config.S3RootUser = *c.S3RootUser
	}
	if c.S3RootPassword != nil {
		config.S3RootPassword = *c.S3RootPassword
	}
	if c.S3Bucket != nil {
		config.S3Bucket = *c.S3Bucket
	}
	if c.S3Region != nil {
		config.S3Region = *c.S3Region
	}
	if c.S3BaseEndpoint != nil {
		config.S3BaseEndpoint = *c.S3BaseEndpoint
	}
	if c.SignedURLTTL != nil {
		config.SignedURLTTL = time.Duration(c.SignedURLTTL.Duration)
	}
	if c.GeocodingBaseURL != nil {
		config.GeocodingBaseURL = *c.GeocodingBaseURL
	}
	if c.WeatherBaseURL != nil {
		config.WeatherBaseURL = *c.WeatherBaseURL
	}
}
