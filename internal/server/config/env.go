package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from DAYBOOK_* environment variables. A .env file
// in the working directory is loaded first when present; real environment
// variables take precedence over it (godotenv never overwrites).
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString("DAYBOOK_ADDRESS", &config.EndpointAddr)
	setString("DAYBOOK_DATABASE_DSN", &config.DatabaseDSN)
	setString("DAYBOOK_SECRET_KEY", &config.SecretKey)
	setDuration("DAYBOOK_ACCESS_TOKEN_VALIDITY", &config.AccessTokenValidityDuration)
	setDuration("DAYBOOK_REFRESH_TOKEN_VALIDITY", &config.RefreshTokenValidityDuration)
	setString("DAYBOOK_S3_ROOT_USER", &config.S3RootUser)
	setString("DAYBOOK_S3_ROOT_PASSWORD", &config.S3RootPassword)
	setString("DAYBOOK_S3_BUCKET", &config.S3Bucket)
	setString("DAYBOOK_S3_REGION", &config.S3Region)
	setString("DAYBOOK_S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	setDuration("DAYBOOK_SIGNED_URL_TTL", &config.SignedURLTTL)
	setString("DAYBOOK_GEOCODING_BASE_URL", &config.GeocodingBaseURL)
	setString("DAYBOOK_WEATHER_BASE_URL", &config.WeatherBaseURL)
}
