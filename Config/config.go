package Config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config is loaded once in main and handed to the packages that need it,
// nothing reads the environment after startup.
type Config struct {
	Port string `env:"PORT" envDefault:"3005"`

	Database struct {
		Host     string `env:"DB_HOST" envDefault:"localhost"`
		User     string `env:"DB_USER"`
		Password string `env:"DB_PASSWORD"`
		Name     string `env:"DB_NAME"`
		Port     string `env:"DB_PORT" envDefault:"5432"`
	}

	Auth struct {
		APISecret     string `env:"API_SECRET"`
		TokenLifespan int    `env:"TOKEN_HOUR_LIFESPAN" envDefault:"24"`
	}

	Whatsapp struct {
		GatewayURL string `env:"WHATSAPP_GO_SERVICE"`
		BotID      string `env:"GREEN_API_INSTANCE"`
		BotToken   string `env:"GREEN_API_TOKEN"`
	}

	Firebase struct {
		ServiceAccountPath string `env:"FIREBASE_SERVICE_ACCOUNT_PATH"`
	}

	Dispatch struct {
		// Default wait between waterfall sends, overridable per job.
		WaterfallIntervalMinutes int `env:"WATERFALL_INTERVAL_MINUTES" envDefault:"5"`
		MatchCacheSize           int `env:"MATCH_CACHE_SIZE" envDefault:"256"`
	}

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
