package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`
	Port   string `envconfig:"PORT" default:"8080"`

	MongoURI        string `envconfig:"MONGODB_URI" required:"true"`
	MongoDatabase   string `envconfig:"MONGODB_NAME" required:"true"`
	MongoCollection string `envconfig:"MONGODB_COLLECTION" default:"registrations"`

	CentiivBaseURL string `envconfig:"CENTIIV_BASE_URL" required:"true"`
	CentiivAPIKey  string `envconfig:"CENTIIV_API_KEY" required:"true"`

	AllowedOrigin      string `envconfig:"ALLOWED_ORIGIN" default:"https://opolo-global.vercel.app"`
	PaymentCallbackURL string `envconfig:"PAYMENT_CALLBACK_URL" default:"https://opolo-global.vercel.app/payment-status"`
	PaymentWebhookURL  string `envconfig:"PAYMENT_WEBHOOK_URL" default:"https://opolo-api.vercel.app/webhook/payment"`

	GatewayTimeout  time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"15s"`
	StoreTimeout    time.Duration `envconfig:"STORE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// LoadEnvFile loads .env.development or .env.production into the process
// environment depending on APP_ENV. Variables already set are not overridden.
func LoadEnvFile() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	file := ".env.production"
	if env == "development" {
		file = ".env.development"
	}

	if err := godotenv.Load(file); err != nil {
		log.Printf("WARN: could not load %s, using system environment", file)
	}
}

func Load() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
