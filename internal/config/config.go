package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// Firebase (push e verificação de identidade)
	FirebaseCredentialsPath string

	// Alert Engine
	DefaultAlertMessage string
	DispatchTimeout     time.Duration // orçamento total do fan-out
	ChannelTimeout      time.Duration // timeout por tentativa de entrega
	LocationTimeout     time.Duration // timeout da posição do dispositivo
	GeocodeTimeout      time.Duration // timeout do geocoding reverso

	// Workers
	TokenCheckInterval time.Duration

	// SMTP (canal de email)
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromName  string
	SMTPFromEmail string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️  Info: Ficheiro .env não encontrado ou não pôde ser carregado. Lendo variáveis de ambiente do sistema.")
	}

	return &Config{
		// Server
		Port:        getEnvWithDefault("PORT", "8080"),
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Firebase
		FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),

		// Alert Engine
		DefaultAlertMessage: getEnvWithDefault("DEFAULT_ALERT_MESSAGE", "Preciso de ajuda urgente!"),
		DispatchTimeout:     getEnvSeconds("DISPATCH_TIMEOUT_SECONDS", 10),
		ChannelTimeout:      getEnvSeconds("CHANNEL_TIMEOUT_SECONDS", 5),
		LocationTimeout:     getEnvSeconds("LOCATION_TIMEOUT_SECONDS", 3),
		GeocodeTimeout:      getEnvSeconds("GEOCODE_TIMEOUT_SECONDS", 2),

		// Workers
		TokenCheckInterval: time.Duration(getEnvInt("TOKEN_CHECK_INTERVAL_MINUTES", 30)) * time.Minute,

		// SMTP
		SMTPHost:      getEnvWithDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFromName:  getEnvWithDefault("SMTP_FROM_NAME", "Amparo - Rede de Apoio"),
		SMTPFromEmail: getEnvWithDefault("SMTP_FROM_EMAIL", "alertas@amparo.app"),
	}, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intValue int
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Second
}

// Validate valida se todas as configurações obrigatórias estão presentes
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.DispatchTimeout <= 0 || c.ChannelTimeout <= 0 {
		return fmt.Errorf("dispatch and channel timeouts must be positive")
	}

	if c.ChannelTimeout > c.DispatchTimeout {
		return fmt.Errorf("CHANNEL_TIMEOUT_SECONDS cannot exceed DISPATCH_TIMEOUT_SECONDS")
	}

	if c.FirebaseCredentialsPath == "" {
		log.Println("⚠️  FIREBASE_CREDENTIALS_PATH não configurado: push e verificação de identidade indisponíveis")
	}

	if c.SMTPUsername == "" || c.SMTPPassword == "" {
		log.Println("⚠️  Credenciais SMTP não configuradas: canal de email indisponível")
	}

	return nil
}
