package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBUrl          string
	Port           string
	JWTSecret      string
	CookieSecure   bool
	AllowedOrigins []string
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found, using environment defaults")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default-secret-key-change-in-production"
		log.Println("JWT_SECRET not set, using default key")
	}

	origins := []string{"http://localhost:5173", "http://localhost:5174"}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return Config{
		DBUrl:          os.Getenv("DB_URL"),
		Port:           port,
		JWTSecret:      secret,
		CookieSecure:   os.Getenv("COOKIE_SECURE") == "true",
		AllowedOrigins: origins,
	}
}
