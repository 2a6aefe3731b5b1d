package config

import (
	"log"
	"os"
)

type Config struct {
	MySQLDSN          string
	RedisURL          string
	JWTSecret         string
	Port              string
	OpenAIKey         string // empty disables AI diff summaries
	BootstrapEmail    string
	BootstrapPassword string
	AllowedOrigins    []string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	return Config{
		MySQLDSN:          getenv("MYSQL_DSN", "panel:panel@tcp(127.0.0.1:3306)/panel?parseTime=true"),
		RedisURL:          getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		JWTSecret:         getenv("JWT_SECRET", ""),
		Port:              getenv("PORT", "8080"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		BootstrapEmail:    getenv("BOOTSTRAP_EMAIL", "admin@harborview.partners"),
		BootstrapPassword: os.Getenv("BOOTSTRAP_PASSWORD"), // optional; only read until the first member exists
		AllowedOrigins:    []string{"http://localhost:3000", "https://panel.harborview.partners"},
	}
}
