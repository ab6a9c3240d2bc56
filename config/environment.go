package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Environment struct {
	DBDriver string
	DBPath   string
	DBURL    string
	Port     string

	AllowedOrigins []string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	GitHubToken  string
	GitHubAPIURL string
	GistID       string
}

// AuthEnabled reports whether API requests must carry a bearer token.
func (e *Environment) AuthEnabled() bool {
	return e.JWTSecret != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "engcard.db")
	v.SetDefault("DB_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("JWT_ISSUER", "engcard-api")
	v.SetDefault("JWT_AUDIENCE", "engcard")
	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("GITHUB_API_URL", "https://api.github.com")
	v.SetDefault("GIST_ID", "")
}

// Load reads .env (if present) and the process environment. Flags bound to
// v by the CLI take precedence over both.
func Load(v *viper.Viper) *Environment {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using process environment: %v", err)
	}

	if v == nil {
		v = viper.New()
	}
	setDefaults(v)
	v.AutomaticEnv()

	return &Environment{
		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DBPath:         v.GetString("DB_PATH"),
		DBURL:          v.GetString("DB_URL"),
		Port:           v.GetString("PORT"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		JWTSecret:      v.GetString("JWT_SECRET_KEY"),
		JWTIssuer:      v.GetString("JWT_ISSUER"),
		JWTAudience:    v.GetString("JWT_AUDIENCE"),
		GitHubToken:    v.GetString("GITHUB_TOKEN"),
		GitHubAPIURL:   v.GetString("GITHUB_API_URL"),
		GistID:         v.GetString("GIST_ID"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
