package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName          string
		Build            string
		Env              string // DEV (local; default), TEST, QA, PROD
		Debug            bool
		TestMode         bool
		SecretKey        string
		AdminEmail       string
		Timezone         string
		FrontendBaseURL  string
		defaultFromEmail string

		Server    ServerConfig
		Database  DatabaseConfig
		Redis     RedisConfig
		Attention AttentionConfig
		Meeting   MeetingConfig

		CalendlySigningKey string
		RollbarToken       string
		SendgridApiKey     string
	}

	ServerConfig struct {
		Host               string
		Address            string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTIssuer          string
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine         string // mongodb | inmem
		URI            string
		Name           string
		ConnectTimeout time.Duration
	}

	RedisConfig struct {
		URL         string
		OverviewTTL time.Duration
	}

	// AttentionConfig holds the thresholds of the "needs attention" heuristic.
	AttentionConfig struct {
		ReflectionStaleDays int
		HighPriorityReasons int
		MissedMeetingsLimit int
	}

	MeetingConfig struct {
		MissedGrace time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", false)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Independent Study")
	v.SetDefault("secretKey", "vj3#k9=u!1b8xq*e2m@^p0(zs6c)w7h4d5n$ra+tl-fy_go")
	v.SetDefault("adminEmail", "")
	v.SetDefault("timezone", "America/Los_Angeles")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverDebugHost", "localhost:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtIssuer", "istudy")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("dbEngine", "mongodb")
	v.SetDefault("dbURI", "mongodb://localhost:27017")
	v.SetDefault("dbName", "istudy")
	v.SetDefault("dbConnectTimeout", 10*time.Second)
	v.SetDefault("redisURL", "")
	v.SetDefault("redisOverviewTTL", time.Minute)
	v.SetDefault("attentionReflectionStaleDays", 14)
	v.SetDefault("attentionHighPriorityReasons", 2)
	v.SetDefault("attentionMissedMeetingsLimit", 2)
	v.SetDefault("meetingMissedGrace", 24*time.Hour)
	v.SetDefault("calendlySigningKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "", "DEV":
		env = "DEV"
		v.SetDefault("debug", true)
	case "TEST":
		v.SetDefault("debug", true)
		v.SetDefault("testMode", true)
		v.SetDefault("dbEngine", "inmem")
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		SecretKey:        v.GetString("secretKey"),
		AdminEmail:       CleanString(v.GetString("adminEmail"), true /* lower */),
		Timezone:         v.GetString("timezone"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			Address:            v.GetString("serverAddress"),
			DebugHost:          v.GetString("serverDebugHost"),
			ShutdownTimeout:    v.GetDuration("serverShutdownTimeout"),
			JWTIssuer:          v.GetString("jwtIssuer"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:         v.GetString("dbEngine"),
			URI:            v.GetString("dbURI"),
			Name:           v.GetString("dbName"),
			ConnectTimeout: v.GetDuration("dbConnectTimeout"),
		},
		Redis: RedisConfig{
			URL:         v.GetString("redisURL"),
			OverviewTTL: v.GetDuration("redisOverviewTTL"),
		},
		Attention: AttentionConfig{
			ReflectionStaleDays: v.GetInt("attentionReflectionStaleDays"),
			HighPriorityReasons: v.GetInt("attentionHighPriorityReasons"),
			MissedMeetingsLimit: v.GetInt("attentionMissedMeetingsLimit"),
		},
		Meeting: MeetingConfig{
			MissedGrace: v.GetDuration("meetingMissedGrace"),
		},
		CalendlySigningKey: v.GetString("calendlySigningKey"),
		RollbarToken:       v.GetString("rollbarToken"),
		SendgridApiKey:     v.GetString("sendgridApiKey"),
	}
}

// DefaultFromEmail parses the configured sender. A malformed value falls back to a bare address.
func (conf *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(conf.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: conf.AppName, Address: conf.defaultFromEmail}
	}
	if addr.Name == "" {
		addr.Name = conf.AppName
	}
	return *addr
}

// IsProduction reports whether the process runs with ENV=PROD.
func (conf *Config) IsProduction() bool {
	return conf.Env == "PROD"
}

// AllowsIdentitySignIn reports whether the API may mint tokens for a posted identity.
// It never does in production, whatever the debug flag says.
func (conf *Config) AllowsIdentitySignIn() bool {
	return !conf.IsProduction() && (conf.Debug || conf.TestMode)
}

// IsAdminEmail reports whether email is the configured admin address.
func (conf *Config) IsAdminEmail(email string) bool {
	return conf.AdminEmail != "" && CleanString(email, true /* lower */) == conf.AdminEmail
}
