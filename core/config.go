package core

import (
	"fmt"
	"log"
	"net"
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
		WorkDir          string
		SecretKey        string
		FrontendBaseURL  string
		RollbarToken     string
		SendgridApiKey   string
		defaultFromEmail string

		PasswordResetTimeoutDelta time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Schedule ScheduleConfig
	}

	ServerConfig struct {
		Host                      string
		Port                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	ScheduleConfig struct {
		Rows       int // shift slots per day
		OriginX    float64
		OriginY    float64
		CellWidth  float64
		CellHeight float64
		Gap        float64
	}
)

// NewConfig loads the configuration of the current environment.
// Values are read from `config/.env.<env>` (if present) then from the environment, prefixed by the env name.
// eg: DEV_DATABASE_HOST
func NewConfig() *Config {
	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	wd := Getwd()

	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v, env)
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{
		AppName:                   v.GetString("app.name"),
		Build:                     v.GetString("app.build"),
		Env:                       env,
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("test_mode"),
		WorkDir:                   wd,
		SecretKey:                 v.GetString("secret_key"),
		FrontendBaseURL:           v.GetString("frontend_base_url"),
		RollbarToken:              v.GetString("rollbar_token"),
		SendgridApiKey:            v.GetString("sendgrid_api_key"),
		defaultFromEmail:          v.GetString("default_from_email"),
		PasswordResetTimeoutDelta: v.GetDuration("password_reset_timeout"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Port:                      v.GetString("server.port"),
			DebugHost:                 v.GetString("server.debug_host"),
			ShutdownTimeout:           v.GetDuration("server.shutdown_timeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwt_expiration"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwt_refresh_expiration"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.admin_user"),
			AdminPassword: v.GetString("database.admin_password"),
			DisableTLS:    v.GetBool("database.disable_tls"),
		},
		Schedule: ScheduleConfig{
			Rows:       v.GetInt("schedule.rows"),
			OriginX:    v.GetFloat64("schedule.origin_x"),
			OriginY:    v.GetFloat64("schedule.origin_y"),
			CellWidth:  v.GetFloat64("schedule.cell_width"),
			CellHeight: v.GetFloat64("schedule.cell_height"),
			Gap:        v.GetFloat64("schedule.gap"),
		},
	}
}

func setDefaults(v *viper.Viper, env string) {
	v.SetDefault("debug", env == "DEV" || env == "TEST")
	v.SetDefault("test_mode", env == "TEST")
	v.SetDefault("app.name", "Rota")
	v.SetDefault("app.build", "develop")
	v.SetDefault("secret_key", "k1d#m8-2oq^s@v(4wz!n7tx*0b)y%3hj+e6l&c9p$r5g=u")
	v.SetDefault("frontend_base_url", "http://localhost:3000")
	v.SetDefault("default_from_email", "Rota <noreply@localhost>")
	v.SetDefault("rollbar_token", "")
	v.SetDefault("sendgrid_api_key", "")
	v.SetDefault("password_reset_timeout", 3*24*time.Hour)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.debug_host", "0.0.0.0:4000")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.jwt_expiration", 7*24*time.Hour)
	v.SetDefault("server.jwt_refresh_expiration", 4*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "rota")
	v.SetDefault("database.user", "rota")
	v.SetDefault("database.password", "rota")
	v.SetDefault("database.admin_user", "")
	v.SetDefault("database.admin_password", "")
	v.SetDefault("database.disable_tls", env == "DEV" || env == "TEST")

	v.SetDefault("schedule.rows", 4)
	v.SetDefault("schedule.origin_x", 0.0)
	v.SetDefault("schedule.origin_y", 0.0)
	v.SetDefault("schedule.cell_width", 120.0)
	v.SetDefault("schedule.cell_height", 64.0)
	v.SetDefault("schedule.gap", 4.0)
}

func (conf *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(conf.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: conf.AppName, Address: conf.defaultFromEmail}
	}
	return *addr
}

func (conf *Config) SetDefaultFromEmail(email string) {
	conf.defaultFromEmail = email
}

func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, s.Port)
}

func (d DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%s", d.Host, d.Port)
}

// NewTestConfig returns a config suitable for tests; nothing is read from the environment.
func NewTestConfig() *Config {
	return &Config{
		AppName:                   "Rota",
		Build:                     "test",
		Env:                       "TEST",
		Debug:                     false,
		TestMode:                  true,
		SecretKey:                 "secret",
		FrontendBaseURL:           "http://localhost:3000",
		defaultFromEmail:          "Rota <noreply@localhost>",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: ServerConfig{
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Schedule: ScheduleConfig{
			Rows:       4,
			CellWidth:  100,
			CellHeight: 50,
			Gap:        10,
		},
	}
}
