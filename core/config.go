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
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		DefaultFromEmail mail.Address
		RollbarToken     string
		SendgridApiKey   string

		Server    ServerConfig
		Dashboard DashboardConfig
		Fetch     FetchConfig
		Storage   StorageConfig
		Database  DatabaseConfig
		SFTP      SFTPConfig
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	// DashboardConfig holds the single dashboard account allowed to log in.
	DashboardConfig struct {
		Username     string
		Password     string // plain text; only used when PasswordHash is empty
		PasswordHash string // bcrypt
		PageSize     int
	}

	// FetchConfig describes the remote employee data source.
	FetchConfig struct {
		URL          string
		Username     string
		Password     string
		PayloadPath  string
		Timeout      time.Duration
		MaxAttempts  int
		RetryBackoff time.Duration
	}

	StorageConfig struct {
		Driver string // memory | file | postgres
		Path   string
	}

	DatabaseConfig struct {
		Engine     string
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	SFTPConfig struct {
		Host      string
		Port      int
		User      string
		Password  string
		RemoteDir string
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

// NewConfig loads the configuration from defaults, `config/.env.<env>` and the environment.
// Environment variables are prefixed with the upper-cased env name, eg. DEV_SECRETKEY.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Staffdesk")
	v.SetDefault("secretKey", "k2v9-ld0)w!x7+h_q4$rzm=0u@8c#t1p(a6ny3e^b5jg")
	v.SetDefault("defaultFromEmail", "noreply@localhost")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 7*24*time.Hour)

	v.SetDefault("dashboard.username", "testuser")
	v.SetDefault("dashboard.password", "Test123")
	v.SetDefault("dashboard.passwordHash", "")
	v.SetDefault("dashboard.pageSize", 10)

	v.SetDefault("fetch.url", "https://backend.jotish.in/backend_dev/gettabledata.php")
	v.SetDefault("fetch.username", "test")
	v.SetDefault("fetch.password", "123456")
	v.SetDefault("fetch.payloadPath", "TABLE_DATA.data")
	v.SetDefault("fetch.timeout", 20*time.Second)
	v.SetDefault("fetch.maxAttempts", 4)
	v.SetDefault("fetch.retryBackoff", 500*time.Millisecond)

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", filepath.Join(os.TempDir(), "staffdesk.json"))

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "staffdesk")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("sftp.port", 22)
	v.SetDefault("sftp.remoteDir", "/reports")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(configDir(), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),

		SendgridApiKey: v.GetString("sendgridApiKey"),

		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Address:                   v.GetString("server.address"),
			DebugHost:                 v.GetString("server.debugHost"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Dashboard: DashboardConfig{
			Username:     v.GetString("dashboard.username"),
			Password:     v.GetString("dashboard.password"),
			PasswordHash: v.GetString("dashboard.passwordHash"),
			PageSize:     v.GetInt("dashboard.pageSize"),
		},
		Fetch: FetchConfig{
			URL:          v.GetString("fetch.url"),
			Username:     v.GetString("fetch.username"),
			Password:     v.GetString("fetch.password"),
			PayloadPath:  v.GetString("fetch.payloadPath"),
			Timeout:      v.GetDuration("fetch.timeout"),
			MaxAttempts:  v.GetInt("fetch.maxAttempts"),
			RetryBackoff: v.GetDuration("fetch.retryBackoff"),
		},
		Storage: StorageConfig{
			Driver: v.GetString("storage.driver"),
			Path:   v.GetString("storage.path"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("database.engine"),
			Host:       v.GetString("database.host"),
			Port:       v.GetString("database.port"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		SFTP: SFTPConfig{
			Host:      v.GetString("sftp.host"),
			Port:      v.GetInt("sftp.port"),
			User:      v.GetString("sftp.user"),
			Password:  v.GetString("sftp.password"),
			RemoteDir: v.GetString("sftp.remoteDir"),
		},
	}

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatal(fmt.Errorf("config.defaultFromEmail: %v", err))
	}
	conf.DefaultFromEmail = *from
	return conf
}

// configDir returns the directory holding the .env files.
// CONFIG_DIR takes precedence over `./config`.
func configDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	return filepath.Join(wd, "config")
}
