package config

import (
	"database/sql"
	_ "github.com/lib/pq"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"strings"
	"time"
)

type Config struct {
	MinIOBucket string        `yaml:"minio_bucket"`
	App         App           `yaml:"app"`
	DB          *sql.DB       `yaml:"db"`
	Queue       *RabbitMQ     `yaml:"rabbitmq"`
	Storage     *minio.Client `yaml:"storage"`
	Redis       *redis.Client `yaml:"redis"`
	Server      Server        `yaml:"server"`
	SMTP        SMTP          `yaml:"smtp"`
	Auth        Auth          `yaml:"auth"`
	Analytics   Analytics     `yaml:"analytics"`
	Admins      []string      `yaml:"admins"`
}

type App struct {
	Environment   string `yaml:"environment"`
	Host          string `yaml:"host"`
	Protocol      string `yaml:"protocol"`
	DashboardPath string `yaml:"dashboard_path"`
	MediaBaseURL  string `yaml:"media_base_url"`
}

// BaseURL is the public address of the front end, used in emailed links.
func (a App) BaseURL() string {
	return a.Protocol + "://" + a.Host
}

type Server struct {
	HttpPort       string   `yaml:"http_port"`
	Workers        int      `yaml:"workers"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RabbitMQ struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Pass         string `json:"pass"`
	ExchangeName string `json:"exchange_name"`
	Kind         string `json:"kind"`
}

type SMTP struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Pass      string `yaml:"pass"`
	FromName  string `yaml:"from_name"`
	FromEmail string `yaml:"from_email"`
}

type Auth struct {
	JWTSecret       string        `yaml:"jwt_secret"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	OIDCProviderURL string        `yaml:"oidc_provider_url"`
	OIDCClientID    string        `yaml:"oidc_client_id"`
}

type Analytics struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

func Load(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("portal")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", viper.GetString("postgresql_host"))
	if err != nil {
		return nil, err
	}

	rabbitmq := &RabbitMQ{
		Host: viper.GetString("rabbitmq_host"),
		Port: viper.GetInt("rabbitmq_port"),
		User: viper.GetString("rabbitmq_user"),
		Pass: viper.GetString("rabbitmq_pass"),
		Kind: viper.GetString("rabbitmq_kind"),
	}

	minioClient, err := minio.New(viper.GetString("minio.url"), &minio.Options{
		Creds:  credentials.NewStaticV4(viper.GetString("minio.access_id"), viper.GetString("minio.secret_access_key"), ""),
		Secure: viper.GetBool("minio.secure"),
	})
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	if addr := viper.GetString("redis.addr"); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		})
	}

	return &Config{
		MinIOBucket: viper.GetString("minio.bucket"),
		App: App{
			Environment:   viper.GetString("app.environment"),
			Host:          viper.GetString("app.host"),
			Protocol:      viper.GetString("app.protocol"),
			DashboardPath: viper.GetString("app.dashboard_path"),
			MediaBaseURL:  strings.TrimRight(viper.GetString("app.media_base_url"), "/"),
		},
		Server: Server{
			HttpPort:       viper.GetString("server.port"),
			Workers:        viper.GetInt("server.workers"),
			AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
		},
		SMTP: SMTP{
			Host:      viper.GetString("smtp.host"),
			Port:      viper.GetInt("smtp.port"),
			User:      viper.GetString("smtp.user"),
			Pass:      viper.GetString("smtp.pass"),
			FromName:  viper.GetString("smtp.from_name"),
			FromEmail: viper.GetString("smtp.from_email"),
		},
		Auth: Auth{
			JWTSecret:       viper.GetString("auth.jwt_secret"),
			TokenTTL:        viper.GetDuration("auth.token_ttl"),
			OIDCProviderURL: viper.GetString("auth.oidc_provider_url"),
			OIDCClientID:    viper.GetString("auth.oidc_client_id"),
		},
		Analytics: Analytics{
			CacheTTL: viper.GetDuration("analytics.cache_ttl"),
		},
		Admins:  viper.GetStringSlice("admins"),
		DB:      db,
		Queue:   rabbitmq,
		Storage: minioClient,
		Redis:   redisClient,
	}, nil
}

func setDefaults() {
	viper.SetDefault("app.environment", "develop")
	viper.SetDefault("app.protocol", "http")
	viper.SetDefault("app.dashboard_path", "/dashboard")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.workers", 4)
	viper.SetDefault("rabbitmq_kind", "direct")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("auth.token_ttl", 24*time.Hour)
	viper.SetDefault("analytics.cache_ttl", 30*time.Second)
}
