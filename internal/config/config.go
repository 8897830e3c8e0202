// internal/config/config.go
package config

import (
	"log"

	"github.com/spf13/viper"
)

type APIConfig struct {
	BaseURL string `mapstructure:"base_url"` // RESTバックエンドのベースURL (例: http://localhost/api/v1)
}

type MemorizationConfig struct {
	WSURL          string `mapstructure:"ws_url"`           // 学習セッション用WebSocketエンドポイント
	FlipDurationMs int    `mapstructure:"flip_duration_ms"` // フリップアニメーションの合計時間(ミリ秒)
}

type KeycloakConfig struct {
	URL      string `mapstructure:"url"`       // KeycloakサーバーURL
	Realm    string `mapstructure:"realm"`     // レルム名
	ClientID string `mapstructure:"client_id"` // クライアントID
	Username string `mapstructure:"username"`  // Direct Access Grant 用 (環境変数での指定を推奨)
	Password string `mapstructure:"password"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StubConfig struct {
	Port string `mapstructure:"port"` // スタブサーバーの待ち受けポート
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type Config struct {
	API          APIConfig          `mapstructure:"api"`
	Memorization MemorizationConfig `mapstructure:"memorization"`
	Keycloak     KeycloakConfig     `mapstructure:"keycloak"`
	Log          LogConfig          `mapstructure:"log"`
	Stub         StubConfig         `mapstructure:"stub"`
	CORS         CORSConfig         `mapstructure:"cors"`
}

var Cfg Config

func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	// 環境変数からの上書き (例: APP_KEYCLOAK_PASSWORD)
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("keycloak.username", "APP_KEYCLOAK_USERNAME")
	viper.BindEnv("keycloak.password", "APP_KEYCLOAK_PASSWORD")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	// --- デフォルト値の設定 ---
	if Cfg.API.BaseURL == "" {
		log.Printf("API base URL not set, using default '%s'", DefaultAPIBaseURL)
		Cfg.API.BaseURL = DefaultAPIBaseURL
	}
	if Cfg.Memorization.WSURL == "" {
		log.Printf("Memorization WS URL not set, using default '%s'", DefaultMemorizationWSURL)
		Cfg.Memorization.WSURL = DefaultMemorizationWSURL
	}
	if Cfg.Memorization.FlipDurationMs <= 0 {
		log.Printf("Flip duration not set or invalid, using default '%d'", DefaultFlipDurationMs)
		Cfg.Memorization.FlipDurationMs = DefaultFlipDurationMs
	}
	if Cfg.Keycloak.URL == "" {
		Cfg.Keycloak.URL = DefaultKeycloakURL
	}
	if Cfg.Keycloak.Realm == "" {
		Cfg.Keycloak.Realm = DefaultKeycloakRealm
	}
	if Cfg.Keycloak.ClientID == "" {
		Cfg.Keycloak.ClientID = DefaultKeycloakClientID
	}
	if Cfg.Log.Level == "" {
		Cfg.Log.Level = DefaultLogLevel
	}
	if Cfg.Stub.Port == "" {
		Cfg.Stub.Port = DefaultStubPort
	}

	log.Println("Config loaded successfully")
	log.Printf("API Base URL: %s", Cfg.API.BaseURL)
	log.Printf("Memorization WS URL: %s", Cfg.Memorization.WSURL)
	log.Printf("Flip Duration: %dms", Cfg.Memorization.FlipDurationMs)

	return nil
}
