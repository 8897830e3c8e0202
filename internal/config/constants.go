// internal/config/constants.go
package config

// アプリケーション情報
const (
	AppName    = "VocabMemorize"
	AppVersion = "0.3.1"
)

// デフォルト設定値
const (
	DefaultAPIBaseURL        = "http://localhost/api/v1"
	DefaultMemorizationWSURL = "ws://localhost:8080/ws-memorization"
	DefaultFlipDurationMs    = 1800 // カードの裏返しアニメーション合計時間
	DefaultKeycloakURL       = "http://localhost:8180"
	DefaultKeycloakRealm     = "english-course"
	DefaultKeycloakClientID  = "english-course-frontend"
	DefaultLogLevel          = "info"
	DefaultStubPort          = ":8080"
)
