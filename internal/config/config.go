package config

import (
	"log"
	"os"
	"time"
)

var Version = "dev"

var (
	Port    string
	EnvMode string

	TelegramToken string
	APISecret     string

	DatabasePath string
	DownloadDir  string

	AlertWebhookURL string
	AlertPingUserID string
	Alerts          bool
)

const (
	// Daily download quotas, counted against a calendar-day UTC cutoff.
	GuestDailyLimit = 10
	UserDailyLimit  = 25

	// Videos at or above this size are sent as documents instead of
	// inline video; the inline path re-encodes and rejects large payloads.
	VideoSizeCeiling = 50 * 1024 * 1024

	MaxVideoHeight = 720

	// ExtractTimeout bounds a single yt-dlp run. FileRetention must stay
	// above it so the janitor never sweeps an in-flight scratch dir.
	ExtractTimeout  = 15 * time.Minute
	JanitorInterval = 5 * time.Minute
	FileRetention   = 20 * time.Minute

	HistoryLimit = 10

	MaxURLLength = 2048
	MaxTitleLen  = 100

	MinUsernameLen = 3
	MinPasswordLen = 8
	MaxPasswordLen = 12

	RateLimitWindow = 60 * time.Second
	RateLimitMax    = 60
)

// Host substrings that decide media kind, mirroring the sites the bot
// advertises support for.
var (
	VideoHosts = []string{"youtube.com", "youtu.be", "tiktok.com", "instagram.com", "twitter.com", "x.com"}
	AudioHosts = []string{"soundcloud.com", "spotify.com", "bandcamp.com"}
)

var Languages = []string{"en", "fa"}

func Load() {
	Port = envOrDefault("PORT", "3001")
	EnvMode = envOrDefault("ENV_MODE", "development")

	TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	APISecret = os.Getenv("API_SECRET")
	if APISecret == "" {
		log.Println("[WARN] API_SECRET not set, history endpoints will be unprotected")
	}

	DatabasePath = envOrDefault("DATABASE_PATH", "telefetch.db")
	DownloadDir = envOrDefault("DOWNLOAD_DIR", "/var/tmp/telefetch")

	AlertWebhookURL = os.Getenv("ALERT_WEBHOOK_URL")
	AlertPingUserID = os.Getenv("ALERT_PING_USER_ID")
	Alerts = AlertWebhookURL != ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func Contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}
