package config

import (
	"os"
	"strconv"
	"time"
)

type OAuthClient struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type Config struct {
	Port     string
	Prod     bool
	MongoURI string
	MongoDB  string

	JWTSecret      string
	AccessTTL      time.Duration
	RefreshTTLDays int

	RedisAddr       string
	RateLimitPerMin int

	RabbitURL string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	VerificationCodeLen int
	VerificationCodeTTL time.Duration

	OAuthStateSecret string
	Google           OAuthClient
	Kakao            OAuthClient
	Naver            OAuthClient
}

func Load() Config {
	return Config{
		Port:     getenv("APP_PORT", "8080"),
		Prod:     getenv("APP_ENV", "dev") == "prod",
		MongoURI: getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getenv("MONGO_DB", "auth_db"),

		JWTSecret:      getenv("JWT", "default_secret_key"),
		AccessTTL:      time.Duration(atoi(getenv("ACCESS_TTL_MIN", "15"))) * time.Minute,
		RefreshTTLDays: atoi(getenv("REFRESH_TTL_DAYS", "14")),

		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		RateLimitPerMin: atoi(getenv("RATE_LIMIT_PER_MIN", "5")),

		RabbitURL: getenv("RABBIT_URL", ""),

		SMTPHost: getenv("SMTP_HOST", ""),
		SMTPPort: atoi(getenv("SMTP_PORT", "587")),
		SMTPUser: getenv("SMTP_USER", ""),
		SMTPPass: getenv("SMTP_PASS", ""),
		MailFrom: getenv("MAIL_FROM", ""),

		VerificationCodeLen: atoi(getenv("VERIFICATION_CODE_LEN", "4")),
		VerificationCodeTTL: time.Duration(atoi(getenv("VERIFICATION_CODE_TTL_MIN", "3"))) * time.Minute,

		OAuthStateSecret: getenv("OAUTH_STATE_SECRET", "default_state_secret"),
		Google: OAuthClient{
			ClientID:     getenv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getenv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI:  getenv("GOOGLE_REDIRECT_URI", ""),
		},
		Kakao: OAuthClient{
			ClientID:     getenv("KAKAO_CLIENT_ID", ""),
			ClientSecret: getenv("KAKAO_CLIENT_SECRET", ""),
			RedirectURI:  getenv("KAKAO_REDIRECT_URI", ""),
		},
		Naver: OAuthClient{
			ClientID:     getenv("NAVER_CLIENT_ID", ""),
			ClientSecret: getenv("NAVER_CLIENT_SECRET", ""),
			RedirectURI:  getenv("NAVER_REDIRECT_URI", ""),
		},
	}
}

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
