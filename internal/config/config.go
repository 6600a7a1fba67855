// Package config assembles server settings from defaults, REFOUNDLY_*
// environment variables and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime settings for the server.
type Config struct {
	Addr     string
	DBPath   string

	// MetricsAddr serves /metrics on its own listener. Empty disables it.
	MetricsAddr string

	LogPath  string
	LogLevel string

	// SessionSecret signs session cookies and CSRF tokens. When empty a
	// secret is generated once and kept in the settings table.
	SessionSecret  string
	SessionTTL     time.Duration
	SecureCookies  bool
	EnforceCSRF    bool
	OTPTTL         time.Duration
	OTPMaxAttempts int
	LoginLimit     int
	LoginWindow    time.Duration

	MaxUploadBytes int64
	UploadDir      string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	OutboxDir    string
}

// Default returns the development defaults.
func Default() *Config {
	return &Config{
		Addr:           ":3000",
		MetricsAddr:    "127.0.0.1:9090",
		DBPath:         "refoundly.sqlite3",
		LogLevel:       "info",
		SessionTTL:     15 * time.Minute,
		EnforceCSRF:    true,
		OTPTTL:         5 * time.Minute,
		OTPMaxAttempts: 5,
		LoginLimit:     5,
		LoginWindow:    5 * time.Second,
		MaxUploadBytes: 5 << 20,
		UploadDir:      "uploads",
		S3Region:       "us-east-1",
		SMTPPort:       587,
		MailFrom:       "ReFoundly <no-reply@refoundly.local>",
		OutboxDir:      "outbox",
	}
}

// Load builds a Config from defaults, then the environment (via getenv),
// then args.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would make the server misbehave.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: listen address is required")
	}
	if c.MetricsAddr != "" && c.MetricsAddr == c.Addr {
		return errors.New("config: metrics must listen apart from the public address")
	}
	if c.DBPath == "" {
		return errors.New("config: database path is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: session ttl must be positive")
	}
	if c.OTPTTL <= 0 || c.OTPMaxAttempts <= 0 {
		return errors.New("config: otp ttl and attempts must be positive")
	}
	if c.LoginLimit <= 0 || c.LoginWindow <= 0 {
		return errors.New("config: login limit and window must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if getenv == nil {
		return nil
	}

	str := func(key string, dst *string) {
		if v := getenv("REFOUNDLY_" + key); v != "" {
			*dst = v
		}
	}
	var errs []error
	dur := func(key string, dst *time.Duration) {
		if v := getenv("REFOUNDLY_" + key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("REFOUNDLY_%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	num := func(key string, dst *int) {
		if v := getenv("REFOUNDLY_" + key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("REFOUNDLY_%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v := getenv("REFOUNDLY_" + key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("REFOUNDLY_%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("ADDR", &c.Addr)
	str("METRICS_ADDR", &c.MetricsAddr)
	str("DB", &c.DBPath)
	str("LOG", &c.LogPath)
	str("LOG_LEVEL", &c.LogLevel)
	str("SESSION_SECRET", &c.SessionSecret)
	dur("SESSION_TTL", &c.SessionTTL)
	boolean("SECURE_COOKIES", &c.SecureCookies)
	boolean("ENFORCE_CSRF", &c.EnforceCSRF)
	dur("OTP_TTL", &c.OTPTTL)
	num("OTP_MAX_ATTEMPTS", &c.OTPMaxAttempts)
	num("LOGIN_LIMIT", &c.LoginLimit)
	dur("LOGIN_WINDOW", &c.LoginWindow)
	str("UPLOAD_DIR", &c.UploadDir)
	str("S3_BUCKET", &c.S3Bucket)
	str("S3_REGION", &c.S3Region)
	str("S3_ENDPOINT", &c.S3Endpoint)
	str("S3_ACCESS_KEY", &c.S3AccessKey)
	str("S3_SECRET_KEY", &c.S3SecretKey)
	str("SMTP_HOST", &c.SMTPHost)
	num("SMTP_PORT", &c.SMTPPort)
	str("SMTP_USER", &c.SMTPUser)
	str("SMTP_PASSWORD", &c.SMTPPassword)
	str("MAIL_FROM", &c.MailFrom)
	str("OUTBOX_DIR", &c.OutboxDir)

	if v := getenv("REFOUNDLY_MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("REFOUNDLY_MAX_UPLOAD_MB: %w", err))
		} else {
			c.MaxUploadBytes = int64(n) << 20
		}
	}

	return errors.Join(errs...)
}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.Addr, "addr", c.Addr, "")
	fs.StringVar(&c.Addr, "a", c.Addr, "")
	fs.StringVar(&c.DBPath, "db", c.DBPath, "")
	fs.StringVar(&c.DBPath, "d", c.DBPath, "")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "")
	fs.StringVar(&c.LogPath, "log", c.LogPath, "")
	fs.StringVar(&c.LogPath, "l", c.LogPath, "")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "")
	fs.DurationVar(&c.SessionTTL, "session-ttl", c.SessionTTL, "")
	fs.BoolVar(&c.SecureCookies, "secure-cookies", c.SecureCookies, "")
	fs.BoolVar(&c.EnforceCSRF, "csrf", c.EnforceCSRF, "")
	fs.StringVar(&c.UploadDir, "uploads", c.UploadDir, "")
	fs.StringVar(&c.S3Bucket, "s3-bucket", c.S3Bucket, "")
	fs.StringVar(&c.OutboxDir, "outbox", c.OutboxDir, "")
	fs.StringVar(&c.SMTPHost, "smtp-host", c.SMTPHost, "")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return nil
}

// Usage is the help text for the serve subcommand.
const Usage = `Usage: refoundly serve [flags]

Flags:
  -a, -addr <host:port>   listen address (default: :3000)
  -d, -db <path>          SQLite database path (default: refoundly.sqlite3)
  -metrics-addr <addr>    Prometheus listener, "" disables (default: 127.0.0.1:9090)
  -l, -log <path>         log file path (default: stdout/stderr only)
  -log-level <level>      debug, info, warn or error (default: info)
  -session-ttl <dur>      session lifetime (default: 15m)
  -secure-cookies         mark cookies Secure (use behind TLS)
  -csrf=<bool>            require CSRF tokens on state changes (default: true)
  -uploads <dir>          local image directory (default: uploads)
  -s3-bucket <name>       store images in this S3 bucket instead
  -outbox <dir>           write OTP mails here when no SMTP host is set
  -smtp-host <host>       SMTP relay for OTP mails

Every setting can also be given as REFOUNDLY_<NAME> in the environment.
`
