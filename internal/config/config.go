package config

import (
	"flag"
	"fmt"
	"log"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/common/model"
)

type Options struct {
	runAddr       string
	logLevel      string
	logFile       string
	dataBaseDSN   string
	migrationsDir string
	dataDir       string
	staticDir     string

	recaptchaSecret    string
	recaptchaVerifyURL string
	recaptchaMinScore  float64

	smtpHost          string
	smtpPort          int
	smtpUser          string
	smtpPassword      string
	fromEmail         string
	fromName          string
	notificationEmail string

	redisAddr   string
	rateLimit   int
	rateWindow  time.Duration
	amqpURL     string
	metricsName string

	trustedProxies string
	proxies        []netip.Prefix

	adminUser     string
	adminPassword string
}

func NewOptions() *Options {
	return new(Options)
}

// ParseFlags handles command line arguments
// and stores their values in the corresponding variables.
// Every flag defaults to its environment variable.
func (o *Options) ParseFlags(args []string) error {
	// Load environment variables from the .env file
	loadEnvFile()

	env := envReader{}
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)

	fs.StringVar(&o.runAddr, "a", env.getString("RUN_ADDRESS", ":8080"), "address and port to run server")
	fs.StringVar(&o.logLevel, "l", env.getString("LOG_LEVEL", "info"), "log level")
	fs.StringVar(&o.logFile, "log-file", env.getString("LOG_FILE", ""), "rotated log file, stdout only when empty")
	fs.StringVar(&o.dataBaseDSN, "d", env.getString("DATABASE_URI", ""), "database connection string")
	fs.StringVar(&o.migrationsDir, "migrations", env.getString("MIGRATIONS_DIR", "migrations"), "directory of SQL migrations")
	fs.StringVar(&o.dataDir, "c", env.getString("DATA_DIR", "data"), "directory of catalog JSON files")
	fs.StringVar(&o.staticDir, "s", env.getString("STATIC_DIR", ""), "static site directory")

	fs.StringVar(&o.recaptchaSecret, "recaptcha-secret", env.getString("RECAPTCHA_SECRET_KEY", ""), "reCAPTCHA secret key")
	fs.StringVar(&o.recaptchaVerifyURL, "recaptcha-url", env.getString("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"), "reCAPTCHA verification endpoint")
	fs.Float64Var(&o.recaptchaMinScore, "recaptcha-min-score", env.getFloat("RECAPTCHA_MIN_SCORE", 0.5), "minimum reCAPTCHA v3 score")

	fs.StringVar(&o.smtpHost, "smtp-host", env.getString("SMTP_HOST", ""), "SMTP server host")
	fs.IntVar(&o.smtpPort, "smtp-port", env.getInt("SMTP_PORT", 587), "SMTP server port")
	fs.StringVar(&o.smtpUser, "smtp-user", env.getString("SMTP_USER", ""), "SMTP user")
	fs.StringVar(&o.smtpPassword, "smtp-password", env.getString("SMTP_PASSWORD", ""), "SMTP password")
	fs.StringVar(&o.fromEmail, "from-email", env.getString("FROM_EMAIL", ""), "sender address of notifications")
	fs.StringVar(&o.fromName, "from-name", env.getString("FROM_NAME", "Sitio Web"), "sender name of notifications")
	fs.StringVar(&o.notificationEmail, "notify", env.getString("NOTIFICATION_EMAIL", ""), "recipient of contact notifications")

	fs.StringVar(&o.redisAddr, "redis", env.getString("REDIS_ADDR", ""), "redis address for contact rate limiting")
	fs.IntVar(&o.rateLimit, "rate-limit", env.getInt("CONTACT_RATE_LIMIT", 5), "contact submissions allowed per window and client")
	fs.DurationVar(&o.rateWindow, "rate-window", env.getDuration("CONTACT_RATE_WINDOW", time.Hour), "contact rate limit window")
	fs.StringVar(&o.amqpURL, "amqp", env.getString("AMQP_URL", ""), "AMQP url of the notification queue")
	fs.StringVar(&o.metricsName, "metrics-prefix", env.getString("METRICS_PREFIX", "catalog"), "prometheus metric namespace")
	fs.StringVar(&o.trustedProxies, "trusted-proxies", env.getString("TRUSTED_PROXIES", ""), "comma separated proxy addresses or CIDRs allowed to set X-Forwarded-For")

	fs.StringVar(&o.adminUser, "admin-user", env.getString("ADMIN_USER", ""), "admin basic auth user")
	fs.StringVar(&o.adminPassword, "admin-password", env.getString("ADMIN_PASSWORD", ""), "admin basic auth password")

	if env.err != nil {
		return env.err
	}
	// parse the arguments passed to the server into registered variables
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !model.IsValidLegacyMetricName(o.metricsName) {
		return fmt.Errorf("invalid metrics prefix %q: use letters, digits, '_' or ':'", o.metricsName)
	}

	proxies, err := parseProxies(o.trustedProxies)
	if err != nil {
		return fmt.Errorf("invalid value of TRUSTED_PROXIES: %w", err)
	}
	o.proxies = proxies
	return nil
}

// parseProxies reads a comma separated list of addresses and CIDR prefixes.
func parseProxies(list string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, err
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func (o *Options) RunAddr() string {
	return o.runAddr
}

func (o *Options) LogLevel() string {
	return o.logLevel
}

func (o *Options) LogFile() string {
	return o.logFile
}

func (o *Options) DataBaseDSN() string {
	return o.dataBaseDSN
}

func (o *Options) MigrationsDir() string {
	return o.migrationsDir
}

func (o *Options) DataDir() string {
	return o.dataDir
}

func (o *Options) StaticDir() string {
	return o.staticDir
}

func (o *Options) RecaptchaSecret() string {
	return o.recaptchaSecret
}

func (o *Options) RecaptchaVerifyURL() string {
	return o.recaptchaVerifyURL
}

func (o *Options) RecaptchaMinScore() float64 {
	return o.recaptchaMinScore
}

func (o *Options) SMTPHost() string {
	return o.smtpHost
}

func (o *Options) SMTPPort() int {
	return o.smtpPort
}

func (o *Options) SMTPUser() string {
	return o.smtpUser
}

func (o *Options) SMTPPassword() string {
	return o.smtpPassword
}

func (o *Options) FromEmail() string {
	return o.fromEmail
}

func (o *Options) FromName() string {
	return o.fromName
}

func (o *Options) NotificationEmail() string {
	return o.notificationEmail
}

func (o *Options) RedisAddr() string {
	return o.redisAddr
}

func (o *Options) RateLimit() int {
	return o.rateLimit
}

func (o *Options) RateWindow() time.Duration {
	return o.rateWindow
}

func (o *Options) AMQPURL() string {
	return o.amqpURL
}

func (o *Options) MetricsPrefix() string {
	return o.metricsName
}

// TrustedProxies are the networks whose forwarding headers name the client.
func (o *Options) TrustedProxies() []netip.Prefix {
	return o.proxies
}

func (o *Options) AdminUser() string {
	return o.adminUser
}

func (o *Options) AdminPassword() string {
	return o.adminPassword
}

// AdminEnabled reports whether the admin routes should be mounted.
func (o *Options) AdminEnabled() bool {
	return o.adminUser != "" && o.adminPassword != ""
}

// envReader reads typed environment defaults and keeps the first parse error.
type envReader struct {
	err error
}

func (e *envReader) getString(key, defaultValue string) string {
	return getEnvOrDefault(key, defaultValue)
}

func (e *envReader) getInt(key string, defaultValue int) int {
	raw := getEnvOrDefault(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.fail(key, err)
		return defaultValue
	}
	return v
}

func (e *envReader) getFloat(key string, defaultValue float64) float64 {
	raw := getEnvOrDefault(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		e.fail(key, err)
		return defaultValue
	}
	return v
}

func (e *envReader) getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnvOrDefault(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		e.fail(key, err)
		return defaultValue
	}
	return v
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid value of %s: %w", key, err)
	}
}

// getEnvOrDefault reads an environment variable or returns a default value if the variable is not set or is empty.
func getEnvOrDefault(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// loadEnvFile loads environment variables from a .env file in the working
// directory or, when started from cmd/catalog, in the repository root.
// Variables already set in the environment win.
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Printf("failed to get working directory: %v", err)
		return
	}

	for _, envPath := range []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(cwd, "..", "..", ".env"),
	} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			log.Printf("failed to load .env file at %s: %v", envPath, err)
			return
		}
		log.Printf(".env file loaded from %s", envPath)
		return
	}
}
