package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	defaultEnvironment  = "local"
	defaultSessionTTL   = 2 * time.Hour
	defaultAutoClose    = 2 * time.Second
	defaultNotifyTTL    = 3 * time.Second
	defaultContactDelay = 2 * time.Second
	defaultLocale       = "en"
	defaultLogLevel     = "info"

	// minSigningKeyLen is enforced outside the local environment.
	minSigningKeyLen = 32
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Session  SessionConfig
	UI       UIConfig
	Catalog  CatalogConfig
	Logging  LoggingConfig
	Env      string
	DevMode  bool
	Snapshot Snapshot
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SessionConfig controls the session cookie and in-memory session lifetime.
type SessionConfig struct {
	SigningKey string
	TTL        time.Duration
}

// UIConfig holds the timings and locale of the storefront interactions.
type UIConfig struct {
	CartAutoClose time.Duration
	NotifyTTL     time.Duration
	ContactDelay  time.Duration
	Locale        string
}

// CatalogConfig points at an optional catalog override file.
type CatalogConfig struct {
	File string
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string
}

// Snapshot records where configuration values came from, for diagnostics.
type Snapshot struct {
	EnvFile string
	Keys    []string
}

// SecretResolver resolves references to external secrets (secret:// URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

// Error implements the error interface.
func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

// WithEnvFile overrides the dotenv file path. An empty path disables it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap supplies explicit values that win over every other source.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver resolves secret:// references in secret fields.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

// Load reads configuration from defaults, the dotenv file, the process
// environment and explicit overrides, in increasing precedence.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	seen := map[string]struct{}{}
	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				seen[key] = struct{}{}
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				seen[key] = struct{}{}
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				seen[key] = struct{}{}
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "STOREFRONT_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "STOREFRONT_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "STOREFRONT_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "STOREFRONT_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Session: SessionConfig{
			SigningKey: stringWithDefault(lookup, "STOREFRONT_SESSION_SIGNING_KEY", ""),
			TTL:        durationWithDefault(lookup, "STOREFRONT_SESSION_TTL", defaultSessionTTL),
		},
		UI: UIConfig{
			CartAutoClose: durationWithDefault(lookup, "STOREFRONT_CART_AUTO_CLOSE", defaultAutoClose),
			NotifyTTL:     durationWithDefault(lookup, "STOREFRONT_NOTIFY_TTL", defaultNotifyTTL),
			ContactDelay:  durationWithDefault(lookup, "STOREFRONT_CONTACT_DELAY", defaultContactDelay),
			Locale:        strings.TrimSpace(stringWithDefault(lookup, "STOREFRONT_LOCALE", defaultLocale)),
		},
		Catalog: CatalogConfig{
			File: strings.TrimSpace(stringWithDefault(lookup, "STOREFRONT_CATALOG_FILE", "")),
		},
		Logging: LoggingConfig{
			Level: strings.ToLower(strings.TrimSpace(stringWithDefault(lookup, "STOREFRONT_LOG_LEVEL", defaultLogLevel))),
		},
		Env:     strings.ToLower(strings.TrimSpace(stringWithDefault(lookup, "STOREFRONT_ENV", defaultEnvironment))),
		DevMode: boolWithDefault(lookup, "STOREFRONT_DEV", false),
	}

	key, err := resolveSecret(ctx, cfg.Session.SigningKey, options.secret)
	if err != nil {
		return Config{}, err
	}
	cfg.Session.SigningKey = key

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	cfg.Snapshot = Snapshot{EnvFile: options.envFile}
	for k := range seen {
		cfg.Snapshot.Keys = append(cfg.Snapshot.Keys, k)
	}
	sort.Strings(cfg.Snapshot.Keys)
	return cfg, nil
}

// Address returns the listen address for the configured port.
func (c Config) Address() string {
	return ":" + c.Server.Port
}

// IsLocal reports whether the service runs in the local environment.
func (c Config) IsLocal() bool {
	return c.Env == "" || c.Env == defaultEnvironment
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "secret://") {
		return value, nil
	}
	if resolver == nil {
		return "", &SecretError{Ref: trimmed, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.ResolveSecret(ctx, trimmed)
	if err != nil {
		return "", &SecretError{Ref: trimmed, Err: err}
	}
	return secret, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 0 || port > 65535 {
		missing = append(missing, "Server.Port")
	}
	if cfg.Server.ReadTimeout <= 0 {
		missing = append(missing, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		missing = append(missing, "Server.WriteTimeout")
	}
	if cfg.Server.IdleTimeout <= 0 {
		missing = append(missing, "Server.IdleTimeout")
	}
	if cfg.Session.TTL <= 0 {
		missing = append(missing, "Session.TTL")
	}
	if !cfg.IsLocal() && len(cfg.Session.SigningKey) < minSigningKeyLen {
		missing = append(missing, "Session.SigningKey")
	}
	if cfg.UI.CartAutoClose <= 0 {
		missing = append(missing, "UI.CartAutoClose")
	}
	if cfg.UI.NotifyTTL <= 0 {
		missing = append(missing, "UI.NotifyTTL")
	}
	if cfg.UI.ContactDelay <= 0 {
		missing = append(missing, "UI.ContactDelay")
	}
	if _, err := language.Parse(cfg.UI.Locale); err != nil {
		missing = append(missing, "UI.Locale")
	}
	if _, err := zapcore.ParseLevel(cfg.Logging.Level); err != nil {
		missing = append(missing, "Logging.Level")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
