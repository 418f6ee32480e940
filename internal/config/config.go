package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment keys.
const (
	KeyAccessToken    = "META_ACCESS_TOKEN"
	KeyAccessTokens   = "META_ACCESS_TOKENS"
	KeyDefaultToken   = "META_DEFAULT_TOKEN"
	KeyBaseURL        = "META_API_BASE_URL"
	KeyAPIVersion     = "META_API_VERSION"
	KeyMaxRetries     = "META_MAX_RETRIES"
	KeyRetryBaseDelay = "META_RETRY_BASE_DELAY"
	KeyRequestTimeout = "META_REQUEST_TIMEOUT"
	KeyTokenHeader    = "META_TOKEN_HEADER"
	KeyTransport      = "MCP_TRANSPORT"
	KeyHttpAddress    = "HTTP_ADDRESS"
	KeyJwtSecretKey   = "JWT_SECRET_KEY"
	KeyMcpApiKey      = "MCP_API_KEY"
	KeyJournalDSN     = "JOURNAL_DSN"
	KeyLogLevel       = "LOG_LEVEL"
)

type Config struct {
	HttpAddress  string
	JwtSecretKey string
	McpApiKey    string
	Meta         *MetaConfig
	Journal      *JournalConfig
	Log          *LogConfig
	MCP          *MCPConfig
}

type MetaConfig struct {
	AccessToken    string
	Tokens         map[string]string
	DefaultToken   string
	BaseURL        string
	APIVersion     string
	MaxRetries     int
	RetryBaseDelay time.Duration
	RequestTimeout time.Duration
	TokenHeader    string
}

type JournalConfig struct {
	DSN string
}

type LogConfig struct {
	Level string
}

type MCPConfig struct {
	Transport string
	Enabled   bool
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, "https://graph.facebook.com")
	v.SetDefault(KeyAPIVersion, "v22.0")
	v.SetDefault(KeyMaxRetries, 3)
	v.SetDefault(KeyRetryBaseDelay, time.Second)
	v.SetDefault(KeyRequestTimeout, 30*time.Second)
	v.SetDefault(KeyTokenHeader, "X-Meta-Access-Token")
	v.SetDefault(KeyTransport, "stdio")
	v.SetDefault(KeyHttpAddress, ":8080")
	v.SetDefault(KeyJournalDSN, ":memory:")
	v.SetDefault(KeyLogLevel, "info")
	v.AutomaticEnv()
}

// NewConfig builds the configuration from v. Call SetDefaults first.
func NewConfig(v *viper.Viper) (*Config, error) {
	accessToken, err := GetFileValue(v, KeyAccessToken)
	if err != nil {
		return nil, err
	}
	jwtSecret, err := GetFileValue(v, KeyJwtSecretKey)
	if err != nil {
		return nil, err
	}
	apiKey, err := GetFileValue(v, KeyMcpApiKey)
	if err != nil {
		return nil, err
	}

	tokens, err := ParseTokenList(v.GetString(KeyAccessTokens))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyAccessTokens, err)
	}

	defaultToken := strings.TrimSpace(v.GetString(KeyDefaultToken))
	if defaultToken != "" {
		if _, ok := tokens[defaultToken]; !ok {
			return nil, fmt.Errorf("invalid %s: %q is not listed in %s", KeyDefaultToken, defaultToken, KeyAccessTokens)
		}
	}

	maxRetries := v.GetInt(KeyMaxRetries)
	if maxRetries < 0 {
		return nil, fmt.Errorf("invalid %s: must not be negative", KeyMaxRetries)
	}

	transport := strings.ToLower(strings.TrimSpace(v.GetString(KeyTransport)))
	switch transport {
	case "stdio", "http":
	case "":
		transport = "stdio"
	default:
		return nil, fmt.Errorf("invalid %s: unsupported transport %q", KeyTransport, transport)
	}

	httpAddress := v.GetString(KeyHttpAddress)
	if transport == "http" && httpAddress == "" {
		return nil, fmt.Errorf("missing environment variable: %s", KeyHttpAddress)
	}

	return &Config{
		HttpAddress:  httpAddress,
		JwtSecretKey: jwtSecret,
		McpApiKey:    apiKey,
		Meta: &MetaConfig{
			AccessToken:    accessToken,
			Tokens:         tokens,
			DefaultToken:   defaultToken,
			BaseURL:        v.GetString(KeyBaseURL),
			APIVersion:     v.GetString(KeyAPIVersion),
			MaxRetries:     maxRetries,
			RetryBaseDelay: v.GetDuration(KeyRetryBaseDelay),
			RequestTimeout: v.GetDuration(KeyRequestTimeout),
			TokenHeader:    v.GetString(KeyTokenHeader),
		},
		Journal: &JournalConfig{
			DSN: v.GetString(KeyJournalDSN),
		},
		Log: &LogConfig{
			Level: strings.ToLower(v.GetString(KeyLogLevel)),
		},
		MCP: &MCPConfig{
			Transport: transport,
			Enabled:   true,
		},
	}, nil
}

// GetFileValue returns key's value, or the trimmed contents of the file
// named by key+"_FILE" when key itself is unset. A _FILE that cannot be
// read is an error.
func GetFileValue(v *viper.Viper, key string) (string, error) {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		return value, nil
	}
	path := strings.TrimSpace(v.GetString(key + "_FILE"))
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s_FILE: %w", key, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ParseTokenList parses "name=token,name2=token2".
func ParseTokenList(raw string) (map[string]string, error) {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, token, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		token = strings.TrimSpace(token)
		if !ok || name == "" || token == "" {
			return nil, fmt.Errorf("expected name=token, got %q", redactPair(pair))
		}
		tokens[name] = token
	}
	return tokens, nil
}

func redactPair(pair string) string {
	name, _, ok := strings.Cut(pair, "=")
	if !ok {
		return "..."
	}
	return strings.TrimSpace(name) + "=..."
}
