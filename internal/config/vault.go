package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"atsgenie/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool         `mapstructure:"enabled"`
	Address   string       `mapstructure:"address"`
	Token     string       `mapstructure:"token"`
	TokenFile string       `mapstructure:"tokenFile"`
	Namespace string       `mapstructure:"namespace"`
	Secrets   VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets holds KVv2 paths of the secrets the service consumes
type VaultSecrets struct {
	APIKeys   string `mapstructure:"apiKeys"`   // key "keys", comma-separated
	GeminiKey string `mapstructure:"geminiKey"` // key "api_key"
	TLSCerts  string `mapstructure:"tlsCerts"`  // keys "cert", "key", "ca" holding PEM content
}

// VaultSecret represents a secret read from Vault's KVv2 engine
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// secretReader is the subset of VaultClient used to apply secrets
type secretReader interface {
	GetSecretV2(path string) (*VaultSecret, error)
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	logger *errors.Logger
}

// NewVaultClient creates a connected Vault client, or nil when Vault is disabled
func NewVaultClient(cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	vaultCfg := api.DefaultConfig()
	if cfg.Address != "" {
		vaultCfg.Address = cfg.Address
	}

	client, err := api.NewClient(vaultCfg)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to create vault client", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, errors.NewNetworkError("VAULT_UNREACHABLE", "failed to connect to vault", err).
			WithContext("address", vaultCfg.Address)
	}
	if health.Sealed {
		return nil, errors.NewConfigError("VAULT_SEALED", "vault is sealed", nil).
			WithContext("address", vaultCfg.Address)
	}

	logger.Info("Connected to Vault",
		"address", vaultCfg.Address,
		"version", health.Version,
		"cluster_name", health.ClusterName)

	return &VaultClient{client: client, logger: logger}, nil
}

// resolveVaultToken resolves the Vault token from config or token file
func resolveVaultToken(cfg VaultConfig) (string, error) {
	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		data, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return "", errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to read vault token file", err).
				WithContext("file", cfg.TokenFile)
		}
		token = strings.TrimSpace(string(data))
	}
	if token == "" {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig, "vault token is required when vault is enabled", nil)
	}
	return token, nil
}

// GetSecretV2 reads a KVv2 secret including its version
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	return parseKVv2(secret.Data, path)
}

// parseKVv2 unpacks the data and metadata envelopes of a KVv2 response
func parseKVv2(raw map[string]any, path string) (*VaultSecret, error) {
	data, ok := raw["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	metadata, ok := raw["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	versionRaw, ok := metadata["version"]
	if !ok {
		return nil, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	}
	version, err := parseVersionValue(versionRaw, path)
	if err != nil {
		return nil, err
	}
	return &VaultSecret{Data: data, Version: version}, nil
}

// parseVersionValue parses the version field, which arrives as a number or json.Number string
func parseVersionValue(versionRaw any, path string) (int64, error) {
	switch v := versionRaw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case fmt.Stringer:
		return parseVersionValue(v.String(), path)
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, versionRaw)
	}
}

// stringField extracts a string value from a secret
func stringField(secret *VaultSecret, path, key string) (string, error) {
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}
	return str, nil
}

// ApplyVaultSecrets loads secrets from Vault and applies them to the config
func ApplyVaultSecrets(cfg *Config, logger *errors.Logger) error {
	if !cfg.Vault.Enabled {
		logger.Debug("Vault integration disabled, skipping secret loading")
		return nil
	}

	client, err := NewVaultClient(cfg.Vault, logger)
	if err != nil {
		return err
	}
	return applySecrets(client, cfg, logger)
}

// applySecrets copies every configured secret into cfg
func applySecrets(reader secretReader, cfg *Config, logger *errors.Logger) error {
	paths := cfg.Vault.Secrets

	if paths.APIKeys != "" {
		secret, err := reader.GetSecretV2(paths.APIKeys)
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		value, err := stringField(secret, paths.APIKeys, "keys")
		if err != nil {
			return err
		}
		keys := splitAndTrim([]string{value})
		if len(keys) > 0 {
			cfg.Server.APIKeys = keys
		}
		logger.Info("API keys loaded from Vault", "count", len(keys), "version", secret.Version)
	}

	if paths.GeminiKey != "" {
		secret, err := reader.GetSecretV2(paths.GeminiKey)
		if err != nil {
			return fmt.Errorf("failed to load Gemini API key from vault: %w", err)
		}
		value, err := stringField(secret, paths.GeminiKey, "api_key")
		if err != nil {
			return err
		}
		if value != "" {
			cfg.AI.APIKey = value
			logger.Info("Gemini API key loaded from Vault", "version", secret.Version)
		}
	}

	if paths.TLSCerts != "" {
		secret, err := reader.GetSecretV2(paths.TLSCerts)
		if err != nil {
			return fmt.Errorf("failed to load TLS certificates from vault: %w", err)
		}
		loaded := applyTLSContent(&cfg.Server.TLS, secret)
		logger.Info("TLS certificates loaded from Vault", "certificates_loaded", loaded, "version", secret.Version)
	}

	return nil
}

// applyTLSContent sets inline PEM content and clears the file path it replaces
func applyTLSContent(tls *TLSConfig, secret *VaultSecret) int {
	loaded := 0
	targets := []struct {
		key     string
		content *string
		file    *string
	}{
		{"cert", &tls.CertContent, &tls.CertFile},
		{"key", &tls.KeyContent, &tls.KeyFile},
		{"ca", &tls.CAContent, &tls.CAFile},
	}
	for _, t := range targets {
		if content, ok := secret.Data[t.key].(string); ok && content != "" {
			*t.content = content
			*t.file = ""
			loaded++
		}
	}
	return loaded
}
