// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
	_ "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend/gonative"
	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/revocation"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
)

// EnvConfigFile names the environment variable holding the default
// configuration file path.
const EnvConfigFile = "X509_VERIFIER_CONFIG_FILE"

// Defaults.
const (
	DefaultBackend         = "go"
	DefaultRevocationMode  = "online"
	DefaultRevocationScope = "exclude-root"
	DefaultTrustMode       = "system"
	DefaultTimeout         = 15
	DefaultCRLCacheSize    = 100
	DefaultCleanupInterval = 3600
	DefaultLogFormat       = "cli"
)

// configFormat represents supported configuration file formats.
type configFormat int

const (
	configFormatJSON configFormat = iota
	configFormatYAML
)

// Config is the verifier configuration.
type Config struct {
	Backend struct {
		// Name of a registered trust backend.
		Name string `json:"name" yaml:"name"`
	} `json:"backend" yaml:"backend"`

	Verification struct {
		RevocationMode  string `json:"revocationMode" yaml:"revocationMode"`
		RevocationScope string `json:"revocationScope" yaml:"revocationScope"`
		// TrustMode is "system" or "custom". Empty selects custom when
		// TrustStore is set.
		TrustMode string `json:"trustMode" yaml:"trustMode"`
		// TrustStore and ExtraStore list certificate files (PEM, DER or PKCS#7).
		TrustStore []string `json:"trustStore,omitempty" yaml:"trustStore,omitempty"`
		ExtraStore []string `json:"extraStore,omitempty" yaml:"extraStore,omitempty"`
		// CRLFiles are loaded into the CRL cache for offline checking.
		CRLFiles          []string `json:"crlFiles,omitempty" yaml:"crlFiles,omitempty"`
		ApplicationPolicy []string `json:"applicationPolicy,omitempty" yaml:"applicationPolicy,omitempty"`
		CertificatePolicy []string `json:"certificatePolicy,omitempty" yaml:"certificatePolicy,omitempty"`
		DisableDownloads  bool     `json:"disableDownloads" yaml:"disableDownloads"`
		// Timeout bounds each network retrieval, in seconds.
		Timeout int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
		// DistrustedSHA256 lists hex fingerprints of distrusted certificates.
		DistrustedSHA256 []string `json:"distrustedSHA256,omitempty" yaml:"distrustedSHA256,omitempty"`
	} `json:"verification" yaml:"verification"`

	CRLCache struct {
		MaxSize         int `json:"maxSize" yaml:"maxSize"`
		CleanupInterval int `json:"cleanupIntervalSeconds" yaml:"cleanupIntervalSeconds"`
	} `json:"crlCache" yaml:"crlCache"`

	Logging struct {
		// Format is "cli" or "json".
		Format string `json:"format" yaml:"format"`
		Silent bool   `json:"silent" yaml:"silent"`
	} `json:"logging" yaml:"logging"`
}

// Default returns a configuration holding only defaults.
func Default() *Config {
	c := &Config{}
	c.Backend.Name = DefaultBackend
	c.Verification.RevocationMode = DefaultRevocationMode
	c.Verification.RevocationScope = DefaultRevocationScope
	c.Verification.Timeout = DefaultTimeout
	c.CRLCache.MaxSize = DefaultCRLCacheSize
	c.CRLCache.CleanupInterval = DefaultCleanupInterval
	c.Logging.Format = DefaultLogFormat
	return c
}

// detectConfigFormat determines the configuration file format based on file extension.
func detectConfigFormat(configPath string) configFormat {
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
func unmarshalConfig(data []byte, config *Config, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// Load loads the configuration from configPath, or from the file named by
// [EnvConfigFile] when configPath is empty. Without either, defaults are
// returned.
//
// Configuration Priority:
//  1. Default values are set
//  2. Config file values override defaults
//  3. Invalid values are reset to defaults
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath == "" {
		configPath = os.Getenv(EnvConfigFile)
	}
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := unmarshalConfig(data, config, detectConfigFormat(configPath)); err != nil {
		return nil, err
	}
	config.validate()
	return config, nil
}

func (c *Config) validate() {
	if _, ok := backend.Lookup(c.Backend.Name); !ok {
		c.Backend.Name = DefaultBackend
	}
	if _, err := revocation.ParseMode(c.Verification.RevocationMode); err != nil || c.Verification.RevocationMode == "" {
		c.Verification.RevocationMode = DefaultRevocationMode
	}
	if _, err := revocation.ParseScope(c.Verification.RevocationScope); err != nil || c.Verification.RevocationScope == "" {
		c.Verification.RevocationScope = DefaultRevocationScope
	}
	if _, err := backend.ParseTrustMode(c.Verification.TrustMode); err != nil {
		c.Verification.TrustMode = ""
	}
	if c.Verification.Timeout <= 0 {
		c.Verification.Timeout = DefaultTimeout
	}
	if c.CRLCache.MaxSize <= 0 {
		c.CRLCache.MaxSize = DefaultCRLCacheSize
	}
	if c.CRLCache.CleanupInterval <= 0 {
		c.CRLCache.CleanupInterval = DefaultCleanupInterval
	}
	switch strings.ToLower(c.Logging.Format) {
	case "cli", "json":
		c.Logging.Format = strings.ToLower(c.Logging.Format)
	default:
		c.Logging.Format = DefaultLogFormat
	}
}

// Timeout returns the per-retrieval network timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Verification.Timeout) * time.Second
}

// TrustConfig converts the verification section, reading the trust and extra
// store files through d.
func (c *Config) TrustConfig(d *x509certs.Decoder) (x509chain.TrustConfig, error) {
	v := c.Verification
	cfg := x509chain.TrustConfig{
		ApplicationPolicy:           v.ApplicationPolicy,
		CertificatePolicy:           v.CertificatePolicy,
		DisableCertificateDownloads: v.DisableDownloads,
		URLRetrievalTimeout:         c.Timeout(),
	}

	var err error
	if cfg.RevocationMode, err = revocation.ParseMode(v.RevocationMode); err != nil {
		return cfg, err
	}
	if cfg.RevocationScope, err = revocation.ParseScope(v.RevocationScope); err != nil {
		return cfg, err
	}
	if cfg.TrustMode, err = backend.ParseTrustMode(v.TrustMode); err != nil {
		return cfg, err
	}
	if v.TrustMode == "" && len(v.TrustStore) > 0 {
		cfg.TrustMode = backend.CustomRootTrust
	}

	if cfg.CustomTrustStore, err = readCertificates(d, v.TrustStore); err != nil {
		return cfg, err
	}
	if cfg.ExtraStore, err = readCertificates(d, v.ExtraStore); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func readCertificates(d *x509certs.Decoder, paths []string) ([]*x509.Certificate, error) {
	var out []*x509.Certificate
	for _, path := range paths {
		certs, err := d.DecodeFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
		out = append(out, certs...)
	}
	return out, nil
}

// BackendOptions returns the options for creating the configured backend.
func (c *Config) BackendOptions(log logger.Logger) backend.Options {
	return backend.Options{
		Logger:           log,
		DistrustedSHA256: c.Verification.DistrustedSHA256,
	}
}

// CRLCacheConfig returns the CRL cache section.
func (c *Config) CRLCacheConfig() revocation.CRLCacheConfig {
	return revocation.CRLCacheConfig{
		MaxSize:         c.CRLCache.MaxSize,
		CleanupInterval: time.Duration(c.CRLCache.CleanupInterval) * time.Second,
	}
}

// LoadCRLs parses the configured CRL files, PEM or DER, into cache.
func (c *Config) LoadCRLs(cache *revocation.CRLCache) error {
	for _, path := range c.Verification.CRLFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if block, _ := pem.Decode(data); block != nil {
			data = block.Bytes
		}
		crl, err := x509.ParseRevocationList(data)
		if err != nil {
			return fmt.Errorf("config: %s: %w", path, err)
		}
		cache.AddCRL(crl)
	}
	return nil
}

// Logger returns a logger writing to w in the configured format.
func (c *Config) Logger(w io.Writer) logger.Logger {
	if c.Logging.Format == "json" {
		return logger.NewJSONLogger(w, c.Logging.Silent)
	}
	if c.Logging.Silent {
		return logger.NewNopLogger()
	}
	l := logger.NewCLILogger()
	l.SetOutput(w)
	return l
}
