// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config_test

import (
	"bytes"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/config"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/revocation"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/x509test"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "defaults without a file",
			testFunc: func(t *testing.T) {
				t.Setenv(config.EnvConfigFile, "")
				cfg, err := config.Load("")
				require.NoError(t, err)
				assert.Equal(t, config.Default(), cfg)
				assert.Equal(t, "go", cfg.Backend.Name)
				assert.Equal(t, 15*time.Second, cfg.Timeout())
			},
		},
		{
			name: "json file",
			testFunc: func(t *testing.T) {
				path := writeFile(t, "verifier.json", []byte(`{
					"verification": {
						"revocationMode": "offline",
						"revocationScope": "end-only",
						"timeoutSeconds": 5,
						"disableDownloads": true
					},
					"crlCache": {"maxSize": 10},
					"logging": {"format": "JSON"}
				}`))
				cfg, err := config.Load(path)
				require.NoError(t, err)
				assert.Equal(t, "offline", cfg.Verification.RevocationMode)
				assert.Equal(t, "end-only", cfg.Verification.RevocationScope)
				assert.Equal(t, 5*time.Second, cfg.Timeout())
				assert.True(t, cfg.Verification.DisableDownloads)
				assert.Equal(t, 10, cfg.CRLCache.MaxSize)
				assert.Equal(t, config.DefaultCleanupInterval, cfg.CRLCache.CleanupInterval)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "yaml file from environment",
			testFunc: func(t *testing.T) {
				path := writeFile(t, "verifier.yml", []byte(`
verification:
  revocationMode: nocheck
  trustMode: custom
  applicationPolicy: ["1.3.6.1.5.5.7.3.1"]
crlCache:
  cleanupIntervalSeconds: 60
`))
				t.Setenv(config.EnvConfigFile, path)
				cfg, err := config.Load("")
				require.NoError(t, err)
				assert.Equal(t, "nocheck", cfg.Verification.RevocationMode)
				assert.Equal(t, "custom", cfg.Verification.TrustMode)
				assert.Equal(t, []string{"1.3.6.1.5.5.7.3.1"}, cfg.Verification.ApplicationPolicy)
				assert.Equal(t, time.Minute, cfg.CRLCacheConfig().CleanupInterval)
			},
		},
		{
			name: "invalid values reset to defaults",
			testFunc: func(t *testing.T) {
				path := writeFile(t, "verifier.yaml", []byte(`
backend: {name: nonexistent}
verification:
  revocationMode: sometimes
  revocationScope: half
  trustMode: everyone
  timeoutSeconds: -1
crlCache: {maxSize: 0, cleanupIntervalSeconds: -5}
logging: {format: xml}
`))
				cfg, err := config.Load(path)
				require.NoError(t, err)
				assert.Equal(t, config.DefaultBackend, cfg.Backend.Name)
				assert.Equal(t, config.DefaultRevocationMode, cfg.Verification.RevocationMode)
				assert.Equal(t, config.DefaultRevocationScope, cfg.Verification.RevocationScope)
				assert.Empty(t, cfg.Verification.TrustMode)
				assert.Equal(t, config.DefaultTimeout, cfg.Verification.Timeout)
				assert.Equal(t, config.DefaultCRLCacheSize, cfg.CRLCache.MaxSize)
				assert.Equal(t, config.DefaultCleanupInterval, cfg.CRLCache.CleanupInterval)
				assert.Equal(t, config.DefaultLogFormat, cfg.Logging.Format)
			},
		},
		{
			name: "missing file",
			testFunc: func(t *testing.T) {
				_, err := config.Load(filepath.Join(t.TempDir(), "absent.json"))
				assert.ErrorContains(t, err, "failed to read config file")
			},
		},
		{
			name: "malformed json",
			testFunc: func(t *testing.T) {
				_, err := config.Load(writeFile(t, "bad.json", []byte("{")))
				assert.ErrorContains(t, err, "failed to parse JSON config file")
			},
		},
		{
			name: "malformed yaml",
			testFunc: func(t *testing.T) {
				_, err := config.Load(writeFile(t, "bad.yaml", []byte("verification: [")))
				assert.ErrorContains(t, err, "failed to parse YAML config file")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestConfig_TrustConfig(t *testing.T) {
	ch := x509test.NewChain(t)
	decoder := x509certs.New()
	rootFile := writeFile(t, "root.pem", x509test.PEM(ch.Root.Cert))
	extraFile := writeFile(t, "extra.der", ch.Intermediate.Cert.Raw)

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "defaults",
			testFunc: func(t *testing.T) {
				tc, err := config.Default().TrustConfig(decoder)
				require.NoError(t, err)
				assert.Equal(t, revocation.Online, tc.RevocationMode)
				assert.Equal(t, revocation.ExcludeRoot, tc.RevocationScope)
				assert.Equal(t, backend.SystemTrust, tc.TrustMode)
				assert.Equal(t, 15*time.Second, tc.URLRetrievalTimeout)
				assert.Empty(t, tc.CustomTrustStore)
			},
		},
		{
			name: "trust store implies custom trust",
			testFunc: func(t *testing.T) {
				cfg := config.Default()
				cfg.Verification.TrustStore = []string{rootFile}
				cfg.Verification.ExtraStore = []string{extraFile}
				cfg.Verification.CertificatePolicy = []string{"2.23.140.1.2.1"}

				tc, err := cfg.TrustConfig(decoder)
				require.NoError(t, err)
				assert.Equal(t, backend.CustomRootTrust, tc.TrustMode)
				require.Len(t, tc.CustomTrustStore, 1)
				assert.True(t, ch.Root.Cert.Equal(tc.CustomTrustStore[0]))
				require.Len(t, tc.ExtraStore, 1)
				assert.True(t, ch.Intermediate.Cert.Equal(tc.ExtraStore[0]))
				assert.Equal(t, []string{"2.23.140.1.2.1"}, tc.CertificatePolicy)
			},
		},
		{
			name: "explicit system trust wins over a trust store",
			testFunc: func(t *testing.T) {
				cfg := config.Default()
				cfg.Verification.TrustMode = "system"
				cfg.Verification.TrustStore = []string{rootFile}

				tc, err := cfg.TrustConfig(decoder)
				require.NoError(t, err)
				assert.Equal(t, backend.SystemTrust, tc.TrustMode)
			},
		},
		{
			name: "unreadable store",
			testFunc: func(t *testing.T) {
				cfg := config.Default()
				cfg.Verification.ExtraStore = []string{filepath.Join(t.TempDir(), "missing.pem")}
				_, err := cfg.TrustConfig(decoder)
				assert.ErrorContains(t, err, "missing.pem")
			},
		},
		{
			name: "unparsed mode",
			testFunc: func(t *testing.T) {
				cfg := config.Default()
				cfg.Verification.RevocationMode = "bogus"
				_, err := cfg.TrustConfig(decoder)
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestConfig_LoadCRLs(t *testing.T) {
	root := x509test.NewRoot(t, "CRL Root")
	crl := x509test.NewCRL(t, root, time.Now().Add(time.Hour))
	pemFile := writeFile(t, "root.crl.pem", pem.EncodeToMemory(&pem.Block{Type: "X509 CRL", Bytes: crl.Raw}))
	derFile := writeFile(t, "root.crl", crl.Raw)

	cfg := config.Default()
	cfg.Verification.CRLFiles = []string{pemFile, derFile}
	cache := revocation.NewCRLCache(cfg.CRLCacheConfig())
	require.NoError(t, cfg.LoadCRLs(cache))
	assert.NotEmpty(t, cache.ForIssuer(root.Cert))

	cfg.Verification.CRLFiles = []string{writeFile(t, "junk.crl", []byte("junk"))}
	assert.Error(t, cfg.LoadCRLs(cache))
}

func TestConfig_Logger(t *testing.T) {
	tests := []struct {
		name   string
		format string
		silent bool
		check  func(t *testing.T, out string)
	}{
		{
			name:   "json",
			format: "json",
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, `"message":"hello"`)
			},
		},
		{
			name:   "cli",
			format: "cli",
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "hello")
				assert.NotContains(t, out, "{")
			},
		},
		{
			name:   "silent",
			format: "cli",
			silent: true,
			check: func(t *testing.T, out string) {
				assert.Empty(t, out)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Logging.Format = tt.format
			cfg.Logging.Silent = tt.silent

			var buf bytes.Buffer
			cfg.Logger(&buf).Printf("hello")
			tt.check(t, buf.String())
		})
	}
}
