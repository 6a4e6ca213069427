// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads the verifier configuration shared by the command line
// tool and the MCP server.
//
// A configuration file may be JSON (.json) or YAML (.yaml, .yml); the format
// is chosen by extension. When no path is given, the X509_VERIFIER_CONFIG_FILE
// environment variable is consulted. Defaults are applied first and any
// invalid value in the file is reset to its default, so a loaded [Config] is
// always usable.
//
// Example YAML:
//
//	backend:
//	  name: go
//	verification:
//	  revocationMode: online
//	  revocationScope: exclude-root
//	  trustMode: custom
//	  trustStore: [/etc/pki/private-root.pem]
//	  timeoutSeconds: 10
//	crlCache:
//	  maxSize: 200
//	  cleanupIntervalSeconds: 1800
//	logging:
//	  format: json
package config
