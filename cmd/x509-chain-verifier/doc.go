// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// x509-chain-verifier builds and evaluates X.509 certificate chains and
// reports the status of every certificate on the path.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/x509-chain-verifier/cmd/x509-chain-verifier@latest
//
// # Usage
//
//	x509-chain-verifier verify CERT_FILE [FLAGS]
//	x509-chain-verifier verify --host HOST[:PORT] [FLAGS]
//	x509-chain-verifier backends
//
// # Flags
//
//	-c, --config        Configuration file (JSON or YAML)
//	    --backend       Trust backend name (default: go)
//	    --host          Fetch the chain from a TLS server
//	-e, --extra         Additional untrusted certificate file (repeatable)
//	-r, --root          Trust anchor file; selects custom root trust (repeatable)
//	    --crl           CRL file for offline revocation checking (repeatable)
//	    --revocation    nocheck, online or offline
//	    --scope         entire, exclude-root or end-only
//	    --app-policy    Required application policy OID (repeatable)
//	    --cert-policy   Required certificate policy OID (repeatable)
//	    --at            Verification time in RFC 3339
//	    --no-download   Disable issuer certificate downloads
//	    --timeout       Network timeout per retrieval
//	-f, --format        table, tree or json
//	-o, --output        Write the report to a file
//
// # Environment Variables
//
//	X509_VERIFIER_CONFIG_FILE  Path to configuration file (alternative to --config)
//
// # Exit Status
//
//	0  the chain is trusted
//	1  the chain could not be evaluated
//	2  the chain was evaluated and carries at least one status flag
//	130 interrupted
//
// # Examples
//
// Verify a bundle against the system roots:
//
//	x509-chain-verifier verify bundle.pem
//
// Verify against a private root with offline revocation checking:
//
//	x509-chain-verifier verify leaf.pem -e intermediate.pem -r root.pem --revocation offline --crl root.crl
//
// Inspect the chain of a TLS server as a tree:
//
//	x509-chain-verifier verify --host example.com --format tree
package main
