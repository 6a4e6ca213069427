// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrNoPeerCertificates is returned when a server presents no certificate.
var ErrNoPeerCertificates = errors.New("x509chain: no certificates received from server")

// FetchPeerCertificates performs a TLS handshake with addr ("host:port") and
// returns the leaf and the remaining certificates the server presented.
// The handshake does not verify the chain; that is the job of [Evaluator.Build],
// with the returned extras as [TrustConfig.ExtraStore].
func FetchPeerCertificates(ctx context.Context, addr string, timeout time.Duration) (*x509.Certificate, []*x509.Certificate, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, nil, fmt.Errorf("x509chain: invalid address %q: %w", addr, err)
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		// We just want the cert chain, not to verify
		Config: &tls.Config{InsecureSkipVerify: true, ServerName: host},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("x509chain: failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	peerCerts := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(peerCerts) == 0 {
		return nil, nil, ErrNoPeerCertificates
	}
	return peerCerts[0], peerCerts[1:], nil
}
