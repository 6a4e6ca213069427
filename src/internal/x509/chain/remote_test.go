// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x509chain "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/chain"
)

func TestFetchPeerCertificates(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(server.Close)

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "server certificate",
			testFunc: func(t *testing.T) {
				leaf, extras, err := x509chain.FetchPeerCertificates(context.Background(), server.Listener.Addr().String(), 5*time.Second)
				require.NoError(t, err)
				assert.True(t, leaf.Equal(server.Certificate()))
				assert.Empty(t, extras)
			},
		},
		{
			name: "address without port",
			testFunc: func(t *testing.T) {
				_, _, err := x509chain.FetchPeerCertificates(context.Background(), "example.com", time.Second)
				assert.ErrorContains(t, err, "invalid address")
			},
		},
		{
			name: "nothing listening",
			testFunc: func(t *testing.T) {
				l, err := net.Listen("tcp", "127.0.0.1:0")
				require.NoError(t, err)
				addr := l.Addr().String()
				require.NoError(t, l.Close())

				_, _, err = x509chain.FetchPeerCertificates(context.Background(), addr, time.Second)
				assert.ErrorContains(t, err, "failed to connect")
			},
		},
		{
			name: "canceled context",
			testFunc: func(t *testing.T) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				_, _, err := x509chain.FetchPeerCertificates(ctx, server.Listener.Addr().String(), time.Second)
				assert.ErrorIs(t, err, context.Canceled)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}
