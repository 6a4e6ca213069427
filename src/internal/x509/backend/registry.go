// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package backend

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
)

// ErrUnknownBackend is returned by [New] for an unregistered name.
var ErrUnknownBackend = errors.New("backend: unknown backend")

// Options configures a backend instance.
type Options struct {
	Logger logger.Logger
	// DistrustedSHA256 lists hex SHA-256 fingerprints of explicitly distrusted certificates.
	DistrustedSHA256 []string
	// HTTPClient is used for network retrieval. Nil selects a backend default.
	HTTPClient *http.Client
}

// Factory creates a backend instance.
type Factory func(opts Options) (Backend, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a backend available under name. It panics on a duplicate
// name or a nil factory, since both are programming errors at init time.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if f == nil {
		panic("backend: Register factory is nil for " + name)
	}
	if _, dup := factories[name]; dup {
		panic("backend: Register called twice for " + name)
	}
	factories[name] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

// Names returns the registered backend names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// New creates the backend registered under name.
func New(name string, opts Options) (Backend, error) {
	f, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownBackend, name, Names())
	}
	return f(opts)
}
