// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"strings"
)

// ExecutableName returns the name the program was started with, without
// directories or a ".exe" suffix. It returns fallback when os.Args carries
// no program name.
func ExecutableName(fallback string) string {
	if len(os.Args) == 0 {
		return fallback
	}
	if name := BaseName(os.Args[0]); name != "" {
		return name
	}
	return fallback
}

// BaseName returns the last element of path, accepting both '/' and '\'
// as separators regardless of the host, with a ".exe" suffix removed.
func BaseName(path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSuffix(parts[len(parts)-1], ".exe")
}
