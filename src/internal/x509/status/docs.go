// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package status defines the portable per-certificate status flags and
// translates backend raw status into them.
//
// The flag values follow the widely used X509ChainStatusFlags numbering so
// results can be compared with other platforms without renumbering.
package status
