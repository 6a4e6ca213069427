// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509certs decodes [X.509] certificates from [PEM], DER and [PKCS7]
// encodings. It is the parsing layer in front of the chain evaluator: trust
// store files, extra-store bundles, AIA responses (often .p7c) and base64
// input from the MCP surface all pass through a [Decoder].
//
// [X.509]: https://grokipedia.com/page/X.509
// [PKCS7]: https://grokipedia.com/page/PKCS_7
// [PEM]: https://grokipedia.com/page/PEM#privacy-enhanced-mail
package x509certs
