// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package revocation covers certificate revocation: the caller facing mode
// and scope settings, the post-processor that narrows revocation results to
// the requested scope, and a checker that consults [OCSP] responders and
// [CRL] distribution points with an LRU cache.
//
// Trust backends only understand "check revocation or don't". Restricting
// the check to part of the path is done afterwards by [Adjust].
//
// [OCSP]: https://grokipedia.com/page/Online_Certificate_Status_Protocol
// [CRL]: https://grokipedia.com/page/Certificate_revocation_list
package revocation
