// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package revocation

import "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/status"

// Adjust clears revocation flags on the elements outside scope. It works in
// place on elems, which are ordered leaf first, and returns them.
//
// With [ExcludeRoot] only the last element is considered, and only when it
// does not carry PartialChain: a path that ran out of parents has no anchor
// to exclude. With [EndCertificateOnly] every element but index 0 is
// cleared, so a single element path is left as is.
func Adjust(elems []status.Element, scope Scope) []status.Element {
	switch scope {
	case ExcludeRoot:
		if len(elems) == 0 {
			return elems
		}
		last := &elems[len(elems)-1]
		if !last.Flags.Has(status.PartialChain) {
			last.Flags &^= status.RevocationFlags
		}
	case EndCertificateOnly:
		for i := 1; i < len(elems); i++ {
			elems[i].Flags &^= status.RevocationFlags
		}
	}
	return elems
}
