// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package policy

// node is a valid_policy_tree node. The root is the depth 0 anyPolicy node
// standing for the trust anchor.
type node struct {
	parent      *node
	children    []*node
	validPolicy string
	expected    map[string]bool
	depth       int
}

type tree struct{ root *node }

func newTree() *tree {
	return &tree{root: &node{validPolicy: AnyPolicy, expected: set(AnyPolicy)}}
}

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

func (n *node) addChild(validPolicy string, expected map[string]bool) *node {
	c := &node{parent: n, validPolicy: validPolicy, expected: expected, depth: n.depth + 1}
	n.children = append(n.children, c)
	return c
}

func (n *node) hasChild(validPolicy string) bool {
	for _, c := range n.children {
		if c.validPolicy == validPolicy {
			return true
		}
	}
	return false
}

func (n *node) detach() {
	if n.parent == nil {
		return
	}
	siblings := n.parent.children
	for i, c := range siblings {
		if c == n {
			n.parent.children = append(siblings[:i], siblings[i+1:]...)
			return
		}
	}
}

func (t *tree) atDepth(depth int) []*node {
	level := []*node{t.root}
	for d := 0; d < depth && len(level) > 0; d++ {
		var next []*node
		for _, n := range level {
			next = append(next, n.children...)
		}
		level = next
	}
	return level
}

// prune deletes childless nodes of depth below maxDepth, deepest first.
// It returns nil when the root itself is deleted.
func (t *tree) prune(maxDepth int) *tree {
	for d := maxDepth - 1; d >= 0; d-- {
		for _, n := range t.atDepth(d) {
			if len(n.children) == 0 {
				if n == t.root {
					return nil
				}
				n.detach()
			}
		}
	}
	return t
}

// update processes the certificate policies of the certificate at depth.
func (t *tree) update(policies []string, depth int, anyAllowed bool) *tree {
	parents := t.atDepth(depth - 1)
	hasAny := false

	for _, p := range policies {
		if p == AnyPolicy {
			hasAny = true
			continue
		}
		matched := false
		for _, n := range parents {
			if n.expected[p] {
				n.addChild(p, set(p))
				matched = true
			}
		}
		if matched {
			continue
		}
		for _, n := range parents {
			if n.validPolicy == AnyPolicy {
				n.addChild(p, set(p))
			}
		}
	}

	if hasAny && anyAllowed {
		for _, n := range parents {
			for e := range n.expected {
				if !n.hasChild(e) {
					n.addChild(e, set(e))
				}
			}
		}
	}

	return t.prune(depth)
}

// applyMappings processes the policy mappings of the certificate at depth.
func (t *tree) applyMappings(mappings []Mapping, depth int, mappingAllowed bool) *tree {
	byIssuer := make(map[string][]string)
	var order []string
	for _, m := range mappings {
		if _, ok := byIssuer[m.IssuerDomainPolicy]; !ok {
			order = append(order, m.IssuerDomainPolicy)
		}
		byIssuer[m.IssuerDomainPolicy] = append(byIssuer[m.IssuerDomainPolicy], m.SubjectDomainPolicy)
	}

	for _, issuerPolicy := range order {
		nodes := t.atDepth(depth)
		if mappingAllowed {
			matched := false
			var anyNode *node
			for _, n := range nodes {
				switch n.validPolicy {
				case issuerPolicy:
					n.expected = set(byIssuer[issuerPolicy]...)
					matched = true
				case AnyPolicy:
					anyNode = n
				}
			}
			if !matched && anyNode != nil && anyNode.parent != nil {
				anyNode.parent.addChild(issuerPolicy, set(byIssuer[issuerPolicy]...))
			}
			continue
		}

		for _, n := range nodes {
			if n.validPolicy == issuerPolicy {
				n.detach()
			}
		}
		if t = t.prune(depth); t == nil {
			return nil
		}
	}
	return t
}

// authorityPolicies returns the anchor domain policies that reach depth.
// wildcard is true when an all-anyPolicy branch reaches depth.
func (t *tree) authorityPolicies(depth int) (policies map[string]bool, wildcard bool) {
	policies = make(map[string]bool)
	for _, leaf := range t.atDepth(depth) {
		domain := ""
		for n := leaf; n != nil && n != t.root; n = n.parent {
			if n.validPolicy != AnyPolicy {
				domain = n.validPolicy
			}
		}
		if domain == "" {
			wildcard = true
			continue
		}
		policies[domain] = true
	}
	return policies, wildcard
}
