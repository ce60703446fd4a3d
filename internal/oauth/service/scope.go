package service

import (
	"strings"

	"github.com/oauth2gate/authd/internal/oauth/domain"
	"github.com/oauth2gate/authd/pkg/httpx"
)

const wildcardScope = "*"

func fields(scope string) []string {
	return httpx.ParseSpaceDelimitedFields(scope)
}

func containsToken(scope, token string) bool {
	for _, t := range fields(scope) {
		if t == token {
			return true
		}
	}
	return false
}

// ValidateScope checks requested against the client's declared scope. A
// caller may never request the wildcard itself, regardless of the client's
// own scope; otherwise, if the client's scope is the wildcard, anything is
// accepted, and every requested token must otherwise appear in the client's
// scope.
func ValidateScope(client domain.Client, requested string) bool {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return true
	}
	if requested == wildcardScope {
		return false
	}
	if client.Scope == wildcardScope {
		return true
	}
	for _, t := range fields(requested) {
		if !containsToken(client.Scope, t) {
			return false
		}
	}
	return true
}

// intersect returns the set intersection of two space-separated token
// strings, deduplicated, order unspecified.
func intersect(a, b string) string {
	setB := make(map[string]struct{}, len(fields(b)))
	for _, t := range fields(b) {
		setB[t] = struct{}{}
	}
	seen := make(map[string]struct{})
	var out []string
	for _, t := range fields(a) {
		if _, ok := setB[t]; !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return strings.Join(out, " ")
}

// MergeScope resolves the scope granted to an issued token from the
// subject's own scope, the caller's requested scope (if any), and the
// client's declared scope, per the wildcard rules in the scope model.
func MergeScope(subjectScope, requestScope string, client domain.Client) string {
	requestScope = strings.TrimSpace(requestScope)
	if requestScope != "" {
		if requestScope == wildcardScope {
			return subjectScope
		}
		if subjectScope == wildcardScope {
			return requestScope
		}
		return intersect(requestScope, subjectScope)
	}

	if client.Scope == wildcardScope {
		return subjectScope
	}
	if subjectScope == wildcardScope {
		return client.Scope
	}
	return intersect(subjectScope, client.Scope)
}

// IsSubsetScope reports whether every token in narrower also appears in
// wider, treating the wildcard as containing everything. Used by the
// refresh_token grant to reject scope broadening.
func IsSubsetScope(narrower, wider string) bool {
	if wider == wildcardScope {
		return true
	}
	if narrower == wildcardScope {
		return false
	}
	for _, t := range fields(narrower) {
		if !containsToken(wider, t) {
			return false
		}
	}
	return true
}
