// Package gate guards dev and admin helper operations with a single shared
// secret presented out of band.
package gate

import "crypto/subtle"

// HeaderName carries the presented secret on HTTP requests.
const HeaderName = "x-admin-key"

type Gate interface {
	Authorize(presented string) bool
}

type SharedSecretGate struct {
	secret []byte
}

func NewSharedSecretGate(secret string) *SharedSecretGate {
	return &SharedSecretGate{secret: []byte(secret)}
}

// Authorize compares in constant time. An empty secret on either side never
// matches.
func (g *SharedSecretGate) Authorize(presented string) bool {
	if len(g.secret) == 0 || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), g.secret) == 1
}
