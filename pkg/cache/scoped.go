package cache

// ScopedKeyer prefixes every key of an inner keyer, giving callers that share
// one backend separate namespaces.
//
//	serverKeyer := NewScopedKeyer(NewDefaultKeyer(), "serve:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, which defaults to the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ReportKey returns the prefixed report key.
func (k *ScopedKeyer) ReportKey(boardHash string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(boardHash, opts)
}

// RatsnestKey returns the prefixed ratsnest key.
func (k *ScopedKeyer) RatsnestKey(boardHash string, opts RatsnestKeyOpts) string {
	return k.prefix + k.inner.RatsnestKey(boardHash, opts)
}
