package cache

// ScopedKeyer prefixes every key of an inner [Keyer], so several tenants of
// one shared backend never see each other's entries. The HTTP server scopes
// keys per API key.
//
//	k := cache.NewScopedKeyer(nil, "tenant:lab-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// PointsKey returns the prefixed points key.
func (k *ScopedKeyer) PointsKey(policy, paramsHash string) string {
	return k.prefix + k.inner.PointsKey(policy, paramsHash)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(runHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(runHash, opts)
}
