package memproc

// AddressInfo is the compact tag attached to every scan candidate so a
// caller can render "static/code-section" without a second map lookup,
// per spec.md's data model.
type AddressInfo struct {
	Writable bool
}

// InfoForRegion derives the AddressInfo a candidate discovered in r
// should carry.
func InfoForRegion(r Region) AddressInfo {
	return AddressInfo{Writable: r.Writable}
}
