// Package objects holds the domain types shared by the store, the analytics pipeline and the HTTP surface.
// They live here to keep biz, db and api free of import cycles.
package objects

// AnonymousIdentity is the well known identity of an unauthenticated caller.
const AnonymousIdentity Identity = "2vxsx-fae"

// Identity is an opaque caller principal.
type Identity string

func (i Identity) IsAnonymous() bool {
	return i == AnonymousIdentity || i == ""
}

func (i Identity) String() string {
	return string(i)
}

type (
	DatasetID   uint32
	DimensionID uint8
)
