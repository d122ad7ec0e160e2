package entities

import "strconv"

// Handle is the opaque reference a host object holds to its native compute
// context state. The zero value means no state is associated.
type Handle uint64

// NoHandle is the zero Handle.
const NoHandle Handle = 0

// IsZero reports whether h refers to no state.
func (h Handle) IsZero() bool {
	return h == NoHandle
}

func (h Handle) String() string {
	return "handle#" + strconv.FormatUint(uint64(h), 10)
}
