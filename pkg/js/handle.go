package js

import "strconv"

// Handle is an opaque host-assigned identifier. Equal handles name the
// same host entity; wrapper objects carrying them are never compared by
// identity.
type Handle int

func (h Handle) String() string {
	return strconv.Itoa(int(h))
}
