package authencoding

// ConstantTimeCompare reports whether a and b are equal.
//
// When the lengths match, every byte pair is visited and the differences are
// folded into an accumulator, so the running time does not depend on where
// (or whether) the inputs differ. A length mismatch returns false at once;
// callers only compare against stored values whose length is public.
func ConstantTimeCompare(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var acc byte
	for i := range a {
		acc |= a[i] ^ b[i]
	}
	return acc == 0
}
