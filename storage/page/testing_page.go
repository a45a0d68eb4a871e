package page

// TestingTuple returns a deterministic tuple of size bytes derived from seed.
// Two tuples with different seeds differ in every byte.
func TestingTuple(size int, seed byte) []byte {
	t := make([]byte, size)
	for i := range t {
		t[i] = seed + byte(i)
	}
	return t
}
