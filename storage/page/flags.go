package page

// byte offset of the fields shared by both header layouts
// the flags byte deliberately comes first so that the buffer pool can test
// and clear dirtiness of a resident page without knowing its layout
const (
	flagsOffset           = 0
	tupleSizeOffset       = flagsOffset + 1
	freeSpaceOffsetOffset = tupleSizeOffset + 2
	pageCapacityOffset    = freeSpaceOffsetOffset + 2
	// HeaderSize is the byte size of the packed fixed-slot page header.
	// the slotted header appends its occupancy bitmap after these fields.
	HeaderSize = pageCapacityOffset + 2
)

// flag bitmasks stored in the flags byte
const (
	dirtyMask byte = 0x01
)

// IsDirty is whether the dirty bit is set in the page buffer
func IsDirty(p []byte) bool {
	return p[flagsOffset]&dirtyMask != 0
}

// SetDirty sets the dirty bit in the page buffer
func SetDirty(p []byte) {
	p[flagsOffset] |= dirtyMask
}

// ClearDirty clears the dirty bit in the page buffer
func ClearDirty(p []byte) {
	p[flagsOffset] &^= dirtyMask
}
