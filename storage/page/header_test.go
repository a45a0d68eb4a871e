package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageHeader(t *testing.T) {
	tests := []struct {
		name      string
		buffer    []byte
		tupleSize int
		wantErr   bool
	}{
		{
			name:      "valid construction",
			buffer:    make([]byte, 4096),
			tupleSize: 16,
			wantErr:   false,
		},
		{
			name:      "no backing buffer",
			buffer:    nil,
			tupleSize: 16,
			wantErr:   true,
		},
		{
			name:      "tuple size is zero",
			buffer:    make([]byte, 4096),
			tupleSize: 0,
			wantErr:   true,
		},
		{
			name:      "buffer too small for header",
			buffer:    make([]byte, HeaderSize-1),
			tupleSize: 16,
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewPageHeader(tt.buffer, tt.tupleSize)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, HeaderSize, h.FreeSpaceOffset())
			assert.Equal(t, len(tt.buffer), h.PageCapacity())
			assert.False(t, h.IsDirty())
			assert.Equal(t, 0, h.NumTuples())
		})
	}
}

func TestPageHeaderPackUnpack(t *testing.T) {
	buffer := make([]byte, 4096)
	h, err := NewPageHeader(buffer, 16)
	assert.Nil(t, err)

	// allocate a couple of tuples so the free space offset is not pristine
	_, ok := h.NextFreeTuple()
	assert.True(t, ok)
	_, ok = h.NextFreeTuple()
	assert.True(t, ok)

	h2, err := UnpackPageHeader(buffer)
	assert.Nil(t, err)
	assert.True(t, h.Equal(h2))

	// a header over a different capacity must not compare equal
	buffer2 := make([]byte, 2048)
	h3, err := NewPageHeader(buffer2, 16)
	assert.Nil(t, err)
	assert.False(t, h.Equal(h3))
}

func TestPageHeaderDirtyFlag(t *testing.T) {
	buffer := make([]byte, 4096)
	h, err := NewPageHeader(buffer, 16)
	assert.Nil(t, err)

	assert.False(t, h.IsDirty())
	h.SetDirty(true)
	assert.True(t, h.IsDirty())
	// the flag is written through to the buffer
	assert.True(t, IsDirty(buffer))
	h.SetDirty(false)
	assert.False(t, h.IsDirty())
	assert.False(t, IsDirty(buffer))
}

func TestPageHeaderNextFreeTuple(t *testing.T) {
	buffer := make([]byte, 4096)
	h, err := NewPageHeader(buffer, 16)
	assert.Nil(t, err)

	// the first tuple is allocated at the header boundary
	off, ok := h.NextFreeTuple()
	assert.True(t, ok)
	assert.Equal(t, HeaderSize, off)

	// offsets strictly increase, one tuple width apart
	prev := off
	allocated := 1
	for {
		off, ok := h.NextFreeTuple()
		if !ok {
			break
		}
		assert.Equal(t, prev+16, off)
		prev = off
		allocated++
	}
	assert.Equal(t, 255, allocated)
	assert.False(t, h.HasFreeTuple())

	// exhaustion is stable: further calls keep reporting no space
	_, ok = h.NextFreeTuple()
	assert.False(t, ok)
	assert.Equal(t, 255, h.NumTuples())
}

func TestPageHeaderSpace(t *testing.T) {
	buffer := make([]byte, 4096)
	h, err := NewPageHeader(buffer, 16)
	assert.Nil(t, err)

	assert.Equal(t, 0, h.UsedSpace())
	assert.Equal(t, 4096-HeaderSize, h.FreeSpace())
	assert.True(t, h.HasFreeTuple())

	n := 10
	for i := 0; i < n; i++ {
		_, ok := h.NextFreeTuple()
		assert.True(t, ok)
	}
	assert.Equal(t, n*16, h.UsedSpace())
	assert.Equal(t, 4096-(HeaderSize+n*16), h.FreeSpace())
	assert.Equal(t, n, h.NumTuples())
}
