package buffer

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/elanas/pagestore/common"
	"github.com/elanas/pagestore/storage/disk"
	"github.com/elanas/pagestore/storage/page"
)

const (
	testingPageSize = 4096
	testingPoolSize = testingPageSize * 2
)

// testingInitPage formats the slot returned by GetPage as a fresh fixed-slot
// page holding one marker tuple, leaving the page dirty
func testingInitPage(t *testing.T, m *Manager, id common.PageID, seed byte) {
	buf, err := m.GetPage(id)
	assert.Nil(t, err)
	p, err := page.NewPage(id, buf, 16)
	assert.Nil(t, err)
	_, err = p.InsertTuple(page.TestingTuple(16, seed))
	assert.Nil(t, err)
	assert.True(t, page.IsDirty(buf))
}

func TestNewManager(t *testing.T) {
	dm := disk.TestingNewBufferManager(testingPageSize)

	_, err := NewManager(nil, testingPageSize, testingPoolSize)
	assert.Error(t, err)
	_, err = NewManager(dm, 0, testingPoolSize)
	assert.Error(t, err)
	// the pool must hold at least one page
	_, err = NewManager(dm, testingPageSize, testingPageSize-1)
	assert.Error(t, err)

	m, err := NewManager(dm, testingPageSize, testingPoolSize)
	assert.Nil(t, err)
	assert.Equal(t, 2, m.NumPages())
	assert.Equal(t, 2, m.NumFreePages())
}

func TestManagerGetPage(t *testing.T) {
	m, dm, err := TestingNewManager(testingPageSize, testingPoolSize)
	assert.Nil(t, err)

	// seed a page on disk, then fault it in
	id := common.NewPageID(1, 0)
	on := make([]byte, testingPageSize)
	p, err := page.NewPage(id, on, 16)
	assert.Nil(t, err)
	_, err = p.InsertTuple(page.TestingTuple(16, 1))
	assert.Nil(t, err)
	page.ClearDirty(on)
	assert.Nil(t, dm.WritePage(id, on, false))

	assert.False(t, m.HasPage(id))
	buf, err := m.GetPage(id)
	assert.Nil(t, err)
	assert.True(t, m.HasPage(id))
	assert.True(t, bytes.Equal(on, buf))
	assert.Equal(t, 1, m.NumFreePages())

	// a hit returns the same slot without consuming another
	again, err := m.GetPage(id)
	assert.Nil(t, err)
	assert.Same(t, &buf[0], &again[0])
	assert.Equal(t, 1, m.NumFreePages())

	// tuple access goes through a page object wrapping the slot
	rp, err := page.UnpackPage(id, buf)
	assert.Nil(t, err)
	got, ok := rp.GetTuple(common.NewTupleID(id, 0))
	assert.True(t, ok)
	assert.True(t, bytes.Equal(page.TestingTuple(16, 1), got))
}

func TestManagerLRUEviction(t *testing.T) {
	m, _, err := TestingNewManager(testingPageSize, testingPoolSize)
	assert.Nil(t, err)

	a := common.NewPageID(1, 0)
	b := common.NewPageID(1, 1)
	c := common.NewPageID(1, 2)

	// fill both slots with A then B
	_, err = m.GetPage(a)
	assert.Nil(t, err)
	_, err = m.GetPage(b)
	assert.Nil(t, err)
	assert.Equal(t, 0, m.NumFreePages())

	// touching A makes B the least recently used
	_, err = m.GetPage(a)
	assert.Nil(t, err)

	// loading C evicts B, not A
	_, err = m.GetPage(c)
	assert.Nil(t, err)
	assert.True(t, m.HasPage(a))
	assert.False(t, m.HasPage(b))
	assert.True(t, m.HasPage(c))
}

func TestManagerEvictPage(t *testing.T) {
	m, _, err := TestingNewManager(testingPageSize, testingPoolSize)
	assert.Nil(t, err)

	// an empty pool has nothing to evict
	assert.ErrorIs(t, m.EvictPage(), ErrNoResidentPage)

	a := common.NewPageID(1, 0)
	b := common.NewPageID(1, 1)
	_, err = m.GetPage(a)
	assert.Nil(t, err)
	_, err = m.GetPage(b)
	assert.Nil(t, err)

	// A is least recently used and goes first
	assert.Nil(t, m.EvictPage())
	assert.False(t, m.HasPage(a))
	assert.True(t, m.HasPage(b))
	assert.Equal(t, 1, m.NumFreePages())
}

func TestManagerFlushBeforeEvict(t *testing.T) {
	m, dm, err := TestingNewManager(testingPageSize, testingPoolSize)
	assert.Nil(t, err)

	a := common.NewPageID(1, 0)
	b := common.NewPageID(1, 1)
	c := common.NewPageID(1, 2)

	// B holds unflushed changes
	_, err = m.GetPage(a)
	assert.Nil(t, err)
	testingInitPage(t, m, b, 7)

	// touch A, then load C: the dirty victim B must be written back
	_, err = m.GetPage(a)
	assert.Nil(t, err)
	_, err = m.GetPage(c)
	assert.Nil(t, err)
	assert.False(t, m.HasPage(b))

	on := make([]byte, testingPageSize)
	assert.Nil(t, dm.ReadPage(b, on))
	// the flushed image is clean and holds the tuple
	assert.False(t, page.IsDirty(on))
	bp, err := page.UnpackPage(b, on)
	assert.Nil(t, err)
	got, ok := bp.GetTuple(common.NewTupleID(b, 0))
	assert.True(t, ok)
	assert.True(t, bytes.Equal(page.TestingTuple(16, 7), got))
}

func TestManagerDiscardPage(t *testing.T) {
	m, dm, err := TestingNewManager(testingPageSize, testingPoolSize)
	assert.Nil(t, err)

	id := common.NewPageID(1, 0)
	assert.ErrorIs(t, m.DiscardPage(id), ErrPageNotResident)

	// persist a first version, then modify the resident copy
	testingInitPage(t, m, id, 1)
	assert.Nil(t, m.FlushPage(id))
	buf, err := m.GetPage(id)
	assert.Nil(t, err)
	rp, err := page.UnpackPage(id, buf)
	assert.Nil(t, err)
	_, err = rp.InsertTuple(page.TestingTuple(16, 2))
	assert.Nil(t, err)

	// discard abandons the second tuple without flushing
	assert.Nil(t, m.DiscardPage(id))
	assert.False(t, m.HasPage(id))
	assert.Equal(t, 2, m.NumFreePages())

	on := make([]byte, testingPageSize)
	assert.Nil(t, dm.ReadPage(id, on))
	op, err := page.UnpackPage(id, on)
	assert.Nil(t, err)
	assert.Equal(t, 1, op.Header().NumTuples())
}

func TestManagerFlushPage(t *testing.T) {
	m, dm, err := TestingNewManager(testingPageSize, testingPoolSize)
	assert.Nil(t, err)

	id := common.NewPageID(1, 0)
	assert.ErrorIs(t, m.FlushPage(id), ErrPageNotResident)

	testingInitPage(t, m, id, 3)
	assert.Nil(t, m.FlushPage(id))

	// the flush cleared the resident dirty flag and persisted a clean image
	buf, err := m.GetPage(id)
	assert.Nil(t, err)
	assert.False(t, page.IsDirty(buf))
	on := make([]byte, testingPageSize)
	assert.Nil(t, dm.ReadPage(id, on))
	assert.True(t, bytes.Equal(buf, on))

	// flushing a clean page is a no-op
	assert.Nil(t, m.FlushPage(id))
}

func TestManagerClear(t *testing.T) {
	m, dm, err := TestingNewManager(testingPageSize, testingPoolSize)
	assert.Nil(t, err)

	a := common.NewPageID(1, 0)
	b := common.NewPageID(1, 1)
	testingInitPage(t, m, a, 1)
	testingInitPage(t, m, b, 2)

	assert.Nil(t, m.Clear())
	assert.False(t, m.HasPage(a))
	assert.False(t, m.HasPage(b))
	assert.Equal(t, m.NumPages(), m.NumFreePages())

	// dirty pages were flushed on the way out
	on := make([]byte, testingPageSize)
	assert.Nil(t, dm.ReadPage(a, on))
	ap, err := page.UnpackPage(a, on)
	assert.Nil(t, err)
	got, ok := ap.GetTuple(common.NewTupleID(a, 0))
	assert.True(t, ok)
	assert.True(t, bytes.Equal(page.TestingTuple(16, 1), got))

	// the pool stays usable after clearing
	_, err = m.GetPage(a)
	assert.Nil(t, err)
	assert.True(t, m.HasPage(a))
}

func TestManagerStats(t *testing.T) {
	m, _, err := TestingNewManager(testingPageSize, testingPoolSize)
	assert.Nil(t, err)

	assert.Equal(t, testingPageSize, m.PageSize())
	assert.Equal(t, testingPoolSize, m.Size())
	assert.Equal(t, 2, m.NumPages())
	assert.Equal(t, 2, m.NumFreePages())
	assert.Equal(t, testingPoolSize, m.FreeSpace())
	assert.Equal(t, 0, m.UsedSpace())

	_, err = m.GetPage(common.NewPageID(1, 0))
	assert.Nil(t, err)
	assert.Equal(t, 1, m.NumFreePages())
	assert.Equal(t, testingPageSize, m.FreeSpace())
	assert.Equal(t, testingPageSize, m.UsedSpace())
}

func TestManagerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, _, err := TestingNewManager(testingPageSize, testingPoolSize, WithMetrics(reg))
	assert.Nil(t, err)

	a := common.NewPageID(1, 0)
	b := common.NewPageID(1, 1)
	c := common.NewPageID(1, 2)

	_, err = m.GetPage(a)
	assert.Nil(t, err)
	_, err = m.GetPage(a)
	assert.Nil(t, err)
	_, err = m.GetPage(b)
	assert.Nil(t, err)
	_, err = m.GetPage(c)
	assert.Nil(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.hits))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.metrics.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.evictions))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.metrics.flushes))
}
