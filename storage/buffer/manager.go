/*
Buffer pool manager: a fixed-capacity in-memory cache of disk pages.

The pool owns one contiguous byte arena of poolSize bytes, logically
partitioned into poolSize/pageSize page-sized slots. Three structures track
the slots:

  - the page directory maps a resident PageID to its slot offset
  - the free list holds the offsets of unused slots; directory values and
    free list entries are disjoint and together always cover every slot
  - the LRU list totally orders resident pages from least- to most-recently
    touched. Every successful GetPage — hit or fresh load — promotes the
    page to the most-recent end; recency is tracked per access, not per load.

A page is either Absent (not in the directory) or Resident (directory entry,
bytes live in an arena slot). Page and header objects exist only while
resident: they are views over the slot, torn down on eviction. There is no
pin state, so a slot view handed out by GetPage is invalidated by a later
eviction while possibly still referenced — the single-owner model (one
logical actor, synchronous calls, no locking) is what makes this safe. A
concurrent adaptation must add a pin count or a lock bounding view lifetimes.

Eviction selects the least-recently-used resident page. A dirty victim is
written back through the disk manager before its slot is reused; evicting a
dirty page without flushing would silently lose writes. DiscardPage is the
one deliberate exception: it abandons a resident page without flushing.

The pool stays layout-agnostic: GetPage returns the raw slot bytes and the
caller wraps them with page.UnpackPage or page.UnpackSlottedPage. Both
layouts keep their flags byte at offset 0, which is how the pool tests and
clears dirtiness without parsing headers.
*/
package buffer

import (
	"container/list"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/elanas/pagestore/common"
	"github.com/elanas/pagestore/storage/disk"
	"github.com/elanas/pagestore/storage/page"
)

var (
	// ErrPageNotResident is returned by operations that require the page
	// to be resident in the pool
	ErrPageNotResident = errors.New("page is not resident in the buffer pool")

	// ErrNoResidentPage is returned by EvictPage when the pool is empty
	ErrNoResidentPage = errors.New("no resident page to evict")
)

// FileManager is what the pool consumes from the disk layer: materialize a
// page's bytes into a caller-supplied buffer, and persist a page's bytes.
// A PageID deterministically identifies a location in a backing file.
type FileManager interface {
	ReadPage(id common.PageID, buf []byte) error
	WritePage(id common.PageID, buf []byte, sync bool) error
}

var _ FileManager = (*disk.Manager)(nil)

// Manager manages the buffer pool
type Manager struct {
	fm       FileManager
	pageSize int
	poolSize int
	// arena is the single contiguous memory region all page slots live in
	arena []byte
	// freeList holds the offsets of unused slots
	freeList []int
	// directory maps resident page ids to slot offsets
	directory map[common.PageID]int
	// lru orders resident page ids, front = most recently used
	lru      *list.List
	lruElems map[common.PageID]*list.Element

	logger  *zap.Logger
	metrics *metrics
}

// Option configures the manager
type Option func(*Manager)

// WithLogger makes the pool log through l instead of discarding
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics registers the pool's counters with reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(m *Manager) { m.metrics = newMetrics(reg) }
}

// NewManager initializes a buffer pool of poolSize bytes caching pages of
// pageSize bytes, resolving misses through fm
func NewManager(fm FileManager, pageSize, poolSize int, opts ...Option) (*Manager, error) {
	if fm == nil {
		return nil, errors.New("no file manager provided to buffer pool constructor")
	}
	if pageSize <= 0 {
		return nil, errors.Errorf("invalid page size %d", pageSize)
	}
	if poolSize < pageSize {
		return nil, errors.Errorf("pool size %d cannot hold a single page of size %d", poolSize, pageSize)
	}
	m := &Manager{
		fm:        fm,
		pageSize:  pageSize,
		poolSize:  poolSize,
		arena:     make([]byte, poolSize),
		freeList:  newFreeList(poolSize, pageSize),
		directory: make(map[common.PageID]int),
		lru:       list.New(),
		lruElems:  make(map[common.PageID]*list.Element),
		logger:    zap.NewNop(),
		metrics:   newMetrics(nil),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// newFreeList returns the offsets of every slot in the arena
func newFreeList(poolSize, pageSize int) []int {
	n := poolSize / pageSize
	fl := make([]int, 0, n)
	for i := 0; i < n; i++ {
		fl = append(fl, i*pageSize)
	}
	return fl
}

// slot returns the arena slice backing the slot at offset
func (m *Manager) slot(offset int) []byte {
	return m.arena[offset : offset+m.pageSize]
}

// HasPage is whether the page is resident
func (m *Manager) HasPage(id common.PageID) bool {
	_, ok := m.directory[id]
	return ok
}

// GetPage returns the arena slot holding the page's bytes, faulting the
// page in from the file manager on miss. The page is marked most recently
// used on every successful call. When the pool is full the least recently
// used resident page is evicted to make room.
//
// The returned slice is a view over the arena: tuple mutations through a
// page object wrapping it are visible in the pool immediately, and the view
// is invalidated when the page is later evicted or discarded.
func (m *Manager) GetPage(id common.PageID) ([]byte, error) {
	if off, ok := m.directory[id]; ok {
		m.lru.MoveToFront(m.lruElems[id])
		m.metrics.hits.Inc()
		return m.slot(off), nil
	}
	m.metrics.misses.Inc()

	if len(m.freeList) == 0 {
		if err := m.EvictPage(); err != nil {
			return nil, errors.Wrap(err, "EvictPage failed")
		}
	}
	off := m.freeList[0]
	m.freeList = m.freeList[1:]

	buf := m.slot(off)
	if err := m.fm.ReadPage(id, buf); err != nil {
		m.freeList = append(m.freeList, off)
		return nil, errors.Wrap(err, "fm.ReadPage failed")
	}
	m.directory[id] = off
	m.lruElems[id] = m.lru.PushFront(id)
	m.logger.Debug("faulted page into pool",
		zap.Uint32("file", uint32(id.File)),
		zap.Uint32("page", id.PageNum),
		zap.Int("slot", off),
	)
	return buf, nil
}

// EvictPage removes the least recently used resident page and returns its
// slot to the free list. A dirty victim is written back through the file
// manager first.
func (m *Manager) EvictPage() error {
	victim := m.lru.Back()
	if victim == nil {
		return ErrNoResidentPage
	}
	id := victim.Value.(common.PageID)
	off := m.directory[id]
	buf := m.slot(off)
	if page.IsDirty(buf) {
		if err := m.writeBack(id, buf); err != nil {
			return errors.Wrap(err, "writeBack failed")
		}
	}
	delete(m.directory, id)
	m.lru.Remove(victim)
	delete(m.lruElems, id)
	m.freeList = append(m.freeList, off)
	m.metrics.evictions.Inc()
	m.logger.Debug("evicted page",
		zap.Uint32("file", uint32(id.File)),
		zap.Uint32("page", id.PageNum),
		zap.Int("slot", off),
	)
	return nil
}

// DiscardPage removes a resident page and returns its slot to the free list
// WITHOUT flushing, even if the page is dirty. This is the explicit
// abandon-changes operation, distinct from eviction.
func (m *Manager) DiscardPage(id common.PageID) error {
	off, ok := m.directory[id]
	if !ok {
		return errors.Wrapf(ErrPageNotResident, "file %d page %d", id.File, id.PageNum)
	}
	delete(m.directory, id)
	m.lru.Remove(m.lruElems[id])
	delete(m.lruElems, id)
	m.freeList = append(m.freeList, off)
	m.logger.Debug("discarded page",
		zap.Uint32("file", uint32(id.File)),
		zap.Uint32("page", id.PageNum),
	)
	return nil
}

// FlushPage writes a resident dirty page's bytes through the file manager
// and clears its dirty flag. A clean resident page is a no-op. A page that
// is not resident is an error.
func (m *Manager) FlushPage(id common.PageID) error {
	off, ok := m.directory[id]
	if !ok {
		return errors.Wrapf(ErrPageNotResident, "file %d page %d", id.File, id.PageNum)
	}
	buf := m.slot(off)
	if !page.IsDirty(buf) {
		return nil
	}
	if err := m.writeBack(id, buf); err != nil {
		return errors.Wrap(err, "writeBack failed")
	}
	return nil
}

// writeBack persists the slot's bytes with the dirty flag cleared, so the
// on-disk image never claims to be dirty. The flag is restored when the
// write fails.
func (m *Manager) writeBack(id common.PageID, buf []byte) error {
	page.ClearDirty(buf)
	if err := m.fm.WritePage(id, buf, false); err != nil {
		page.SetDirty(buf)
		return errors.Wrap(err, "fm.WritePage failed")
	}
	m.metrics.flushes.Inc()
	return nil
}

// Clear flushes every dirty resident page, then resets the pool to cold:
// the directory empties and every slot returns to the free list. The pool
// stays usable.
func (m *Manager) Clear() error {
	for id, off := range m.directory {
		buf := m.slot(off)
		if page.IsDirty(buf) {
			if err := m.writeBack(id, buf); err != nil {
				return errors.Wrap(err, "writeBack failed")
			}
		}
	}
	m.directory = make(map[common.PageID]int)
	m.lru.Init()
	m.lruElems = make(map[common.PageID]*list.Element)
	m.freeList = newFreeList(m.poolSize, m.pageSize)
	m.logger.Debug("cleared pool")
	return nil
}

// PageSize returns the byte size of one page slot
func (m *Manager) PageSize() int {
	return m.pageSize
}

// NumPages returns the total number of slots in the pool
func (m *Manager) NumPages() int {
	return m.poolSize / m.pageSize
}

// NumFreePages returns the number of unused slots
func (m *Manager) NumFreePages() int {
	return len(m.freeList)
}

// Size returns the pool's capacity in bytes
func (m *Manager) Size() int {
	return m.poolSize
}

// FreeSpace returns the bytes held by unused slots
func (m *Manager) FreeSpace() int {
	return m.NumFreePages() * m.pageSize
}

// UsedSpace returns the bytes held by resident pages
func (m *Manager) UsedSpace() int {
	return m.Size() - m.FreeSpace()
}
