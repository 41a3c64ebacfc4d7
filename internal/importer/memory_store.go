package importer

import (
	"strings"
	"sync"

	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/model"
)

// MemoryStore 内存记录存储
// 实现 RecordStore/HotelStore/AtomicStore，用于试运行预览与测试
type MemoryStore struct {
	dossiers map[string]*model.BookingDossier
	hotels   map[string]*model.Hotel // 键为规范化（小写）名称
	nextID   int64
	mu       sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		dossiers: make(map[string]*model.BookingDossier),
		hotels:   make(map[string]*model.Hotel),
		nextID:   1,
	}
}

// UpsertDossier 以 reference 为键整条覆盖
func (s *MemoryStore) UpsertDossier(d *model.BookingDossier) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.dossiers[d.Reference]
	clone := *d
	s.dossiers[d.Reference] = &clone
	return !exists, nil
}

// DossierExists reference 是否已存在
func (s *MemoryStore) DossierExists(reference string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.dossiers[reference]
	return ok, nil
}

// GetDossier 按 reference 取档案
func (s *MemoryStore) GetDossier(reference string) (*model.BookingDossier, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dossiers[reference]
	return d, ok
}

// CountDossiers 档案总数
func (s *MemoryStore) CountDossiers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dossiers)
}

// FindOrCreateHotel 大小写不敏感精确匹配，未命中才创建
func (s *MemoryStore) FindOrCreateHotel(name, city string) (*model.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(name))
	if h, ok := s.hotels[key]; ok {
		return h, nil
	}
	h := &model.Hotel{ID: s.nextID, Name: strings.TrimSpace(name), City: city}
	s.nextID++
	s.hotels[key] = h
	return h, nil
}

// SetHotelAddress 只在地址为空时写入
func (s *MemoryStore) SetHotelAddress(id int64, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.hotels {
		if h.ID == id {
			if h.Address == "" {
				h.Address = address
			}
			return nil
		}
	}
	return nil
}

// CountHotels 酒店实体数
func (s *MemoryStore) CountHotels() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hotels)
}

// Atomic 先快照档案表，回调失败时整体还原
func (s *MemoryStore) Atomic(fn func(RecordStore) error) error {
	s.mu.Lock()
	snapshot := make(map[string]*model.BookingDossier, len(s.dossiers))
	for ref, d := range s.dossiers {
		clone := *d
		snapshot[ref] = &clone
	}
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.dossiers = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}
