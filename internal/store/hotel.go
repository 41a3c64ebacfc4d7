package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/model"
)

// FindOrCreateHotel 按规范化名称大小写不敏感精确匹配，未命中才创建
// 重复调用不会为同名酒店产生重复实体
func (s *Store) FindOrCreateHotel(name, city string) (*model.Hotel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("hotel name is empty")
	}
	norm := strings.ToLower(name)

	if h, err := s.findHotelByNorm(norm); err != nil {
		return nil, err
	} else if h != nil {
		return h, nil
	}

	res, err := s.q.Exec(`INSERT INTO hotels (name, name_norm, city) VALUES (?, ?, ?)`, name, norm, city)
	if err != nil {
		// 并发 create-if-missing 撞唯一键时重查一次
		if h, ferr := s.findHotelByNorm(norm); ferr == nil && h != nil {
			return h, nil
		}
		return nil, fmt.Errorf("failed to create hotel %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get hotel id: %w", err)
	}
	return &model.Hotel{ID: id, Name: name, City: city}, nil
}

func (s *Store) findHotelByNorm(norm string) (*model.Hotel, error) {
	h := &model.Hotel{}
	err := s.q.QueryRow(`SELECT id, name, city, address FROM hotels WHERE name_norm = ?`, norm).
		Scan(&h.ID, &h.Name, &h.City, &h.Address)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find hotel: %w", err)
	}
	return h, nil
}

// SetHotelAddress 只在地址为空时写入，已有地址不覆盖
func (s *Store) SetHotelAddress(id int64, address string) error {
	_, err := s.q.Exec(`UPDATE hotels SET address = ? WHERE id = ? AND address = ''`, address, id)
	if err != nil {
		return fmt.Errorf("failed to set hotel address: %w", err)
	}
	return nil
}

// ListHotels 酒店列表
func (s *Store) ListHotels() ([]*model.Hotel, error) {
	rows, err := s.q.Query(`SELECT id, name, city, address FROM hotels ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	defer rows.Close()

	var out []*model.Hotel
	for rows.Next() {
		h := &model.Hotel{}
		if err := rows.Scan(&h.ID, &h.Name, &h.City, &h.Address); err != nil {
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// CountHotels 酒店总数
func (s *Store) CountHotels() (int, error) {
	var n int
	if err := s.q.QueryRow(`SELECT COUNT(*) FROM hotels`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count hotels: %w", err)
	}
	return n, nil
}
