package store

import (
	"database/sql"
	"fmt"

	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/model"
)

// UpsertDossier 以 reference 为唯一键整条覆盖（create-or-replace，不做合并）
func (s *Store) UpsertDossier(d *model.BookingDossier) (bool, error) {
	exists, err := s.DossierExists(d.Reference)
	if err != nil {
		return false, err
	}

	var hotelID interface{}
	if d.HotelID > 0 {
		hotelID = d.HotelID
	}

	_, err = s.q.Exec(`
		INSERT INTO booking_dossiers (
			reference, movement, city,
			arrival_airport, departure_airport, arrival_flight, departure_flight,
			arrival_time, departure_time, pax_arrival, pax_departure,
			holder_name, hotel_id, hotel_name, tour_operator, observations,
			row_no, source_sheet, source_file, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(reference) DO UPDATE SET
			movement = excluded.movement,
			city = excluded.city,
			arrival_airport = excluded.arrival_airport,
			departure_airport = excluded.departure_airport,
			arrival_flight = excluded.arrival_flight,
			departure_flight = excluded.departure_flight,
			arrival_time = excluded.arrival_time,
			departure_time = excluded.departure_time,
			pax_arrival = excluded.pax_arrival,
			pax_departure = excluded.pax_departure,
			holder_name = excluded.holder_name,
			hotel_id = excluded.hotel_id,
			hotel_name = excluded.hotel_name,
			tour_operator = excluded.tour_operator,
			observations = excluded.observations,
			row_no = excluded.row_no,
			source_sheet = excluded.source_sheet,
			source_file = excluded.source_file,
			updated_at = CURRENT_TIMESTAMP
	`,
		d.Reference, string(d.Movement), d.City,
		d.ArrivalAirport, d.DepartureAirport, d.ArrivalFlight, d.DepartureFlight,
		d.ArrivalTime, d.DepartureTime, d.PaxArrival, d.PaxDeparture,
		d.HolderName, hotelID, d.HotelName, d.TourOperator, d.Observations,
		d.RowNo, d.SourceSheet, d.SourceFile,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert dossier %s: %w", d.Reference, err)
	}
	return !exists, nil
}

// DossierExists reference 是否已存在（区分大小写精确匹配）
func (s *Store) DossierExists(reference string) (bool, error) {
	var one int
	err := s.q.QueryRow(`SELECT 1 FROM booking_dossiers WHERE reference = ?`, reference).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check dossier existence: %w", err)
	}
	return true, nil
}

// GetDossier 按 reference 取档案
func (s *Store) GetDossier(reference string) (*model.BookingDossier, error) {
	row := s.q.QueryRow(dossierSelect+` WHERE reference = ?`, reference)
	return scanDossier(row)
}

// ListDossiers 档案列表（按更新时间倒序）
func (s *Store) ListDossiers(limit int) ([]*model.BookingDossier, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.q.Query(dossierSelect+` ORDER BY updated_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list dossiers: %w", err)
	}
	defer rows.Close()

	var out []*model.BookingDossier
	for rows.Next() {
		d, err := scanDossier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CountDossiers 档案总数
func (s *Store) CountDossiers() (int, error) {
	var n int
	if err := s.q.QueryRow(`SELECT COUNT(*) FROM booking_dossiers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count dossiers: %w", err)
	}
	return n, nil
}

const dossierSelect = `
	SELECT reference, movement, city,
		arrival_airport, departure_airport, arrival_flight, departure_flight,
		arrival_time, departure_time, pax_arrival, pax_departure,
		holder_name, hotel_id, hotel_name, tour_operator, observations,
		row_no, source_sheet, source_file
	FROM booking_dossiers`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDossier(row rowScanner) (*model.BookingDossier, error) {
	d := &model.BookingDossier{}
	var movement string
	var hotelID sql.NullInt64
	var arrival, departure sql.NullTime
	err := row.Scan(
		&d.Reference, &movement, &d.City,
		&d.ArrivalAirport, &d.DepartureAirport, &d.ArrivalFlight, &d.DepartureFlight,
		&arrival, &departure, &d.PaxArrival, &d.PaxDeparture,
		&d.HolderName, &hotelID, &d.HotelName, &d.TourOperator, &d.Observations,
		&d.RowNo, &d.SourceSheet, &d.SourceFile,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan dossier: %w", err)
	}
	d.Movement = model.MovementType(movement)
	if hotelID.Valid {
		d.HotelID = hotelID.Int64
	}
	if arrival.Valid {
		t := arrival.Time
		d.ArrivalTime = &t
	}
	if departure.Valid {
		t := departure.Time
		d.DepartureTime = &t
	}
	return d, nil
}
