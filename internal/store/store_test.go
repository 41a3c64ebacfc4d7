package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/importer"
	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/model"
	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/parser"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleDossier(ref string) *model.BookingDossier {
	ts := time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC)
	return &model.BookingDossier{
		Reference:      ref,
		Movement:       model.MovementArrival,
		City:           "Malaga",
		ArrivalAirport: "AGP",
		ArrivalFlight:  "FR1234",
		ArrivalTime:    &ts,
		PaxArrival:     4,
		HolderName:     "GARCIA LOPEZ",
		HotelName:      "Playa Sol",
		TourOperator:   "TUI",
		Observations:   "late arrival",
		RowNo:          2,
		SourceSheet:    "Llegadas",
		SourceFile:     "bookings.xlsx",
	}
}

func TestUpsertDossier_CreateThenOverwrite(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	created, err := s.UpsertDossier(sampleDossier("BK1"))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !created {
		t.Fatalf("first upsert must create")
	}

	d2 := sampleDossier("BK1")
	d2.PaxArrival = 9
	d2.HolderName = ""
	created, err = s.UpsertDossier(d2)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if created {
		t.Fatalf("second upsert must update")
	}

	got, err := s.GetDossier("BK1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("dossier missing")
	}
	// 整条覆盖：后一次的空值也要生效
	if got.PaxArrival != 9 || got.HolderName != "" {
		t.Fatalf("overwrite incomplete: %+v", got)
	}
	if got.ArrivalTime == nil || !got.ArrivalTime.Equal(time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC)) {
		t.Fatalf("timestamp round trip failed: %v", got.ArrivalTime)
	}

	n, err := s.CountDossiers()
	if err != nil || n != 1 {
		t.Fatalf("count: %d %v", n, err)
	}
}

func TestGetDossier_Missing(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	got, err := s.GetDossier("NOPE")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("want nil, got %+v", got)
	}
}

func TestListDossiers(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	for _, ref := range []string{"BK1", "BK2", "BK3"} {
		if _, err := s.UpsertDossier(sampleDossier(ref)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	all, err := s.ListDossiers(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("want 3, got %d", len(all))
	}

	limited, err := s.ListDossiers(2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("limit: %d %v", len(limited), err)
	}
}

func TestFindOrCreateHotel_CaseInsensitive(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	h1, err := s.FindOrCreateHotel("Hotel Marina", "Malaga")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	h2, err := s.FindOrCreateHotel("HOTEL MARINA", "")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if h1.ID != h2.ID {
		t.Fatalf("case variants must resolve to one entity: %d vs %d", h1.ID, h2.ID)
	}

	n, err := s.CountHotels()
	if err != nil || n != 1 {
		t.Fatalf("count: %d %v", n, err)
	}
}

func TestSetHotelAddress_NoOverwrite(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	h, err := s.FindOrCreateHotel("Playa Sol", "Malaga")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.SetHotelAddress(h.ID, "Av. del Mar 1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetHotelAddress(h.ID, "WRONG"); err != nil {
		t.Fatalf("set: %v", err)
	}

	hotels, err := s.ListHotels()
	if err != nil || len(hotels) != 1 {
		t.Fatalf("list: %v %v", hotels, err)
	}
	if hotels[0].Address != "Av. del Mar 1" {
		t.Fatalf("address overwritten: %q", hotels[0].Address)
	}
}

func TestAtomic_RollbackOnError(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	err := s.Atomic(func(tx importer.RecordStore) error {
		if _, err := tx.UpsertDossier(sampleDossier("BK1")); err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatalf("expected error")
	}

	n, err := s.CountDossiers()
	if err != nil || n != 0 {
		t.Fatalf("rollback failed: %d %v", n, err)
	}
}

func TestAtomic_Commit(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	err := s.Atomic(func(tx importer.RecordStore) error {
		_, err := tx.UpsertDossier(sampleDossier("BK1"))
		return err
	})
	if err != nil {
		t.Fatalf("atomic: %v", err)
	}
	n, err := s.CountDossiers()
	if err != nil || n != 1 {
		t.Fatalf("commit failed: %d %v", n, err)
	}
}

func TestLoadAliasEntries(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	entries, err := s.LoadAliasEntries()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("fresh table must be empty, got %v", entries)
	}

	if _, err := s.DB().Exec(
		`INSERT INTO alias_keywords (lang, field, keyword) VALUES ('de', 'reference', 'buchungsnummer')`,
	); err != nil {
		t.Fatalf("seed: %v", err)
	}

	entries, err = s.LoadAliasEntries()
	if err != nil || len(entries) != 1 {
		t.Fatalf("load: %v %v", entries, err)
	}
	if entries[0].Field != parser.FieldReference || entries[0].Keyword != "buchungsnummer" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestImportLogLifecycle(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	last, err := s.LastImportTime()
	if err != nil || last != "" {
		t.Fatalf("empty log: %q %v", last, err)
	}

	id, err := s.CreateImportLog("batch-1", "bookings.xlsx", 1024, "abc123")
	if err != nil {
		t.Fatalf("create log: %v", err)
	}

	report := &model.RunReport{
		Sheets:  1,
		Blocks:  2,
		Created: []string{"BK1", "BK2"},
		Skipped: []model.SkipEntry{{RowNo: 4, Reason: model.SkipMissingReference}},
	}
	if err := s.CompleteImportLog(id, report, "completed", ""); err != nil {
		t.Fatalf("complete log: %v", err)
	}

	last, err = s.LastImportTime()
	if err != nil {
		t.Fatalf("last import: %v", err)
	}
	if last == "" {
		t.Fatalf("expected completion timestamp")
	}
}
