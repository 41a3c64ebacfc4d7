package parser

import (
	"strings"
	"testing"

	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/model"
)

func testLexicon() *Lexicon {
	return &Lexicon{
		Headers: map[CanonicalField][]string{
			FieldReference:   {"referencia", "reference", "booking"},
			FieldMovement:    {"movimiento", "movement", "tipo"},
			FieldOrigin:      {"origen", "origin", "from"},
			FieldDestination: {"destino", "destination", "to"},
			FieldFlight:      {"vuelo", "flight"},
			FieldDate:        {"fecha", "date"},
			FieldTime:        {"hora", "time"},
			FieldCity:        {"ciudad", "city"},
			FieldHotel:       {"hotel"},
			FieldHolder:      {"titular", "holder"},
			FieldOperator:    {"operador", "tour operator", "agencia"},
			FieldPax:         {"pax", "personas"},
			FieldAdults:      {"adultos", "adults"},
			FieldChildren:    {"ninos", "children"},
			FieldInfants:     {"bebes", "infants"},
			FieldObservation: {"observaciones", "obs", "remarks"},
		},
		ArrivalCodes: map[string]struct{}{
			"a": {}, "ll": {}, "llegada": {}, "entrada": {}, "arrival": {},
		},
		DepartureCodes: map[string]struct{}{
			"d": {}, "s": {}, "salida": {}, "departure": {},
		},
	}
}

func tableOf(t *testing.T, header []string, rows ...[]string) *TidiedTable {
	t.Helper()
	table := Tidy(Block{Header: header, Rows: rows})
	if table == nil {
		t.Fatalf("tidy returned nil")
	}
	return table
}

func TestNormalizeRow_ArrivalRoundTrip(t *testing.T) {
	t.Parallel()

	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())
	table := tableOf(t,
		[]string{"Referencia", "Movimiento", "Origen", "Destino", "Vuelo", "Fecha", "Hora", "Hotel", "Pax"},
		[]string{"BK1", "LLEGADA", "AGP", "", "FR1234", "15/06/2025", "12:30", "Playa Sol", "4"},
	)
	cols := n.ResolveColumns(table)

	d, reason := n.NormalizeRow(table, cols, 0)
	if reason != "" {
		t.Fatalf("unexpected skip: %s", reason)
	}
	if d.Movement != model.MovementArrival {
		t.Fatalf("want arrival, got %q", d.Movement)
	}
	if d.ArrivalFlight != "FR1234" || d.ArrivalAirport != "AGP" || d.PaxArrival != 4 {
		t.Fatalf("arrival side not populated: %+v", d)
	}
	if d.DepartureFlight != "" || d.PaxDeparture != 0 || d.DepartureTime != nil {
		t.Fatalf("departure side must stay empty: %+v", d)
	}
	if d.ArrivalTime == nil {
		t.Fatalf("expected composed timestamp")
	}
	if got := d.ArrivalTime.Format("2006-01-02 15:04"); got != "2025-06-15 12:30" {
		t.Fatalf("unexpected timestamp: %s", got)
	}
}

func TestNormalizeRow_DepartureSide(t *testing.T) {
	t.Parallel()

	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())
	table := tableOf(t,
		[]string{"Referencia", "Movimiento", "Origen", "Destino", "Vuelo"},
		[]string{"BK2", "S", "", "ORY", "AF77"},
	)
	cols := n.ResolveColumns(table)

	d, reason := n.NormalizeRow(table, cols, 0)
	if reason != "" {
		t.Fatalf("unexpected skip: %s", reason)
	}
	if d.Movement != model.MovementDeparture {
		t.Fatalf("want departure, got %q", d.Movement)
	}
	if d.DepartureAirport != "ORY" || d.DepartureFlight != "AF77" {
		t.Fatalf("departure side not populated: %+v", d)
	}
}

func TestNormalizeRow_MissingReference(t *testing.T) {
	t.Parallel()

	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())
	table := tableOf(t,
		[]string{"Referencia", "Movimiento", "Hotel"},
		[]string{"", "LLEGADA", "Playa Sol"},
		[]string{"BK1", "LLEGADA", "Playa Sol"},
	)
	cols := n.ResolveColumns(table)

	if _, reason := n.NormalizeRow(table, cols, 0); reason != model.SkipMissingReference {
		t.Fatalf("want %q, got %q", model.SkipMissingReference, reason)
	}
	if _, reason := n.NormalizeRow(table, cols, 1); reason != "" {
		t.Fatalf("valid row skipped: %s", reason)
	}
}

func TestNormalizeRow_UnknownMovementStrict(t *testing.T) {
	t.Parallel()

	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())
	table := tableOf(t,
		[]string{"Referencia", "Movimiento", "Origen"},
		[]string{"BK1", "XYZ", "AGP"},
	)
	cols := n.ResolveColumns(table)

	if _, reason := n.NormalizeRow(table, cols, 0); reason != model.SkipUnknownMovement {
		t.Fatalf("strict policy must skip, got %q", reason)
	}
}

func TestNormalizeRow_UnknownMovementLenient(t *testing.T) {
	t.Parallel()

	cfg := DefaultNormalizeConfig()
	cfg.MovementPolicy = MovementPolicyLenient
	n := NewRowNormalizer(testLexicon(), cfg)
	table := tableOf(t,
		[]string{"Referencia", "Movimiento", "Origen", "Destino"},
		[]string{"BK1", "XYZ", "AGP", ""},
		[]string{"BK2", "XYZ", "", "ORY"},
		[]string{"BK3", "XYZ", "AGP", "ORY"},
	)
	cols := n.ResolveColumns(table)

	d, reason := n.NormalizeRow(table, cols, 0)
	if reason != "" || d.Movement != model.MovementArrival {
		t.Fatalf("want inferred arrival, got %v %q", d, reason)
	}
	d, reason = n.NormalizeRow(table, cols, 1)
	if reason != "" || d.Movement != model.MovementDeparture {
		t.Fatalf("want inferred departure, got %v %q", d, reason)
	}
	// 两侧都有值时无法推断，即便 lenient 也跳过
	if _, reason := n.NormalizeRow(table, cols, 2); reason != model.SkipUnknownMovement {
		t.Fatalf("ambiguous row must skip, got %q", reason)
	}
}

func TestNormalizeRow_NoMovementColumn(t *testing.T) {
	t.Parallel()

	// 表里根本没有动向列：未知容忍，两侧保持空
	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())
	table := tableOf(t,
		[]string{"Referencia", "Hotel", "Pax"},
		[]string{"BK1", "Playa Sol", "2"},
	)
	cols := n.ResolveColumns(table)

	d, reason := n.NormalizeRow(table, cols, 0)
	if reason != "" {
		t.Fatalf("unexpected skip: %s", reason)
	}
	if d.Movement != model.MovementUnknown {
		t.Fatalf("want unknown movement, got %q", d.Movement)
	}
	if d.PaxArrival != 0 || d.PaxDeparture != 0 {
		t.Fatalf("neither side may carry pax: %+v", d)
	}
}

func TestNormalizeRow_PaxFallbackSum(t *testing.T) {
	t.Parallel()

	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())
	table := tableOf(t,
		[]string{"Referencia", "Movimiento", "Adultos", "Ninos", "Bebes"},
		[]string{"BK1", "LL", "2", "1", "1"},
	)
	cols := n.ResolveColumns(table)

	d, reason := n.NormalizeRow(table, cols, 0)
	if reason != "" {
		t.Fatalf("unexpected skip: %s", reason)
	}
	if d.PaxArrival != 4 {
		t.Fatalf("want category sum 4, got %d", d.PaxArrival)
	}
}

func TestNormalizeRow_PaxDirectWins(t *testing.T) {
	t.Parallel()

	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())
	table := tableOf(t,
		[]string{"Referencia", "Movimiento", "Pax", "Adultos"},
		[]string{"BK1", "LL", "6", "2"},
	)
	cols := n.ResolveColumns(table)

	d, _ := n.NormalizeRow(table, cols, 0)
	if d.PaxArrival != 6 {
		t.Fatalf("direct pax must win, got %d", d.PaxArrival)
	}
}

func TestNormalizeRow_ExcelSerialDate(t *testing.T) {
	t.Parallel()

	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())
	table := tableOf(t,
		[]string{"Referencia", "Movimiento", "Fecha", "Hora"},
		[]string{"BK1", "LL", "45823", "0.5"},
	)
	cols := n.ResolveColumns(table)

	d, reason := n.NormalizeRow(table, cols, 0)
	if reason != "" {
		t.Fatalf("unexpected skip: %s", reason)
	}
	if d.ArrivalTime == nil {
		t.Fatalf("expected serial date to parse")
	}
	// 45823 = 2025-06-15, 0.5 = 正午
	if got := d.ArrivalTime.Format("2006-01-02 15:04"); got != "2025-06-15 12:00" {
		t.Fatalf("unexpected timestamp: %s", got)
	}
}

func TestNormalizeRow_UnparsableDateDegrades(t *testing.T) {
	t.Parallel()

	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())
	table := tableOf(t,
		[]string{"Referencia", "Movimiento", "Fecha"},
		[]string{"BK1", "LL", "mañana"},
	)
	cols := n.ResolveColumns(table)

	d, reason := n.NormalizeRow(table, cols, 0)
	if reason != "" {
		t.Fatalf("bad date must not skip the row: %s", reason)
	}
	if d.ArrivalTime != nil {
		t.Fatalf("timestamp must stay nil")
	}
	if !strings.Contains(d.Observations, "unparsable date/time") {
		t.Fatalf("expected soft note in observations, got %q", d.Observations)
	}
}

func TestNormalizeRow_UnparsableTimeKeepsDate(t *testing.T) {
	t.Parallel()

	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())
	table := tableOf(t,
		[]string{"Referencia", "Movimiento", "Fecha", "Hora"},
		[]string{"BK1", "LL", "15/06/2025", "mediodía"},
	)
	cols := n.ResolveColumns(table)

	d, reason := n.NormalizeRow(table, cols, 0)
	if reason != "" {
		t.Fatalf("bad time must not skip the row: %s", reason)
	}
	if d.ArrivalTime == nil || d.ArrivalTime.Format("2006-01-02") != "2025-06-15" {
		t.Fatalf("date part must survive, got %v", d.ArrivalTime)
	}
	if !strings.Contains(d.Observations, "unparsable time") {
		t.Fatalf("expected soft note for the dropped time, got %q", d.Observations)
	}
}

func TestNormalizeRow_ObservationAggregation(t *testing.T) {
	t.Parallel()

	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())
	table := tableOf(t,
		[]string{"Referencia", "Movimiento", "Observaciones", "Obs 2", "Obs 3"},
		[]string{"BK1", "LL", "late arrival", "0", "late arrival"},
	)
	cols := n.ResolveColumns(table)
	if len(cols.Observation) != 3 {
		t.Fatalf("want 3 observation columns, got %v", cols.Observation)
	}

	d, _ := n.NormalizeRow(table, cols, 0)
	// 占位符 0 排除，重复值去重
	if d.Observations != "late arrival" {
		t.Fatalf("unexpected observations: %q", d.Observations)
	}
}

func TestNormalizeRow_HolderHeuristics(t *testing.T) {
	t.Parallel()

	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())

	// 持有人列直接命中
	table := tableOf(t,
		[]string{"Referencia", "Movimiento", "Titular"},
		[]string{"BK1", "LL", "  GARCIA   LOPEZ "},
	)
	cols := n.ResolveColumns(table)
	d, _ := n.NormalizeRow(table, cols, 0)
	if d.HolderName != "GARCIA LOPEZ" {
		t.Fatalf("holder cleanup failed: %q", d.HolderName)
	}

	// 名+姓拼接兜底
	table = tableOf(t,
		[]string{"Referencia", "Movimiento", "Nombre", "Apellidos"},
		[]string{"BK2", "LL", "Ana", "Garcia"},
	)
	cols = n.ResolveColumns(table)
	d, _ = n.NormalizeRow(table, cols, 0)
	if d.HolderName != "Ana Garcia" {
		t.Fatalf("first+last composition failed: %q", d.HolderName)
	}
}

func TestNormalizeRow_MovementAirportContradiction(t *testing.T) {
	t.Parallel()

	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())
	table := tableOf(t,
		[]string{"Referencia", "Movimiento", "Origen", "Destino"},
		[]string{"BK1", "S", "AGP", ""},
	)
	cols := n.ResolveColumns(table)

	d, reason := n.NormalizeRow(table, cols, 0)
	if reason != "" {
		t.Fatalf("unexpected skip: %s", reason)
	}
	if d.DepartureAirport != "AGP" {
		t.Fatalf("want airport fallback, got %q", d.DepartureAirport)
	}
	if !strings.Contains(d.Observations, "contradicts") {
		t.Fatalf("expected contradiction note, got %q", d.Observations)
	}
}

func TestNormalizeRow_RowNumbering(t *testing.T) {
	t.Parallel()

	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())
	block := Block{
		HeaderRow: 3,
		Header:    []string{"Referencia", "Movimiento"},
		Rows: [][]string{
			{"BK1", "LL"},
			{"BK2", "LL"},
		},
	}
	table := Tidy(block)
	cols := n.ResolveColumns(table)

	d, _ := n.NormalizeRow(table, cols, 1)
	// 表头在第 4 行（1 起），第二条数据行就是第 6 行
	if d.RowNo != 6 {
		t.Fatalf("want row 6, got %d", d.RowNo)
	}
}

func TestNormalizeRow_RowNumberingSkipsBlankRows(t *testing.T) {
	t.Parallel()

	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())
	block := Block{
		HeaderRow: 0,
		Header:    []string{"Referencia", "Movimiento"},
		Rows: [][]string{
			{"BK1", "LL"},
			{"", ""},
			{"BK2", "LL"},
		},
	}
	table := Tidy(block)
	cols := n.ResolveColumns(table)

	// 中间空行被剔除后，BK2 仍指向原 sheet 第 4 行
	d, _ := n.NormalizeRow(table, cols, 1)
	if d.Reference != "BK2" || d.RowNo != 4 {
		t.Fatalf("want BK2 at row 4, got %q at %d", d.Reference, d.RowNo)
	}
}

func TestPickHotelColumn_PrefersNames(t *testing.T) {
	t.Parallel()

	n := NewRowNormalizer(testLexicon(), DefaultNormalizeConfig())
	table := tableOf(t,
		[]string{"Referencia", "Movimiento", "Hotel Cod", "Hotel"},
		[]string{"BK1", "LL", "H0441", "Playa Sol"},
		[]string{"BK2", "LL", "H0442", "Mar Azul"},
	)
	cols := n.ResolveColumns(table)
	if cols.Hotel != "Hotel" {
		t.Fatalf("want name-like column, got %q", cols.Hotel)
	}

	d, _ := n.NormalizeRow(table, cols, 0)
	if d.HotelName != "Playa Sol" {
		t.Fatalf("unexpected hotel: %q", d.HotelName)
	}
}
