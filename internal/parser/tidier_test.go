package parser

import "testing"

func TestTidy_DropsBlankColumnsAndRows(t *testing.T) {
	t.Parallel()

	block := Block{
		HeaderRow: 0,
		Header:    []string{"Referencia", "", "Hotel"},
		Rows: [][]string{
			{"BK1", "", "Playa Sol"},
			{"", "", ""},
			{"BK2", "", "Mar Azul"},
		},
	}
	table := Tidy(block)
	if table == nil {
		t.Fatalf("expected table")
	}
	if len(table.Labels) != 2 {
		t.Fatalf("want 2 columns, got %d: %v", len(table.Labels), table.Labels)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("blank row must be dropped, got %d rows", len(table.Rows))
	}
	// 行号指向原 sheet 位置，空行剔除不压缩编号
	if table.RowNos[0] != 2 || table.RowNos[1] != 4 {
		t.Fatalf("want row numbers [2 4], got %v", table.RowNos)
	}
}

func TestTidy_SyntheticAndDedupedLabels(t *testing.T) {
	t.Parallel()

	block := Block{
		Header: []string{"", "Unnamed: 2", "Hotel", "Hotel"},
		Rows: [][]string{
			{"BK1", "x", "Playa Sol", "H-001"},
		},
	}
	table := Tidy(block)
	if table == nil {
		t.Fatalf("expected table")
	}
	want := []string{"col_1", "col_2", "Hotel", "Hotel_2"}
	for i, w := range want {
		if table.Labels[i] != w {
			t.Fatalf("label %d: want %q got %q", i, w, table.Labels[i])
		}
	}
	// 每行的键集合与标签一致
	for _, row := range table.Rows {
		if len(row) != len(table.Labels) {
			t.Fatalf("row keys %d != labels %d", len(row), len(table.Labels))
		}
	}
}

func TestTidy_LeadingDecorativeColumn(t *testing.T) {
	t.Parallel()

	rows := make([][]string, 40)
	for i := range rows {
		rows[i] = []string{"", "BK", "Playa Sol"}
	}
	rows[0][0] = "TEMPORADA VERANO" // 首列 97.5% 空置，仅一个装饰值
	block := Block{
		Header: []string{"", "Referencia", "Hotel"},
		Rows:   rows,
	}
	table := Tidy(block)
	if table == nil {
		t.Fatalf("expected table")
	}
	if len(table.Labels) != 2 {
		t.Fatalf("decorative leading column must be trimmed, labels: %v", table.Labels)
	}
	if table.Labels[0] != "Referencia" {
		t.Fatalf("want Referencia first, got %q", table.Labels[0])
	}
}

func TestTidy_EmptyResult(t *testing.T) {
	t.Parallel()

	block := Block{
		Header: []string{"A", "B"},
		Rows: [][]string{
			{"", ""},
			{"nan", "n/a"},
		},
	}
	if table := Tidy(block); table != nil {
		t.Fatalf("expected nil for all-blank block, got %+v", table)
	}
}

func TestTidy_TrimsCellWhitespace(t *testing.T) {
	t.Parallel()

	block := Block{
		Header: []string{"Referencia"},
		Rows:   [][]string{{"  BK1  ", "extra"}},
	}
	table := Tidy(block)
	if table == nil {
		t.Fatalf("expected table")
	}
	if got := table.Rows[0]["Referencia"]; got != "BK1" {
		t.Fatalf("want trimmed cell, got %q", got)
	}
}
