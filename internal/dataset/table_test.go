package dataset

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func cell(s string) Cell { return Cell{String: s, Valid: true} }

func mustRead(t *testing.T, csv string) *Table {
	t.Helper()
	tab, err := Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return tab
}

func TestReadHeaderAndCells(t *testing.T) {
	tab := mustRead(t, "\uFEFFSource,Lat\nX,10\nY,\n")
	if !reflect.DeepEqual(tab.Columns, []string{"Source", "Lat"}) {
		t.Fatalf("columns = %v", tab.Columns)
	}
	want := [][]Cell{
		{cell("X"), cell("10")},
		{cell("Y"), cell("")},
	}
	if !reflect.DeepEqual(tab.Rows, want) {
		t.Fatalf("rows = %v", tab.Rows)
	}
	// 空字符串是“存在”的单元格，缺失格只能由连接产生
	if !tab.Rows[1][1].Valid {
		t.Fatalf("empty cell should be valid")
	}
}

func TestReadRejectsBadInput(t *testing.T) {
	if _, err := Read(strings.NewReader("")); err == nil {
		t.Fatalf("empty input should fail")
	}
	if _, err := Read(strings.NewReader("Source,A,A\nX,1,2\n")); err == nil {
		t.Fatalf("duplicate header should fail")
	}
	if _, err := Read(strings.NewReader("Source,A\nX\n")); err == nil {
		t.Fatalf("ragged row should fail")
	}
}

func TestColumnIndex(t *testing.T) {
	tab := mustRead(t, "Source,Lat\nX,10\n")
	if i := tab.ColumnIndex("Lat"); i != 1 {
		t.Fatalf("ColumnIndex(Lat) = %d", i)
	}
	if i := tab.ColumnIndex("nope"); i != -1 {
		t.Fatalf("ColumnIndex(nope) = %d", i)
	}
}

func TestWriteSerializesHeaderAndRows(t *testing.T) {
	tab := &Table{
		Columns: []string{"Source", "Lat"},
		Rows: [][]Cell{
			{cell("X"), cell("10")},
			{cell("Y,Z"), cell("")},
		},
	}
	var buf bytes.Buffer
	if err := Write(&buf, tab); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "Source,Lat\nX,10\n\"Y,Z\",\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestFillMissing(t *testing.T) {
	tab := &Table{
		Columns: []string{"Source", "Lat"},
		Rows: [][]Cell{
			{cell("X"), {}},
			{cell("Y"), cell("")},
		},
	}
	FillMissing(tab, "N/A")
	if got := tab.Rows[0][1]; got != cell("N/A") {
		t.Fatalf("missing cell = %v", got)
	}
	// 已存在的空串不受影响
	if got := tab.Rows[1][1]; got != cell("") {
		t.Fatalf("empty cell = %v", got)
	}
}

func TestDedupeKeyKeepsFirstRow(t *testing.T) {
	tab := mustRead(t, "Source,Lat\nX,10\nY,20\nX,99\n")
	DedupeKey(tab, "Source")
	want := [][]Cell{
		{cell("X"), cell("10")},
		{cell("Y"), cell("20")},
	}
	if !reflect.DeepEqual(tab.Rows, want) {
		t.Fatalf("rows = %v", tab.Rows)
	}
}

func TestKeyFirstOrder(t *testing.T) {
	got := KeyFirstOrder([]string{"Thr", "Source", "Lat", "Abc"}, "Source")
	want := []string{"Source", "Abc", "Lat", "Thr"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v", got)
	}
}

func TestReorderColumns(t *testing.T) {
	tab := mustRead(t, "Lat,Source\n10,X\n")
	out, err := ReorderColumns(tab, []string{"Source", "Lat"})
	if err != nil {
		t.Fatalf("ReorderColumns: %v", err)
	}
	if !reflect.DeepEqual(out.Columns, []string{"Source", "Lat"}) {
		t.Fatalf("columns = %v", out.Columns)
	}
	if !reflect.DeepEqual(out.Rows[0], []Cell{cell("X"), cell("10")}) {
		t.Fatalf("row = %v", out.Rows[0])
	}
	if _, err := ReorderColumns(tab, []string{"Source", "nope"}); err == nil {
		t.Fatalf("unknown column should fail")
	}
	if _, err := ReorderColumns(tab, []string{"Source"}); err == nil {
		t.Fatalf("short order should fail")
	}
}
