package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"latmatrix/internal/utils"
)

// Cell 表示一个单元格。Valid=false 表示该格缺失（外连接未匹配产生），
// 与“存在但为空字符串”不同：空字符串会原样写出，缺失格由 FillMissing 统一填充。
type Cell struct {
	String string
	Valid  bool
}

// Table 是按行对齐的内存表：Columns 给出列名与顺序，每行的单元格与之一一对应。
type Table struct {
	Columns []string
	Rows    [][]Cell
}

// ColumnIndex 返回列名对应的下标；不存在则返回 -1。
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Read 从 r 解析 CSV 为 Table。首行为表头；首个表头单元格会剥离 UTF-8 BOM。
// 空内容、行宽不一致或表头重名都视为不可解析，直接返回错误。
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("csv has no header row")
	}
	header := records[0]
	if len(header) > 0 {
		header[0] = utils.TrimBOM(header[0])
	}
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true
	}
	t := &Table{Columns: append([]string(nil), header...)}
	for _, rec := range records[1:] {
		row := make([]Cell, len(rec))
		for i, v := range rec {
			row[i] = Cell{String: v, Valid: true}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadFile 打开并解析一个 CSV 文件。
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}

// Write 将表序列化为 CSV：先写表头，再逐行写出。缺失格按其零值（空串）写出，
// 调用方应先执行 FillMissing。
func Write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range row {
			rec[i] = c.String
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile 覆盖写出 CSV 文件。
func WriteFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, t); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// FillMissing 用占位文本替换所有缺失格（就地修改）。
func FillMissing(t *Table, placeholder string) {
	for _, row := range t.Rows {
		for i := range row {
			if !row[i].Valid {
				row[i] = Cell{String: placeholder, Valid: true}
			}
		}
	}
}

// DedupeKey 按键列去重：同一键值仅保留首次出现的行（就地修改）。
// 键列不存在时不做任何事。
func DedupeKey(t *Table, key string) {
	k := t.ColumnIndex(key)
	if k < 0 {
		return
	}
	seen := make(map[string]bool, len(t.Rows))
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		v := row[k].String
		if seen[v] {
			continue
		}
		seen[v] = true
		kept = append(kept, row)
	}
	t.Rows = kept
}

// KeyFirstOrder 返回展示用列序：key 放在首位，其余列按字典序升序。
func KeyFirstOrder(columns []string, key string) []string {
	rest := make([]string, 0, len(columns))
	for _, c := range columns {
		if c != key {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append([]string{key}, rest...)
}

// ReorderColumns 按给定列序重排并返回新表；order 必须恰为现有列的一个排列。
func ReorderColumns(t *Table, order []string) (*Table, error) {
	if len(order) != len(t.Columns) {
		return nil, fmt.Errorf("column order has %d names, table has %d", len(order), len(t.Columns))
	}
	idx := make([]int, len(order))
	for i, name := range order {
		j := t.ColumnIndex(name)
		if j < 0 {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		idx[i] = j
	}
	out := &Table{Columns: append([]string(nil), order...), Rows: make([][]Cell, len(t.Rows))}
	for r, row := range t.Rows {
		rec := make([]Cell, len(idx))
		for i, j := range idx {
			rec[i] = row[j]
		}
		out.Rows[r] = rec
	}
	return out, nil
}
