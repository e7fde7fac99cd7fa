package dataset

import "fmt"

// OuterJoin 对两表做以 key 为键的全外连接。
// 结果行 = 两侧键值的并集：左表行按原顺序在前，仅右表出现的键按右表顺序追加；
// 未匹配一侧的列以缺失格（Valid=false）留空。两侧同名的非键列分别改名为
// <name>_x（左）与 <name>_y（右）；若改名后仍与其它列重名则返回错误。
// 同一侧出现重复键值时仅首行参与连接。
func OuterJoin(left, right *Table, key string) (*Table, error) {
	lk := left.ColumnIndex(key)
	rk := right.ColumnIndex(key)
	if lk < 0 || rk < 0 {
		return nil, fmt.Errorf("join key %q missing", key)
	}

	// 计算输出列名：左列保持原位，右表非键列追加其后
	rset := make(map[string]bool, len(right.Columns))
	for i, c := range right.Columns {
		if i != rk {
			rset[c] = true
		}
	}
	collide := make(map[string]bool)
	for i, c := range left.Columns {
		if i != lk && rset[c] {
			collide[c] = true
		}
	}
	cols := make([]string, 0, len(left.Columns)+len(right.Columns)-1)
	for i, c := range left.Columns {
		if i != lk && collide[c] {
			c += "_x"
		}
		cols = append(cols, c)
	}
	for i, c := range right.Columns {
		if i == rk {
			continue
		}
		if collide[c] {
			c += "_y"
		}
		cols = append(cols, c)
	}
	dup := make(map[string]bool, len(cols))
	for _, c := range cols {
		if dup[c] {
			return nil, fmt.Errorf("column %q duplicated after join suffixing", c)
		}
		dup[c] = true
	}

	nl := len(left.Columns)
	nr := len(right.Columns) - 1
	rIndex := make(map[string]int, len(right.Rows))
	for i, row := range right.Rows {
		v := row[rk].String
		if _, ok := rIndex[v]; !ok {
			rIndex[v] = i
		}
	}

	out := &Table{Columns: cols}
	emitted := make(map[string]bool, len(left.Rows)+len(right.Rows))
	for _, lrow := range left.Rows {
		v := lrow[lk].String
		if emitted[v] {
			continue
		}
		emitted[v] = true
		rec := make([]Cell, 0, nl+nr)
		rec = append(rec, lrow...)
		if ri, ok := rIndex[v]; ok {
			for j, c := range right.Rows[ri] {
				if j != rk {
					rec = append(rec, c)
				}
			}
		} else {
			for j := 0; j < nr; j++ {
				rec = append(rec, Cell{})
			}
		}
		out.Rows = append(out.Rows, rec)
	}
	for _, rrow := range right.Rows {
		v := rrow[rk].String
		if emitted[v] {
			continue
		}
		emitted[v] = true
		rec := make([]Cell, nl+nr)
		rec[lk] = rrow[rk]
		pos := nl
		for j, c := range rrow {
			if j != rk {
				rec[pos] = c
				pos++
			}
		}
		out.Rows = append(out.Rows, rec)
	}
	return out, nil
}
