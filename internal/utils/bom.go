package utils

import "strings"

// TrimBOM 去除字符串开头的 UTF-8 BOM（U+FEFF）。
// Excel 等工具导出的 CSV 常携带 BOM，不剥离会污染首个表头单元格。
func TrimBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
