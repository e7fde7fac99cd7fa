package storage

import (
	"encoding/csv"
	"fmt"
	"os"
)

// RegionMapping 区域元数据：ISO 3166-1 alpha-2 国家代码与物理位置。
type RegionMapping struct {
	ISOCode  string
	Location string
}

// LoadRegionMappings 解析区域映射 CSV。按列位置取值：第 0 列区域名、
// 第 1 列国家代码、第 3 列物理位置，表头行仅跳过不参与解析。
// 部分区域的位置列可能为空，按空字符串原样保留。
func LoadRegionMappings(path string) (map[string]RegionMapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open region mappings: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read mappings header: %w", err)
	}
	if len(header) < 4 {
		return nil, fmt.Errorf("region mappings need at least 4 columns, got %d", len(header))
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read mappings rows: %w", err)
	}
	mappings := make(map[string]RegionMapping, len(records))
	for _, row := range records {
		mappings[row[0]] = RegionMapping{ISOCode: row[1], Location: row[3]}
	}
	return mappings, nil
}
