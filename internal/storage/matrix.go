package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// MissingValue 矩阵中表示“无数据”的占位文本，加载时整格跳过。
const MissingValue = "N/A"

// LatencyMatrix 延迟矩阵：源区域 -> 目标区域 -> 毫秒延迟。
// Regions 保留表头中目标区域的原始列序。
type LatencyMatrix struct {
	Latencies map[string]map[string]float64
	Regions   []string
}

// LoadLatencyMatrix 解析矩阵 CSV。首行为表头（Source 列 + 目标区域列表），
// 其后每行为一个源区域的延迟数据。占位 N/A 直接跳过；无法解析为数值的
// 单元格记一条告警后跳过，不中断加载。
func LoadLatencyMatrix(path string) (*LatencyMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open latency matrix: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	headers, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read matrix header: %w", err)
	}

	m := &LatencyMatrix{
		Latencies: make(map[string]map[string]float64),
		Regions:   append([]string(nil), headers[1:]...),
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read matrix rows: %w", err)
	}
	for _, row := range records {
		source := row[0]
		m.Latencies[source] = make(map[string]float64, len(row)-1)
		for i, v := range row[1:] {
			if v == MissingValue {
				continue
			}
			lat, err := strconv.ParseFloat(v, 64)
			if err != nil {
				log.WithFields(log.Fields{
					"value":  v,
					"region": headers[i+1],
					"source": source,
				}).Warn("could not parse latency value")
				continue
			}
			m.Latencies[source][headers[i+1]] = lat
		}
	}
	return m, nil
}
