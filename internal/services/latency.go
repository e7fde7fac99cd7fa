package services

import (
	"fmt"
	"sort"

	"latmatrix/internal/storage"
)

// Region 是对外呈现的区域条目：名称加映射元数据。
// 矩阵中存在但映射文件未覆盖的区域，元数据字段为空字符串。
type Region struct {
	Name     string
	ISOCode  string
	Location string
}

// LatencyService 基于单个云厂商的延迟矩阵与区域映射回答可达性查询。
// 数据在构造时一次性加载，之后只读，可被多个请求并发使用。
type LatencyService struct {
	matrix   *storage.LatencyMatrix
	mappings map[string]storage.RegionMapping
}

// NewLatencyService 加载厂商的数据文件并构建查询服务。
func NewLatencyService(matrixFile, mappingFile string) (*LatencyService, error) {
	mappings, err := storage.LoadRegionMappings(mappingFile)
	if err != nil {
		return nil, fmt.Errorf("load region mappings: %w", err)
	}
	matrix, err := storage.LoadLatencyMatrix(matrixFile)
	if err != nil {
		return nil, fmt.Errorf("load latency matrix: %w", err)
	}
	return &LatencyService{matrix: matrix, mappings: mappings}, nil
}

// FindEligibleRegions 返回从 origin 出发延迟不超过 maxLatency 的目标区域，按名称排序。
// origin 不在矩阵中视为调用方错误。矩阵中 origin 对自身无记录（通常标为 N/A）时，
// origin 会被无条件补入结果；若自身延迟有记录，则与其它区域一样按阈值过滤。
func (s *LatencyService) FindEligibleRegions(origin string, maxLatency float64) ([]Region, error) {
	latencies, ok := s.matrix.Latencies[origin]
	if !ok {
		return nil, fmt.Errorf("origin region %s not found", origin)
	}
	var eligible []Region
	for name, lat := range latencies {
		if lat <= maxLatency {
			eligible = append(eligible, s.region(name))
		}
	}
	if _, ok := latencies[origin]; !ok {
		eligible = append(eligible, s.region(origin))
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].Name < eligible[j].Name })
	return eligible, nil
}

// Regions 返回矩阵已知的全部目标区域（含映射元数据），按名称排序。
func (s *LatencyService) Regions() []Region {
	out := make([]Region, 0, len(s.matrix.Regions))
	for _, name := range s.matrix.Regions {
		out = append(out, s.region(name))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *LatencyService) region(name string) Region {
	m := s.mappings[name]
	return Region{Name: name, ISOCode: m.ISOCode, Location: m.Location}
}
