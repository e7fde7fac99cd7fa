package api

// 本包定义 HTTP 接口的请求与响应模型。

// RegionRequest 是可达区域查询的请求体。
type RegionRequest struct {
	OriginRegion  string  `json:"origin_region"`
	MaxLatency    float64 `json:"max_latency"`
	CloudProvider string  `json:"cloud_provider"`
}

// RegionInfo 描述一个区域及其映射元数据；映射缺失时元数据为空串。
type RegionInfo struct {
	Name             string `json:"name"`
	ISOCountryCodeA2 string `json:"iso_country_code_a2"`
	PhysicalLocation string `json:"physical_location"`
}

// RegionResponse 是可达区域查询的响应体。
type RegionResponse struct {
	EligibleRegions []RegionInfo `json:"eligible_regions"`
}

// RegionListResponse 是区域清单查询的响应体。
type RegionListResponse struct {
	Provider string       `json:"provider"`
	Regions  []RegionInfo `json:"regions"`
}

// ErrorResponse 统一的错误响应体。
type ErrorResponse struct {
	Error string `json:"error"`
}
