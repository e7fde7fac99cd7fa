package handlers

import (
	"github.com/gin-gonic/gin"

	"latmatrix/internal/handlers/api"
	"latmatrix/internal/metrics"
	"latmatrix/internal/services"
)

const defaultProvider = "azure"

// @Summary      查询可达区域
// @Description  给定起点区域与延迟上限，返回该厂商矩阵中延迟不超过上限的全部区域
// @Tags         regions
// @Accept       json
// @Produce      json
// @Param        request body api.RegionRequest true "查询条件"
// @Success      200 {object} api.RegionResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      429 {object} map[string]string
// @Router       /regions/eligible [post]
func (h *Handler) eligibleRegions(c *gin.Context) {
	if h.corsQuery(c) {
		return
	}
	var req api.RegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body", "bad_body")
		return
	}
	if req.OriginRegion == "" {
		h.badRequest(c, "origin_region is required", "missing_origin")
		return
	}
	if req.MaxLatency <= 0 {
		h.badRequest(c, "max_latency must be greater than 0", "bad_latency")
		return
	}
	if req.CloudProvider == "" {
		h.badRequest(c, "cloud_provider is required", "missing_provider")
		return
	}
	svc, ok := h.services[req.CloudProvider]
	if !ok {
		h.badRequest(c, "unsupported cloud provider", "unknown_provider")
		return
	}
	regions, err := svc.FindEligibleRegions(req.OriginRegion, req.MaxLatency)
	if err != nil {
		h.badRequest(c, err.Error(), "unknown_origin")
		return
	}
	metrics.RegionQueries.WithLabelValues(req.CloudProvider).Inc()
	c.JSON(200, api.RegionResponse{EligibleRegions: toRegionInfos(regions)})
}

// @Summary      区域清单
// @Description  返回指定厂商延迟矩阵已知的全部目标区域（按名称排序）
// @Tags         regions
// @Produce      json
// @Param        provider query string false "云厂商名（默认 azure）"
// @Success      200 {object} api.RegionListResponse
// @Failure      400 {object} api.ErrorResponse
// @Router       /regions [get]
func (h *Handler) listRegions(c *gin.Context) {
	if h.corsQuery(c) {
		return
	}
	provider := c.DefaultQuery("provider", defaultProvider)
	svc, ok := h.services[provider]
	if !ok {
		h.badRequest(c, "unsupported cloud provider", "unknown_provider")
		return
	}
	c.JSON(200, api.RegionListResponse{Provider: provider, Regions: toRegionInfos(svc.Regions())})
}

// badRequest 输出统一的 400 响应，并按原因累计错误指标。
func (h *Handler) badRequest(c *gin.Context, msg, reason string) {
	metrics.RegionQueryErrors.WithLabelValues(reason).Inc()
	c.JSON(400, api.ErrorResponse{Error: msg})
}

// toRegionInfos 转换为线上模型；空结果保持 nil，序列化为 JSON null。
func toRegionInfos(regions []services.Region) []api.RegionInfo {
	var out []api.RegionInfo
	for _, r := range regions {
		out = append(out, api.RegionInfo{
			Name:             r.Name,
			ISOCountryCodeA2: r.ISOCode,
			PhysicalLocation: r.Location,
		})
	}
	return out
}
