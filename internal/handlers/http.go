package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"latmatrix/internal/config"
	"latmatrix/internal/metrics"
	"latmatrix/internal/middlewares"
	"latmatrix/internal/services"
)

// Handler 聚合配置与各云厂商的查询服务，并负责注册全部 HTTP 路由。
type Handler struct {
	cfg      config.Config
	services map[string]*services.LatencyService
	limiter  *middlewares.RateLimiter
}

// New 构造 Handler；svcs 以云厂商名为键，用于后续路由注册与处理。
func New(cfg config.Config, svcs map[string]*services.LatencyService) *Handler {
	return &Handler{cfg: cfg, services: svcs, limiter: middlewares.NewRateLimiter()}
}

// RegisterRoutes 在 Gin 路由上挂载查询与运维端点。
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// 查询端点（按 IP 限流）
	rl := middlewares.RateLimit(h.limiter, "query", h.cfg.Limits.QueriesPerMinute, h.window(), func(c *gin.Context) string { return c.ClientIP() })
	r.POST("/regions/eligible", rl, h.eligibleRegions)
	r.GET("/regions", rl, h.listRegions)
	if h.cfg.CORS.EnableQuery {
		// 预检请求不参与限流
		r.OPTIONS("/regions/eligible", h.eligibleRegions)
		r.OPTIONS("/regions", h.listRegions)
	}

	// 运维端点
	r.GET("/metrics", h.metrics)
	r.GET("/healthz", h.healthz)
	// 兼容旧部署的探活路径
	r.GET("/health", h.healthz)

	// 开发辅助接口：查看已加载的厂商数据
	if h.cfg.Env != "prod" {
		r.GET("/dev/providers", h.devListProviders)
	}
}

func (h *Handler) window() time.Duration {
	if h.cfg.Limits.Window > 0 {
		return h.cfg.Limits.Window
	}
	return time.Minute
}

// @Summary      Prometheus 指标
// @Description  暴露 Prometheus 指标（text/plain; version=0.0.4）
// @Tags         ops
// @Produce      plain
// @Success      200 {string} string
// @Router       /metrics [get]
func (h *Handler) metrics(c *gin.Context) { metrics.Exposer()(c) }

// @Summary      健康检查
// @Tags         ops
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /healthz [get]
func (h *Handler) healthz(c *gin.Context) { c.JSON(200, gin.H{"status": "healthy"}) }

// @Summary      已配置厂商一览（开发）
// @Description  返回各厂商的数据文件路径与已知区域数，仅在非生产环境注册
// @Tags         dev
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /dev/providers [get]
func (h *Handler) devListProviders(c *gin.Context) {
	out := gin.H{}
	for name, svc := range h.services {
		p := h.cfg.Data.Providers[name]
		out[name] = gin.H{
			"latency_matrix":  p.LatencyMatrix,
			"region_mappings": p.RegionMappings,
			"regions":         len(svc.Regions()),
		}
	}
	c.JSON(200, out)
}
