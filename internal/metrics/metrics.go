package metrics

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 指标定义：
// - http_requests_total：按路径与方法统计请求次数（附带状态码标签）
// - http_request_duration_seconds：按路径与方法统计请求耗时分布
// - region_queries_total：可达区域查询次数（按厂商）
// - region_query_errors_total：被拒绝的查询计数（按原因）
// - matrix_regions：各厂商矩阵中的目标区域数
var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP 请求计数（按路径/方法/状态）"},
		[]string{"path", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP 请求耗时（秒）", Buckets: prometheus.DefBuckets},
		[]string{"path", "method"},
	)
	RegionQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "region_queries_total", Help: "可达区域查询次数（按厂商）"},
		[]string{"provider"},
	)
	RegionQueryErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "region_query_errors_total", Help: "查询错误计数（按原因）"},
		[]string{"reason"},
	)
	MatrixRegions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "matrix_regions", Help: "矩阵中的目标区域数（按厂商）"},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPLatency, RegionQueries, RegionQueryErrors, MatrixRegions)
}

// Handler 返回记录基础 HTTP 指标的中间件（QPS/耗时）。
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		dur := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		HTTPLatency.WithLabelValues(path, c.Request.Method).Observe(dur)
		HTTPRequests.WithLabelValues(path, c.Request.Method, fmt.Sprintf("%d", c.Writer.Status())).Inc()
	}
}

// Exposer 返回标准 Prometheus 暴露处理器。
func Exposer() gin.HandlerFunc { return gin.WrapH(promhttp.Handler()) }
