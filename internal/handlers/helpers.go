package handlers

import "github.com/gin-gonic/gin"

// corsQuery 按配置为查询端点附加 CORS 响应头。
// 返回 true 表示请求是预检（OPTIONS）并已应答，调用方应直接返回。
func (h *Handler) corsQuery(c *gin.Context) bool {
	if !h.cfg.CORS.EnableQuery {
		return false
	}
	origin := c.GetHeader("Origin")
	if origin != "" && (len(h.cfg.CORS.AllowedOrigins) == 0 || contains(h.cfg.CORS.AllowedOrigins, origin)) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Vary", "Origin")
	}
	c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	if c.Request.Method == "OPTIONS" {
		c.Status(204)
		return true
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
