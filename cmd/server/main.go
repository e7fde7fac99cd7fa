package main

// @title           Latmatrix Region API
// @version         0.1.0
// @description     基于 Go(Gin) 的云区域延迟查询服务，提供可达区域查询、区域清单、健康检查与指标接口。
// @schemes         http https
// @BasePath        /

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"latmatrix/internal/config"
	"latmatrix/internal/handlers"
	"latmatrix/internal/metrics"
	"latmatrix/internal/middlewares"
	"latmatrix/internal/services"
)

// main 为查询服务入口：加载配置、初始化日志与各厂商数据、注册路由并启动 HTTP 服务。
func main() {
	// 配置结构化日志格式
	log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	// 加载配置（以配置文件为主，配合内置默认值）
	cfg := config.Load()
	if len(cfg.Data.Providers) == 0 {
		log.Fatal("configuration error: no data providers configured (config.yaml)")
	}
	// 生产环境基线检查：放任意来源跨域的查询端点不应进入生产。
	if cfg.Env == "prod" && cfg.CORS.EnableQuery && len(cfg.CORS.AllowedOrigins) == 0 {
		log.Fatal("cors.enable_query without allowed_origins in prod; list origins in config.yaml")
	}
	log.WithFields(log.Fields{
		"env":           cfg.Env,
		"http_addr":     cfg.HTTPAddr,
		"latencies_dir": cfg.Data.LatenciesDir,
		"output_file":   cfg.Data.OutputFile,
		"providers":     len(cfg.Data.Providers),
		"cors_query":    cfg.CORS.EnableQuery,
	}).Info("configuration loaded")

	// 为每个厂商加载延迟矩阵与区域映射
	svcs := make(map[string]*services.LatencyService, len(cfg.Data.Providers))
	for name, p := range cfg.Data.Providers {
		svc, err := services.NewLatencyService(p.LatencyMatrix, p.RegionMappings)
		if err != nil {
			log.WithError(err).WithField("provider", name).Fatal("failed to load provider data")
		}
		svcs[name] = svc
		regions := len(svc.Regions())
		metrics.MatrixRegions.WithLabelValues(name).Set(float64(regions))
		log.WithFields(log.Fields{"provider": name, "regions": regions}).Info("provider data loaded")
	}

	// HTTP 路由与中间件
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestID())
	router.Use(middlewares.RequestLogger())
	router.Use(middlewares.SecurityHeaders(cfg))
	router.Use(metrics.Handler())

	// 装载 HTTP 处理器
	h := handlers.New(cfg, svcs)
	h.RegisterRoutes(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("starting http server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	// 优雅退出
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown")
	} else {
		log.Info("server stopped")
	}
}
