package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Config 保存进程级配置（仅使用配置文件或内置默认值）。
// 字段提供开发友好的默认值；生产环境请在 config.yaml 中覆盖。
type Config struct {
	Env      string
	HTTPAddr string
	Data     DataConfig
	CORS     CORSConfig
	Limits   LimitConfig
	Security SecurityConfig
}

// DataConfig 描述数据文件布局：延迟报告目录、合并输出路径，以及服务端按厂商加载的数据文件。
type DataConfig struct {
	// 待合并的延迟报告 CSV 所在目录
	LatenciesDir string
	// 合并产物（延迟矩阵）的写入路径
	OutputFile string
	// 云厂商名 -> 数据文件；服务端据此加载矩阵与区域映射
	Providers map[string]ProviderConfig
}

// ProviderConfig 指向单个云厂商的延迟矩阵与区域映射文件。
type ProviderConfig struct {
	// 延迟矩阵 CSV（首列 Source，其余列为目标区域）
	LatencyMatrix string
	// 区域 -> 国家代码/物理位置 映射 CSV
	RegionMappings string
}

type CORSConfig struct {
	// 是否为查询端点（/regions*）启用 CORS（跨域）；默认关闭
	EnableQuery bool
	// 允许的来源，仅在 EnableQuery=true 时生效
	AllowedOrigins []string
}

type LimitConfig struct {
	QueriesPerMinute int
	// 时间窗口（默认 1m）
	Window time.Duration
}

type SecurityConfig struct {
	HSTS struct {
		Enabled           bool
		MaxAgeSeconds     int
		IncludeSubdomains bool
	}
}

// Load 生成配置：先使用内置默认值，再用同目录的配置文件（config.yaml/yml/json）覆盖。
// 默认数据布局与仓库自带的 azure 示例一致：合并输出路径即服务端读取的矩阵路径。
func Load() Config {
	// 仅使用配置文件；代码内提供开发友好的默认值作为兜底。
	// 1) 默认值（本地开发可直接运行）
	cfg := Config{
		Env:      "dev",
		HTTPAddr: ":8080",
		Data: DataConfig{
			LatenciesDir: "data/azure/latencies",
			OutputFile:   "data/azure/azure_regions_latency_matrix.csv",
			Providers: map[string]ProviderConfig{
				"azure": {
					LatencyMatrix:  "data/azure/azure_regions_latency_matrix.csv",
					RegionMappings: "data/azure/azure_region_city_mapping.csv",
				},
			},
		},
		CORS:   CORSConfig{EnableQuery: false},
		Limits: LimitConfig{QueriesPerMinute: 120, Window: time.Minute},
		Security: func() SecurityConfig {
			var s SecurityConfig
			s.HSTS.Enabled = true
			s.HSTS.MaxAgeSeconds = 31536000
			s.HSTS.IncludeSubdomains = true
			return s
		}(),
	}

	// 2) 配置文件覆盖（若存在）
	if path := FirstExisting("config.yaml", "config.yml", "config.json"); path != "" {
		_ = loadFromFile(path, &cfg)
	}

	// 3) 不从环境变量读取运行时配置：所有覆盖应通过 config.yaml 提供。
	return cfg
}

// 配置文件格式：YAML 或 JSON。仅非零值会覆盖现有字段。
func loadFromFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var fm fileModel
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(b, &fm); err != nil {
			return err
		}
	} else if ext == ".json" || ext == "" {
		if err := json.Unmarshal(b, &fm); err != nil {
			return err
		}
	} else {
		return errors.New("unsupported config file format")
	}
	fm.apply(cfg)
	return nil
}

// --- 配置文件模型与合并逻辑 ---

type fileModel struct {
	Env      string        `yaml:"env" json:"env"`
	HTTPAddr string        `yaml:"http_addr" json:"http_addr"`
	Data     *fileData     `yaml:"data" json:"data"`
	CORS     *fileCORS     `yaml:"cors" json:"cors"`
	Limits   *fileLimits   `yaml:"limits" json:"limits"`
	Security *fileSecurity `yaml:"security" json:"security"`
}

type fileData struct {
	LatenciesDir string                   `yaml:"latencies_dir" json:"latencies_dir"`
	OutputFile   string                   `yaml:"output_file" json:"output_file"`
	Providers    map[string]*fileProvider `yaml:"providers" json:"providers"`
}
type fileProvider struct {
	LatencyMatrix  string `yaml:"latency_matrix" json:"latency_matrix"`
	RegionMappings string `yaml:"region_mappings" json:"region_mappings"`
}
type fileCORS struct {
	EnableQuery    *bool    `yaml:"enable_query" json:"enable_query"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}
type fileLimits struct {
	QueriesPerMinute int    `yaml:"queries_per_minute" json:"queries_per_minute"`
	Window           string `yaml:"window" json:"window"`
}
type fileSecurity struct {
	HSTS struct {
		Enabled           *bool `yaml:"enabled" json:"enabled"`
		MaxAge            int   `yaml:"max_age" json:"max_age"`
		IncludeSubdomains *bool `yaml:"include_subdomains" json:"include_subdomains"`
	} `yaml:"hsts" json:"hsts"`
}

func (fm *fileModel) apply(cfg *Config) {
	if fm.Env != "" {
		cfg.Env = fm.Env
	}
	if fm.HTTPAddr != "" {
		cfg.HTTPAddr = fm.HTTPAddr
	}
	if fm.Data != nil {
		if fm.Data.LatenciesDir != "" {
			cfg.Data.LatenciesDir = fm.Data.LatenciesDir
		}
		if fm.Data.OutputFile != "" {
			cfg.Data.OutputFile = fm.Data.OutputFile
		}
		for name, fp := range fm.Data.Providers {
			if fp == nil {
				continue
			}
			if cfg.Data.Providers == nil {
				cfg.Data.Providers = make(map[string]ProviderConfig)
			}
			p := cfg.Data.Providers[name]
			if fp.LatencyMatrix != "" {
				p.LatencyMatrix = fp.LatencyMatrix
			}
			if fp.RegionMappings != "" {
				p.RegionMappings = fp.RegionMappings
			}
			cfg.Data.Providers[name] = p
		}
	}
	if fm.CORS != nil {
		if fm.CORS.EnableQuery != nil {
			cfg.CORS.EnableQuery = *fm.CORS.EnableQuery
		}
		if len(fm.CORS.AllowedOrigins) > 0 {
			cfg.CORS.AllowedOrigins = fm.CORS.AllowedOrigins
		}
	}
	if fm.Limits != nil {
		if fm.Limits.QueriesPerMinute != 0 {
			cfg.Limits.QueriesPerMinute = fm.Limits.QueriesPerMinute
		}
		if fm.Limits.Window != "" {
			if d, err := time.ParseDuration(fm.Limits.Window); err == nil {
				cfg.Limits.Window = d
			}
		}
	}
	if fm.Security != nil {
		if fm.Security.HSTS.Enabled != nil {
			cfg.Security.HSTS.Enabled = *fm.Security.HSTS.Enabled
		}
		if fm.Security.HSTS.MaxAge != 0 {
			cfg.Security.HSTS.MaxAgeSeconds = fm.Security.HSTS.MaxAge
		}
		if fm.Security.HSTS.IncludeSubdomains != nil {
			cfg.Security.HSTS.IncludeSubdomains = *fm.Security.HSTS.IncludeSubdomains
		}
	}
}

// FirstExisting 按顺序返回第一个存在的文件路径；若都不存在则返回空字符串。
// 注意：该函数用于在多路径间进行容错查找，如配置文件或数据文件位置。
func FirstExisting(paths ...string) string {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
