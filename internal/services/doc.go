// Package services 提供应用的领域服务层：报告合并与延迟可达性查询。
// 该层对 handlers 与命令行入口提供稳定接口，避免把文件解析细节散落到调用方。
package services
