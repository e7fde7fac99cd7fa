// Package storage 负责从磁盘加载查询端数据：延迟矩阵与区域映射 CSV。
// 其它层应通过 services 间接使用这些数据，storage 本身不持有进程内状态。
package storage
