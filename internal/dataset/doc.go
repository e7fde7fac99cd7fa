// Package dataset 提供内存表模型与 CSV 读写、外连接、缺失值填充等表运算。
// 该层不关心文件来自哪个目录或厂商，只负责单表与两表之间的纯数据变换。
package dataset
