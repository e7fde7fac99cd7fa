package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"latmatrix/internal/dataset"
	"latmatrix/internal/storage"
)

// JoinKey 是所有延迟报告共享的键列：标识源区域的 Source 列。
const JoinKey = "Source"

// ErrNoInput 表示目录中没有任何带键列的 CSV 可供合并。
var ErrNoInput = errors.New("no csv files with a Source column")

// MergeService 把目录中的延迟报告 CSV 逐个外连接成一张宽表并写出。
type MergeService struct {
	dir string
	out string
}

// NewMergeService 构造合并服务；dir 为报告目录，out 为矩阵输出路径。
func NewMergeService(dir, out string) *MergeService {
	return &MergeService{dir: dir, out: out}
}

// MergeResult 汇总一次合并的统计信息。
type MergeResult struct {
	// 实际参与合并的文件数
	Files int
	// 因缺少键列而被跳过的文件名
	Skipped []string
	Rows    int
	Columns int
}

// Run 执行一次完整合并：
// 枚举目录中后缀为 .csv 的文件并按文件名排序（保证输出可复现），逐个解析；
// 缺少键列的文件记告警跳过，其余文件按 Source 做累进全外连接；
// 连接后的缺失格填充 N/A，列序调整为 Source 在前、其余列字典序，最后写出。
// 目录不可读、CSV 不可解析或输出不可写都立即终止并返回错误。
func (s *MergeService) Run() (*MergeResult, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".csv") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	res := &MergeResult{}
	var acc *dataset.Table
	for _, name := range names {
		t, err := dataset.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		if t.ColumnIndex(JoinKey) < 0 {
			log.WithField("file", name).Warn("missing Source column, skipping file")
			res.Skipped = append(res.Skipped, name)
			continue
		}
		// 同一文件内重复的 Source 仅保留首行
		dataset.DedupeKey(t, JoinKey)
		if acc == nil {
			acc = t
		} else {
			acc, err = dataset.OuterJoin(acc, t, JoinKey)
			if err != nil {
				return nil, fmt.Errorf("merge %s: %w", name, err)
			}
		}
		res.Files++
	}
	if acc == nil {
		return nil, fmt.Errorf("%w in %s", ErrNoInput, s.dir)
	}

	dataset.FillMissing(acc, storage.MissingValue)
	acc, err = dataset.ReorderColumns(acc, dataset.KeyFirstOrder(acc.Columns, JoinKey))
	if err != nil {
		return nil, err
	}
	if err := dataset.WriteFile(s.out, acc); err != nil {
		return nil, err
	}
	res.Rows = len(acc.Rows)
	res.Columns = len(acc.Columns)
	return res, nil
}
