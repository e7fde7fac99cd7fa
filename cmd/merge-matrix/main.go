package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"latmatrix/internal/config"
	"latmatrix/internal/services"
)

// 合并命令：把延迟报告目录里的 CSV 按 Source 列逐个外连接成一张延迟矩阵，
// 缺失格填 N/A，列序为 Source 在前、其余字典序，然后写出。
// 用法：go run ./cmd/merge-matrix [-dir PATH] [-out PATH]
func main() {
	dir := flag.String("dir", "", "directory containing latency report csv files (default: config data.latencies_dir)")
	out := flag.String("out", "", "output path for the merged matrix (default: config data.output_file)")
	flag.Parse()

	// 告警等诊断输出走标准输出，与进度信息同一流
	log.SetOutput(os.Stdout)

	cfg := config.Load()
	if *dir == "" {
		*dir = cfg.Data.LatenciesDir
	}
	if *out == "" {
		*out = cfg.Data.OutputFile
	}

	res, err := services.NewMergeService(*dir, *out).Run()
	if err != nil {
		log.Fatalf("merge: %v", err)
	}

	if len(res.Skipped) > 0 {
		fmt.Printf("Skipped %d of %d csv files.\n", len(res.Skipped), res.Files+len(res.Skipped))
	}
	fmt.Printf("Merged %d files into %d rows x %d columns.\n", res.Files, res.Rows, res.Columns)
	fmt.Printf("Merging complete! The output file is '%s'.\n", *out)
}
