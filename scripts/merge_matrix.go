package main

// 示例合并脚本（演示用）
// 说明：用 map 直接拼装延迟矩阵，足够应付规整的报告目录。
// 生产请使用 cmd/merge-matrix，它复用 internal/dataset 的完整实现
// （列名冲突后缀、空单元格与缺失单元格的区分等这里都省略了）。

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"latmatrix/internal/config"
)

func main() {
	var dir string
	var out string
	cfg := config.Load()
	flag.StringVar(&dir, "dir", cfg.Data.LatenciesDir, "Directory containing latency report CSVs")
	flag.StringVar(&out, "out", cfg.Data.OutputFile, "Path of the merged matrix CSV")
	flag.Parse()

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("read directory: %v", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".csv") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	// rows: Source -> 列名 -> 值；首次出现的 Source 保留，重复忽略。
	rows := make(map[string]map[string]string)
	var order []string
	colSeen := make(map[string]bool)
	var cols []string
	merged := 0

	for _, name := range names {
		records, err := readCSV(filepath.Join(dir, name))
		if err != nil {
			log.Fatalf("parse %s: %v", name, err)
		}
		if len(records) == 0 {
			log.Fatalf("parse %s: empty file", name)
		}
		header := records[0]
		keyIdx := -1
		for i, h := range header {
			if h == "Source" {
				keyIdx = i
			}
		}
		if keyIdx < 0 {
			fmt.Printf("Skipping %s: no Source column\n", name)
			continue
		}
		for i, h := range header {
			if i != keyIdx && !colSeen[h] {
				colSeen[h] = true
				cols = append(cols, h)
			}
		}
		for _, rec := range records[1:] {
			src := rec[keyIdx]
			row, ok := rows[src]
			if !ok {
				row = make(map[string]string)
				rows[src] = row
				order = append(order, src)
			}
			for i, v := range rec {
				if i == keyIdx {
					continue
				}
				if _, exists := row[header[i]]; !exists {
					row[header[i]] = v
				}
			}
		}
		merged++
	}

	if merged == 0 {
		log.Fatalf("no csv files with a Source column in %s", dir)
	}

	sort.Strings(cols)
	f, err := os.Create(out)
	if err != nil {
		log.Fatalf("create %s: %v", out, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	_ = w.Write(append([]string{"Source"}, cols...))
	for _, src := range order {
		rec := []string{src}
		for _, c := range cols {
			v, ok := rows[src][c]
			if !ok {
				v = "N/A"
			}
			rec = append(rec, v)
		}
		_ = w.Write(rec)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("write %s: %v", out, err)
	}

	fmt.Printf("Merging complete! The output file is '%s'.\n", out)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csv.NewReader(f).ReadAll()
}
