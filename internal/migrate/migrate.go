// Package migrate provides the one-shot utilities that move or clean up
// file-backed memory stores: streaming a jsonl file into the relational
// backend, and compacting a jsonl file by dropping blank lines and
// duplicate ids.
package migrate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mementodev/mementod/internal/store/jsonl"
	"github.com/mementodev/mementod/internal/store/sqlite"
	"github.com/mementodev/mementod/internal/types"
)

// ToSQLite streams every record in the jsonl file at jsonlPath through
// dest's Import and returns the number of records imported.
func ToSQLite(ctx context.Context, jsonlPath string, dest *sqlite.Store) (int, error) {
	src := jsonl.New(jsonlPath)
	items, err := src.Export(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrate: read %s: %w", jsonlPath, err)
	}

	var buf bytes.Buffer
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			return 0, fmt.Errorf("migrate: marshal %s: %w", it.ID, err)
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}

	n, err := dest.Import(ctx, &buf)
	if err != nil {
		return 0, fmt.Errorf("migrate: import into %s: %w", dest.Path(), err)
	}
	return n, nil
}

// CompactResult reports how many records a compaction pass read and how
// many distinct ids it kept.
type CompactResult struct {
	Read    int
	Written int
}

// Compact reads inputPath one line at a time, skips blanks, and writes to
// outputPath the first line seen for each distinct item id, preserving
// original line text and input order. When outputPath equals inputPath,
// the result is written to a sibling temporary file and renamed into
// place on success.
func Compact(inputPath, outputPath string) (CompactResult, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return CompactResult{}, fmt.Errorf("compact: open %s: %w", inputPath, err)
	}
	defer in.Close()

	sameFile := filepath.Clean(inputPath) == filepath.Clean(outputPath)

	writePath := outputPath
	var tmpPath string
	if sameFile {
		dir := filepath.Dir(outputPath)
		tmp, err := os.CreateTemp(dir, ".compact-tmp-*")
		if err != nil {
			return CompactResult{}, fmt.Errorf("compact: create temp file: %w", err)
		}
		tmpPath = tmp.Name()
		tmp.Close()
		writePath = tmpPath
	}

	out, err := os.Create(writePath)
	if err != nil {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
		return CompactResult{}, fmt.Errorf("compact: create %s: %w", writePath, err)
	}
	success := false
	defer func() {
		out.Close()
		if !success && tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(out)
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)

	var res CompactResult
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		res.Read++

		var it types.Item
		if err := json.Unmarshal([]byte(trimmed), &it); err != nil {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		res.Written++

		if _, err := w.WriteString(trimmed); err != nil {
			return CompactResult{}, fmt.Errorf("compact: write %s: %w", writePath, err)
		}
		if _, err := w.WriteString("\n"); err != nil {
			return CompactResult{}, fmt.Errorf("compact: write %s: %w", writePath, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return CompactResult{}, fmt.Errorf("compact: read %s: %w", inputPath, err)
	}
	if err := w.Flush(); err != nil {
		return CompactResult{}, fmt.Errorf("compact: flush %s: %w", writePath, err)
	}
	if err := out.Close(); err != nil {
		return CompactResult{}, fmt.Errorf("compact: close %s: %w", writePath, err)
	}

	if tmpPath != "" {
		if err := os.Rename(tmpPath, outputPath); err != nil {
			return CompactResult{}, fmt.Errorf("compact: rename into %s: %w", outputPath, err)
		}
	}
	success = true
	return res, nil
}
