// Package disk reports and reclaims the local storage used by burrow.
// Runs never keep files between invocations, so anything in the staging
// area belongs to a run that was interrupted before its teardown.
package disk

import (
	"burrow/pkg/common"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

func (m *manager) Report() (*common.ExecutionResult, error) {
	stats, total := m.GetUsage()
	table := &common.Table{
		Header: []string{"Type", "Size", "Items", "Path"},
	}
	for _, s := range stats {
		table.Rows = append(table.Rows, []string{s.Label, humanize.Bytes(uint64(s.Size)), fmt.Sprintf("%d", s.Items), s.Path})
	}

	return &common.ExecutionResult{
		Output: &common.Output{
			Table:   table,
			Message: fmt.Sprintf("Total: %s", humanize.Bytes(uint64(total))),
		},
	}, nil
}

// Clean removes leftover staging files. With dryRun set it only reports
// what would be removed.
func (m *manager) Clean(dryRun bool) (*common.ExecutionResult, error) {
	stale, err := m.Stale()
	if err != nil {
		return nil, err
	}
	out := &common.Output{}
	if len(stale) == 0 {
		out.Message = "Nothing to clean"
		return &common.ExecutionResult{Output: out}, nil
	}

	var freed int64
	for _, path := range stale {
		if info, err := os.Stat(path); err == nil {
			freed += info.Size()
		}
		if dryRun {
			out.KV = append(out.KV, common.KV{Key: "would remove", Value: path})
			continue
		}
		slog.Info("Removing stale staging file", "path", path)
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("cannot remove %s: %w", path, err)
		}
		out.KV = append(out.KV, common.KV{Key: "removed", Value: path})
	}

	verb := "Freed"
	if dryRun {
		verb = "Would free"
	}
	out.Message = fmt.Sprintf("%s %s", verb, humanize.Bytes(uint64(freed)))
	return &common.ExecutionResult{Output: out}, nil
}

func (m *manager) GetUsage() ([]Usage, int64) {
	categories := []struct {
		label string
		path  string
	}{
		{"Staging", m.cfg.GetDownloadDir()},
		{"Sandboxes", m.cfg.GetSandboxDir()},
		{"Catalog", m.cfg.GetConfigDir()},
	}
	var total int64
	var stats []Usage
	for _, c := range categories {
		size, count := DirSize(c.path)
		total += size
		stats = append(stats, Usage{
			Label: c.label,
			Size:  size,
			Items: count,
			Path:  c.path,
		})
	}
	return stats, total
}

// Stale lists every file under the staging directory.
func (m *manager) Stale() ([]string, error) {
	dir := m.cfg.GetDownloadDir()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read staging directory: %w", err)
	}
	var stale []string
	for _, e := range entries {
		stale = append(stale, filepath.Join(dir, e.Name()))
	}
	return stale, nil
}
