package disk

import (
	"burrow/pkg/config"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testConfig(t *testing.T) config.ReadOnly {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Init()
	if err != nil {
		t.Fatal(err)
	}
	w := cfg.Checkout()
	w.SetCacheDir(filepath.Join(dir, "cache"))
	w.SetConfigDir(filepath.Join(dir, "config"))
	w.SetStateDir(filepath.Join(dir, "state"))
	w.Freeze()
	return cfg
}

func writeStaging(t *testing.T, cfg config.ReadOnly, name string, size int) string {
	t.Helper()
	if err := os.MkdirAll(cfg.GetDownloadDir(), 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(cfg.GetDownloadDir(), name)
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStaleEmpty(t *testing.T) {
	m := NewManager(testConfig(t))

	stale, err := m.Stale()
	if err != nil {
		t.Fatalf("Stale failed: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("expected nothing stale, got %v", stale)
	}
}

func TestCleanRemovesStaging(t *testing.T) {
	cfg := testConfig(t)
	m := NewManager(cfg)
	a := writeStaging(t, cfg, "calm_otter-9a1b.rootfs", 2048)
	b := writeStaging(t, cfg, "calm_otter-9a1b.tar", 4096)

	res, err := m.Clean(false)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	for _, path := range []string{a, b} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s still present after clean", path)
		}
	}
	if !strings.Contains(res.Output.Message, "Freed") {
		t.Errorf("message = %q", res.Output.Message)
	}
	if len(res.Output.KV) != 2 {
		t.Errorf("reported %d removals, want 2", len(res.Output.KV))
	}
}

func TestCleanDryRunKeepsFiles(t *testing.T) {
	cfg := testConfig(t)
	m := NewManager(cfg)
	path := writeStaging(t, cfg, "old_run-77aa.rootfs", 1024)

	res, err := m.Clean(true)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("dry run removed %s", path)
	}
	if !strings.Contains(res.Output.Message, "Would free") {
		t.Errorf("message = %q", res.Output.Message)
	}
	if len(res.Output.KV) != 1 || res.Output.KV[0].Value != path {
		t.Errorf("dry run report = %+v", res.Output.KV)
	}
}

func TestCleanNothing(t *testing.T) {
	m := NewManager(testConfig(t))

	res, err := m.Clean(false)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if res.Output.Message != "Nothing to clean" {
		t.Errorf("message = %q", res.Output.Message)
	}
}

func TestReportTallies(t *testing.T) {
	cfg := testConfig(t)
	m := NewManager(cfg)
	writeStaging(t, cfg, "a.rootfs", 1000)
	writeStaging(t, cfg, "b.tar", 500)

	stats, total := m.GetUsage()
	if len(stats) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(stats))
	}
	if stats[0].Label != "Staging" || stats[0].Size != 1500 || stats[0].Items != 2 {
		t.Errorf("staging usage = %+v", stats[0])
	}
	if total != 1500 {
		t.Errorf("total = %d, want 1500", total)
	}

	res, err := m.Report()
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if len(res.Output.Table.Rows) != 3 {
		t.Errorf("table has %d rows, want 3", len(res.Output.Table.Rows))
	}
	if !strings.Contains(res.Output.Message, "Total:") {
		t.Errorf("message = %q", res.Output.Message)
	}
}
