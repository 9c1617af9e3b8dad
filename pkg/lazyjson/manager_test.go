package lazyjson

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// TestCatalog is a sample data struct for testing
type TestCatalog struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
	Enabled bool   `json:"enabled"`
}

func TestNew(t *testing.T) {
	mgr := New[TestCatalog]("test.json")
	if mgr == nil {
		t.Fatal("expected non-nil manager")
	}
	if mgr.filepath != "test.json" {
		t.Errorf("expected filepath 'test.json', got %s", mgr.filepath)
	}
	if mgr.IsLoaded() {
		t.Error("expected manager to not be loaded initially")
	}
	if mgr.IsDirty() {
		t.Error("expected manager to not be dirty initially")
	}
}

func TestLazyLoad_FileNotExist_DefaultClean(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "catalog.json")

	mgr := New[TestCatalog](testFile)

	// First Get should lazy load the zero value without touching disk
	data, err := mgr.Get()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if data == nil {
		t.Fatal("expected non-nil data")
	}

	if !mgr.IsLoaded() {
		t.Error("expected manager to be loaded")
	}
	if mgr.IsDirty() {
		t.Error("expected manager to stay clean for a read of a missing file")
	}

	// Save must be a no-op: a pure read never creates the file
	if err := mgr.Save(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := os.Stat(testFile); !os.IsNotExist(err) {
		t.Error("expected file to not be created by a read")
	}
}

func TestLazyLoad_FileExists(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "catalog.json")

	testData := `{"name":"extra","entries":3,"enabled":true}`
	if err := os.WriteFile(testFile, []byte(testData), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	mgr := New[TestCatalog](testFile)

	data, err := mgr.Get()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if data.Name != "extra" {
		t.Errorf("expected name 'extra', got %s", data.Name)
	}
	if data.Entries != 3 {
		t.Errorf("expected 3 entries, got %d", data.Entries)
	}
	if !data.Enabled {
		t.Error("expected enabled to be true")
	}

	if !mgr.IsLoaded() {
		t.Error("expected manager to be loaded")
	}
	if mgr.IsDirty() {
		t.Error("expected manager to not be dirty after load")
	}
}

func TestLazyLoad_Corrupt(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "catalog.json")

	if err := os.WriteFile(testFile, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	mgr := New[TestCatalog](testFile)
	if _, err := mgr.Get(); err == nil {
		t.Error("expected error for corrupt JSON")
	}
}

func TestModify(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "catalog.json")

	mgr := New[TestCatalog](testFile)

	// Modify should lazy load and mark dirty
	err := mgr.Modify(func(data *TestCatalog) error {
		data.Name = "edited"
		data.Entries = 9
		data.Enabled = true
		return nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !mgr.IsLoaded() {
		t.Error("expected manager to be loaded")
	}
	if !mgr.IsDirty() {
		t.Error("expected manager to be dirty after modify")
	}

	data, _ := mgr.Get()
	if data.Name != "edited" {
		t.Errorf("expected name 'edited', got %s", data.Name)
	}
	if data.Entries != 9 {
		t.Errorf("expected 9 entries, got %d", data.Entries)
	}
}

func TestSave(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "sub", "catalog.json")

	mgr := New[TestCatalog](testFile)

	mgr.Modify(func(data *TestCatalog) error {
		data.Name = "saved"
		data.Entries = 5
		return nil
	})

	if err := mgr.Save(); err != nil {
		t.Fatalf("expected no error on save, got %v", err)
	}

	if mgr.IsDirty() {
		t.Error("expected manager to not be dirty after save")
	}

	// Create new manager and verify data persisted (and the parent
	// directory was created on demand)
	mgr2 := New[TestCatalog](testFile)
	data, err := mgr2.Get()
	if err != nil {
		t.Fatalf("expected no error loading saved file, got %v", err)
	}

	if data.Name != "saved" {
		t.Errorf("expected name 'saved', got %s", data.Name)
	}
	if data.Entries != 5 {
		t.Errorf("expected 5 entries, got %d", data.Entries)
	}
}

func TestSave_NotDirty_NoOp(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "catalog.json")

	testData := `{"name":"extra","entries":3,"enabled":true}`
	if err := os.WriteFile(testFile, []byte(testData), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	mgr := New[TestCatalog](testFile)
	mgr.Get() // Load the file

	info1, _ := os.Stat(testFile)
	mtime1 := info1.ModTime()

	// Save should be no-op
	if err := mgr.Save(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	info2, _ := os.Stat(testFile)
	mtime2 := info2.ModTime()

	if !mtime1.Equal(mtime2) {
		t.Error("expected file modification time to be unchanged")
	}
}

func TestWithOptions(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "catalog.json")

	defaultFn := func() *TestCatalog {
		return &TestCatalog{
			Name:    "builtin",
			Entries: 4,
			Enabled: true,
		}
	}

	mgr := New[TestCatalog](
		testFile,
		WithDefaultValue[TestCatalog](defaultFn),
		WithCompactJSON[TestCatalog](),
		WithFileMode[TestCatalog](0600),
	)

	data, err := mgr.Get()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if data.Name != "builtin" {
		t.Errorf("expected default name, got %s", data.Name)
	}

	mgr.Modify(func(data *TestCatalog) error {
		data.Entries = 8
		return nil
	})
	if err := mgr.Save(); err != nil {
		t.Fatalf("expected no error on save, got %v", err)
	}

	// Check file mode
	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("failed to stat file: %v", err)
	}

	if info.Mode().Perm() != 0600 {
		t.Errorf("expected file mode 0600, got %o", info.Mode().Perm())
	}

	// Compact JSON should be on one line
	data2, _ := os.ReadFile(testFile)
	if len(data2) > 100 {
		t.Error("expected compact JSON output")
	}
}

func TestConcurrency(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "catalog.json")

	mgr := New[TestCatalog](testFile)

	var wg sync.WaitGroup
	numGoroutines := 10
	numIterations := 100

	// Concurrent reads
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numIterations; j++ {
				_, err := mgr.Get()
				if err != nil {
					t.Errorf("unexpected error on concurrent Get: %v", err)
				}
			}
		}()
	}

	// Concurrent writes
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numIterations; j++ {
				mgr.Modify(func(data *TestCatalog) error {
					data.Entries = id*1000 + j
					return nil
				})
			}
		}(i)
	}

	wg.Wait()

	if !mgr.IsDirty() {
		t.Error("expected manager to be dirty after concurrent modifications")
	}

	if err := mgr.Save(); err != nil {
		t.Errorf("expected no error on save after concurrent access, got %v", err)
	}
}
