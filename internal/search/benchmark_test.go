package search

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// createBenchTree creates a tree with the given depth, filesPerDir files and
// three subdirectories per level.
func createBenchTree(b *testing.B, root string, depth, filesPerDir int) {
	if depth <= 0 {
		return
	}

	for i := 0; i < filesPerDir; i++ {
		filename := filepath.Join(root, "file"+string(rune('a'+i))+".txt")
		if err := os.WriteFile(filename, []byte("test"), 0644); err != nil {
			b.Fatalf("Failed to create test file: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		subdir := filepath.Join(root, "dir"+string(rune('a'+i)))
		if err := os.Mkdir(subdir, 0755); err != nil {
			b.Fatalf("Failed to create test directory: %v", err)
		}
		createBenchTree(b, subdir, depth-1, filesPerDir)
	}
}

func BenchmarkSearch(b *testing.B) {
	tmpDir := b.TempDir()
	createBenchTree(b, tmpDir, 5, 10)

	files, err := TypeTest("f")
	if err != nil {
		b.Fatal(err)
	}

	b.Run("filepath.WalkDir", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			count := 0
			err := filepath.WalkDir(tmpDir, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.Type().IsRegular() {
					count++
				}
				return nil
			})
			if err != nil {
				b.Fatalf("Error walking directory: %v", err)
			}
			if count == 0 {
				b.Fatal("No files found")
			}
		}
	})

	b.Run("synchronous", func(b *testing.B) {
		cfg := configFor(tmpDir)
		for i := 0; i < b.N; i++ {
			w := NewWalker(cfg, SinkFunc(func(ResultLine) {}), nil, nil)
			count, err := w.Search(context.Background(), files)
			if err != nil {
				b.Fatalf("Error searching: %v", err)
			}
			if count == 0 {
				b.Fatal("No files found")
			}
		}
	})

	b.Run("pooled", func(b *testing.B) {
		cfg := configFor(tmpDir)
		for i := 0; i < b.N; i++ {
			pool, err := NewPool(runtime.NumCPU(), nil)
			if err != nil {
				b.Fatal(err)
			}
			w := NewWalker(cfg, SinkFunc(func(ResultLine) {}), pool, nil)
			count, err := w.Search(context.Background(), files)
			if err != nil {
				b.Fatalf("Error searching: %v", err)
			}
			if err := pool.Shutdown(); err != nil {
				b.Fatal(err)
			}
			if count == 0 {
				b.Fatal("No files found")
			}
		}
	})
}
