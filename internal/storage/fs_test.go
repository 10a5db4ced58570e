package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/onboard/internal/apperr"
	"github.com/starford/onboard/internal/checksum"
)

func tempContent(t *testing.T) (string, *FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return dir, fs
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRead(t *testing.T) {
	dir, s := tempContent(t)
	writeFile(t, dir, "guide.md", "# Guide\n## Step\n")
	got, err := s.Read("guide.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "# Guide\n## Step\n" {
		t.Errorf("content = %q", got)
	}
}

func TestRead_Missing(t *testing.T) {
	_, s := tempContent(t)
	_, err := s.Read("nope.md")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestList_OnlyMarkdown(t *testing.T) {
	dir, s := tempContent(t)
	writeFile(t, dir, "a.md", "a")
	writeFile(t, dir, "sub/b.md", "b")
	writeFile(t, dir, "image.png", "png")

	metas, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("len = %d, want 2", len(metas))
	}
	got := map[string]string{}
	for _, m := range metas {
		got[m.Path] = m.Checksum
	}
	if got["sub/b.md"] != checksum.Sum([]byte("b")) {
		t.Errorf("metas = %v", metas)
	}
}

func TestList_Subdir(t *testing.T) {
	dir, s := tempContent(t)
	writeFile(t, dir, "a.md", "a")
	writeFile(t, dir, "sub/b.md", "b")

	metas, err := s.List("sub")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 1 || metas[0].Path != "sub/b.md" {
		t.Errorf("metas = %v", metas)
	}
}

func TestPathTraversal(t *testing.T) {
	_, s := tempContent(t)
	for _, p := range []string{"../escape.md", "../../etc/passwd", "/etc/passwd"} {
		_, err := s.Read(p)
		if !errors.Is(err, apperr.ErrInvalidPath) {
			t.Errorf("Read(%q) err = %v, want ErrInvalidPath", p, err)
		}
	}
}

func TestNewFS_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.md")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFS(file); err == nil {
		t.Error("expected error for non-directory root")
	}
}
