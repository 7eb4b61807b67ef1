package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

type entry struct {
	name    string
	content string
	nonUTF8 bool
}

func makeZip(t *testing.T, name string, entries []entry) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), name)
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, e := range entries {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, NonUTF8: e.nonUTF8})
		if err != nil {
			t.Fatalf("Failed to create %s in zip: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Failed to write %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finish zip: %v", err)
	}
	return zipPath
}

func TestWalk(t *testing.T) {
	zipPath := makeZip(t, "themes.zip", []entry{
		{"modena/modena.css", ".root { -fx-base: #ececec; }"},
		{"modena/touch.css", ".root { -fx-font-size: 15pt; }"},
		{"caspian/caspian.css", ".root { -fx-base: #d0d0d0; }"},
		{"readme.txt", "themes"},
	})

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{"modena only", "modena/", []string{"modena/modena.css", "modena/touch.css"}},
		{"caspian only", "caspian/", []string{"caspian/caspian.css"}},
		{"nothing", "missing/", nil},
		{"everything", "", []string{"modena/modena.css", "modena/touch.css", "caspian/caspian.css", "readme.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var visited []string
			err := Walk(zipPath, tt.prefix, nil, func(archive, name string, _ *zip.File) error {
				if archive != zipPath {
					t.Errorf("archive = %s, want %s", archive, zipPath)
				}
				visited = append(visited, name)
				return nil
			})
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if !slices.Equal(visited, tt.want) {
				t.Errorf("visited %v, want %v", visited, tt.want)
			}
		})
	}

	t.Run("walkFn error stops walk", func(t *testing.T) {
		stop := errors.New("stop")
		calls := 0
		err := Walk(zipPath, "", nil, func(string, string, *zip.File) error {
			calls++
			return stop
		})
		if !errors.Is(err, stop) || calls != 1 {
			t.Errorf("Walk() error = %v after %d calls", err, calls)
		}
	})
}

func TestWalk_UnsafeNames(t *testing.T) {
	for _, name := range []string{"../evil.css", "/etc/evil.css", `\evil.css`, "a/../../evil.css"} {
		t.Run(name, func(t *testing.T) {
			zipPath := makeZip(t, "evil.zip", []entry{{name, "x"}})
			err := Walk(zipPath, "", nil, func(string, string, *zip.File) error { return nil })
			if err == nil {
				t.Errorf("Walk() should refuse entry %q", name)
			}
		})
	}
}

func TestWalk_InvalidArchive(t *testing.T) {
	if err := Walk("/nonexistent/file.zip", "", nil, nil); err == nil {
		t.Error("expected error for nonexistent file")
	}
	bad := filepath.Join(t.TempDir(), "bad.zip")
	if err := os.WriteFile(bad, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Walk(bad, "", nil, nil); err == nil {
		t.Error("expected error for invalid zip")
	}
}

func TestEntryName_CodePage(t *testing.T) {
	// "стиль.css" in cp866
	raw := string([]byte{0xe1, 0xe2, 0xa8, 0xab, 0xec}) + ".css"
	zipPath := makeZip(t, "cp866.zip", []entry{{raw, "a {}", true}})

	var names []string
	err := Walk(zipPath, "", charmap.CodePage866, func(_, name string, _ *zip.File) error {
		names = append(names, name)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(names) != 1 || names[0] != "стиль.css" {
		t.Errorf("names = %q", names)
	}
}

func TestReadFile(t *testing.T) {
	zipPath := makeZip(t, "themes.zip", []entry{
		{"a.css", "a { -fx-fill: red; }"},
		{"a.css.bak", "old"},
	})

	data, err := ReadFile(zipPath, "a.css", nil)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "a { -fx-fill: red; }" {
		t.Errorf("ReadFile() = %q", data)
	}
	if _, err := ReadFile(zipPath, "b.css", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadFile() of missing entry error = %v", err)
	}
}

func TestIsArchive(t *testing.T) {
	dir := t.TempDir()
	zipPath := makeZip(t, "real.zip", []entry{{"a.css", "a {}"}})

	fake := filepath.Join(dir, "fake.zip")
	if err := os.WriteFile(fake, []byte("a { -fx-fill: red; }"), 0644); err != nil {
		t.Fatal(err)
	}
	text := filepath.Join(dir, "a.css")
	if err := os.WriteFile(text, []byte("a {}"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		file string
		want bool
	}{
		{"zip", zipPath, true},
		{"zip extension with text", fake, false},
		{"stylesheet", text, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsArchive(tt.file)
			if err != nil {
				t.Fatalf("IsArchive() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsArchive() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := IsArchive(filepath.Join(dir, "missing.zip")); err == nil {
		t.Error("IsArchive() of missing file should fail")
	}
}

func TestSplit(t *testing.T) {
	zipPath := makeZip(t, "themes.zip", []entry{{"dir/a.css", "a {}"}})

	arc, name, err := Split(filepath.Join(zipPath, "dir", "a.css"))
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if arc != zipPath || name != "dir/a.css" {
		t.Errorf("Split() = %q, %q", arc, name)
	}

	plain := filepath.Join(t.TempDir(), "a.css")
	if err := os.WriteFile(plain, []byte("a {}"), 0644); err != nil {
		t.Fatal(err)
	}
	if arc, _, err := Split(plain); err != nil || arc != "" {
		t.Errorf("Split() of plain file = %q, %v", arc, err)
	}
}
