package archive

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	kerrors "github.com/PolarWolf314/tarvault/internal/errors"
)

// writeTree creates files (relative path -> content) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
}

// readTree returns every regular file under root as relative path -> content.
func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to read tree %s: %v", root, err)
	}
	return files
}

func TestPackUnpack_DirectoryRoundTrip(t *testing.T) {
	files := map[string]string{
		"a.txt":              "alpha",
		"sub/b.txt":          "bravo",
		"sub/deeper/c.bin":   string([]byte{0, 1, 2, 255}),
		"sub/deeper/empty":   "",
		"with space/d e.txt": "delta echo",
	}

	for _, compress := range []bool{false, true} {
		name := "Plain"
		if compress {
			name = "Compressed"
		}
		t.Run(name, func(t *testing.T) {
			src := filepath.Join(t.TempDir(), "notes")
			writeTree(t, src, files)

			var buf bytes.Buffer
			if err := Pack(context.Background(), src, compress, &buf); err != nil {
				t.Fatalf("Pack failed: %v", err)
			}

			dest := t.TempDir()
			if err := Unpack(context.Background(), &buf, compress, dest); err != nil {
				t.Fatalf("Unpack failed: %v", err)
			}

			got := readTree(t, filepath.Join(dest, "notes"))
			if len(got) != len(files) {
				t.Fatalf("extracted %d files, expected %d: %v", len(got), len(files), got)
			}
			for rel, want := range files {
				if got[rel] != want {
					t.Errorf("file %s = %q, expected %q", rel, got[rel], want)
				}
			}
		})
	}
}

func TestPackUnpack_SingleFilePreservesMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "script.sh")
	if err := os.WriteFile(src, []byte("#!/bin/sh\necho hi\n"), 0750); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}

	var buf bytes.Buffer
	if err := Pack(context.Background(), src, true, &buf); err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	dest := t.TempDir()
	if err := Unpack(context.Background(), &buf, true, dest); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dest, "script.sh"))
	if err != nil {
		t.Fatalf("expected extracted file: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0750 {
		t.Errorf("mode = %o, expected 750", info.Mode().Perm())
	}
}

func TestPackUnpack_Symlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	src := filepath.Join(t.TempDir(), "tree")
	writeTree(t, src, map[string]string{"target.txt": "x"})
	if err := os.Symlink("target.txt", filepath.Join(src, "link")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	var buf bytes.Buffer
	if err := Pack(context.Background(), src, false, &buf); err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	dest := t.TempDir()
	if err := Unpack(context.Background(), &buf, false, dest); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}

	link, err := os.Readlink(filepath.Join(dest, "tree", "link"))
	if err != nil {
		t.Fatalf("expected symlink to be restored: %v", err)
	}
	if link != "target.txt" {
		t.Errorf("symlink target = %q, expected target.txt", link)
	}
}

func TestPack_MissingSource(t *testing.T) {
	var buf bytes.Buffer
	err := Pack(context.Background(), filepath.Join(t.TempDir(), "absent"), false, &buf)
	if err == nil {
		t.Fatal("expected Pack to fail for a missing source")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestPack_CanceledContext(t *testing.T) {
	src := filepath.Join(t.TempDir(), "tree")
	writeTree(t, src, map[string]string{"a": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := Pack(ctx, src, false, &buf); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestUnpack_InvalidStreams(t *testing.T) {
	src := filepath.Join(t.TempDir(), "tree")
	writeTree(t, src, map[string]string{"a.txt": "alpha"})

	var plain, gz bytes.Buffer
	if err := Pack(context.Background(), src, false, &plain); err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if err := Pack(context.Background(), src, true, &gz); err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	badCRC := bytes.Clone(gz.Bytes())
	badCRC[len(badCRC)-8] ^= 0xff

	tests := []struct {
		name       string
		data       []byte
		compressed bool
	}{
		{"Empty", nil, false},
		{"EmptyCompressed", nil, true},
		{"Garbage", bytes.Repeat([]byte("not a tar archive "), 64), false},
		{"PlainReadAsCompressed", plain.Bytes(), true},
		{"CompressedReadAsPlain", gz.Bytes(), false},
		{"CorruptGzipChecksum", badCRC, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Unpack(context.Background(), bytes.NewReader(tc.data), tc.compressed, t.TempDir())
			if !errors.Is(err, kerrors.ErrInvalidArchive) {
				t.Errorf("expected ErrInvalidArchive, got %v", err)
			}
		})
	}
}

// rawTar builds a tar stream from hand-written headers.
func rawTar(t *testing.T, hdrs ...*tar.Header) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, h := range hdrs {
		if err := tw.WriteHeader(h); err != nil {
			t.Fatalf("Failed to write header %s: %v", h.Name, err)
		}
		if h.Size > 0 {
			if _, err := tw.Write(bytes.Repeat([]byte("x"), int(h.Size))); err != nil {
				t.Fatalf("Failed to write body: %v", err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Failed to close tar writer: %v", err)
	}
	return &buf
}

func TestUnpack_RejectsEscapingEntries(t *testing.T) {
	tests := []struct {
		name string
		hdrs []*tar.Header
	}{
		{"DotDot", []*tar.Header{{Name: "../evil.txt", Typeflag: tar.TypeReg, Mode: 0644, Size: 1}}},
		{"NestedDotDot", []*tar.Header{{Name: "a/../../evil.txt", Typeflag: tar.TypeReg, Mode: 0644, Size: 1}}},
		{"Absolute", []*tar.Header{{Name: "/tmp/evil.txt", Typeflag: tar.TypeReg, Mode: 0644, Size: 1}}},
		{"HardLinkOutside", []*tar.Header{{Name: "link", Typeflag: tar.TypeLink, Linkname: "../../etc/passwd"}}},
	}
	if runtime.GOOS != "windows" {
		tests = append(tests, struct {
			name string
			hdrs []*tar.Header
		}{"ThroughSymlink", []*tar.Header{
			{Name: "escape", Typeflag: tar.TypeSymlink, Linkname: "/tmp"},
			{Name: "escape/evil.txt", Typeflag: tar.TypeReg, Mode: 0644, Size: 1},
		}})
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dest := t.TempDir()
			err := Unpack(context.Background(), rawTar(t, tc.hdrs...), false, dest)
			if !errors.Is(err, kerrors.ErrUnsafePath) {
				t.Errorf("expected ErrUnsafePath, got %v", err)
			}
		})
	}
}
