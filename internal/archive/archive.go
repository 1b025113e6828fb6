package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/tarvault/internal/errors"

	"github.com/klauspost/compress/gzip"
)

// Pack writes a tar stream of source to w, gzip-compressed iff compress.
// source may be a file or a directory; directories are walked recursively
// without following symlinks. Entry names are rooted at the base name of
// source.
func Pack(ctx context.Context, source string, compress bool, w io.Writer) error {
	clean, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", source, err)
	}
	if _, err := os.Lstat(clean); err != nil {
		return fmt.Errorf("cannot archive %s: %w", source, err)
	}

	out := w
	var gw *gzip.Writer
	if compress {
		gw = gzip.NewWriter(w)
		out = gw
	}
	tw := tar.NewWriter(out)

	parent := filepath.Dir(clean)
	walkErr := filepath.WalkDir(clean, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(parent, path)
		if err != nil {
			return err
		}
		return addEntry(tw, path, filepath.ToSlash(rel))
	})
	if walkErr != nil {
		return fmt.Errorf("archiving %s: %w", source, walkErr)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("finishing tar stream: %w", err)
	}
	if gw != nil {
		if err := gw.Close(); err != nil {
			return fmt.Errorf("finishing gzip stream: %w", err)
		}
	}
	return nil
}

func addEntry(tw *tar.Writer, path, name string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}

	var link string
	if info.Mode()&os.ModeSymlink != 0 {
		if link, err = os.Readlink(path); err != nil {
			return err
		}
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}
	hdr.Name = name
	if info.IsDir() {
		hdr.Name += "/"
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("copying %s: %w", path, err)
	}
	return nil
}

// Unpack extracts the tar stream in r into destDir, gunzipping first iff
// compressed. An empty stream, a stream of the wrong compression kind, or
// anything else that is not a tar archive yields ErrInvalidArchive.
func Unpack(ctx context.Context, r io.Reader, compressed bool, destDir string) error {
	in := r
	var gr *gzip.Reader
	if compressed {
		var err error
		if gr, err = gzip.NewReader(r); err != nil {
			return fmt.Errorf("%w: %v", kerrors.ErrInvalidArchive, err)
		}
		defer gr.Close()
		in = gr
	}

	dest, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("resolving destination: %w", err)
	}

	tr := tar.NewReader(in)
	entries := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", kerrors.ErrInvalidArchive, err)
		}
		entries++

		if err := extractEntry(tr, hdr, dest); err != nil {
			return err
		}
	}

	if entries == 0 {
		return fmt.Errorf("%w: no entries", kerrors.ErrInvalidArchive)
	}
	if gr != nil {
		// The gzip checksum and length are only verified at the end of the stream.
		if _, err := io.Copy(io.Discard, gr); err != nil {
			return fmt.Errorf("%w: %v", kerrors.ErrInvalidArchive, err)
		}
	}
	return nil
}

func extractEntry(tr *tar.Reader, hdr *tar.Header, dest string) error {
	target, err := safeTarget(dest, hdr.Name)
	if err != nil {
		return err
	}
	mode := hdr.FileInfo().Mode().Perm()

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(target, mode|0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", target, err)
		}

	case tar.TypeReg:
		if err := prepareParent(target); err != nil {
			return err
		}
		f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
		if err != nil {
			return fmt.Errorf("creating %s: %w", target, err)
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return fmt.Errorf("%w: writing %s: %v", kerrors.ErrInvalidArchive, target, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", target, err)
		}
		// Permissions from OpenFile are filtered by umask.
		if err := os.Chmod(target, mode); err != nil {
			return fmt.Errorf("setting mode on %s: %w", target, err)
		}
		if err := os.Chtimes(target, hdr.ModTime, hdr.ModTime); err != nil {
			return fmt.Errorf("setting times on %s: %w", target, err)
		}

	case tar.TypeSymlink:
		if err := prepareParent(target); err != nil {
			return err
		}
		if err := os.Symlink(hdr.Linkname, target); err != nil {
			return fmt.Errorf("creating symlink %s: %w", target, err)
		}

	case tar.TypeLink:
		source, err := safeTarget(dest, hdr.Linkname)
		if err != nil {
			return err
		}
		if err := prepareParent(target); err != nil {
			return err
		}
		if err := os.Link(source, target); err != nil {
			return fmt.Errorf("creating hard link %s: %w", target, err)
		}

	default:
		// Devices, FIFOs and other special files are not restored.
	}
	return nil
}

// safeTarget joins name onto dest and rejects results outside dest or
// reached through an existing symlink.
func safeTarget(dest, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", kerrors.ErrUnsafePath, name)
	}
	target := filepath.Join(dest, clean)

	// Walk the existing components between dest and target's parent.
	rel, err := filepath.Rel(dest, filepath.Dir(target))
	if err != nil {
		return "", fmt.Errorf("%w: %s", kerrors.ErrUnsafePath, name)
	}
	if rel == "." {
		return target, nil
	}
	current := dest
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		info, err := os.Lstat(current)
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", current, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return "", fmt.Errorf("%w: %s passes through symlink %s", kerrors.ErrUnsafePath, name, current)
		}
	}
	return target, nil
}

// prepareParent creates target's parent directory and removes anything
// already occupying target, so existing symlinks are replaced rather than
// followed.
func prepareParent(target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}
	info, err := os.Lstat(target)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking %s: %w", target, err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot replace directory %s with a file", target)
	}
	if err := os.Remove(target); err != nil {
		return fmt.Errorf("replacing %s: %w", target, err)
	}
	return nil
}
