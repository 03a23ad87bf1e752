// Package extractor unpacks an icon pack archive into the icons directory.
package extractor

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Extract unpacks every regular file in the archive at srcPath into dstDir, flattened
// to its base name, and returns how many files were written. The archive format is
// chosen from the file extension.
func Extract(srcPath, dstDir string) (int, error) {
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return 0, err
	}
	name := filepath.Base(srcPath)
	switch {
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		return extractTar(srcPath, dstDir, "gz")
	case strings.HasSuffix(name, ".tar.xz") || strings.HasSuffix(name, ".txz"):
		return extractTar(srcPath, dstDir, "xz")
	case strings.HasSuffix(name, ".tar.bz2"):
		return extractTar(srcPath, dstDir, "bz2")
	case strings.HasSuffix(name, ".tar"):
		return extractTar(srcPath, dstDir, "")
	case strings.HasSuffix(name, ".zip"):
		return extractZip(srcPath, dstDir)
	default:
		return 0, fmt.Errorf("unsupported icon pack format: %s", name)
	}
}

func extractTar(srcPath, dstDir, compression string) (int, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var r io.Reader = f
	switch compression {
	case "gz":
		gr, err := gzip.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("open gzip: %w", err)
		}
		defer gr.Close()
		r = gr
	case "bz2":
		r = bzip2.NewReader(f)
	case "xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("open xz: %w", err)
		}
		r = xr
	}

	n := 0
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		written, err := writeFile(dstDir, hdr.Name, tr)
		if err != nil {
			return n, err
		}
		if written {
			n++
		}
	}
	return n, nil
}

func extractZip(srcPath, dstDir string) (int, error) {
	r, err := zip.OpenReader(srcPath)
	if err != nil {
		return 0, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	n := 0
	for _, f := range r.File {
		if !f.Mode().IsRegular() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return n, err
		}
		written, err := writeFile(dstDir, f.Name, rc)
		rc.Close()
		if err != nil {
			return n, err
		}
		if written {
			n++
		}
	}
	return n, nil
}

// writeFile keeps only the base name of the entry, so nothing escapes dstDir.
// Hidden files are skipped.
func writeFile(dstDir, entryName string, src io.Reader) (bool, error) {
	base := filepath.Base(filepath.Clean("/" + entryName))
	if base == "/" || strings.HasPrefix(base, ".") {
		return false, nil
	}
	target := filepath.Join(dstDir, base)
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return false, fmt.Errorf("write %s: %w", target, err)
	}
	if err := out.Chmod(0644); err != nil {
		out.Close()
		return false, err
	}
	return true, out.Close()
}
