// Package archive builds and safely extracts the gzipped USTAR archives
// that carry a single skill version: one top-level directory named for
// the skill, containing manifest.yaml, SKILL.md, and any supporting
// files.
package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kithkit/kithkit/pkg/kiterr"
)

// ManifestFilename and SkillFilename are the two files every archive
// must contain.
const (
	ManifestFilename = "manifest.yaml"
	SkillFilename    = "SKILL.md"
)

// Build packs files into a gzipped USTAR archive with a single top-level
// directory equal to skillName. Entries are written in basename-sorted
// order; the archive is gzipped at maximum compression.
func Build(skillName string, files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.IO, "failed to create gzip writer", err)
	}
	tw := tar.NewWriter(gz)

	for _, name := range names {
		content := files[name]
		hdr := &tar.Header{
			Name:     skillName + "/" + name,
			Mode:     0o644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, kiterr.Wrap(kiterr.IO, fmt.Sprintf("failed to write header for %s", name), err)
		}
		if _, err := tw.Write(content); err != nil {
			return nil, kiterr.Wrap(kiterr.IO, fmt.Sprintf("failed to write content for %s", name), err)
		}
	}

	if err := tw.Close(); err != nil {
		return nil, kiterr.Wrap(kiterr.IO, "failed to close tar writer", err)
	}
	if err := gz.Close(); err != nil {
		return nil, kiterr.Wrap(kiterr.IO, "failed to close gzip writer", err)
	}

	return buf.Bytes(), nil
}

// ExtractManifest decompresses archiveBytes in-memory and returns the raw
// manifest.yaml content without touching disk.
func ExtractManifest(archiveBytes []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(archiveBytes))
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Extract, "failed to decompress archive", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, kiterr.Wrap(kiterr.Extract, "truncated or malformed tar stream", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if filepath.Base(hdr.Name) == ManifestFilename {
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, kiterr.Wrap(kiterr.Extract, "failed to read manifest entry", err)
			}
			return data, nil
		}
	}
	return nil, kiterr.New(kiterr.Extract, "archive does not contain "+ManifestFilename)
}

// SafeExtract decompresses archiveBytes and writes its contents into
// targetDir, defending against path traversal.
//
// Any failure aborts extraction and returns a *kiterr.Error with Kind
// Extract; callers are responsible for removing a partially populated
// targetDir.
func SafeExtract(archiveBytes []byte, targetDir string) error {
	gz, err := gzip.NewReader(bytes.NewReader(archiveBytes))
	if err != nil {
		return kiterr.Wrap(kiterr.Extract, "failed to decompress archive", err)
	}
	defer gz.Close()

	absTarget, err := filepath.Abs(targetDir)
	if err != nil {
		return kiterr.Wrap(kiterr.Extract, "failed to resolve target directory", err)
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return kiterr.Wrap(kiterr.Extract, "truncated or malformed tar stream", err)
		}

		if strings.HasPrefix(hdr.Name, "/") {
			return kiterr.New(kiterr.Extract, fmt.Sprintf("path traversal: absolute entry name %q", hdr.Name))
		}

		components := strings.Split(hdr.Name, "/")
		for _, c := range components {
			if c == ".." {
				return kiterr.New(kiterr.Extract, fmt.Sprintf("path traversal: %q contains '..'", hdr.Name))
			}
		}

		// Strip the skill-name prefix; empty remainder is the top-level dir entry.
		rel := strings.Join(components[1:], "/")
		if rel == "" {
			continue
		}

		outPath := filepath.Join(absTarget, filepath.FromSlash(rel))
		resolvedOut, err := filepath.Abs(outPath)
		if err != nil {
			return kiterr.Wrap(kiterr.Extract, "failed to resolve output path", err)
		}
		if resolvedOut != absTarget && !strings.HasPrefix(resolvedOut, absTarget+string(filepath.Separator)) {
			return kiterr.New(kiterr.Extract, fmt.Sprintf("path traversal: %q escapes target directory", hdr.Name))
		}

		if hdr.Typeflag != tar.TypeReg && hdr.Typeflag != 0 {
			// Symlinks, hardlinks, device files, and other non-regular
			// entries are defensively skipped — never written to disk.
			continue
		}

		if err := writeEntry(resolvedOut, tr, hdr.Size); err != nil {
			return err
		}
	}

	return nil
}

func writeEntry(path string, r io.Reader, size int64) error {
	if err := mkdirAllFor(path); err != nil {
		return kiterr.Wrap(kiterr.Extract, fmt.Sprintf("failed to create parent directory for %s", path), err)
	}
	f, err := createFile(path)
	if err != nil {
		return kiterr.Wrap(kiterr.Extract, fmt.Sprintf("failed to create %s", path), err)
	}
	defer f.Close()

	if _, err := io.CopyN(f, r, size); err != nil && err != io.EOF {
		return kiterr.Wrap(kiterr.Extract, fmt.Sprintf("truncated content for %s", path), err)
	}
	return nil
}
