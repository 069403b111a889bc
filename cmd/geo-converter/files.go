// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/pdiddy/geo-converter/internal/convert"
)

// readInputs loads the named files from fsys. With no paths the text is
// used instead; "-" as text reads it from stdin.
func readInputs(fsys afero.Fs, paths []string, text string, stdin io.Reader) (convert.Inputs, error) {
	if len(paths) == 0 {
		if text == "-" {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return convert.Inputs{}, fmt.Errorf("reading stdin: %w", err)
			}
			text = string(data)
		}
		return convert.Inputs{Text: text}, nil
	}

	in := convert.Inputs{Files: make([]convert.File, 0, len(paths))}
	for _, p := range paths {
		data, err := afero.ReadFile(fsys, p)
		if err != nil {
			return convert.Inputs{}, fmt.Errorf("reading %s: %w", p, err)
		}
		in.Files = append(in.Files, convert.File{Name: filepath.Base(p), Data: data})
	}
	return in, nil
}

// writeArtifact stores art in dir, creating dir when needed, and returns
// the written path.
func writeArtifact(fsys afero.Fs, dir string, art convert.Artifact) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, art.Name)
	if err := afero.WriteFile(fsys, path, art.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// writeReport encodes rep as YAML at path.
func writeReport(fsys afero.Fs, path string, rep convert.Report) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("creating report %s: %w", path, err)
	}
	defer f.Close()
	if err := convert.WriteReport(f, rep); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
