// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoKMLInArchive is returned when a KMZ holds no .kml member.
var ErrNoKMLInArchive = errors.New("no .kml file found in the KMZ archive")

// KMZ returns the first member of a KMZ archive whose name ends in .kml.
func KMZ(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Format: "kmz", Reason: ReasonMalformed, Msg: "invalid KMZ archive", Err: err}
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(strings.ToLower(f.Name), ".kml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		defer rc.Close()
		out, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		return out, nil
	}
	return nil, ErrNoKMLInArchive
}
