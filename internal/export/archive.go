// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/pdiddy/geo-converter/pkg/types"
)

// KMZEntry is the archive member holding the KML document.
const KMZEntry = "doc.kml"

// KMZ packs the KML rendering into a zip with a single doc.kml member.
func KMZ(fc *types.FeatureCollection, opts FieldOptions) ([]byte, error) {
	return Zip([]ZipEntry{{Name: KMZEntry, Data: []byte(KML(fc, opts))}})
}

// ZipEntry is one named member of a generated archive.
type ZipEntry struct {
	Name string
	Data []byte
}

// Zip writes entries in order into a deflated archive.
func Zip(entries []ZipEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			return nil, fmt.Errorf("adding %s: %w", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}
