// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ai holds the remote collaborators used by the cleanup and PDF
// modes: a Cleaner that turns messy text into CSV and a PDFExtractor that
// pulls text and table rows out of a document. ClaudeBackend implements
// both over the Claude Messages API; TextBackend reads the PDF text layer
// locally.
package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/geo-converter/pkg/types"
)

var (
	// ErrNoOutput is returned when the collaborator produced nothing usable.
	ErrNoOutput = errors.New("failed to clean data")
	// ErrInvalidResponse is returned when a PDF extraction reply is not the
	// expected JSON object.
	ErrInvalidResponse = errors.New("invalid JSON response from the server")
	// ErrDataURI is returned for malformed data URIs.
	ErrDataURI = errors.New("invalid data URI")
)

// Cleaner turns raw text into CSV with a header row.
type Cleaner interface {
	Clean(ctx context.Context, req CleanRequest) (CleanResult, error)
}

// PDFExtractor extracts free text and table rows from a PDF.
type PDFExtractor interface {
	ExtractPDF(ctx context.Context, req PDFRequest) (PDFResult, error)
}

// CleanRequest is the input to Cleaner.Clean. Instructions are optional.
type CleanRequest struct {
	RawData      string
	Instructions string
}

// CleanResult holds the CSV text returned by the cleaner.
type CleanResult struct {
	CSVData string `json:"csvData"`
}

// PDFRequest carries the document as a base64 data URI.
type PDFRequest struct {
	DataURI string
}

// PDFResult is the parsed extraction reply. TableRows hold *types.Record
// values in the order the model returned them.
type PDFResult struct {
	Text      string
	TableRows []any
}

// ParsePDFResponse decodes the JSON object {"text": ..., "tableRows": [...]}
// returned by the extraction prompt. Missing keys default to empty values.
// Code fences around the object are tolerated.
func ParsePDFResponse(s string) (PDFResult, error) {
	v, err := types.DecodeJSON([]byte(stripFences(s)))
	if err != nil {
		return PDFResult{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	obj, ok := v.(*types.Record)
	if !ok {
		return PDFResult{}, ErrInvalidResponse
	}

	var res PDFResult
	if text, ok := obj.Get("text"); ok {
		if s, isStr := text.(string); isStr {
			res.Text = s
		}
	}
	if rows, ok := obj.Get("tableRows"); ok {
		if list, isList := rows.([]any); isList {
			res.TableRows = list
		}
	}
	if res.TableRows == nil {
		res.TableRows = []any{}
	}
	return res, nil
}

// stripFences removes a surrounding ``` block, with or without a language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// EncodeDataURI returns data:<mime>;base64,<payload>.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a base64 data URI into its MIME type and bytes.
func DecodeDataURI(uri string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: scheme", ErrDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", ErrDataURI)
	}
	mime, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrDataURI)
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrDataURI, err)
	}
	return mime, data, nil
}
