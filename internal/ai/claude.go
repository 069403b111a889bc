// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/pdiddy/geo-converter/internal/httputil"
	"github.com/pdiddy/geo-converter/pkg/types"
)

// cleanPromptTmpl instructs the model to turn raw text into CSV. KML input
// gets placemark-specific guidance.
var cleanPromptTmpl = template.Must(template.New("clean").Parse(`You are an expert data cleaning and extraction agent. Your task is to take raw, messy data and transform it into a structured CSV format.

If the data appears to be KML:
- Parse Placemark elements. Each Placemark becomes one row in the CSV.
- Take longitude and latitude from the <coordinates> tag. Longitude is the first value, latitude the second. Name these columns 'lon' and 'lat'.
- The <description> tag usually holds an HTML table inside a CDATA block. Each <tr> has a key and a value in separate <td> cells.
- Use each key as a column header after removing any prefix up to the last ':' (so 'public_universities_1:university_name' becomes 'university_name').
- Include the content of the <name> tag as a 'name' column.

If the data is NOT KML (CSV or unstructured text):
- Parse the data into a clear tabular structure.
- Common columns are 'type', 'id', 'lat', 'lon', 'khmer_name' and 'english_name'; adapt to the data provided.
- The 'type' is often the first word on a line (e.g. 'node') and the 'id' is the long number after it.
- 'khmer_name' and 'english_name' may appear in a JSON-like structure at the end of the line with keys like 'name:km' or 'name:en'. When they are missing but coordinates are present, use 'lat' and 'lon' to find the place name in both Khmer and English.
{{if .Instructions}}
The user has provided the following specific instructions. Follow them carefully:
"{{.Instructions}}"
{{end}}
Respond with a JSON object of the form {"csvData": "<csv text with a header row>"}. Do not include any text outside the JSON object.

Raw Data:
` + "```" + `
{{.RawData}}
` + "```" + `
`))

// pdfPrompt accompanies the document block in extraction requests.
const pdfPrompt = `You are an expert at extracting structured information from documents.
Analyze the provided PDF document, which may contain Khmer text.
Extract all text and tables from the document.

Return a single JSON object with two keys: "text" and "tableRows".
- "text": a string containing all text from the document that is not part of a table.
- "tableRows": an array of all rows from all tables found in the document. Each item is a JSON object representing one row, keyed by the table's column headers.

Do not include any text outside the JSON object.`

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const (
	anthropicVersion = "2023-06-01"
	maxTokens        = 8192
)

// ClaudeBackend calls the Claude Messages API for cleanup and PDF
// extraction.
type ClaudeBackend struct {
	APIKey string
	Model  string
	Client *http.Client
	// MaxRetries bounds retries on HTTP 429; zero sends each request once.
	MaxRetries int
}

// NewClaudeBackend builds a backend from configuration. The timeout bounds
// each HTTP call.
func NewClaudeBackend(cfg types.AIConfig) *ClaudeBackend {
	return &ClaudeBackend{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		Client:     &http.Client{Timeout: cfg.Timeout},
		MaxRetries: cfg.MaxRetries,
	}
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string        `json:"role"`
	Content []claudeBlock `json:"content"`
}

// claudeBlock is a text or document content block.
type claudeBlock struct {
	Type   string        `json:"type"`
	Text   string        `json:"text,omitempty"`
	Source *claudeSource `json:"source,omitempty"`
}

type claudeSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type claudeResponse struct {
	Content []claudeBlock `json:"content"`
}

// Clean renders the cleanup prompt and reads csvData from the reply.
func (c *ClaudeBackend) Clean(ctx context.Context, req CleanRequest) (CleanResult, error) {
	prompt, err := renderCleanPrompt(req)
	if err != nil {
		return CleanResult{}, fmt.Errorf("rendering prompt: %w", err)
	}

	text, err := c.send(ctx, []claudeBlock{{Type: "text", Text: prompt}})
	if err != nil {
		return CleanResult{}, err
	}

	var out CleanResult
	if err := json.Unmarshal([]byte(stripFences(text)), &out); err != nil {
		// A bare CSV reply is accepted as is.
		out.CSVData = stripFences(text)
	}
	if strings.TrimSpace(out.CSVData) == "" {
		return CleanResult{}, ErrNoOutput
	}
	return out, nil
}

// ExtractPDF sends the document as a base64 block and parses the JSON reply.
func (c *ClaudeBackend) ExtractPDF(ctx context.Context, req PDFRequest) (PDFResult, error) {
	mime, data, err := DecodeDataURI(req.DataURI)
	if err != nil {
		return PDFResult{}, err
	}

	text, err := c.send(ctx, []claudeBlock{
		{Type: "document", Source: &claudeSource{
			Type:      "base64",
			MediaType: mime,
			Data:      base64.StdEncoding.EncodeToString(data),
		}},
		{Type: "text", Text: pdfPrompt},
	})
	if err != nil {
		return PDFResult{}, err
	}
	return ParsePDFResponse(text)
}

// send posts one user message and returns the first text block of the reply.
func (c *ClaudeBackend) send(ctx context.Context, content []claudeBlock) (string, error) {
	body, err := json.Marshal(claudeRequest{
		Model:     c.Model,
		MaxTokens: maxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: content}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(msg))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}
	for _, block := range cResp.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", ErrNoOutput
}

func renderCleanPrompt(req CleanRequest) (string, error) {
	var buf bytes.Buffer
	if err := cleanPromptTmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
