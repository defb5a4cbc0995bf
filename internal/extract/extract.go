// Package extract turns raw document bytes into structured RCA records.
//
// Decoding is selected by file extension: plain text and markdown decode
// directly, PDF pages are concatenated, and .docx paragraphs are pulled out
// of the WordprocessingML body. The decoded text is then passed to the model
// with a fixed-schema prompt that must return a JSON object; the response is
// parsed from a fenced JSON block or, failing that, as raw JSON.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/koopa0/rca-agent/internal/llm"
)

// ErrUnsupportedFormat indicates a file extension this extractor will never
// handle. Distinct from transient decode failures so callers can report the
// two differently.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// promptContentLimit caps how much decoded text is forwarded to the model,
// to respect model input limits. The full decoded text is still stored.
const promptContentLimit = 8000

// Extracted is the structured record the model must return.
type Extracted struct {
	ProjectName    string   `json:"project_name"`
	Problems       []string `json:"problems"`
	Solutions      []string `json:"solutions"`
	RootCauses     []string `json:"root_causes"`
	LessonsLearned []string `json:"lessons_learned"`
}

// Document is a successfully extracted RCA document.
type Document struct {
	Filename    string
	FullContent string
	Extracted   Extracted
}

// Extractor decodes document bytes and extracts structured RCA data via the
// model.
type Extractor struct {
	llm    llm.Client
	logger *slog.Logger
}

// New creates an Extractor. A nil logger falls back to slog.Default().
func New(client llm.Client, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{llm: client, logger: logger}
}

const extractionPromptFormat = `Analyze the following RCA document content and extract structured information.
Return ONLY a valid JSON object with the specified keys.

Document Content:
%s

JSON format to extract:
{
    "project_name": "string",
    "problems": ["list of identified problems"],
    "solutions": ["list of applied solutions"],
    "root_causes": ["list of root causes"],
    "lessons_learned": ["list of key lessons learned"]
}`

// Extract decodes content by filename extension and asks the model for the
// structured record. It returns ErrUnsupportedFormat for extensions that are
// never handled; any decode or parse failure yields an error with no partial
// result.
func (e *Extractor) Extract(ctx context.Context, content []byte, filename string) (*Document, error) {
	text, err := decode(content, filename)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			e.logger.Debug("skipping unsupported file", "filename", filename)
		} else {
			e.logger.Warn("failed to decode file", "filename", filename, "error", err)
		}
		return nil, err
	}

	promptText := text
	if len(promptText) > promptContentLimit {
		promptText = promptText[:promptContentLimit]
	}

	response, err := e.llm.Generate(ctx, fmt.Sprintf(extractionPromptFormat, promptText))
	if err != nil {
		e.logger.Warn("extraction generation failed", "filename", filename, "error", err)
		return nil, fmt.Errorf("extraction generation for %q: %w", filename, err)
	}

	extracted, err := parseExtraction(response)
	if err != nil {
		e.logger.Warn("extraction response is not valid JSON", "filename", filename, "error", err)
		return nil, fmt.Errorf("parsing extraction for %q: %w", filename, err)
	}

	return &Document{
		Filename:    filename,
		FullContent: text,
		Extracted:   *extracted,
	}, nil
}

// decode converts raw file bytes into plain text based on the extension.
func decode(content []byte, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		return strings.ToValidUTF8(string(content), ""), nil
	case ".pdf":
		return decodePDF(content)
	case ".docx":
		return decodeDocx(content)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// fencedJSON matches a ```json ... ``` block in model output.
var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// parseExtraction parses the model response into an Extracted record.
// A fenced JSON block takes precedence; otherwise the raw response must be
// valid JSON.
func parseExtraction(response string) (*Extracted, error) {
	payload := strings.TrimSpace(response)
	if m := fencedJSON.FindStringSubmatch(response); m != nil {
		payload = m[1]
	}

	var extracted Extracted
	if err := json.Unmarshal([]byte(payload), &extracted); err != nil {
		return nil, fmt.Errorf("unmarshaling extraction JSON: %w", err)
	}
	return &extracted, nil
}
