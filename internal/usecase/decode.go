package usecase

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"adsync/internal/domain"
)

// decodeRows turns a downloaded payload into report rows. Gzip is unwrapped
// when the response or URL says so; the text is then parsed as one JSON
// array, falling back to newline-delimited JSON where unparsable lines are
// dropped. A payload that parses to something other than an array is an
// error the caller downgrades to a warning (zero rows).
func decodeRows(p *domain.Payload) ([]domain.Row, error) {
	body := p.Body
	if isGzipped(p) {
		var err error
		body, err = gunzip(body)
		if err != nil {
			return nil, fmt.Errorf("failed to gunzip report payload: %w", err)
		}
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return decodeLines(body), nil
	}

	items, ok := parsed.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected payload shape: expected JSON array, got %T", parsed)
	}

	rows := make([]domain.Row, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			rows = append(rows, domain.Row(obj))
		}
	}
	return rows, nil
}

// decodeLines parses newline-delimited JSON, silently dropping blank and
// malformed lines.
func decodeLines(body []byte) []domain.Row {
	var rows []domain.Row
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var row domain.Row
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func isGzipped(p *domain.Payload) bool {
	return strings.Contains(p.ContentEncoding, "gzip") ||
		strings.Contains(p.ContentType, "gzip") ||
		strings.Contains(p.URL, ".gz")
}

func gunzip(body []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
