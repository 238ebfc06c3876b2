package post

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// MergeIndex merges records into the JSON index at indexPath. Existing
// entries are preserved in their original order; a new record is appended
// only if no existing entry matches it. Matching uses the URL when both
// sides carry one, falling back to full-value equality for legacy entries
// without a URL. Records with no file links are skipped -- there is nothing
// to point a reader at.
//
// A corrupt existing index is logged and treated as empty rather than
// aborting the run.
func MergeIndex(records []Record, indexPath string, logger *slog.Logger) error {
	var existing []Record
	data, err := os.ReadFile(indexPath)
	switch {
	case os.IsNotExist(err):
		// First run for this author.
	case err != nil:
		return fmt.Errorf("failed to read index: %w", err)
	default:
		if err := json.Unmarshal(data, &existing); err != nil {
			logger.Warn("corrupt index file, starting fresh", "path", indexPath, "error", err)
			existing = nil
		}
	}

	merged := existing
	for _, rec := range records {
		if !rec.HasLinks() {
			continue
		}
		if !containsRecord(merged, rec) {
			merged = append(merged, rec)
		}
	}

	out, err := json.MarshalIndent(merged, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := writeFile(indexPath, out); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

func containsRecord(records []Record, rec Record) bool {
	for _, r := range records {
		if rec.URL != "" && r.URL == rec.URL {
			return true
		}
		if r == rec {
			return true
		}
	}
	return false
}

// LoadIndex reads a JSON index file into records.
func LoadIndex(indexPath string) ([]Record, error) {
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	return records, nil
}
