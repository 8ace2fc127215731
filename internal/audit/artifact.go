package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adityawarmanfw/lokerhub/internal/model"
)

// Record is one processed posting as written to a run artifact: the raw
// fields plus the enrichment and run metadata. Artifacts are an audit
// trail independent of the durable store and double as replay input.
type Record struct {
	model.RawPosting
	model.Enrichment
	Source    string    `json:"source"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// Writer persists one JSON artifact file per ingestion run.
type Writer struct {
	dir string
}

// NewWriter returns a writer that stores artifacts under dir. The
// directory is created on first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write stores the run's processed postings as a JSON array named after
// the run start time. Returns the written file path.
func (w *Writer) Write(start time.Time, records []Record) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("creating artifact dir: %w", err)
	}

	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding run artifact: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("run-%s.json", start.Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing run artifact: %w", err)
	}

	return path, nil
}

// RunFile is one discovered artifact file.
type RunFile struct {
	Path string
	Name string
}

// ListRuns returns the artifact files under dir, newest first. A missing
// directory yields an empty list, not an error.
func ListRuns(dir string) ([]RunFile, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing artifact dir: %w", err)
	}

	var runs []RunFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "run-") || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		runs = append(runs, RunFile{
			Path: filepath.Join(dir, e.Name()),
			Name: e.Name(),
		})
	}

	// Names embed the run timestamp, so lexical order is time order.
	sort.Slice(runs, func(i, j int) bool { return runs[i].Name > runs[j].Name })
	return runs, nil
}

// LoadRecords reads a run artifact back into memory.
func LoadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run artifact: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding run artifact %s: %w", filepath.Base(path), err)
	}
	return records, nil
}
