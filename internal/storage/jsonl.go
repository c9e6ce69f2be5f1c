package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/matsen/talkportal/internal/talk"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// jsonlDocument is one line of the JSONL file.
// ID is store-assigned and not part of the domain model.
type jsonlDocument struct {
	ID string `json:"_id"`
	talk.Talk
}

// JSONLStore keeps one talk document per line in a plain text file.
// Inserts append; updates and deletes rewrite the file atomically.
type JSONLStore struct {
	path string
}

// OpenJSONL opens the JSONL store at path, creating the file and its
// directory if needed.
func OpenJSONL(path string) (*JSONLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening talks file: %w", err)
	}
	f.Close()

	return &JSONLStore{path: path}, nil
}

// FindAll reads every talk in file order.
func (s *JSONLStore) FindAll(ctx context.Context) ([]talk.Talk, error) {
	docs, err := readDocuments(s.path)
	if err != nil {
		return nil, err
	}

	talks := make([]talk.Talk, 0, len(docs))
	for _, doc := range docs {
		talks = append(talks, doc.Talk.Normalize())
	}
	return talks, nil
}

// FindByTitle returns the first talk with exactly this title.
func (s *JSONLStore) FindByTitle(ctx context.Context, title string) (*talk.Talk, error) {
	docs, err := readDocuments(s.path)
	if err != nil {
		return nil, err
	}

	if i := findDocument(docs, title); i >= 0 {
		t := docs[i].Talk.Normalize()
		return &t, nil
	}
	return nil, nil
}

// TitleExists reports whether a talk with this title exists, ignoring case.
func (s *JSONLStore) TitleExists(ctx context.Context, title string) (bool, error) {
	docs, err := readDocuments(s.path)
	if err != nil {
		return false, err
	}

	for _, doc := range docs {
		if strings.EqualFold(doc.Title, title) {
			return true, nil
		}
	}
	return false, nil
}

// Insert appends a talk to the end of the file.
func (s *JSONLStore) Insert(ctx context.Context, t talk.Talk) error {
	doc := jsonlDocument{ID: uuid.NewString(), Talk: t.Normalize()}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening talks file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding talk: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing talk: %w", err)
	}

	return nil
}

// UpdateFields patches the first talk with exactly this title.
func (s *JSONLStore) UpdateFields(ctx context.Context, title string, p talk.Patch) error {
	docs, err := readDocuments(s.path)
	if err != nil {
		return err
	}

	i := findDocument(docs, title)
	if i < 0 {
		return nil
	}
	applyPatch(&docs[i].Talk, p)

	return writeDocuments(s.path, docs)
}

// DeleteByTitle removes the first talk with exactly this title.
func (s *JSONLStore) DeleteByTitle(ctx context.Context, title string) (bool, error) {
	docs, err := readDocuments(s.path)
	if err != nil {
		return false, err
	}

	i := findDocument(docs, title)
	if i < 0 {
		return false, nil
	}
	docs = append(docs[:i], docs[i+1:]...)

	if err := writeDocuments(s.path, docs); err != nil {
		return false, err
	}
	return true, nil
}

// Close is a no-op; the file is opened per operation.
func (s *JSONLStore) Close() error {
	return nil
}

// findDocument returns the index of the first document with exactly this
// title, or -1.
func findDocument(docs []jsonlDocument, title string) int {
	for i, doc := range docs {
		if doc.Title == title {
			return i
		}
	}
	return -1
}

// readDocuments reads all documents from a JSONL file.
func readDocuments(path string) ([]jsonlDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing file reads as empty
		}
		return nil, fmt.Errorf("opening talks file: %w", err)
	}
	defer f.Close()

	var docs []jsonlDocument
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var doc jsonlDocument
		if err := json.Unmarshal(line, &doc); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		docs = append(docs, doc)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading talks file: %w", err)
	}

	return docs, nil
}

// writeDocuments replaces the file contents using temp file + rename.
func writeDocuments(path string, docs []jsonlDocument) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(tmpFile)
	for i, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			tmpFile.Close()
			return fmt.Errorf("encoding talk %d: %w", i, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			tmpFile.Close()
			return fmt.Errorf("writing talk %d: %w", i, err)
		}
	}

	if err := w.Flush(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("flushing temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// WriteJSONL writes talks to path as JSONL without store identifiers.
// Used by export.
func WriteJSONL(path string, talks []talk.Talk) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	return EncodeJSONL(f, talks)
}

// ReadJSONL reads talks from a JSONL file, ignoring any store identifiers.
// Used by import.
func ReadJSONL(path string) ([]talk.Talk, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening import file: %w", err)
	}

	docs, err := readDocuments(path)
	if err != nil {
		return nil, err
	}

	talks := make([]talk.Talk, 0, len(docs))
	for _, doc := range docs {
		talks = append(talks, doc.Talk.Normalize())
	}
	return talks, nil
}

// EncodeJSONL writes one talk per line to w.
func EncodeJSONL(w io.Writer, talks []talk.Talk) error {
	enc := json.NewEncoder(w)
	for i, t := range talks {
		if err := enc.Encode(t.Normalize()); err != nil {
			return fmt.Errorf("encoding talk %d: %w", i, err)
		}
	}
	return nil
}
