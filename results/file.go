package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// File is a Store writing one JSON object per line, appending to the file.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a File store at 'path'. The file is created on the first Add.
func NewFile(path string) *File {
	return &File{path: path}
}

// Add appends 'rec' to the file, creating it and its directory if needed.
func (f *File) Add(_ context.Context, rec Record) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error in creating results folder [%v]: %w", dir, err)
		}
	}

	// open in append mode; create it if it does not exist
	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("error in opening results file [%v]: %w", f.path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error in closing results file [%v]: %w", f.path, cerr)
		}
	}()

	if err := json.NewEncoder(file).Encode(rec); err != nil {
		return fmt.Errorf("error in writing results file [%v]: %w", f.path, err)
	}
	return nil
}

// All parses every record in the file. A missing file holds no records.
func (f *File) All(_ context.Context) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error in opening results file [%v]: %w", f.path, err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	var recs []Record
	for {
		var rec Record
		if err := decoder.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return recs, nil
			}
			return nil, fmt.Errorf("error in parsing results file [%v]: %w", f.path, err)
		}
		recs = append(recs, rec)
	}
}

// Close is a no-op: the file is only open during Add and All.
func (f *File) Close() error { return nil }
