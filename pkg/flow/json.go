package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/flowkit/pkg/errors"
)

// =============================================================================
// Flow Serialization API
// =============================================================================

// Marshal converts a Flow to JSON bytes.
// Nodes are sorted by ID for deterministic output; edges keep insertion
// order. The input flow is not modified.
func Marshal(f Flow) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeFlowTo(f, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes JSON bytes to a Flow.
func Unmarshal(data []byte) (Flow, error) {
	var f Flow
	if err := json.Unmarshal(data, &f); err != nil {
		return Flow{}, err
	}
	return f, nil
}

// WriteFile writes a Flow to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(f Flow, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	return writeFlowTo(f, file)
}

// Write writes a Flow as JSON to an io.Writer.
// Use Marshal for in-memory serialization or WriteFile for files.
func Write(f Flow, w io.Writer) error {
	return writeFlowTo(f, w)
}

// ReadFile reads a JSON file and returns the decoded Flow.
// A nonexistent path reports FILE_NOT_FOUND.
func ReadFile(path string) (Flow, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return Flow{}, errors.New(errors.ErrCodeFileNotFound, "flow file not found: %s", path)
	}
	if err != nil {
		return Flow{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return readFlowFrom(file)
}

// Read decodes a JSON flow from an io.Reader.
// Use ReadFile for files or pass bytes.NewReader for in-memory data.
func Read(r io.Reader) (Flow, error) {
	return readFlowFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeFlowTo(f Flow, w io.Writer) error {
	out := f.Clone()
	slices.SortFunc(out.Nodes, func(a, b Node) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFlowFrom(r io.Reader) (Flow, error) {
	var f Flow
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return Flow{}, fmt.Errorf("decode: %w", err)
	}
	return f, nil
}
