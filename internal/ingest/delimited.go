package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
)

type delimitedSource struct {
	f *os.File
	r *csv.Reader
}

func openDelimited(path string, comma rune) (*delimitedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	return &delimitedSource{f: f, r: r}, nil
}

func (s *delimitedSource) next() ([]string, error) {
	return s.r.Read()
}

func (s *delimitedSource) close() error {
	return s.f.Close()
}
