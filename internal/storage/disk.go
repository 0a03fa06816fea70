package storage

import (
	"errors"
	"io/fs"
	"os"
)

// ArtifactSizes maps each artifact path to its size in bytes. Missing paths
// are reported with size 0.
type ArtifactSizes map[string]int64

// Total returns the combined size of every artifact.
func (a ArtifactSizes) Total() int64 {
	var total int64
	for _, n := range a {
		total += n
	}
	return total
}

// MeasureArtifacts stats each non-empty path. A path that does not exist
// measures 0; a directory is an error since every artifact is a single file.
func MeasureArtifacts(paths ...string) (ArtifactSizes, error) {
	sizes := make(ArtifactSizes, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			sizes[p] = 0
		case err != nil:
			return nil, err
		case info.IsDir():
			return nil, &fs.PathError{Op: "measure", Path: p, Err: errors.New("is a directory")}
		default:
			sizes[p] = info.Size()
		}
	}
	return sizes, nil
}
