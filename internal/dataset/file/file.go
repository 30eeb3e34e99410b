// Package file loads the division tree from a JSON document on disk.
package file

import (
	"context"
	"fmt"
	"os"

	"canestats/internal/core"
	"canestats/internal/dataset"
)

type Loader struct {
	path string
}

var _ dataset.Loader = (*Loader)(nil)

func New(path string) *Loader {
	return &Loader{path: path}
}

func (l *Loader) Source() string { return "file" }

func (l *Loader) Load(ctx context.Context) ([]core.Division, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", l.path, err)
	}
	defer f.Close()

	divisions, err := core.DecodeDivisions(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", l.path, err)
	}
	return divisions, nil
}
