package checks

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"subpub/config"
	"subpub/domain"
)

type FollowFileOptions struct {
	Options  `yaml:",inline"`
	Location string `yaml:"location" validate:"required"`
	Kind     string `yaml:"kind"`
	Weight   int    `yaml:"weight"`
}

// FollowFile tails a file and turns every new line into a message.
// Lines already present when the check starts are skipped.
type FollowFile struct {
	*Base
	path   string
	file   *os.File
	reader *bufio.Reader
	offset int64
}

func NewFollowFile(log *slog.Logger, options map[string]any) (*FollowFile, error) {
	var opts FollowFileOptions
	if err := config.Decode(options, &opts); err != nil {
		return nil, err
	}
	path, err := config.ExpandHome(opts.Location)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("followfile: %w", err)
	}
	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("followfile: %w", err)
	}

	base, err := NewBase(log, "followfile", opts.Options)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	kind := opts.Kind
	if kind == "" {
		kind = "line"
	}
	base.SetDefault(domain.FieldType, kind)
	base.SetDefault(domain.FieldName, filepath.Base(path))
	base.SetDefault(domain.FieldLocation, path)
	base.SetDefault(domain.FieldWeight, opts.Weight)

	return &FollowFile{
		Base:   base,
		path:   path,
		file:   file,
		reader: bufio.NewReader(file),
		offset: offset,
	}, nil
}

// Run reads the complete lines appended since the previous run.
// A trailing partial line is left for the next run.
func (f *FollowFile) Run(_ context.Context) ([]domain.Fields, error) {
	var batch []domain.Fields
	for {
		line, err := f.reader.ReadString('\n')
		if err == io.EOF {
			truncated, err := f.rewind()
			if err != nil || !truncated {
				return batch, err
			}
			continue
		}
		if err != nil {
			return batch, err
		}
		f.offset += int64(len(line))
		batch = append(batch, domain.Fields{
			domain.FieldBody: strings.TrimRight(line, "\r\n"),
		})
	}
}

// rewind moves back to the end of the last complete line so a partial
// line is read again once complete. A file shrunk below that point was
// truncated and is followed again from its start.
func (f *FollowFile) rewind() (bool, error) {
	info, err := f.file.Stat()
	if err != nil {
		return false, err
	}
	truncated := info.Size() < f.offset
	if truncated {
		f.log.Info("File truncated, following from start", "path", f.path)
		f.offset = 0
	}
	if _, err := f.file.Seek(f.offset, io.SeekStart); err != nil {
		return false, err
	}
	f.reader.Reset(f.file)
	return truncated, nil
}

func (f *FollowFile) Close() error {
	return f.file.Close()
}
