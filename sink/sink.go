// Package sink persists proof artifacts: to a directory, to the console, or to
// an S3 bucket.
package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Sink stores a named artifact.
type Sink interface {
	Store(ctx context.Context, name string, data []byte) error
}

// FileSink writes artifacts as files in Dir, creating it when needed.
type FileSink struct {
	Dir string
}

// NewFileSink returns a FileSink writing to dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

func (s *FileSink) Store(ctx context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// ConsoleSink prints artifacts to a writer, one per line, as "name: data".
type ConsoleSink struct {
	out    io.Writer
	logger zerolog.Logger
}

// NewConsoleSink returns a ConsoleSink printing to out. A nil out means
// os.Stdout.
func NewConsoleSink(out io.Writer, logger zerolog.Logger) *ConsoleSink {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleSink{out: out, logger: logger}
}

func (s *ConsoleSink) Store(ctx context.Context, name string, data []byte) error {
	if _, err := fmt.Fprintf(s.out, "%s: %s\n", name, data); err != nil {
		return errors.Wrapf(err, "printing %s", name)
	}
	s.logger.Debug().Str("artifact", name).Int("bytes", len(data)).Msg("artifact printed")
	return nil
}

type multiSink []Sink

// Multi stores every artifact in all sinks, in order, stopping at the first
// error.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) Store(ctx context.Context, name string, data []byte) error {
	for _, s := range m {
		if err := s.Store(ctx, name, data); err != nil {
			return err
		}
	}
	return nil
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return errors.Errorf("invalid artifact name %q", name)
	}
	return nil
}
