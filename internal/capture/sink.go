package capture

import (
	"bufio"
	"errors"
	"os"
)

// Sink is the append-only byte stream captured frames are written to.
type Sink interface {
	Write(p []byte) (int, error)
	Flush() error
	Close() error
}

// SinkOpenFunc creates the sink for path.
type SinkOpenFunc func(path string) (Sink, error)

// FileSink is a buffered file, created or truncated on open.
type FileSink struct {
	f *os.File
	w *bufio.Writer
}

// OpenFileSink creates or truncates path.
func OpenFileSink(path string) (Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileSink{f: f, w: bufio.NewWriterSize(f, 64*1024)}, nil
}

func (s *FileSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// Flush pushes buffered bytes to the file.
func (s *FileSink) Flush() error {
	return s.w.Flush()
}

// Close flushes and closes the file.
func (s *FileSink) Close() error {
	return errors.Join(s.w.Flush(), s.f.Close())
}
