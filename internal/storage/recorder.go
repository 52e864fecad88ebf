package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/mnasim/internal/linalg"
	"github.com/san-kum/mnasim/internal/sim"
)

const (
	DefaultRecordPath   = "outfile.csv"
	DefaultRecordHeader = "torque, Wr"
)

var _ sim.Observer = (*Recorder)(nil)

// Recorder writes the persisted record: a header line, then one
// "<time>,<value>" line per sample. Values use six significant digits.
type Recorder struct {
	w      *bufio.Writer
	closer io.Closer
	header string
}

// NewRecorder writes to w. The caller owns w.
func NewRecorder(w io.Writer, header string) *Recorder {
	return &Recorder{w: bufio.NewWriter(w), header: header}
}

// CreateRecorder truncates path and writes to it. The file is closed by
// OnFinish.
func CreateRecorder(path, header string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", path, err)
	}
	r := NewRecorder(f, header)
	r.closer = f
	return r, nil
}

func (r *Recorder) OnSetup(*linalg.Matrix[float64]) error {
	_, err := fmt.Fprintln(r.w, r.header)
	return err
}

func (r *Recorder) OnSample(s sim.Sample) error {
	_, err := fmt.Fprintf(r.w, "%s,%s\n", linalg.FormatScalar(s.Time), linalg.FormatScalar(s.Record))
	return err
}

func (r *Recorder) OnFinish() error { return r.Close() }

// Close flushes the record and closes the file it owns. It is safe to call
// more than once.
func (r *Recorder) Close() error {
	if err := r.w.Flush(); err != nil {
		return err
	}
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}
