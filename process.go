package payments

import (
	"fmt"
	"io"
)

// Replay submits every request decoded by dec to e, in input order.
// It only fails if the input itself cannot be read.
func Replay(e *Engine, dec Decoder) error {
	for r := range dec.Requests() {
		e.Submit(r)
	}
	if err := dec.Err(); err != nil {
		return fmt.Errorf("could not replay transactions: %w", err)
	}
	return nil
}

// ProcessCSV is the whole batch job: it replays the CSV transactions read from
// r in a new engine, and writes the final balances to w as CSV.
func ProcessCSV(r io.Reader, w io.Writer, opts ...Option) error {
	e := NewEngine(opts...)
	if err := Replay(e, NewCSVDecoder(r, e.log)); err != nil {
		return err
	}
	return EncodeCSV(w, e.Report())
}
