package payments

import (
	"fmt"
	"io"
	"iter"
)

// Decoder reads requests from an input stream.
//
// Records that cannot be decoded are skipped and counted: they never reach
// the engine. Err reports the I/O failure that stopped the iteration, if any.
type Decoder interface {
	Requests() iter.Seq[Request]
	Skipped() int
	Err() error
}

// Encoder writes a report to an output stream.
type Encoder func(w io.Writer, reports iter.Seq[ClientReport]) error

// Format names an input or output encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSONL    Format = "jsonl"
	FormatMarkdown Format = "markdown"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSONL, FormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format: %q", s)
	}
}
