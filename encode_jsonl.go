package payments

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/PaesslerAG/jsonpath"
	"go.uber.org/zap"
)

// Paths locates the request fields in a JSON object, as JSONPath expressions.
type Paths struct {
	Type   string
	Client string
	Tx     string
	Amount string
}

// DefaultPaths reads flat objects such as
//
//	{"type":"deposit","client":1,"tx":1,"amount":1.5}
var DefaultPaths = Paths{
	Type:   "$.type",
	Client: "$.client",
	Tx:     "$.tx",
	Amount: "$.amount",
}

// JSONLDecoder reads requests from a stream of JSON objects, one per line.
type JSONLDecoder struct {
	scanner *bufio.Scanner
	paths   Paths
	log     *zap.Logger
	skipped int
	line    int
	err     error
}

// NewJSONLDecoder creates a decoder reading from r. Empty paths fall back
// to DefaultPaths.
func NewJSONLDecoder(r io.Reader, paths Paths, log *zap.Logger) *JSONLDecoder {
	if paths.Type == "" {
		paths.Type = DefaultPaths.Type
	}
	if paths.Client == "" {
		paths.Client = DefaultPaths.Client
	}
	if paths.Tx == "" {
		paths.Tx = DefaultPaths.Tx
	}
	if paths.Amount == "" {
		paths.Amount = DefaultPaths.Amount
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &JSONLDecoder{scanner: bufio.NewScanner(r), paths: paths, log: log}
}

// Requests yields the decoded requests in input order.
func (d *JSONLDecoder) Requests() iter.Seq[Request] {
	return func(yield func(Request) bool) {
		for d.scanner.Scan() {
			d.line++
			lineBytes := bytes.TrimSpace(d.scanner.Bytes())
			if len(lineBytes) == 0 {
				continue // Skip empty lines
			}
			req, err := d.decode(lineBytes)
			if err != nil {
				d.skipped++
				d.log.Debug("failed to parse record", zap.Int("line", d.line), zap.Error(err))
				continue
			}
			if !yield(req) {
				return
			}
		}
		if err := d.scanner.Err(); err != nil {
			d.err = fmt.Errorf("error reading from input: %w", err)
		}
	}
}

// Skipped returns the number of lines that could not be decoded.
func (d *JSONLDecoder) Skipped() int { return d.skipped }

// Err returns the error that stopped the decoding, if any.
func (d *JSONLDecoder) Err() error { return d.err }

func (d *JSONLDecoder) decode(line []byte) (Request, error) {
	// numbers are kept as text so that amounts stay exact.
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return Request{}, fmt.Errorf("invalid json: %w", err)
	}

	var (
		req Request
		err error
	)
	typ, err := lookup(d.paths.Type, jobj)
	if err != nil {
		return Request{}, err
	}
	if req.Type, err = ParseCommandType(typ); err != nil {
		return Request{}, err
	}

	client, err := lookup(d.paths.Client, jobj)
	if err != nil {
		return Request{}, err
	}
	if req.Client, err = ParseClientID(client); err != nil {
		return Request{}, err
	}

	tx, err := lookup(d.paths.Tx, jobj)
	if err != nil {
		return Request{}, err
	}
	if req.Tx, err = ParseTxID(tx); err != nil {
		return Request{}, err
	}

	// a missing or null amount is not a decoding error, the engine decides.
	amount, err := lookup(d.paths.Amount, jobj)
	switch {
	case errors.Is(err, errNoValue):
	case err != nil:
		return Request{}, err
	case amount != "":
		a, err := ParseAmount(amount)
		if err != nil {
			return Request{}, err
		}
		req.Amount = &a
	}
	return req, nil
}

// errNoValue reports a path that designates nothing in the object.
var errNoValue = errors.New("no value")

// lookup evaluates path against jobj and returns the scalar it designates
// as text. null yields "".
func lookup(path string, jobj any) (string, error) {
	eval, err := jsonpath.New(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	jval, err := eval(context.Background(), jobj)
	if err != nil {
		return "", fmt.Errorf("%w at %q: %v", errNoValue, path, err)
	}
	// because jsonpath is never clear about wheter it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return "", fmt.Errorf("%w at %q", errNoValue, path)
		}
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("value at %q is not a scalar: %v", path, jval)
	}
}

// EncodeJSONL writes the report as one JSON object per client.
func EncodeJSONL(w io.Writer, reports iter.Seq[ClientReport]) error {
	for r := range reports {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal client %d: %w", r.Client, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write client %d: %w", r.Client, err)
		}
	}
	return nil
}
