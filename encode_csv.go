package payments

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// CSVDecoder reads requests from `type,client,tx,amount` rows.
//
// Fields are trimmed, the amount column may be missing or empty, and rows
// that fail to decode are skipped.
type CSVDecoder struct {
	r       *csv.Reader
	log     *zap.Logger
	skipped int
	err     error
}

// NewCSVDecoder creates a decoder reading from r. A nil logger discards
// the diagnostics about skipped rows.
func NewCSVDecoder(r io.Reader, log *zap.Logger) *CSVDecoder {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	if log == nil {
		log = zap.NewNop()
	}
	return &CSVDecoder{r: cr, log: log}
}

// csvColumns locates the fields in a row, as named by the header.
type csvColumns struct {
	typ, client, tx, amount int
}

func parseCSVHeader(header []string) (csvColumns, error) {
	cols := csvColumns{typ: -1, client: -1, tx: -1, amount: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "type":
			cols.typ = i
		case "client":
			cols.client = i
		case "tx":
			cols.tx = i
		case "amount":
			cols.amount = i
		}
	}
	if cols.typ < 0 || cols.client < 0 || cols.tx < 0 {
		return cols, fmt.Errorf("invalid header %q: type, client and tx columns are required", strings.Join(header, ","))
	}
	return cols, nil
}

// Requests yields the decoded requests in input order.
func (d *CSVDecoder) Requests() iter.Seq[Request] {
	return func(yield func(Request) bool) {
		header, err := d.r.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			d.err = fmt.Errorf("error reading header: %w", err)
			return
		}
		cols, err := parseCSVHeader(header)
		if err != nil {
			d.err = err
			return
		}

		for {
			row, err := d.r.Read()
			if err == io.EOF {
				return
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				d.skip(err)
				continue
			}
			if err != nil {
				d.err = fmt.Errorf("error reading from input: %w", err)
				return
			}

			req, err := cols.decode(row)
			if err != nil {
				line, _ := d.r.FieldPos(0)
				d.skip(fmt.Errorf("line %d: %w", line, err))
				continue
			}
			if !yield(req) {
				return
			}
		}
	}
}

func (d *CSVDecoder) skip(err error) {
	d.skipped++
	d.log.Debug("failed to parse record", zap.Error(err))
}

// Skipped returns the number of rows that could not be decoded.
func (d *CSVDecoder) Skipped() int { return d.skipped }

// Err returns the error that stopped the decoding, if any.
func (d *CSVDecoder) Err() error { return d.err }

func (c csvColumns) decode(row []string) (Request, error) {
	field := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	if len(row) <= max(c.typ, c.client, c.tx) {
		return Request{}, fmt.Errorf("expected at least %d fields, got %d", max(c.typ, c.client, c.tx)+1, len(row))
	}

	var (
		req Request
		err error
	)
	if req.Type, err = ParseCommandType(field(c.typ)); err != nil {
		return Request{}, err
	}
	if req.Client, err = ParseClientID(field(c.client)); err != nil {
		return Request{}, err
	}
	if req.Tx, err = ParseTxID(field(c.tx)); err != nil {
		return Request{}, err
	}
	if s := field(c.amount); s != "" {
		amount, err := ParseAmount(s)
		if err != nil {
			return Request{}, err
		}
		req.Amount = &amount
	}
	return req, nil
}

// EncodeCSV writes the report as `client,available,held,total,locked` rows.
func EncodeCSV(w io.Writer, reports iter.Seq[ClientReport]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	count := 0
	for r := range reports {
		row := []string{
			strconv.FormatUint(uint64(r.Client), 10),
			r.Available.String(),
			r.Held.String(),
			r.Total.String(),
			strconv.FormatBool(r.Locked),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write client %d: %w", r.Client, err)
		}
		// flush every 1000 rows
		if count++; count%1000 == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return fmt.Errorf("failed to flush report: %w", err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}
