package renderer

import (
	"fmt"
	"math"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/etnz/payments"
	"github.com/shopspring/decimal"
)

// Report is the markdown view of an engine report.
// Amounts are already formatted in the display currency.
type Report struct {
	Rows  []Row
	Stats *Stats // nil to omit the summary section
}

// Row is one client balance.
type Row struct {
	Client    string
	Available string
	Held      string
	Total     string
	Locked    bool
}

// Stats summarizes what happened to the input records.
type Stats struct {
	Accepted int
	Skipped  int
	Rejected []Rejection
}

// Rejection counts the requests rejected for one reason.
type Rejection struct {
	Reason string
	Count  int
}

// NewReport formats reports in currency. An empty currency prints plain
// decimals.
func NewReport(reports []payments.ClientReport, currency string) *Report {
	r := &Report{Rows: make([]Row, 0, len(reports))}
	for _, c := range reports {
		r.Rows = append(r.Rows, Row{
			Client:    strconv.FormatUint(uint64(c.Client), 10),
			Available: FormatAmount(c.Available, currency),
			Held:      FormatAmount(c.Held, currency),
			Total:     FormatAmount(c.Total, currency),
			Locked:    c.Locked,
		})
	}
	return r
}

// WithStats adds the summary section. Reasons with no rejection are omitted.
func (r *Report) WithStats(s payments.Stats, skipped int) *Report {
	st := &Stats{Accepted: s.Accepted, Skipped: skipped}
	for _, reason := range payments.Reasons() {
		if n := s.Rejected[reason]; n > 0 {
			st.Rejected = append(st.Rejected, Rejection{Reason: reason, Count: n})
		}
	}
	r.Stats = st
	return r
}

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// FormatAmount formats a with the currency grapheme and separators, keeping
// all the stored fractional digits.
func FormatAmount(a payments.Amount, currency string) string {
	if currency == "" {
		return a.StringFixed(payments.Precision)
	}
	// to get a never nil currency I need to call the Money constructor
	cur := *money.New(0, currency).Currency()
	if cur.Template == "" {
		// unknown to go-money
		return fmt.Sprintf("%s %s", a.StringFixed(payments.Precision), currency)
	}
	minor := a.Round().Decimal().Shift(payments.Precision)
	if minor.Abs().GreaterThan(maxMinorUnits) {
		return fmt.Sprintf("%s %s", a.StringFixed(payments.Precision), cur.Code)
	}
	f := money.NewFormatter(payments.Precision, cur.Decimal, cur.Thousand, cur.Grapheme, cur.Template)
	return f.Format(minor.IntPart())
}
