package payments

import (
	"cmp"
	"iter"
	"slices"
)

// ClientReport is a read-only snapshot of an account, ready to be emitted.
type ClientReport struct {
	Client    ClientID
	Available Amount
	Held      Amount
	Total     Amount
	Locked    bool
}

// NewClientReport snapshots a.
func NewClientReport(a *Account) ClientReport {
	return ClientReport{
		Client:    a.ID(),
		Available: a.Available(),
		Held:      a.Held(),
		Total:     a.Total(),
		Locked:    a.Locked(),
	}
}

// MarshalJSON writes the report with a fixed key order.
func (r ClientReport) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("client", r.Client)
	w.Append("available", r.Available)
	w.Append("held", r.Held)
	w.Append("total", r.Total)
	w.Append("locked", r.Locked)
	return w.MarshalJSON()
}

// SortedByClient collects reports ordered by client id.
func SortedByClient(reports iter.Seq[ClientReport]) []ClientReport {
	return slices.SortedFunc(reports, func(a, b ClientReport) int {
		return cmp.Compare(a.Client, b.Client)
	})
}
