package payments

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLDecoder(t *testing.T) {
	input := `{"type":"deposit","client":1,"tx":1,"amount":1.12345678}
{"type":"deposit","client":1,"tx":2,"amount":"2.5"}

{"type":"dispute","client":1,"tx":1}
{"type":"resolve","client":1,"tx":1,"amount":null}
{"type":"deposit","client":1,"tx":3,"amount":"x"}
not json
{"type":"refund","client":1,"tx":4}
`
	dec := NewJSONLDecoder(strings.NewReader(input), Paths{}, nil)
	got := slices.Collect(dec.Requests())
	require.NoError(t, dec.Err())

	var lines []string
	for _, r := range got {
		lines = append(lines, r.String())
	}
	assert.Equal(t, []string{
		"deposit client=1 tx=1 amount=1.12345678",
		"deposit client=1 tx=2 amount=2.5",
		"dispute client=1 tx=1",
		"resolve client=1 tx=1",
	}, lines)
	assert.Equal(t, 3, dec.Skipped())
}

func TestJSONLDecoderPaths(t *testing.T) {
	input := `{"event":{"kind":"deposit","account":{"id":"12"}},"id":99,"money":{"value":"3.25","currency":"EUR"}}
{"event":{"kind":"dispute","account":{"id":"12"}},"id":99}
`
	paths := Paths{
		Type:   "$.event.kind",
		Client: "$.event.account.id",
		Tx:     "$.id",
		Amount: "$.money.value",
	}
	dec := NewJSONLDecoder(strings.NewReader(input), paths, nil)
	got := slices.Collect(dec.Requests())
	require.NoError(t, dec.Err())
	require.Len(t, got, 2)
	assert.Equal(t, "deposit client=12 tx=99 amount=3.25", got[0].String())
	assert.Equal(t, "dispute client=12 tx=99", got[1].String())
	assert.Zero(t, dec.Skipped())
}

func TestJSONLDecoderNonScalarAmount(t *testing.T) {
	input := `{"type":"deposit","client":7,"tx":1,"amount":{"v":1}}
{"type":"deposit","client":7,"tx":2,"amount":true}
{"type":"deposit","client":8,"tx":3,"amount":"abc"}
`
	dec := NewJSONLDecoder(strings.NewReader(input), Paths{}, nil)
	e := NewEngine()
	for r := range dec.Requests() {
		e.Submit(r)
	}
	require.NoError(t, dec.Err())
	assert.Equal(t, 3, dec.Skipped())
	assert.Nil(t, e.Account(7), "no account from a rejected line")
	assert.Nil(t, e.Account(8), "no account from a rejected line")
}

func TestEncodeJSONL(t *testing.T) {
	reports := slices.Values([]ClientReport{
		{Client: 1, Available: MustParseAmount("1.1235"), Held: A(0), Total: MustParseAmount("1.1235")},
		{Client: 2, Available: A(-1), Held: A(1), Total: A(0), Locked: true},
	})
	var buf bytes.Buffer
	require.NoError(t, EncodeJSONL(&buf, reports))
	want := `{"client":1,"available":1.1235,"held":0,"total":1.1235,"locked":false}
{"client":2,"available":-1,"held":1,"total":0,"locked":true}
`
	assert.Equal(t, want, buf.String())
}
