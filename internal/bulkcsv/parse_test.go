package bulkcsv

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRow() Row {
	var r Row
	r.Reference = "ref-1"
	r.BaselAnnexIXCode = "B1010"
	r.WasteDescription = "Mixed metal scrap"
	r.Exporter.OrganisationName = "Acme Metals Ltd"
	r.Carriers[2].MeansOfTransport = "Rail"
	r.RecoveryFacilities[4].Code = "R4"
	return r
}

func encode(t *testing.T, rows ...Row) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows))
	return buf.Bytes()
}

func TestHeaders(t *testing.T) {
	h := Headers()
	require.Len(t, h, 168)
	assert.Equal(t, ColumnCount(), len(h))
	assert.Equal(t, "reference", h[0])
	assert.Equal(t, "fifthRecoveryFacilityRecoveryCode", h[len(h)-1])

	seen := make(map[string]bool)
	for _, name := range h {
		assert.False(t, seen[name], "duplicate header %s", name)
		seen[name] = true
	}
	for _, name := range []string{
		"exporterOrganisationName",
		"importerAddress",
		"secondWasteTypeEwcCode",
		"thirdWasteTypePopsConcentrationUnit",
		"fifthCarrierMeansOfTransportDetails",
		"wasteCollectionPostcode",
		"interimSiteRecoveryCode",
		"laboratoryDisposalCode",
		"laboratory",
	} {
		assert.True(t, IsColumn(name), name)
	}

	h[0] = "changed"
	assert.Equal(t, "reference", Headers()[0], "Headers returns a copy")
}

func TestRow_GetSetValues(t *testing.T) {
	var r Row
	require.True(t, r.Set("secondCarrierOrganisationName", "Carrier Two"))
	require.True(t, r.Set("thirdWasteTypeEwcCode", "010101"))
	assert.False(t, r.Set("unknownColumn", "x"))

	assert.Equal(t, "Carrier Two", r.Carriers[1].OrganisationName)
	assert.Equal(t, "010101", r.WasteTypes[2].EWCCode)

	got, ok := r.Get("secondCarrierOrganisationName")
	require.True(t, ok)
	assert.Equal(t, "Carrier Two", got)
	_, ok = r.Get("unknownColumn")
	assert.False(t, ok)

	values := r.Values()
	require.Len(t, values, ColumnCount())
	assert.Equal(t, "Carrier Two", values[ColumnPosition("secondCarrierOrganisationName")])
	assert.Equal(t, ColumnCount(), ColumnPosition("unknownColumn"))
}

func TestParse_RoundTrip(t *testing.T) {
	in := []Row{sampleRow(), sampleRow()}
	in[1].Reference = "ref-2"

	rows, err := Parse(encode(t, in...))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for i := range rows {
		assert.Equal(t, i+1, rows[i].Number)
		in[i].Number = i + 1
		assert.Equal(t, in[i], rows[i])
	}
}

func TestParse_BOMAndNormalization(t *testing.T) {
	r := sampleRow()
	r.Exporter.OrganisationName = "Cafe\u0301 Recycling"
	data := append([]byte("\xef\xbb\xbf"), encode(t, r)...)

	rows, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ref-1", rows[0].Reference, "BOM stripped from the first header")
	assert.Equal(t, "Caf\u00e9 Recycling", rows[0].Exporter.OrganisationName)
}

func TestParse_SkipsBlankRows(t *testing.T) {
	blank := strings.Repeat(",", ColumnCount()-1)
	data := string(encode(t, sampleRow())) + blank + "\n   \n" + string(encode(t, sampleRow())[len(strings.Join(Headers(), ","))+1:])

	rows, err := Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Number)
	assert.Equal(t, 4, rows[1].Number, "blank rows keep their place in the numbering")
}

func TestParse_Errors(t *testing.T) {
	header := strings.Join(Headers(), ",")
	swapped := append([]string(nil), Headers()...)
	swapped[1], swapped[2] = swapped[2], swapped[1]

	tests := []struct {
		name    string
		input   []byte
		wantMsg string
	}{
		{"empty", []byte(""), MsgEmptyFile},
		{"whitespace only", []byte("  \n\n"), MsgEmptyFile},
		{"invalid utf8", []byte("reference\n\xff\xfe\n"), MsgNotUTF8},
		{"short header", []byte("reference,wasteDescription\nref,desc\n"), MsgHeaderMismatch},
		{"reordered header", []byte(strings.Join(swapped, ",") + "\n"), MsgHeaderMismatch},
		{"header only", []byte(header + "\n"), MsgNoDataRows},
		{"column count", []byte(header + "\nref-1,B1010\n"), "Row 1 has 2 columns"},
		{"bare quote", []byte(header + "\nref\"1" + strings.Repeat(",", ColumnCount()-1) + "\n"), MsgMalformedCSV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, rows)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "want *ParseError, got %T", err)
			assert.Contains(t, perr.Msg, tt.wantMsg)
		})
	}
}

func TestRow_Empty(t *testing.T) {
	var r Row
	assert.True(t, r.Blank())
	assert.True(t, r.WasteTypes[1].Empty())
	assert.True(t, r.Carriers[0].Empty())
	assert.True(t, r.InterimSite.Empty())

	r.Carriers[0].MeansOfTransport = "Road"
	r.InterimSite.Code = "R13"
	assert.False(t, r.Carriers[0].Empty())
	assert.False(t, r.InterimSite.Empty())
	assert.False(t, r.Blank())
}
