package bulkcsv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ParseError is a structural failure of the CSV text. It carries the
// message shown to the user in FailedCsvValidation.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// Messages for structural failures.
const (
	MsgEmptyFile       = "The selected file is empty"
	MsgNotUTF8         = "The selected file must be UTF-8 encoded"
	MsgHeaderMismatch  = "The column headers do not match the bulk upload template"
	MsgNoDataRows      = "The selected file does not contain any waste movement records"
	MsgMalformedCSV    = "The selected file could not be read as CSV"
	msgColumnCountTmpl = "Row %d has %d columns but the template has %d"
)

// Parse reads CSV text into rows. Any structural failure returns a
// *ParseError and no rows.
func Parse(data []byte) ([]Row, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Msg: MsgEmptyFile}
	}
	if !utf8.Valid(data) {
		return nil, &ParseError{Msg: MsgNotUTF8}
	}

	clean := transform.NewReader(bytes.NewReader(data),
		transform.Chain(unicode.BOMOverride(unicode.UTF8.NewDecoder()), norm.NFC))

	r := csv.NewReader(clean)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, readError(err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var rows []Row
	// number counts every record after the header so skipped blank rows
	// keep the numbering of the user's file.
	number := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(err)
		}
		number++
		line, _ := r.FieldPos(0)
		if len(record) != len(columns) {
			if len(record) == 1 && allBlank(record[0]) {
				continue
			}
			return nil, &ParseError{
				Line: line,
				Msg:  fmt.Sprintf(msgColumnCountTmpl, number, len(record), len(columns)),
			}
		}

		var row Row
		for i, v := range record {
			*columns[i].field(&row) = v
		}
		if row.Blank() {
			continue
		}
		row.Number = number
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, &ParseError{Msg: MsgNoDataRows}
	}
	return rows, nil
}

func checkHeader(header []string) error {
	if len(header) != len(columns) {
		return &ParseError{Line: 1, Msg: MsgHeaderMismatch}
	}
	for i, h := range header {
		if h != columns[i].name {
			return &ParseError{
				Line: 1,
				Msg:  fmt.Sprintf("%s: expected %q in column %d but found %q", MsgHeaderMismatch, columns[i].name, i+1, h),
			}
		}
	}
	return nil
}

func readError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Line: csvErr.Line, Msg: fmt.Sprintf("%s: %v", MsgMalformedCSV, csvErr.Err)}
	}
	if errors.Is(err, io.EOF) {
		return &ParseError{Msg: MsgEmptyFile}
	}
	return &ParseError{Msg: fmt.Sprintf("%s: %v", MsgMalformedCSV, err)}
}

// Write serializes rows with the header line.
func Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return err
	}
	for i := range rows {
		if err := cw.Write(rows[i].Values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
