package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/bulkcsv"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/validation"
)

// errValidationFailed makes the command exit non-zero after the report
// has been printed.
var errValidationFailed = errors.New("validation failed")

// report is the --json output of validate.
type report struct {
	Status       domain.BatchStatus   `json:"status"`
	Rows         int                  `json:"rows"`
	Error        string               `json:"error,omitempty"`
	RowErrors    []domain.RowError    `json:"rowErrors,omitempty"`
	ColumnErrors []domain.ColumnError `json:"columnErrors,omitempty"`
}

func newValidateCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate <file.csv|file.xlsx>",
		Short: "Validate a bulk upload file with the service rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readUpload(args[0])
			if err != nil {
				return err
			}

			rep := check(data)
			logger.Debug("Validated file",
				zap.String("file", args[0]),
				zap.String("status", string(rep.Status)),
				zap.Int("rows", rep.Rows),
			)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			} else {
				printReport(out, rep)
			}
			if rep.Status != domain.StatusPassedValidation {
				return errValidationFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the row and column errors as JSON")
	return cmd
}

func check(data []byte) report {
	res, err := validation.New(validation.WithClock(now)).ValidateCSV(data)
	if err != nil {
		return report{Status: domain.StatusFailedCsvValidation, Error: err.Error()}
	}
	if !res.Passed() {
		return report{
			Status:       domain.StatusFailedValidation,
			Rows:         res.Rows,
			RowErrors:    validation.RowErrors(res.Failures),
			ColumnErrors: validation.ColumnErrors(res.Failures),
		}
	}
	return report{Status: domain.StatusPassedValidation, Rows: res.Rows}
}

func printReport(w io.Writer, rep report) {
	switch rep.Status {
	case domain.StatusFailedCsvValidation:
		fmt.Fprintf(w, "The file could not be read: %s\n", rep.Error)
	case domain.StatusFailedValidation:
		failures := 0
		for _, re := range rep.RowErrors {
			failures += re.ErrorAmount
		}
		fmt.Fprintf(w, "%d of %d rows have errors (%d in total)\n", len(rep.RowErrors), rep.Rows, failures)
		for _, re := range rep.RowErrors {
			fmt.Fprintf(w, "\nRow %d\n", re.RowNumber)
			for i, detail := range re.ErrorDetails {
				fmt.Fprintf(w, "  [%d] %s\n", re.ErrorCodes[i], detail)
			}
		}
	default:
		fmt.Fprintf(w, "All %d rows passed validation\n", rep.Rows)
	}
}

// readUpload returns the file as CSV. Workbooks are read from their first
// sheet.
func readUpload(path string) ([]byte, error) {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return os.ReadFile(path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	// GetRows trims trailing empty cells; pad to the template width.
	width := bulkcsv.ColumnCount()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
