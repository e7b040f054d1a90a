package validation

import (
	"sort"
	"time"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/bulkcsv"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
)

// RowErrors groups failures by row, in row order. Within a row failures keep
// the order the rules ran in.
func RowErrors(failures []Failure) []domain.RowError {
	index := make(map[int]int)
	var out []domain.RowError
	for _, f := range failures {
		i, ok := index[f.Row]
		if !ok {
			i = len(out)
			index[f.Row] = i
			out = append(out, domain.RowError{RowNumber: f.Row})
		}
		out[i].ErrorAmount++
		out[i].ErrorDetails = append(out[i].ErrorDetails, f.Message)
		out[i].ErrorCodes = append(out[i].ErrorCodes, f.Code)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].RowNumber < out[b].RowNumber })
	return out
}

// ColumnErrors groups failures by column, in template header order.
func ColumnErrors(failures []Failure) []domain.ColumnError {
	index := make(map[string]int)
	var out []domain.ColumnError
	for _, f := range failures {
		i, ok := index[f.Column]
		if !ok {
			i = len(out)
			index[f.Column] = i
			out = append(out, domain.ColumnError{ColumnName: f.Column})
		}
		out[i].ErrorAmount++
		out[i].ErrorDetails = append(out[i].ErrorDetails, domain.ColumnErrorDetail{
			RowNumber:   f.Row,
			ErrorReason: f.Message,
			ErrorCode:   f.Code,
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return bulkcsv.ColumnPosition(out[a].ColumnName) < bulkcsv.ColumnPosition(out[b].ColumnName)
	})
	for i := range out {
		details := out[i].ErrorDetails
		sort.SliceStable(details, func(a, b int) bool { return details[a].RowNumber < details[b].RowNumber })
	}
	return out
}

// FailuresBySection counts failures per code section.
func FailuresBySection(failures []Failure) map[string]int {
	out := make(map[string]int)
	for _, f := range failures {
		out[Section(f.Code)]++
	}
	return out
}

// FailuresByCode counts failures per code.
func FailuresByCode(failures []Failure) map[int]int {
	out := make(map[int]int)
	for _, f := range failures {
		out[f.Code]++
	}
	return out
}

// State returns the batch state for a validation result.
func (r Result) State(at time.Time) domain.BatchState {
	if !r.Passed() {
		return domain.FailedValidation{
			Timestamp:    at,
			RowErrors:    RowErrors(r.Failures),
			ColumnErrors: ColumnErrors(r.Failures),
		}
	}
	return domain.PassedValidation{
		Timestamp:    at,
		HasEstimates: r.HasEstimates,
		Submissions:  r.Submissions,
	}
}
