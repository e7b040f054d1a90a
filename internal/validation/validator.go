// Package validation checks bulk upload rows against the field rules of a
// waste movement and maps valid rows to partial submissions.
//
// Every rule of a row runs, so one pass reports everything the user has to
// fix. Failures form a single flat list; RowErrors and ColumnErrors are two
// projections of that list.
package validation

import (
	"time"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/bulkcsv"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/refdata"
)

// Validator validates rows against reference data and a clock.
type Validator struct {
	ref *refdata.Index
	now func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock sets the clock used for "not in the past" date rules.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// WithReferenceData replaces the embedded reference tables.
func WithReferenceData(ref *refdata.Index) Option {
	return func(v *Validator) { v.ref = ref }
}

// New creates a Validator using the embedded reference data and wall clock.
func New(opts ...Option) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	if v.ref == nil {
		v.ref = refdata.Default()
	}
	return v
}

// Result is the outcome of validating all rows of a batch.
type Result struct {
	Rows         int
	Failures     []Failure
	Submissions  []domain.PartialSubmission
	HasEstimates bool
}

// Passed reports whether no rule failed.
func (r Result) Passed() bool { return len(r.Failures) == 0 }

// ValidateCSV parses and validates CSV text. A structural failure returns a
// *bulkcsv.ParseError.
func (v *Validator) ValidateCSV(data []byte) (Result, error) {
	rows, err := bulkcsv.Parse(data)
	if err != nil {
		return Result{}, err
	}
	return v.ValidateRows(rows), nil
}

// ValidateRows validates parsed rows. Submissions are only populated when
// every row passes.
func (v *Validator) ValidateRows(rows []bulkcsv.Row) Result {
	res := Result{Rows: len(rows)}
	submissions := make([]domain.PartialSubmission, 0, len(rows))
	for i := range rows {
		sub, failures := v.validateRow(&rows[i])
		res.Failures = append(res.Failures, failures...)
		submissions = append(submissions, sub)
	}
	if !res.Passed() {
		return res
	}

	res.Submissions = submissions
	for _, s := range submissions {
		if s.HasEstimates() {
			res.HasEstimates = true
			break
		}
	}
	return res
}

// validateRow runs every section in a fixed order: general fields, waste
// types, producer, receiver, collection date, carriers, collection site,
// journey and recovery.
func (v *Validator) validateRow(r *bulkcsv.Row) (domain.PartialSubmission, []Failure) {
	c := &checker{row: r.Number}

	sub := domain.PartialSubmission{RowNumber: r.Number}
	sub.Reference = v.checkReference(c, r.Reference)

	wasteCode, laboratory := v.checkWasteCode(c, r)
	sub.WasteDescription.WasteCode = wasteCode
	sub.WasteDescription.NationalCode = v.checkNationalCode(c, r.NationalCode)
	sub.WasteDescription.Description = v.checkDescription(c, r.WasteDescription)
	sub.WasteQuantity = v.checkQuantity(c, r, laboratory)

	sub.WasteDescription.WasteTypes = v.checkWasteTypes(c, r)
	sub.WasteDescription.EWCCodes = ewcCodes(sub.WasteDescription.WasteTypes)

	exporter := block{prefix: bulkcsv.PrefixExporter, label: "exporter", base: SectionProducer, country: countryUK}
	sub.ExporterDetail.ExporterAddress, sub.ExporterDetail.ExporterContact = v.checkUKSite(c, exporter, r.Exporter)

	importer := block{prefix: bulkcsv.PrefixImporter, label: "importer", base: SectionReceiver, country: countryAbroad}
	sub.ImporterDetail.ImporterAddressDetails, sub.ImporterDetail.ImporterContactDetails = v.checkParty(c, importer, r.Importer)

	sub.CollectionDate = v.checkCollectionDate(c, r)
	sub.Carriers = v.checkCarriers(c, r)

	site := block{prefix: bulkcsv.PrefixWasteCollection, label: "waste collection", base: SectionCollection, country: countryUK}
	sub.CollectionDetail.Address, sub.CollectionDetail.ContactDetails = v.checkUKSite(c, site, r.WasteCollection)

	sub.UKExitLocation, sub.TransitCountries = v.checkJourney(c, r)
	sub.RecoveryFacilityDetail = v.checkRecovery(c, r, laboratory)

	return sub, c.failures
}
