package validation

import (
	"github.com/shopspring/decimal"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/bulkcsv"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/refdata"
)

func (v *Validator) checkReference(c *checker, raw string) string {
	ref := clean(raw)
	col := bulkcsv.ColReference
	if !c.required(col, ref, ReferenceEmpty, "Enter a unique reference") {
		return ""
	}
	if !c.maxLen(col, ref, MaxReferenceLength, ReferenceTooLong,
		"The unique reference must be %d characters or less", MaxReferenceLength) {
		return ref
	}
	if !referenceRe.MatchString(ref) {
		c.fail(col, ReferenceInvalid, "The unique reference must only include letters a to z, numbers, hyphens and slashes")
	}
	return ref
}

type wasteCodeColumn struct {
	column  string
	typ     string
	value   string
	table   refdata.Lookup
	code    int
	message string
}

// checkWasteCode requires exactly one waste code column. It reports whether
// the row describes a laboratory sample.
func (v *Validator) checkWasteCode(c *checker, r *bulkcsv.Row) (domain.WasteCode, bool) {
	columns := []wasteCodeColumn{
		{bulkcsv.ColBaselAnnexIXCode, domain.WasteCodeBaselAnnexIX, clean(r.BaselAnnexIXCode), v.ref.BaselAnnexIX, BaselCodeInvalid, "Enter the Basel Annex IX code in the correct format"},
		{bulkcsv.ColOECDCode, domain.WasteCodeOECD, clean(r.OECDCode), v.ref.OECD, OECDCodeInvalid, "Enter the OECD code in the correct format"},
		{bulkcsv.ColAnnexIIIACode, domain.WasteCodeAnnexIIIA, clean(r.AnnexIIIACode), v.ref.AnnexIIIA, AnnexIIIAInvalid, "Enter the Annex IIIA code in the correct format"},
		{bulkcsv.ColAnnexIIIBCode, domain.WasteCodeAnnexIIIB, clean(r.AnnexIIIBCode), v.ref.AnnexIIIB, AnnexIIIBInvalid, "Enter the Annex IIIB code in the correct format"},
		{bulkcsv.ColLaboratoryCode, domain.WasteCodeLaboratory, clean(r.LaboratoryCode), nil, LaboratoryInvalid, "Enter Yes in the laboratory column for waste sent for laboratory analysis"},
	}

	var filled []wasteCodeColumn
	for _, col := range columns {
		if col.table == nil {
			// "No" in the laboratory column means not a laboratory sample.
			if yes, ok := parseYesNo(col.value); ok && !yes {
				continue
			}
		}
		if col.value != "" {
			filled = append(filled, col)
		}
	}
	if len(filled) == 0 {
		c.fail(bulkcsv.ColBaselAnnexIXCode, WasteCodeMissing,
			"Enter a waste code: Basel Annex IX, OECD, Annex IIIA, Annex IIIB or laboratory")
		return domain.WasteCode{}, false
	}
	for _, extra := range filled[1:] {
		c.fail(extra.column, WasteCodeTooMany, "Enter only one waste code per row")
	}

	code := filled[0]
	if code.table == nil {
		yes, ok := parseYesNo(code.value)
		if !ok || !yes {
			c.fail(code.column, code.code, "%s", code.message)
			return domain.WasteCode{Type: code.typ}, false
		}
		return domain.WasteCode{Type: code.typ}, true
	}

	canonical, ok := code.table.Find(code.value)
	if !ok {
		c.fail(code.column, code.code, "%s", code.message)
		return domain.WasteCode{Type: code.typ, Code: code.value}, false
	}
	return domain.WasteCode{Type: code.typ, Code: canonical}, false
}

func (v *Validator) checkNationalCode(c *checker, raw string) string {
	nc := clean(raw)
	if nc == "" {
		return ""
	}
	col := bulkcsv.ColNationalCode
	if c.maxLen(col, nc, MaxNationalCodeLength, NationalCodeTooLong,
		"The national code must be %d characters or less", MaxNationalCodeLength) && !nationalCodeRe.MatchString(nc) {
		c.fail(col, NationalCodeInvalid, "The national code must only include letters, numbers, spaces and hyphens")
	}
	return nc
}

func (v *Validator) checkDescription(c *checker, raw string) string {
	d := clean(raw)
	col := bulkcsv.ColWasteDescription
	if c.required(col, d, DescriptionEmpty, "Enter the waste description") {
		c.maxLen(col, d, MaxDescriptionLength, DescriptionTooLong,
			"The waste description must be %d characters or less", MaxDescriptionLength)
	}
	return d
}

func (v *Validator) checkQuantity(c *checker, r *bulkcsv.Row, laboratory bool) domain.WasteQuantity {
	units := []struct {
		column string
		unit   string
		value  string
	}{
		{bulkcsv.ColWasteQuantityTonnes, domain.UnitTonne, clean(r.WasteQuantityTonnes)},
		{bulkcsv.ColWasteQuantityCubicMetres, domain.UnitCubicMetre, clean(r.WasteQuantityCubicMetres)},
		{bulkcsv.ColWasteQuantityKilograms, domain.UnitKilogram, clean(r.WasteQuantityKilograms)},
	}

	var q domain.WasteQuantity
	found := false
	for _, u := range units {
		if u.value == "" {
			continue
		}
		if found {
			c.fail(u.column, QuantityTooMany, "Enter the waste quantity in only one unit")
			continue
		}
		found = true
		q.Unit = u.unit

		value, ok := parseQuantity(u.value)
		if !ok {
			c.fail(u.column, QuantityInvalid, "The waste quantity must be a number greater than 0 with up to 2 decimal places")
			continue
		}
		q.Value = value

		switch {
		case laboratory && u.unit != domain.UnitKilogram:
			c.fail(u.column, QuantityLaboratoryUnit, "Enter the quantity of a laboratory sample in kilograms")
		case laboratory && value.GreaterThan(MaxLaboratoryKilograms):
			c.fail(u.column, QuantityLaboratoryLimit, "A laboratory sample must be %s kilograms or less", MaxLaboratoryKilograms.String())
		case !laboratory && u.unit == domain.UnitKilogram:
			c.fail(u.column, QuantityKilogramsNotLab, "Enter the waste quantity in tonnes or cubic metres")
		}
	}
	if !found {
		c.fail(bulkcsv.ColWasteQuantityTonnes, QuantityMissing, "Enter the waste quantity in tonnes, cubic metres or kilograms")
	}

	est := clean(r.EstimatedOrActualWasteQuantity)
	col := bulkcsv.ColEstimatedOrActualWasteQuantity
	if c.required(col, est, QuantityEstimateEmpty, "Enter whether the waste quantity is estimated or actual") {
		estimate, ok := parseEstimate(est)
		switch {
		case !ok:
			c.fail(col, QuantityEstimateInvalid, "Enter Estimate or Actual for the waste quantity")
		case estimate:
			q.Type = domain.QuantityEstimate
		default:
			q.Type = domain.QuantityActual
		}
	}
	return q
}

func ordinalLabel(i int, noun string) string {
	return [...]string{"first", "second", "third", "fourth", "fifth"}[i] + " " + noun
}

// checkWasteTypes validates the waste type blocks. The first is required;
// a later block may not follow an empty one.
func (v *Validator) checkWasteTypes(c *checker, r *bulkcsv.Row) []domain.WasteTypeDetail {
	var out []domain.WasteTypeDetail
	previousEmpty := false
	for i := range r.WasteTypes {
		wt := r.WasteTypes[i]
		if i > 0 && wt.Empty() {
			previousEmpty = true
			continue
		}
		index := i + 1
		prefix := bulkcsv.WasteTypePrefix(i)
		label := ordinalLabel(i, "waste type")
		if previousEmpty {
			c.fail(prefix+bulkcsv.FieldEWCCode, WasteTypeCode(index, WasteTypeOutOfOrder),
				"The %s cannot be entered when the %s is empty", label, ordinalLabel(i-1, "waste type"))
		}
		out = append(out, v.checkWasteType(c, index, prefix, label, wt))
	}
	return out
}

func (v *Validator) checkWasteType(c *checker, index int, prefix, label string, wt bulkcsv.WasteType) domain.WasteTypeDetail {
	code := func(base int) int { return WasteTypeCode(index, base) }
	var d domain.WasteTypeDetail

	col := prefix + bulkcsv.FieldEWCCode
	ewc := normalizeEWC(clean(wt.EWCCode))
	if c.required(col, ewc, code(EmptyEWCCode), "Enter the %s EWC code", label) {
		if !ewcCodeRe.MatchString(ewc) || !v.ref.EWCChapters.Has(ewc[:2]) {
			c.fail(col, code(InvalidEWCCode), "Enter the %s EWC code in the correct format, for example 010101", label)
		}
		d.EWCCode = ewc
	}

	col = prefix + bulkcsv.FieldPhysicalForm
	form := clean(wt.PhysicalForm)
	if c.required(col, form, code(EmptyPhysicalForm), "Enter the %s physical form", label) {
		if canonical, ok := v.ref.PhysicalForms.Find(form); ok {
			d.PhysicalForm = canonical
		} else {
			c.fail(col, code(InvalidPhysicalForm), "Enter the %s physical form from the list of forms", label)
		}
	}

	// Hazardous properties
	col = prefix + bulkcsv.FieldHasHazardousProperties
	hpCol := prefix + bulkcsv.FieldHazardousWasteCodes
	hpCodes := splitList(wt.HazardousWasteCodes)
	if raw := clean(wt.HasHazardousProperties); c.required(col, raw, code(EmptyHasHazardous),
		"Enter whether the %s has hazardous properties", label) {
		hazardous, ok := parseYesNo(raw)
		switch {
		case !ok:
			c.fail(col, code(InvalidHasHazardous), "Enter Yes or No for whether the %s has hazardous properties", label)
		case hazardous && len(hpCodes) == 0:
			c.fail(hpCol, code(EmptyHazardousCodes), "Enter the hazardous waste codes of the %s", label)
		case hazardous:
			d.HasHazardousProperties = true
			for _, hp := range hpCodes {
				canonical, found := v.ref.HazardousProperties.Find(normalizeCode(hp))
				if !found || !hpCodeRe.MatchString(hp) {
					c.fail(hpCol, code(InvalidHazardousCode), "Enter the hazardous waste codes of the %s in the correct format, for example HP1;HP3", label)
					break
				}
				d.HazardousWasteCodes = append(d.HazardousWasteCodes, canonical)
			}
		case len(hpCodes) > 0:
			c.fail(hpCol, code(HazardousCodesNotAllowed), "Do not enter hazardous waste codes when the %s has no hazardous properties", label)
		}
	}

	// Persistent organic pollutants
	col = prefix + bulkcsv.FieldContainsPops
	detailsCol := prefix + bulkcsv.FieldPopsDetails
	concCol := prefix + bulkcsv.FieldPopsConcentration
	unitCol := prefix + bulkcsv.FieldPopsConcentrationUnit
	details, concentration, unit := clean(wt.PopsDetails), clean(wt.PopsConcentration), clean(wt.PopsConcentrationUnit)

	raw := clean(wt.ContainsPops)
	if !c.required(col, raw, code(EmptyContainsPops), "Enter whether the %s contains persistent organic pollutants", label) {
		return d
	}
	pops, ok := parseYesNo(raw)
	if !ok {
		c.fail(col, code(InvalidContainsPops), "Enter Yes or No for whether the %s contains persistent organic pollutants", label)
		return d
	}
	if !pops {
		if details != "" {
			c.fail(detailsCol, code(PopsDetailsNotAllowed), "Do not enter persistent organic pollutant details when the %s contains none", label)
		}
		if concentration != "" {
			c.fail(concCol, code(PopsConcentrationNotAllowed), "Do not enter a persistent organic pollutant concentration when the %s contains none", label)
		}
		if unit != "" {
			c.fail(unitCol, code(PopsUnitNotAllowed), "Do not enter a persistent organic pollutant concentration unit when the %s contains none", label)
		}
		return d
	}

	d.ContainsPops = true
	names := splitList(details)
	if c.required(detailsCol, details, code(EmptyPopsDetails), "Enter the persistent organic pollutants in the %s", label) {
		c.maxLen(detailsCol, details, MaxPopsDetailsLength, code(PopsDetailsTooLong),
			"The persistent organic pollutant details of the %s must be %d characters or less", label, MaxPopsDetailsLength)
	}

	var values []decimal.Decimal
	if c.required(concCol, concentration, code(EmptyPopsConcentration), "Enter the persistent organic pollutant concentration of the %s", label) {
		parts := splitList(concentration)
		for _, p := range parts {
			value, valid := parseConcentration(p)
			if !valid {
				c.fail(concCol, code(InvalidPopsConcentration), "Each persistent organic pollutant concentration of the %s must be a number greater than 0", label)
				values = nil
				break
			}
			values = append(values, value)
		}
		if len(names) > 0 && len(parts) != len(names) {
			c.fail(concCol, code(PopsConcentrationMismatch),
				"Enter one concentration for each persistent organic pollutant of the %s, separated by semicolons", label)
		}
	}

	if c.required(unitCol, unit, code(EmptyPopsUnit), "Enter the persistent organic pollutant concentration unit of the %s", label) {
		if canonical, found := v.ref.PopsConcentrationUnits.Find(unit); found {
			d.PopsConcentrationUnit = canonical
		} else {
			c.fail(unitCol, code(InvalidPopsUnit), "Enter the persistent organic pollutant concentration unit of the %s from the list of units", label)
		}
	}

	if len(values) == len(names) {
		for i, name := range names {
			d.Pops = append(d.Pops, domain.PopDetail{Name: name, Concentration: values[i]})
		}
	}
	return d
}

func (v *Validator) checkCollectionDate(c *checker, r *bulkcsv.Row) domain.CollectionDate {
	var cd domain.CollectionDate

	col := bulkcsv.ColWasteCollectionDate
	raw := clean(r.WasteCollectionDate)
	if c.required(col, raw, CollectionDateEmpty, "Enter the waste collection date") {
		date, ok := parseDate(raw)
		switch {
		case !ok:
			c.fail(col, CollectionDateInvalid, "Enter the waste collection date in the format DD/MM/YYYY or DD-MM-YYYY")
		case date.Before(dayOf(v.now())):
			c.fail(col, CollectionDateInPast, "The waste collection date must be today or in the future")
		default:
			cd.Date = date
		}
	}

	col = bulkcsv.ColEstimatedOrActualCollectionDate
	est := clean(r.EstimatedOrActualCollectionDate)
	if c.required(col, est, CollectionEstimateEmpty, "Enter whether the collection date is estimated or actual") {
		estimate, ok := parseEstimate(est)
		switch {
		case !ok:
			c.fail(col, CollectionEstimateInvalid, "Enter Estimate or Actual for the collection date")
		case estimate:
			cd.Type = domain.DateEstimate
		default:
			cd.Type = domain.DateActual
		}
	}
	return cd
}

// checkCarriers validates the carrier blocks. The first is required; a
// later carrier may not follow an empty one.
func (v *Validator) checkCarriers(c *checker, r *bulkcsv.Row) []domain.CarrierDetail {
	var out []domain.CarrierDetail
	previousEmpty := false
	for i := range r.Carriers {
		carrier := r.Carriers[i]
		if i > 0 && carrier.Empty() {
			previousEmpty = true
			continue
		}
		b := block{prefix: bulkcsv.CarrierPrefix(i), label: ordinalLabel(i, "carrier"), base: SectionCarrier, country: countryAny}
		if previousEmpty {
			c.fail(b.col(bulkcsv.FieldOrganisationName), CarrierOutOfOrder,
				"The %s cannot be entered when the %s is empty", b.label, ordinalLabel(i-1, "carrier"))
		}

		addr, contact := v.checkParty(c, b, carrier.Party)
		detail := domain.CarrierDetail{AddressDetails: addr, ContactDetails: contact}

		col := b.col(bulkcsv.FieldMeansOfTransport)
		means := clean(carrier.MeansOfTransport)
		if c.required(col, means, CarrierTransportEmpty, "Enter the %s means of transport", b.label) {
			if canonical, ok := v.ref.MeansOfTransport.Find(means); ok {
				detail.TransportDetails.Type = canonical
			} else {
				c.fail(col, CarrierTransportInvalid, "Enter the %s means of transport from the list: Road, Rail, Sea, Air or Inland waterways", b.label)
			}
		}
		details := clean(carrier.MeansOfTransportDetails)
		c.maxLen(b.col(bulkcsv.FieldMeansOfTransportDetails), details, MaxTransportDetailsLength, CarrierTransportDetailsLong,
			"The %s means of transport details must be %d characters or less", b.label, MaxTransportDetailsLength)
		detail.TransportDetails.Description = details

		out = append(out, detail)
	}
	return out
}

func (v *Validator) checkJourney(c *checker, r *bulkcsv.Row) (string, []string) {
	exit := clean(r.WhereWasteLeavesUK)
	col := bulkcsv.ColWhereWasteLeavesUK
	if c.required(col, exit, ExitLocationEmpty, "Enter where the waste leaves the UK") {
		c.maxLen(col, exit, MaxExitLocationLength, ExitLocationTooLong,
			"The location where the waste leaves the UK must be %d characters or less", MaxExitLocationLength)
	}

	col = bulkcsv.ColTransitCountries
	transit := []string{}
	seen := make(map[string]bool)
	for _, name := range splitList(r.TransitCountries) {
		canonical, ok := v.ref.Countries.Find(name)
		if !ok {
			c.fail(col, TransitCountryInvalid, "Enter transit countries from the list of countries, separated by semicolons")
			break
		}
		if seen[canonical] {
			c.fail(col, TransitCountryDuplicate, "Enter each transit country only once")
			break
		}
		seen[canonical] = true
		transit = append(transit, canonical)
	}
	return exit, transit
}

// checkRecovery validates the interim site, laboratory and recovery
// facility blocks. A laboratory sample needs a laboratory and no recovery
// facility; any other waste needs at least one recovery facility.
func (v *Validator) checkRecovery(c *checker, r *bulkcsv.Row, laboratory bool) []domain.RecoveryFacility {
	var out []domain.RecoveryFacility

	if !r.InterimSite.Empty() {
		b := block{prefix: bulkcsv.PrefixInterimSite, label: "interim site", base: interimSiteBase, country: countryAbroad}
		f := v.checkFacility(c, b, bulkcsv.FieldRecoveryCode, v.ref.InterimRecoveryCodes, r.InterimSite)
		f.Type = domain.FacilityInterimSite
		out = append(out, f)
	}

	labBlock := block{prefix: bulkcsv.PrefixLaboratory, label: "laboratory", base: laboratoryBase, country: countryAbroad}
	if laboratory {
		f := v.checkFacility(c, labBlock, bulkcsv.FieldDisposalCode, v.ref.DisposalCodes, r.Laboratory)
		f.Type = domain.FacilityLaboratory
		out = append(out, f)
		for i := range r.RecoveryFacilities {
			if !r.RecoveryFacilities[i].Empty() {
				c.fail(bulkcsv.RecoveryFacilityPrefix(i)+bulkcsv.FieldOrganisationName, RecoveryNotAllowedForLaboratory,
					"Do not enter a recovery facility for waste sent for laboratory analysis")
			}
		}
		return out
	}

	if !r.Laboratory.Empty() {
		c.fail(labBlock.col(bulkcsv.FieldOrganisationName), LaboratoryNotAllowed,
			"Only enter laboratory details when the waste is sent for laboratory analysis")
	}

	anyFacility := false
	for i := range r.RecoveryFacilities {
		if !r.RecoveryFacilities[i].Empty() {
			anyFacility = true
			break
		}
	}
	if !anyFacility {
		c.fail(bulkcsv.RecoveryFacilityPrefix(0)+bulkcsv.FieldOrganisationName, RecoveryFacilityRequired,
			"Enter at least one recovery facility")
		return out
	}

	previousEmpty := false
	for i := range r.RecoveryFacilities {
		facility := r.RecoveryFacilities[i]
		if facility.Empty() {
			previousEmpty = true
			continue
		}
		b := block{prefix: bulkcsv.RecoveryFacilityPrefix(i), label: ordinalLabel(i, "recovery facility"), base: recoveryFacilityBase, country: countryAbroad}
		if previousEmpty {
			c.fail(b.col(bulkcsv.FieldOrganisationName), RecoveryFacilityOutOfOrder,
				"The %s cannot be entered when the %s is empty", b.label, ordinalLabel(i-1, "recovery facility"))
		}
		f := v.checkFacility(c, b, bulkcsv.FieldRecoveryCode, v.ref.RecoveryCodes, facility)
		f.Type = domain.FacilityRecovery
		out = append(out, f)
	}
	return out
}

func ewcCodes(types []domain.WasteTypeDetail) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		if t.EWCCode != "" {
			out = append(out, t.EWCCode)
		}
	}
	return out
}
