package bulkcsv

// Column names of the single-valued cells.
const (
	ColReference                       = "reference"
	ColBaselAnnexIXCode                = "baselAnnexIXCode"
	ColOECDCode                        = "oecdCode"
	ColAnnexIIIACode                   = "annexIIIACode"
	ColAnnexIIIBCode                   = "annexIIIBCode"
	ColLaboratoryCode                  = "laboratory"
	ColNationalCode                    = "nationalCode"
	ColWasteDescription                = "wasteDescription"
	ColWasteQuantityTonnes             = "wasteQuantityTonnes"
	ColWasteQuantityCubicMetres        = "wasteQuantityCubicMetres"
	ColWasteQuantityKilograms          = "wasteQuantityKilograms"
	ColEstimatedOrActualWasteQuantity  = "estimatedOrActualWasteQuantity"
	ColWasteCollectionDate             = "wasteCollectionDate"
	ColEstimatedOrActualCollectionDate = "estimatedOrActualCollectionDate"
	ColWhereWasteLeavesUK              = "whereWasteLeavesUk"
	ColTransitCountries                = "transitCountries"
)

// Block prefixes.
const (
	PrefixExporter        = "exporter"
	PrefixImporter        = "importer"
	PrefixWasteCollection = "wasteCollection"
	PrefixInterimSite     = "interimSite"
	PrefixLaboratory      = "laboratory"
)

// Field suffixes shared by the address and contact blocks.
const (
	FieldOrganisationName        = "OrganisationName"
	FieldAddress                 = "Address"
	FieldAddressLine1            = "AddressLine1"
	FieldAddressLine2            = "AddressLine2"
	FieldTownOrCity              = "TownOrCity"
	FieldPostcode                = "Postcode"
	FieldCountry                 = "Country"
	FieldContactFullName         = "ContactFullName"
	FieldContactPhoneNumber      = "ContactPhoneNumber"
	FieldFaxNumber               = "FaxNumber"
	FieldEmailAddress            = "EmailAddress"
	FieldMeansOfTransport        = "MeansOfTransport"
	FieldMeansOfTransportDetails = "MeansOfTransportDetails"
	FieldRecoveryCode            = "RecoveryCode"
	FieldDisposalCode            = "DisposalCode"

	FieldEWCCode                = "EwcCode"
	FieldPhysicalForm           = "PhysicalForm"
	FieldHasHazardousProperties = "HasHazardousProperties"
	FieldHazardousWasteCodes    = "HazardousWasteCodes"
	FieldContainsPops           = "ContainsPops"
	FieldPopsDetails            = "PopsDetails"
	FieldPopsConcentration      = "PopsConcentration"
	FieldPopsConcentrationUnit  = "PopsConcentrationUnit"
)

var ordinals = [...]string{"first", "second", "third", "fourth", "fifth"}

// WasteTypePrefix returns the column prefix of waste type i (0-based).
func WasteTypePrefix(i int) string { return ordinals[i] + "WasteType" }

// CarrierPrefix returns the column prefix of carrier i (0-based).
func CarrierPrefix(i int) string { return ordinals[i] + "Carrier" }

// RecoveryFacilityPrefix returns the column prefix of recovery facility i (0-based).
func RecoveryFacilityPrefix(i int) string { return ordinals[i] + "RecoveryFacility" }

type column struct {
	name  string
	field func(*Row) *string
}

var (
	columns     []column
	columnIndex map[string]int
)

func init() {
	add := func(name string, field func(*Row) *string) {
		columns = append(columns, column{name: name, field: field})
	}

	add(ColReference, func(r *Row) *string { return &r.Reference })
	add(ColBaselAnnexIXCode, func(r *Row) *string { return &r.BaselAnnexIXCode })
	add(ColOECDCode, func(r *Row) *string { return &r.OECDCode })
	add(ColAnnexIIIACode, func(r *Row) *string { return &r.AnnexIIIACode })
	add(ColAnnexIIIBCode, func(r *Row) *string { return &r.AnnexIIIBCode })
	add(ColLaboratoryCode, func(r *Row) *string { return &r.LaboratoryCode })
	add(ColNationalCode, func(r *Row) *string { return &r.NationalCode })
	add(ColWasteDescription, func(r *Row) *string { return &r.WasteDescription })
	add(ColWasteQuantityTonnes, func(r *Row) *string { return &r.WasteQuantityTonnes })
	add(ColWasteQuantityCubicMetres, func(r *Row) *string { return &r.WasteQuantityCubicMetres })
	add(ColWasteQuantityKilograms, func(r *Row) *string { return &r.WasteQuantityKilograms })
	add(ColEstimatedOrActualWasteQuantity, func(r *Row) *string { return &r.EstimatedOrActualWasteQuantity })

	for i := 0; i < MaxWasteTypes; i++ {
		i := i
		p := WasteTypePrefix(i)
		wt := func(r *Row) *WasteType { return &r.WasteTypes[i] }
		add(p+FieldEWCCode, func(r *Row) *string { return &wt(r).EWCCode })
		add(p+FieldPhysicalForm, func(r *Row) *string { return &wt(r).PhysicalForm })
		add(p+FieldHasHazardousProperties, func(r *Row) *string { return &wt(r).HasHazardousProperties })
		add(p+FieldHazardousWasteCodes, func(r *Row) *string { return &wt(r).HazardousWasteCodes })
		add(p+FieldContainsPops, func(r *Row) *string { return &wt(r).ContainsPops })
		add(p+FieldPopsDetails, func(r *Row) *string { return &wt(r).PopsDetails })
		add(p+FieldPopsConcentration, func(r *Row) *string { return &wt(r).PopsConcentration })
		add(p+FieldPopsConcentrationUnit, func(r *Row) *string { return &wt(r).PopsConcentrationUnit })
	}

	addUKSite := func(prefix string, site func(*Row) *UKSite) {
		add(prefix+FieldOrganisationName, func(r *Row) *string { return &site(r).OrganisationName })
		add(prefix+FieldAddressLine1, func(r *Row) *string { return &site(r).AddressLine1 })
		add(prefix+FieldAddressLine2, func(r *Row) *string { return &site(r).AddressLine2 })
		add(prefix+FieldTownOrCity, func(r *Row) *string { return &site(r).TownOrCity })
		add(prefix+FieldPostcode, func(r *Row) *string { return &site(r).Postcode })
		add(prefix+FieldCountry, func(r *Row) *string { return &site(r).Country })
		add(prefix+FieldContactFullName, func(r *Row) *string { return &site(r).ContactFullName })
		add(prefix+FieldContactPhoneNumber, func(r *Row) *string { return &site(r).ContactPhoneNumber })
		add(prefix+FieldFaxNumber, func(r *Row) *string { return &site(r).FaxNumber })
		add(prefix+FieldEmailAddress, func(r *Row) *string { return &site(r).EmailAddress })
	}
	addParty := func(prefix string, party func(*Row) *Party) {
		add(prefix+FieldOrganisationName, func(r *Row) *string { return &party(r).OrganisationName })
		add(prefix+FieldAddress, func(r *Row) *string { return &party(r).Address })
		add(prefix+FieldCountry, func(r *Row) *string { return &party(r).Country })
		add(prefix+FieldContactFullName, func(r *Row) *string { return &party(r).ContactFullName })
		add(prefix+FieldContactPhoneNumber, func(r *Row) *string { return &party(r).ContactPhoneNumber })
		add(prefix+FieldFaxNumber, func(r *Row) *string { return &party(r).FaxNumber })
		add(prefix+FieldEmailAddress, func(r *Row) *string { return &party(r).EmailAddress })
	}
	addFacility := func(prefix, codeField string, f func(*Row) *Facility) {
		addParty(prefix, func(r *Row) *Party { return &f(r).Party })
		add(prefix+codeField, func(r *Row) *string { return &f(r).Code })
	}

	addUKSite(PrefixExporter, func(r *Row) *UKSite { return &r.Exporter })
	addParty(PrefixImporter, func(r *Row) *Party { return &r.Importer })

	add(ColWasteCollectionDate, func(r *Row) *string { return &r.WasteCollectionDate })
	add(ColEstimatedOrActualCollectionDate, func(r *Row) *string { return &r.EstimatedOrActualCollectionDate })

	for i := 0; i < MaxCarriers; i++ {
		i := i
		p := CarrierPrefix(i)
		addParty(p, func(r *Row) *Party { return &r.Carriers[i].Party })
		add(p+FieldMeansOfTransport, func(r *Row) *string { return &r.Carriers[i].MeansOfTransport })
		add(p+FieldMeansOfTransportDetails, func(r *Row) *string { return &r.Carriers[i].MeansOfTransportDetails })
	}

	addUKSite(PrefixWasteCollection, func(r *Row) *UKSite { return &r.WasteCollection })

	add(ColWhereWasteLeavesUK, func(r *Row) *string { return &r.WhereWasteLeavesUK })
	add(ColTransitCountries, func(r *Row) *string { return &r.TransitCountries })

	addFacility(PrefixInterimSite, FieldRecoveryCode, func(r *Row) *Facility { return &r.InterimSite })
	addFacility(PrefixLaboratory, FieldDisposalCode, func(r *Row) *Facility { return &r.Laboratory })
	for i := 0; i < MaxRecoveryFacilities; i++ {
		i := i
		addFacility(RecoveryFacilityPrefix(i), FieldRecoveryCode, func(r *Row) *Facility { return &r.RecoveryFacilities[i] })
	}

	columnIndex = make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := columnIndex[c.name]; dup {
			panic("bulkcsv: duplicate column " + c.name)
		}
		columnIndex[c.name] = i
	}
}

// Headers returns the ordered header row.
func Headers() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.name
	}
	return out
}

// ColumnCount is the number of cells in every row.
func ColumnCount() int { return len(columns) }

// IsColumn reports whether name is a known column.
func IsColumn(name string) bool {
	_, ok := columnIndex[name]
	return ok
}

// ColumnPosition returns the 0-based header position of name. Unknown names
// sort after every known column.
func ColumnPosition(name string) int {
	if i, ok := columnIndex[name]; ok {
		return i
	}
	return len(columns)
}
