// Package bulkcsv defines the fixed, wide row schema of a waste movement bulk
// upload and parses CSV text into typed rows.
//
// Every cell is a string. Typed values are only produced by the validator.
package bulkcsv

// WasteType is one of the three waste type blocks in a row.
type WasteType struct {
	EWCCode                string
	PhysicalForm           string
	HasHazardousProperties string
	HazardousWasteCodes    string
	ContainsPops           string
	PopsDetails            string
	PopsConcentration      string
	PopsConcentrationUnit  string
}

// Empty reports whether no cell of the block is filled in.
func (w WasteType) Empty() bool {
	return allBlank(w.EWCCode, w.PhysicalForm, w.HasHazardousProperties, w.HazardousWasteCodes,
		w.ContainsPops, w.PopsDetails, w.PopsConcentration, w.PopsConcentrationUnit)
}

// UKSite is a UK address block with contact details, used for the exporter
// and the waste collection site.
type UKSite struct {
	OrganisationName   string
	AddressLine1       string
	AddressLine2       string
	TownOrCity         string
	Postcode           string
	Country            string
	ContactFullName    string
	ContactPhoneNumber string
	FaxNumber          string
	EmailAddress       string
}

// Party is an organisation with a free-form address and contact details.
type Party struct {
	OrganisationName   string
	Address            string
	Country            string
	ContactFullName    string
	ContactPhoneNumber string
	FaxNumber          string
	EmailAddress       string
}

// Empty reports whether no cell of the block is filled in.
func (p Party) Empty() bool {
	return allBlank(p.OrganisationName, p.Address, p.Country, p.ContactFullName,
		p.ContactPhoneNumber, p.FaxNumber, p.EmailAddress)
}

// Carrier is one of the five carrier blocks.
type Carrier struct {
	Party
	MeansOfTransport        string
	MeansOfTransportDetails string
}

// Empty reports whether no cell of the block is filled in.
func (c Carrier) Empty() bool {
	return c.Party.Empty() && allBlank(c.MeansOfTransport, c.MeansOfTransportDetails)
}

// Facility is an interim site, laboratory or recovery facility. Code holds
// the recovery code, or the disposal code for a laboratory.
type Facility struct {
	Party
	Code string
}

// Empty reports whether no cell of the block is filled in.
func (f Facility) Empty() bool {
	return f.Party.Empty() && allBlank(f.Code)
}

// Row is one data line of a bulk upload.
type Row struct {
	// Number is the 1-based position among data rows, header excluded.
	Number int

	Reference string

	BaselAnnexIXCode string
	OECDCode         string
	AnnexIIIACode    string
	AnnexIIIBCode    string
	LaboratoryCode   string
	NationalCode     string
	WasteDescription string

	WasteQuantityTonnes            string
	WasteQuantityCubicMetres       string
	WasteQuantityKilograms         string
	EstimatedOrActualWasteQuantity string

	WasteTypes [MaxWasteTypes]WasteType

	Exporter UKSite
	Importer Party

	WasteCollectionDate             string
	EstimatedOrActualCollectionDate string

	Carriers [MaxCarriers]Carrier

	WasteCollection UKSite

	WhereWasteLeavesUK string
	TransitCountries   string

	InterimSite        Facility
	Laboratory         Facility
	RecoveryFacilities [MaxRecoveryFacilities]Facility
}

const (
	MaxWasteTypes         = 3
	MaxCarriers           = 5
	MaxRecoveryFacilities = 5
)

// Get returns the cell value for a column name.
func (r *Row) Get(column string) (string, bool) {
	i, ok := columnIndex[column]
	if !ok {
		return "", false
	}
	return *columns[i].field(r), true
}

// Set stores a cell value by column name. It reports false for an unknown
// column.
func (r *Row) Set(column, value string) bool {
	i, ok := columnIndex[column]
	if !ok {
		return false
	}
	*columns[i].field(r) = value
	return true
}

// Values returns the cells in header order.
func (r *Row) Values() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = *c.field(r)
	}
	return out
}

// Blank reports whether every cell is empty or whitespace.
func (r *Row) Blank() bool {
	for _, c := range columns {
		if !allBlank(*c.field(r)) {
			return false
		}
	}
	return true
}

func allBlank(values ...string) bool {
	for _, v := range values {
		for i := 0; i < len(v); i++ {
			switch v[i] {
			case ' ', '\t', '\r', '\n':
			default:
				return false
			}
		}
	}
	return true
}
