package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RowError aggregates every failure of one row.
type RowError struct {
	RowNumber    int      `json:"rowNumber"`
	ErrorAmount  int      `json:"errorAmount"`
	ErrorDetails []string `json:"errorDetails"`
	ErrorCodes   []int    `json:"errorCodes"`
}

// ColumnError aggregates every failure of one column.
type ColumnError struct {
	ColumnName   string              `json:"columnName"`
	ErrorAmount  int                 `json:"errorAmount"`
	ErrorDetails []ColumnErrorDetail `json:"errorDetails"`
}

// ColumnErrorDetail is one failure of a column.
type ColumnErrorDetail struct {
	RowNumber   int    `json:"rowNumber"`
	ErrorReason string `json:"errorReason"`
	ErrorCode   int    `json:"errorCode"`
}

// Waste code types.
const (
	WasteCodeBaselAnnexIX = "BaselAnnexIX"
	WasteCodeOECD         = "OECD"
	WasteCodeAnnexIIIA    = "AnnexIIIA"
	WasteCodeAnnexIIIB    = "AnnexIIIB"
	WasteCodeLaboratory   = "NotApplicable"
)

// Quantity and date kinds.
const (
	QuantityEstimate = "EstimateData"
	QuantityActual   = "ActualData"
	DateEstimate     = "EstimateDate"
	DateActual       = "ActualDate"
)

// Quantity units.
const (
	UnitTonne      = "Tonne"
	UnitCubicMetre = "Cubic Metre"
	UnitKilogram   = "Kilogram"
)

// Facility kinds.
const (
	FacilityInterimSite = "InterimSite"
	FacilityLaboratory  = "Laboratory"
	FacilityRecovery    = "RecoveryFacility"
)

// PartialSubmission is the validated form of one CSV row, ready to become a
// durable submission.
type PartialSubmission struct {
	RowNumber              int                `json:"rowNumber"`
	Reference              string             `json:"reference"`
	WasteDescription       WasteDescription   `json:"wasteDescription"`
	WasteQuantity          WasteQuantity      `json:"wasteQuantity"`
	ExporterDetail         ExporterDetail     `json:"exporterDetail"`
	ImporterDetail         ImporterDetail     `json:"importerDetail"`
	CollectionDate         CollectionDate     `json:"collectionDate"`
	Carriers               []CarrierDetail    `json:"carriers"`
	CollectionDetail       CollectionDetail   `json:"collectionDetail"`
	UKExitLocation         string             `json:"ukExitLocation,omitempty"`
	TransitCountries       []string           `json:"transitCountries"`
	RecoveryFacilityDetail []RecoveryFacility `json:"recoveryFacilityDetail"`
}

// HasEstimates reports whether the quantity or collection date is estimated.
func (p PartialSubmission) HasEstimates() bool {
	return p.WasteQuantity.Type == QuantityEstimate || p.CollectionDate.Type == DateEstimate
}

// WasteCode is the single classification code of a row.
type WasteCode struct {
	Type string `json:"type"`
	Code string `json:"code,omitempty"`
}

// WasteDescription describes the waste being moved.
type WasteDescription struct {
	WasteCode    WasteCode         `json:"wasteCode"`
	EWCCodes     []string          `json:"ewcCodes"`
	NationalCode string            `json:"nationalCode,omitempty"`
	Description  string            `json:"description"`
	WasteTypes   []WasteTypeDetail `json:"wasteTypes"`
}

// WasteTypeDetail is one declared waste type.
type WasteTypeDetail struct {
	EWCCode                string      `json:"ewcCode"`
	PhysicalForm           string      `json:"physicalForm"`
	HasHazardousProperties bool        `json:"hasHazardousProperties"`
	HazardousWasteCodes    []string    `json:"hazardousWasteCodes,omitempty"`
	ContainsPops           bool        `json:"containsPops"`
	Pops                   []PopDetail `json:"pops,omitempty"`
	PopsConcentrationUnit  string      `json:"popsConcentrationUnit,omitempty"`
}

// PopDetail names one persistent organic pollutant and its concentration.
type PopDetail struct {
	Name          string          `json:"name"`
	Concentration decimal.Decimal `json:"concentration"`
}

// WasteQuantity is the declared quantity in one unit.
type WasteQuantity struct {
	Type  string          `json:"type"`
	Unit  string          `json:"unit"`
	Value decimal.Decimal `json:"value"`
}

// Address is a structured UK address.
type Address struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	TownCity     string `json:"townCity"`
	Postcode     string `json:"postcode,omitempty"`
	Country      string `json:"country"`
}

// Contact holds contact details of an organisation.
type Contact struct {
	OrganisationName string `json:"organisationName,omitempty"`
	FullName         string `json:"fullName"`
	EmailAddress     string `json:"emailAddress"`
	PhoneNumber      string `json:"phoneNumber"`
	FaxNumber        string `json:"faxNumber,omitempty"`
}

// PartyAddress is an organisation with a free-form address.
type PartyAddress struct {
	OrganisationName string `json:"organisationName"`
	Address          string `json:"address"`
	Country          string `json:"country"`
}

// ExporterDetail is the UK producer of the waste.
type ExporterDetail struct {
	ExporterAddress Address `json:"exporterAddress"`
	ExporterContact Contact `json:"exporterContactDetails"`
}

// ImporterDetail is the receiver of the waste.
type ImporterDetail struct {
	ImporterAddressDetails PartyAddress `json:"importerAddressDetails"`
	ImporterContactDetails Contact      `json:"importerContactDetails"`
}

// CollectionDate is the date the waste is collected.
type CollectionDate struct {
	Type string    `json:"type"`
	Date time.Time `json:"date"`
}

// CarrierDetail is one carrier in the journey.
type CarrierDetail struct {
	AddressDetails   PartyAddress     `json:"addressDetails"`
	ContactDetails   Contact          `json:"contactDetails"`
	TransportDetails TransportDetails `json:"transportDetails"`
}

// TransportDetails describes how a carrier moves the waste.
type TransportDetails struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// CollectionDetail is the site the waste is collected from.
type CollectionDetail struct {
	Address        Address `json:"address"`
	ContactDetails Contact `json:"contactDetails"`
}

// RecoveryFacility is an interim site, laboratory or recovery facility.
type RecoveryFacility struct {
	Type           string       `json:"type"`
	AddressDetails PartyAddress `json:"addressDetails"`
	ContactDetails Contact      `json:"contactDetails"`
	Code           string       `json:"code"`
}

// SubmissionDeclaration stamps a created submission.
type SubmissionDeclaration struct {
	DeclarationTimestamp time.Time `json:"declarationTimestamp"`
	TransactionID        string    `json:"transactionId"`
}

// CreatedSubmissionSummary is the durable record of a submitted row.
type CreatedSubmissionSummary struct {
	ID                    string                `json:"id"`
	SubmissionDeclaration SubmissionDeclaration `json:"submissionDeclaration"`
	HasEstimates          bool                  `json:"hasEstimates"`
	CollectionDate        time.Time             `json:"collectionDate"`
	WasteDescription      string                `json:"wasteDescription"`
	Reference             string                `json:"reference"`
}

// SubmissionEntry tracks one row while a batch is Submitting. Exactly one
// of Pending and Created is set.
type SubmissionEntry struct {
	RowNumber int                       `json:"rowNumber"`
	Pending   *PartialSubmission        `json:"pending,omitempty"`
	Created   *CreatedSubmissionSummary `json:"created,omitempty"`
	Attempts  int                       `json:"attempts"`
	LastError string                    `json:"lastError,omitempty"`
}
