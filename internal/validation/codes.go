package validation

// Error codes are stable numeric identities of a failure, independent of
// message text. Codes of the repeated waste type block are namespaced by
// occurrence: WasteTypeCode(2, EmptyEWCCode) == 2000+EmptyEWCCode. The other
// sections use flat ranges.

// Section range starts.
const (
	SectionGeneral         = 10000
	SectionProducer        = 11000
	SectionReceiver        = 12000
	SectionCarrier         = 13000
	SectionCollection      = 14000
	SectionRecovery        = 15000
	sectionWidth           = 1000
	collectionDateBase     = SectionCollection + 100
	journeyBase            = SectionCollection + 200
	interimSiteBase        = SectionRecovery
	laboratoryBase         = SectionRecovery + 100
	recoveryFacilityBase   = SectionRecovery + 200
	recoveryCrossFieldBase = SectionRecovery + 300
	carrierTransportBase   = SectionCarrier + 50
	carrierOrderCode       = SectionCarrier + 60
)

// General row fields.
const (
	ReferenceEmpty    = SectionGeneral + 1
	ReferenceTooLong  = SectionGeneral + 2
	ReferenceInvalid  = SectionGeneral + 3
	WasteCodeMissing  = SectionGeneral + 10
	WasteCodeTooMany  = SectionGeneral + 11
	BaselCodeInvalid  = SectionGeneral + 12
	OECDCodeInvalid   = SectionGeneral + 13
	AnnexIIIAInvalid  = SectionGeneral + 14
	AnnexIIIBInvalid  = SectionGeneral + 15
	LaboratoryInvalid = SectionGeneral + 16

	NationalCodeTooLong = SectionGeneral + 20
	NationalCodeInvalid = SectionGeneral + 21

	DescriptionEmpty   = SectionGeneral + 30
	DescriptionTooLong = SectionGeneral + 31

	QuantityMissing         = SectionGeneral + 40
	QuantityTooMany         = SectionGeneral + 41
	QuantityInvalid         = SectionGeneral + 42
	QuantityLaboratoryUnit  = SectionGeneral + 43
	QuantityLaboratoryLimit = SectionGeneral + 44
	QuantityKilogramsNotLab = SectionGeneral + 45
	QuantityEstimateEmpty   = SectionGeneral + 46
	QuantityEstimateInvalid = SectionGeneral + 47
)

// Waste type base codes. Use WasteTypeCode to namespace them.
const (
	EmptyEWCCode                = 1
	InvalidEWCCode              = 2
	EmptyPhysicalForm           = 3
	InvalidPhysicalForm         = 4
	EmptyHasHazardous           = 5
	InvalidHasHazardous         = 6
	EmptyHazardousCodes         = 7
	InvalidHazardousCode        = 8
	HazardousCodesNotAllowed    = 9
	EmptyContainsPops           = 10
	InvalidContainsPops         = 11
	EmptyPopsDetails            = 12
	PopsDetailsTooLong          = 13
	PopsDetailsNotAllowed       = 14
	EmptyPopsConcentration      = 15
	InvalidPopsConcentration    = 16
	PopsConcentrationMismatch   = 17
	PopsConcentrationNotAllowed = 18
	EmptyPopsUnit               = 19
	InvalidPopsUnit             = 20
	PopsUnitNotAllowed          = 21
	WasteTypeOutOfOrder         = 22
)

// WasteTypeCode namespaces a waste type base code by its 1-based occurrence.
func WasteTypeCode(index, base int) int {
	return index*sectionWidth + base
}

// Offsets of the address and contact rules shared by every party block.
const (
	offOrgEmpty          = 1
	offOrgTooLong        = 2
	offAddressEmpty      = 3
	offAddressTooLong    = 4
	offAddressLine2Long  = 5
	offTownEmpty         = 6
	offTownTooLong       = 7
	offPostcodeInvalid   = 8
	offCountryEmpty      = 9
	offCountryInvalid    = 10
	offContactEmpty      = 11
	offContactTooLong    = 12
	offPhoneEmpty        = 13
	offPhoneInvalid      = 14
	offFaxInvalid        = 15
	offEmailEmpty        = 16
	offEmailInvalid      = 17
	offEmailTooLong      = 18
	offFacilityCodeEmpty = 20
	offFacilityCodeBad   = 21
)

// Producer (exporter) codes.
const (
	ProducerOrganisationNameEmpty = SectionProducer + offOrgEmpty
	ProducerOrganisationTooLong   = SectionProducer + offOrgTooLong
	ProducerAddressEmpty          = SectionProducer + offAddressEmpty
	ProducerPostcodeInvalid       = SectionProducer + offPostcodeInvalid
	ProducerCountryInvalid        = SectionProducer + offCountryInvalid
	ProducerPhoneInvalid          = SectionProducer + offPhoneInvalid
	ProducerEmailInvalid          = SectionProducer + offEmailInvalid
)

// Receiver (importer) codes.
const (
	ReceiverOrganisationNameEmpty = SectionReceiver + offOrgEmpty
	ReceiverCountryInvalid        = SectionReceiver + offCountryInvalid
)

// Carrier codes.
const (
	CarrierOrganisationNameEmpty = SectionCarrier + offOrgEmpty
	CarrierTransportEmpty        = carrierTransportBase
	CarrierTransportInvalid      = carrierTransportBase + 1
	CarrierTransportDetailsLong  = carrierTransportBase + 2
	CarrierOutOfOrder            = carrierOrderCode
)

// Collection codes: collection site, date and journey.
const (
	CollectionOrganisationNameEmpty = SectionCollection + offOrgEmpty
	CollectionDateEmpty             = collectionDateBase + 1
	CollectionDateInvalid           = collectionDateBase + 2
	CollectionDateInPast            = collectionDateBase + 3
	CollectionEstimateEmpty         = collectionDateBase + 4
	CollectionEstimateInvalid       = collectionDateBase + 5
	ExitLocationEmpty               = journeyBase + 1
	ExitLocationTooLong             = journeyBase + 2
	TransitCountryInvalid           = journeyBase + 3
	TransitCountryDuplicate         = journeyBase + 4
)

// Recovery codes: interim site, laboratory and recovery facilities.
const (
	InterimSiteOrganisationNameEmpty = interimSiteBase + offOrgEmpty
	InterimRecoveryCodeEmpty         = interimSiteBase + offFacilityCodeEmpty
	InterimRecoveryCodeInvalid       = interimSiteBase + offFacilityCodeBad
	LaboratoryOrganisationNameEmpty  = laboratoryBase + offOrgEmpty
	LaboratoryDisposalCodeEmpty      = laboratoryBase + offFacilityCodeEmpty
	LaboratoryDisposalCodeInvalid    = laboratoryBase + offFacilityCodeBad
	RecoveryOrganisationNameEmpty    = recoveryFacilityBase + offOrgEmpty
	RecoveryCodeEmpty                = recoveryFacilityBase + offFacilityCodeEmpty
	RecoveryCodeInvalid              = recoveryFacilityBase + offFacilityCodeBad
	RecoveryNotAllowedForLaboratory  = recoveryCrossFieldBase + 1
	LaboratoryNotAllowed             = recoveryCrossFieldBase + 2
	RecoveryFacilityRequired         = recoveryCrossFieldBase + 3
	RecoveryFacilityOutOfOrder       = recoveryCrossFieldBase + 4
)

// Section names a code's range, for metrics and reports.
func Section(code int) string {
	switch {
	case code < SectionGeneral:
		return "wasteType"
	case code < SectionProducer:
		return "general"
	case code < SectionReceiver:
		return "producer"
	case code < SectionCarrier:
		return "receiver"
	case code < SectionCollection:
		return "carrier"
	case code < SectionRecovery:
		return "collection"
	default:
		return "recovery"
	}
}
