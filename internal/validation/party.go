package validation

import (
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/bulkcsv"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/refdata"
)

type countryRule int

const (
	countryUK countryRule = iota
	countryAbroad
	countryAny
)

// block names one address and contact block of the row: its column prefix,
// the label used in messages and the first code of its range.
type block struct {
	prefix  string
	label   string
	base    int
	country countryRule
}

func (b block) col(field string) string { return b.prefix + field }

func (v *Validator) checkCountry(c *checker, b block, value string) string {
	col := b.col(bulkcsv.FieldCountry)
	if !c.required(col, value, b.base+offCountryEmpty, "Enter the %s country", b.label) {
		return ""
	}

	var lookup refdata.Lookup
	switch b.country {
	case countryUK:
		lookup = v.ref.UKNations
	case countryAbroad:
		lookup = v.ref.Countries
	default:
		if canonical, ok := v.ref.UKNations.Find(value); ok {
			return canonical
		}
		lookup = v.ref.Countries
	}

	canonical, ok := lookup.Find(value)
	if !ok {
		if b.country == countryUK {
			c.fail(col, b.base+offCountryInvalid, "The %s country must be England, Wales, Scotland or Northern Ireland", b.label)
		} else {
			c.fail(col, b.base+offCountryInvalid, "Enter the %s country from the list of countries", b.label)
		}
		return value
	}
	return canonical
}

func (v *Validator) checkContact(c *checker, b block, name, phone, fax, email string) domain.Contact {
	name, phone, fax, email = clean(name), clean(phone), clean(fax), clean(email)

	col := b.col(bulkcsv.FieldContactFullName)
	if c.required(col, name, b.base+offContactEmpty, "Enter the %s contact full name", b.label) {
		c.maxLen(col, name, MaxNameLength, b.base+offContactTooLong,
			"The %s contact full name must be %d characters or less", b.label, MaxNameLength)
	}

	col = b.col(bulkcsv.FieldContactPhoneNumber)
	if c.required(col, phone, b.base+offPhoneEmpty, "Enter the %s contact phone number", b.label) && !phoneRe.MatchString(phone) {
		c.fail(col, b.base+offPhoneInvalid, "Enter the %s contact phone number in the correct format", b.label)
	}

	if fax != "" && !phoneRe.MatchString(fax) {
		c.fail(b.col(bulkcsv.FieldFaxNumber), b.base+offFaxInvalid, "Enter the %s fax number in the correct format", b.label)
	}

	col = b.col(bulkcsv.FieldEmailAddress)
	if c.required(col, email, b.base+offEmailEmpty, "Enter the %s email address", b.label) {
		if c.maxLen(col, email, MaxEmailLength, b.base+offEmailTooLong,
			"The %s email address must be %d characters or less", b.label, MaxEmailLength) && !emailRe.MatchString(email) {
			c.fail(col, b.base+offEmailInvalid, "Enter the %s email address in the correct format", b.label)
		}
	}

	return domain.Contact{FullName: name, PhoneNumber: phone, FaxNumber: fax, EmailAddress: email}
}

func (v *Validator) checkOrganisation(c *checker, b block, org string) string {
	org = clean(org)
	col := b.col(bulkcsv.FieldOrganisationName)
	if c.required(col, org, b.base+offOrgEmpty, "Enter the %s organisation name", b.label) {
		c.maxLen(col, org, MaxNameLength, b.base+offOrgTooLong,
			"The %s organisation name must be %d characters or less", b.label, MaxNameLength)
	}
	return org
}

// checkUKSite validates an exporter or waste collection block.
func (v *Validator) checkUKSite(c *checker, b block, s bulkcsv.UKSite) (domain.Address, domain.Contact) {
	org := v.checkOrganisation(c, b, s.OrganisationName)

	line1, line2, town, postcode := clean(s.AddressLine1), clean(s.AddressLine2), clean(s.TownOrCity), clean(s.Postcode)

	col := b.col(bulkcsv.FieldAddressLine1)
	if c.required(col, line1, b.base+offAddressEmpty, "Enter the %s address line 1", b.label) {
		c.maxLen(col, line1, MaxAddressLength, b.base+offAddressTooLong,
			"The %s address line 1 must be %d characters or less", b.label, MaxAddressLength)
	}
	c.maxLen(b.col(bulkcsv.FieldAddressLine2), line2, MaxAddressLength, b.base+offAddressLine2Long,
		"The %s address line 2 must be %d characters or less", b.label, MaxAddressLength)

	col = b.col(bulkcsv.FieldTownOrCity)
	if c.required(col, town, b.base+offTownEmpty, "Enter the %s town or city", b.label) {
		c.maxLen(col, town, MaxAddressLength, b.base+offTownTooLong,
			"The %s town or city must be %d characters or less", b.label, MaxAddressLength)
	}

	if postcode != "" && !ukPostcodeRe.MatchString(postcode) {
		c.fail(b.col(bulkcsv.FieldPostcode), b.base+offPostcodeInvalid, "Enter the %s postcode in the correct format", b.label)
	}

	country := v.checkCountry(c, b, clean(s.Country))
	contact := v.checkContact(c, b, s.ContactFullName, s.ContactPhoneNumber, s.FaxNumber, s.EmailAddress)
	contact.OrganisationName = org

	return domain.Address{
		AddressLine1: line1,
		AddressLine2: line2,
		TownCity:     town,
		Postcode:     postcode,
		Country:      country,
	}, contact
}

// checkParty validates an importer, carrier or facility block.
func (v *Validator) checkParty(c *checker, b block, p bulkcsv.Party) (domain.PartyAddress, domain.Contact) {
	org := v.checkOrganisation(c, b, p.OrganisationName)

	address := clean(p.Address)
	col := b.col(bulkcsv.FieldAddress)
	if c.required(col, address, b.base+offAddressEmpty, "Enter the %s address", b.label) {
		c.maxLen(col, address, MaxAddressLength, b.base+offAddressTooLong,
			"The %s address must be %d characters or less", b.label, MaxAddressLength)
	}

	country := v.checkCountry(c, b, clean(p.Country))
	contact := v.checkContact(c, b, p.ContactFullName, p.ContactPhoneNumber, p.FaxNumber, p.EmailAddress)

	return domain.PartyAddress{OrganisationName: org, Address: address, Country: country}, contact
}

// checkFacility validates a facility block and its recovery or disposal code.
func (v *Validator) checkFacility(c *checker, b block, codeField string, codes refdata.Lookup, f bulkcsv.Facility) domain.RecoveryFacility {
	addr, contact := v.checkParty(c, b, f.Party)

	code := clean(f.Code)
	col := b.col(codeField)
	kind := "recovery"
	if codeField == bulkcsv.FieldDisposalCode {
		kind = "disposal"
	}
	if c.required(col, code, b.base+offFacilityCodeEmpty, "Enter the %s %s code", b.label, kind) {
		if canonical, ok := codes.Find(normalizeCode(code)); ok {
			code = canonical
		} else {
			c.fail(col, b.base+offFacilityCodeBad, "Enter a valid %s code for the %s", kind, b.label)
		}
	}

	return domain.RecoveryFacility{AddressDetails: addr, ContactDetails: contact, Code: code}
}
