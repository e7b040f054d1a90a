package testutil

import (
	"bytes"
	"time"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/bulkcsv"
)

// FixedNow is the clock used by validation fixtures.
var FixedNow = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

// Clock returns FixedNow.
func Clock() time.Time { return FixedNow }

// CollectionDate is a collection date one week after FixedNow.
const CollectionDate = "09/03/2026"

// ValidRow returns a row that passes every rule under Clock.
func ValidRow() bulkcsv.Row {
	r := bulkcsv.Row{
		Reference:                      "ref-001",
		BaselAnnexIXCode:               "B1010",
		WasteDescription:               "Mixed metal scrap",
		WasteQuantityTonnes:            "12.5",
		EstimatedOrActualWasteQuantity: "Actual",

		Exporter: bulkcsv.UKSite{
			OrganisationName:   "Acme Metals Ltd",
			AddressLine1:       "1 High Street",
			TownOrCity:         "London",
			Postcode:           "SW1A 1AA",
			Country:            "England",
			ContactFullName:    "Jane Smith",
			ContactPhoneNumber: "01234567890",
			EmailAddress:       "jane@acme.example.com",
		},
		Importer: bulkcsv.Party{
			OrganisationName:   "Recycling GmbH",
			Address:            "1 Hafenstrasse, Hamburg",
			Country:            "Germany",
			ContactFullName:    "Hans Muller",
			ContactPhoneNumber: "+49 40 123456",
			EmailAddress:       "hans@recycling.example.de",
		},

		WasteCollectionDate:             CollectionDate,
		EstimatedOrActualCollectionDate: "Actual",

		WasteCollection: bulkcsv.UKSite{
			OrganisationName:   "Acme Metals Yard",
			AddressLine1:       "Unit 4, Canal Road",
			TownOrCity:         "Birmingham",
			Postcode:           "B1 1AA",
			Country:            "England",
			ContactFullName:    "Tom Brown",
			ContactPhoneNumber: "0121 496 0000",
			EmailAddress:       "yard@acme.example.com",
		},

		WhereWasteLeavesUK: "Dover",
		TransitCountries:   "France",
	}
	r.WasteTypes[0] = bulkcsv.WasteType{
		EWCCode:                "170405",
		PhysicalForm:           "Solid",
		HasHazardousProperties: "No",
		ContainsPops:           "No",
	}
	r.Carriers[0] = bulkcsv.Carrier{
		Party: bulkcsv.Party{
			OrganisationName:   "Fast Freight Ltd",
			Address:            "2 Dock Road, Dover",
			Country:            "England",
			ContactFullName:    "Sam Carter",
			ContactPhoneNumber: "01304 123456",
			EmailAddress:       "sam@freight.example.com",
		},
		MeansOfTransport: "Road",
	}
	r.RecoveryFacilities[0] = bulkcsv.Facility{
		Party: bulkcsv.Party{
			OrganisationName:   "Hamburg Recovery",
			Address:            "5 Industriestrasse, Hamburg",
			Country:            "Germany",
			ContactFullName:    "Greta Schmidt",
			ContactPhoneNumber: "+49 40 654321",
			EmailAddress:       "greta@recovery.example.de",
		},
		Code: "R4",
	}
	return r
}

// CSV serializes rows with the template header.
func CSV(rows ...bulkcsv.Row) []byte {
	var buf bytes.Buffer
	if err := bulkcsv.Write(&buf, rows); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// ValidRowAt returns ValidRow with the collection date moved to one week
// after now, for code paths that validate against the wall clock.
func ValidRowAt(now time.Time) bulkcsv.Row {
	r := ValidRow()
	r.WasteCollectionDate = now.AddDate(0, 0, 7).Format("02/01/2006")
	return r
}
