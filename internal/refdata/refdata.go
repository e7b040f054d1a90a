// Package refdata exposes the read-only lookup tables used by the bulk row
// validator: countries, waste code lists, recovery and disposal codes.
//
// The tables ship embedded in the binary as YAML.
package refdata

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed refdata.yaml
var embedded []byte

// Tables holds every lookup list.
type Tables struct {
	UKNations              []string `yaml:"ukNations"`
	Countries              []string `yaml:"countries"`
	BaselAnnexIXCodes      []string `yaml:"baselAnnexIXCodes"`
	OECDCodes              []string `yaml:"oecdCodes"`
	AnnexIIIACodes         []string `yaml:"annexIIIACodes"`
	AnnexIIIBCodes         []string `yaml:"annexIIIBCodes"`
	EWCChapters            []string `yaml:"ewcChapters"`
	RecoveryCodes          []string `yaml:"recoveryCodes"`
	InterimRecoveryCodes   []string `yaml:"interimRecoveryCodes"`
	DisposalCodes          []string `yaml:"disposalCodes"`
	HazardousPropertyCodes []string `yaml:"hazardousPropertyCodes"`
	PhysicalForms          []string `yaml:"physicalForms"`
	MeansOfTransport       []string `yaml:"meansOfTransport"`
	PopsConcentrationUnits []string `yaml:"popsConcentrationUnits"`
}

// Lookup is a case-insensitive set that returns the canonical spelling.
type Lookup map[string]string

// NewLookup indexes values by their upper-cased form.
func NewLookup(values []string) Lookup {
	l := make(Lookup, len(values))
	for _, v := range values {
		l[strings.ToUpper(strings.TrimSpace(v))] = v
	}
	return l
}

// Find returns the canonical value for v.
func (l Lookup) Find(v string) (string, bool) {
	canonical, ok := l[strings.ToUpper(strings.TrimSpace(v))]
	return canonical, ok
}

// Has reports whether v is in the set.
func (l Lookup) Has(v string) bool {
	_, ok := l.Find(v)
	return ok
}

// Index is the parsed, indexed form of Tables.
type Index struct {
	UKNations              Lookup
	Countries              Lookup
	BaselAnnexIX           Lookup
	OECD                   Lookup
	AnnexIIIA              Lookup
	AnnexIIIB              Lookup
	EWCChapters            Lookup
	RecoveryCodes          Lookup
	InterimRecoveryCodes   Lookup
	DisposalCodes          Lookup
	HazardousProperties    Lookup
	PhysicalForms          Lookup
	MeansOfTransport       Lookup
	PopsConcentrationUnits Lookup
}

// Parse decodes YAML tables and indexes them.
func Parse(data []byte) (*Index, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode reference data: %w", err)
	}
	if len(t.Countries) == 0 || len(t.UKNations) == 0 {
		return nil, fmt.Errorf("reference data is missing country tables")
	}
	return &Index{
		UKNations:              NewLookup(t.UKNations),
		Countries:              NewLookup(t.Countries),
		BaselAnnexIX:           NewLookup(t.BaselAnnexIXCodes),
		OECD:                   NewLookup(t.OECDCodes),
		AnnexIIIA:              NewLookup(t.AnnexIIIACodes),
		AnnexIIIB:              NewLookup(t.AnnexIIIBCodes),
		EWCChapters:            NewLookup(t.EWCChapters),
		RecoveryCodes:          NewLookup(t.RecoveryCodes),
		InterimRecoveryCodes:   NewLookup(t.InterimRecoveryCodes),
		DisposalCodes:          NewLookup(t.DisposalCodes),
		HazardousProperties:    NewLookup(t.HazardousPropertyCodes),
		PhysicalForms:          NewLookup(t.PhysicalForms),
		MeansOfTransport:       NewLookup(t.MeansOfTransport),
		PopsConcentrationUnits: NewLookup(t.PopsConcentrationUnits),
	}, nil
}

var (
	defaultOnce  sync.Once
	defaultIndex *Index
	defaultErr   error
)

// Default returns the embedded tables. It panics if the embedded YAML is
// invalid, which is a build defect.
func Default() *Index {
	defaultOnce.Do(func() {
		defaultIndex, defaultErr = Parse(embedded)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("embedded reference data: %v", defaultErr))
	}
	return defaultIndex
}
