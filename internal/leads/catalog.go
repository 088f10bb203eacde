package leads

import "slices"

// Placeholder options shown in the state and insurance-type selects. The
// warning variants replace the plain ones once a submission has failed
// validation. None of them is ever a valid choice.
const (
	StatePlaceholder            = "Select your state..."
	StateWarningPlaceholder     = "⚠️ Please select your state"
	InsuranceTypePlaceholder    = "Select insurance type..."
	InsuranceTypeWarningOption  = "⚠️ Please select an insurance type"
	defaultInsuranceIcon        = "🛡️"
	defaultInsuranceDescription = ""
)

// InsuranceType is one coverage category offered by the agency.
type InsuranceType struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// Catalog is the closed set of licensed states and coverage categories a
// lead may choose from.
type Catalog struct {
	States         []string
	InsuranceTypes []InsuranceType
}

var defaultStates = []string{
	"Massachusetts", "New Hampshire", "Connecticut", "Rhode Island",
	"Maine", "Vermont", "New York", "New Jersey", "Pennsylvania",
	"Florida", "California", "Texas", "Illinois", "Ohio",
}

var defaultInsuranceTypes = []InsuranceType{
	{Name: "Medicare", Icon: "🏥", Description: "Medicare Advantage, Supplement & Prescription Plans"},
	{Name: "Health Insurance", Icon: "💊", Description: "Federal & State Marketplace Plans"},
	{Name: "Life Insurance", Icon: "🛡️", Description: "Term, Permanent & Hybrid Long-Term Care"},
	{Name: "Annuities", Icon: "💰", Description: "Income Strategies with Living Benefits"},
	{Name: "Home, Auto & Business", Icon: "🏠", Description: "Complete Property & Casualty Coverage"},
	{Name: "Long-Term Care", Icon: "🤝", Description: "Traditional & Hybrid LTC Solutions"},
	{Name: "Travel Medical", Icon: "✈️", Description: "International Coverage & Pre-existing Conditions"},
	{Name: "Disability", Icon: "⚕️", Description: "Industry-Specific Income Protection"},
}

// DefaultCatalog returns the agency's licensed states and product lines.
func DefaultCatalog() Catalog {
	return Catalog{
		States:         slices.Clone(defaultStates),
		InsuranceTypes: slices.Clone(defaultInsuranceTypes),
	}
}

// NewCatalog builds a catalog from configured names. Empty inputs keep the
// defaults. Known insurance types keep their icon and description.
func NewCatalog(states, insuranceTypes []string) Catalog {
	c := DefaultCatalog()
	if len(states) > 0 {
		c.States = slices.Clone(states)
	}
	if len(insuranceTypes) > 0 {
		known := make(map[string]InsuranceType, len(defaultInsuranceTypes))
		for _, it := range defaultInsuranceTypes {
			known[it.Name] = it
		}
		c.InsuranceTypes = make([]InsuranceType, 0, len(insuranceTypes))
		for _, name := range insuranceTypes {
			it, ok := known[name]
			if !ok {
				it = InsuranceType{Name: name, Icon: defaultInsuranceIcon, Description: defaultInsuranceDescription}
			}
			c.InsuranceTypes = append(c.InsuranceTypes, it)
		}
	}
	return c
}

// InsuranceTypeNames lists the coverage categories in display order.
func (c Catalog) InsuranceTypeNames() []string {
	names := make([]string, 0, len(c.InsuranceTypes))
	for _, it := range c.InsuranceTypes {
		names = append(names, it.Name)
	}
	return names
}

// ValidState reports whether s is a licensed state. Placeholders never are.
func (c Catalog) ValidState(s string) bool {
	if isSentinel(s) {
		return false
	}
	return slices.Contains(c.States, s)
}

// ValidInsuranceType reports whether s is an offered coverage category.
func (c Catalog) ValidInsuranceType(s string) bool {
	if isSentinel(s) {
		return false
	}
	return slices.Contains(c.InsuranceTypeNames(), s)
}

// StateOptions returns the select options, placeholder first.
func (c Catalog) StateOptions(showErrors bool) []string {
	first := StatePlaceholder
	if showErrors {
		first = StateWarningPlaceholder
	}
	return append([]string{first}, c.States...)
}

// InsuranceTypeOptions returns the select options, placeholder first.
func (c Catalog) InsuranceTypeOptions(showErrors bool) []string {
	first := InsuranceTypePlaceholder
	if showErrors {
		first = InsuranceTypeWarningOption
	}
	return append([]string{first}, c.InsuranceTypeNames()...)
}

func isSentinel(s string) bool {
	switch s {
	case "", StatePlaceholder, StateWarningPlaceholder, InsuranceTypePlaceholder, InsuranceTypeWarningOption:
		return true
	}
	return false
}
