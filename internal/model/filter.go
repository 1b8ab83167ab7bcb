package model

// Property names a CoreTransaction field a matcher can test.
type Property string

const (
	PropertyAccountID Property = "accountId"
	PropertyAmount    Property = "amount"
	PropertyDatetime  Property = "datetime"
	PropertyID        Property = "id"
	PropertyMerchant  Property = "merchant"
	PropertyName      Property = "name"
)

// Properties lists every matchable field.
var Properties = []Property{
	PropertyAccountID,
	PropertyAmount,
	PropertyDatetime,
	PropertyID,
	PropertyMerchant,
	PropertyName,
}

// Comparator is the test a matcher applies.
type Comparator string

const (
	ComparatorEquals      Comparator = "equals"
	ComparatorGreaterThan Comparator = "greater-than"
	ComparatorLessThan    Comparator = "less-than"

	// comparatorEqualsTitle is how exported filter lists spell equals.
	comparatorEqualsTitle Comparator = "Equals"
)

// Normalize maps alternate spellings onto the canonical comparator.
func (c Comparator) Normalize() Comparator {
	if c == comparatorEqualsTitle {
		return ComparatorEquals
	}
	return c
}

// UnmarshalText decodes c, accepting "Equals" for equals.
func (c *Comparator) UnmarshalText(text []byte) error {
	*c = Comparator(text).Normalize()
	return nil
}

// Matcher is a single field test. An empty Comparator means equals.
type Matcher struct {
	Property      Property   `yaml:"property" json:"property"`
	Comparator    Comparator `yaml:"comparator,omitempty" json:"comparator,omitempty"`
	ExpectedValue string     `yaml:"expected_value" json:"expectedValue"`
}

// Filter assigns labels to every transaction all of its matchers accept.
type Filter struct {
	ID          string      `yaml:"id" json:"id"`
	Matchers    []Matcher   `yaml:"matchers" json:"matchers"`
	Category    Category    `yaml:"category" json:"categoryToAssign"`
	Tag         string      `yaml:"tag,omitempty" json:"tagToAssign,omitempty"`
	Variability Variability `yaml:"variability,omitempty" json:"variabilityToAssign,omitempty"`
}
