package document

import "time"

// Association is a word the brand should evoke.
type Association struct {
	Word   string `json:"word"`
	Weight int    `json:"weight"`
}

// Archetype captures the brand's primary and supporting archetypes.
type Archetype struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// Voice describes how the brand speaks.
type Voice struct {
	Tone   string   `json:"tone"`
	Traits []string `json:"traits"`
	Avoid  []string `json:"avoid"`
}

// Visual holds the identity choices surfaced by the brand kit.
type Visual struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	AccentColor    string `json:"accentColor"`
	LogoPath       string `json:"logoPath"`
	Typography     string `json:"typography"`
}

// BrandStrategy is the document edited by the brand identity journey.
type BrandStrategy struct {
	BrandName     string        `json:"brandName"`
	Tagline       string        `json:"tagline"`
	Associations  []Association `json:"associations"`
	Catalyst      string        `json:"catalyst"`
	CoreTruth     string        `json:"coreTruth"`
	Purpose       string        `json:"purpose"`
	Vision        string        `json:"vision"`
	Mission       string        `json:"mission"`
	IdealCustomer string        `json:"idealCustomer"`
	PainPoints    []string      `json:"painPoints"`
	Archetype     Archetype     `json:"archetype"`
	Emotions      []string      `json:"emotions"`
	Voice         Voice         `json:"voice"`
	Values        []string      `json:"values"`
	Visual        Visual        `json:"visual"`
	BrandDNA      string        `json:"brandDNA"`
	LastUpdated   time.Time     `json:"lastUpdated"`
}

// DefaultBrandStrategy returns the canonical empty brand document.
func DefaultBrandStrategy() BrandStrategy {
	return BrandStrategy{
		Associations: []Association{},
		PainPoints:   []string{},
		Emotions:     []string{},
		Voice: Voice{
			Traits: []string{},
			Avoid:  []string{},
		},
		Values: []string{},
	}
}

// BrandCodec merges and repairs BrandStrategy documents.
var BrandCodec = NewStructCodec(DefaultBrandStrategy)
