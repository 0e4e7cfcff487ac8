package document

import "time"

// Availability states recorded by the name checker.
const (
	StatusUnchecked = "unchecked"
	StatusAvailable = "available"
	StatusTaken     = "taken"
	StatusUnknown   = "unknown"
)

// DomainCheck is one TLD lookup for the candidate name.
type DomainCheck struct {
	TLD    string `json:"tld"`
	Domain string `json:"domain"`
	Status string `json:"status"`
}

// SocialCheck is one platform handle lookup.
type SocialCheck struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
	Status   string `json:"status"`
}

// Trademark records the outcome of a trademark search.
type Trademark struct {
	Searched  bool     `json:"searched"`
	Conflicts []string `json:"conflicts"`
	Notes     string   `json:"notes"`
}

// Linguistic captures the spoken/written checks. Ratings are 0 (unrated)
// through 5.
type Linguistic struct {
	Pronounceable int    `json:"pronounceable"`
	Spellable     int    `json:"spellable"`
	MeaningOK     bool   `json:"meaningOk"`
	Notes         string `json:"notes"`
}

// SavedName is a named snapshot kept in the saved-items collection.
type SavedName struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalizedName"`
	Score          int       `json:"score"`
	Verdict        string    `json:"verdict"`
	SavedAt        time.Time `json:"savedAt"`
}

// NameCheck is the record edited by the name checker journey.
type NameCheck struct {
	Name           string        `json:"name"`
	NormalizedName string        `json:"normalizedName"`
	Industry       string        `json:"industry"`
	Domains        []DomainCheck `json:"domains"`
	Socials        []SocialCheck `json:"socials"`
	Trademark      Trademark     `json:"trademark"`
	Linguistic     Linguistic    `json:"linguistic"`
	Verdict        string        `json:"verdict"`
	Notes          string        `json:"notes"`
	SavedNames     []SavedName   `json:"savedNames"`
	LastUpdated    time.Time     `json:"lastUpdated"`
}

// DefaultNameCheck returns the canonical empty record.
func DefaultNameCheck() NameCheck {
	return NameCheck{
		Domains:    []DomainCheck{},
		Socials:    []SocialCheck{},
		Trademark:  Trademark{Conflicts: []string{}},
		SavedNames: []SavedName{},
	}
}

// NameCheckCodec merges and repairs NameCheck records.
var NameCheckCodec = NewStructCodec(DefaultNameCheck)
