package namecheck

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/export"
	"github.com/kingrea/waypoint/internal/journey"
)

const (
	// Key identifies the journey in the catalog.
	Key = "namecheck"
	// StorageKey names the persisted slot.
	StorageKey = "name-check"
)

// TLDs and Platforms seed the rows of a new search.
var (
	TLDs      = []string{".com", ".co", ".io", ".net", ".app"}
	Platforms = []string{"instagram", "x", "tiktok", "linkedin", "youtube"}
)

var statuses = []string{document.StatusUnchecked, document.StatusAvailable, document.StatusTaken, document.StatusUnknown}

type record = document.NameCheck

// Definition returns the name checker journey.
func Definition() journey.Definition[record] {
	return journey.Definition[record]{
		Info: journey.Info{
			Key:         Key,
			Name:        "Name Checker",
			Description: "Check a candidate name across domains, socials, trademarks and language.",
			StorageKey:  StorageKey,
		},
		Registry: journey.MustRegistry(stations()...),
		Codec:    document.NameCheckCodec,
		Render:   Render,
	}
}

func stations() []journey.Step[record] {
	return []journey.Step[record]{
		{
			ID: 1, Slug: "idea", Name: "Name",
			Complete: func(r record) bool { return journey.NonEmpty(r.Name) },
			Meta: journey.Form{
				Prompt: "Use the search action to seed domain and social rows.",
				Fields: []journey.FormField{
					{Path: "name", Label: "Candidate name", Kind: journey.InputText},
					{Path: "industry", Label: "Industry", Kind: journey.InputText},
				},
			},
		},
		{
			ID: 2, Slug: "domains", Name: "Domains",
			Complete: func(r record) bool { return checkedDomains(r) > 0 },
			Progress: func(r record) float64 {
				if len(r.Domains) == 0 {
					return 0
				}
				return 100 * float64(checkedDomains(r)) / float64(len(r.Domains))
			},
			Meta: journey.Form{
				Fields: []journey.FormField{{
					Path: "domains", Label: "Domains", Kind: journey.InputEntries,
					Hint: "tld | domain | status; ...",
					Columns: []journey.Column{
						{Key: "tld"}, {Key: "domain"}, {Key: "status", Kind: journey.InputChoice, Choices: statuses},
					},
				}},
			},
		},
		{
			ID: 3, Slug: "socials", Name: "Socials",
			Complete: func(r record) bool { return checkedSocials(r) > 0 },
			Progress: func(r record) float64 {
				if len(r.Socials) == 0 {
					return 0
				}
				return 100 * float64(checkedSocials(r)) / float64(len(r.Socials))
			},
			Meta: journey.Form{
				Fields: []journey.FormField{{
					Path: "socials", Label: "Social handles", Kind: journey.InputEntries,
					Hint: "platform | handle | status; ...",
					Columns: []journey.Column{
						{Key: "platform"}, {Key: "handle"}, {Key: "status", Kind: journey.InputChoice, Choices: statuses},
					},
				}},
			},
		},
		{
			ID: 4, Slug: "trademark", Name: "Trademark",
			Complete: func(r record) bool { return r.Trademark.Searched },
			Meta: journey.Form{
				Fields: []journey.FormField{
					{Path: "trademark.searched", Label: "Searched", Kind: journey.InputBool},
					{Path: "trademark.conflicts", Label: "Conflicts", Kind: journey.InputList},
					{Path: "trademark.notes", Label: "Notes", Kind: journey.InputText},
				},
			},
		},
		{
			ID: 5, Slug: "linguistic", Name: "Linguistic",
			Complete: func(r record) bool { return r.Linguistic.Pronounceable > 0 || r.Linguistic.Spellable > 0 },
			Meta: journey.Form{
				Fields: []journey.FormField{
					{Path: "linguistic.pronounceable", Label: "Pronounceable (1-5)", Kind: journey.InputNumber},
					{Path: "linguistic.spellable", Label: "Spellable (1-5)", Kind: journey.InputNumber},
					{Path: "linguistic.meaningOk", Label: "Meaning checked in other languages", Kind: journey.InputBool},
					{Path: "linguistic.notes", Label: "Notes", Kind: journey.InputText},
				},
			},
		},
		{
			ID: 6, Slug: "verdict", Name: "Verdict",
			MinPrior: 3,
			Complete: func(r record) bool { return journey.NonEmpty(r.Verdict) },
			Progress: func(r record) float64 {
				if journey.NonEmpty(r.Verdict) {
					return 50
				}
				return 0
			},
			Meta: journey.Form{
				Prompt: "Decide once at least three checks are done.",
				Fields: []journey.FormField{
					{Path: "verdict", Label: "Verdict", Kind: journey.InputChoice, Choices: []string{"keep", "maybe", "drop"}},
					{Path: "notes", Label: "Notes", Kind: journey.InputText},
				},
			},
		},
	}
}

func isChecked(status string) bool {
	status = strings.TrimSpace(status)
	return status != "" && status != document.StatusUnchecked
}

func checkedDomains(r record) int {
	n := 0
	for _, d := range r.Domains {
		if isChecked(d.Status) {
			n++
		}
	}
	return n
}

func checkedSocials(r record) int {
	n := 0
	for _, s := range r.Socials {
		if isChecked(s.Status) {
			n++
		}
	}
	return n
}

// Normalize folds a candidate name into its lookup form: NFKC, lower case,
// spaces and underscores become hyphens and anything outside [a-z0-9-] is
// dropped.
func Normalize(name string) string {
	folded := strings.ToLower(norm.NFKC.String(strings.TrimSpace(name)))
	var b strings.Builder
	lastHyphen := true
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == '-' || r == ' ' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Score rates a record from 0 to 100: available domains weigh 40, available
// handles 30, a clean trademark search 15 and the linguistic ratings 15.
func Score(r record) int {
	share := func(available, total int) float64 {
		if total == 0 {
			return 0
		}
		return float64(available) / float64(total)
	}
	domains, socials := 0, 0
	for _, d := range r.Domains {
		if d.Status == document.StatusAvailable {
			domains++
		}
	}
	for _, s := range r.Socials {
		if s.Status == document.StatusAvailable {
			socials++
		}
	}
	score := 40*share(domains, len(r.Domains)) + 30*share(socials, len(r.Socials))
	if r.Trademark.Searched && len(r.Trademark.Conflicts) == 0 {
		score += 15
	}
	score += 15 * float64(clampRating(r.Linguistic.Pronounceable)+clampRating(r.Linguistic.Spellable)) / 10
	return int(score + 0.5)
}

func clampRating(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 5:
		return 5
	default:
		return v
	}
}

// Render builds the export snapshot of a name check.
func Render(r record) export.Document {
	title := "Name Check"
	if journey.NonEmpty(r.Name) {
		title = "Name Check: " + r.Name
	}
	out := export.Document{Title: title, Subtitle: r.Industry}
	section := func(heading string, lines []string) {
		out.Sections = append(out.Sections, export.Section{Heading: heading, Lines: lines})
	}

	var domains []string
	for _, d := range r.Domains {
		if isChecked(d.Status) {
			domains = append(domains, d.Domain+": "+d.Status)
		}
	}
	section("Domains", domains)

	var socials []string
	for _, s := range r.Socials {
		if isChecked(s.Status) {
			socials = append(socials, s.Platform+" "+s.Handle+": "+s.Status)
		}
	}
	section("Socials", socials)

	var trademark []string
	if r.Trademark.Searched {
		trademark = append(trademark, "Searched")
		for _, c := range r.Trademark.Conflicts {
			trademark = append(trademark, "Conflict: "+c)
		}
		if journey.NonEmpty(r.Trademark.Notes) {
			trademark = append(trademark, r.Trademark.Notes)
		}
	}
	section("Trademark", trademark)

	var linguistic []string
	if r.Linguistic.Pronounceable > 0 {
		linguistic = append(linguistic, "Pronounceable: "+stars(r.Linguistic.Pronounceable))
	}
	if r.Linguistic.Spellable > 0 {
		linguistic = append(linguistic, "Spellable: "+stars(r.Linguistic.Spellable))
	}
	section("Linguistic", linguistic)

	var verdict []string
	if journey.NonEmpty(r.Verdict) {
		verdict = append(verdict, "Verdict: "+r.Verdict)
	}
	if journey.NonEmpty(r.Notes) {
		verdict = append(verdict, r.Notes)
	}
	section("Verdict", verdict)

	var saved []string
	for _, s := range r.SavedNames {
		saved = append(saved, strings.TrimSpace(s.Name+" ("+strconv.Itoa(s.Score)+"/100) "+s.Verdict))
	}
	section("Saved Names", saved)
	return out
}

func stars(n int) string {
	n = clampRating(n)
	return strings.Repeat("*", n) + strings.Repeat(".", 5-n)
}
