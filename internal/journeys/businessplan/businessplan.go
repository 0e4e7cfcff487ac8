package businessplan

import (
	"fmt"
	"strings"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/export"
	"github.com/kingrea/waypoint/internal/journey"
	"github.com/kingrea/waypoint/internal/wizard"
)

const (
	// Key identifies the journey in the catalog.
	Key = "businessplan"
	// StorageKey names the persisted slot.
	StorageKey = "business-plan"
)

type plan = document.BusinessPlan

// Definition returns the business plan journey.
func Definition() journey.Definition[plan] {
	return journey.Definition[plan]{
		Info: journey.Info{
			Key:         Key,
			Name:        "Business Plan",
			Description: "Ten phases from the idea to an executive summary.",
			StorageKey:  StorageKey,
		},
		Registry: journey.MustRegistry(phases()...),
		Codec:    document.BusinessPlanCodec,
		Render:   Render,
	}
}

func phases() []journey.Step[plan] {
	text := func(path, label string) journey.FormField {
		return journey.FormField{Path: path, Label: label, Kind: journey.InputText}
	}
	return []journey.Step[plan]{
		{
			ID: 1, Slug: "idea", Name: "Idea",
			Complete: func(p plan) bool { return journey.AllNonEmpty(p.BusinessType, p.Idea) },
			Progress: func(p plan) float64 {
				return journey.FieldFraction(journey.NonEmpty(p.BusinessType), journey.NonEmpty(p.Idea))
			},
			Meta: journey.Form{
				Fields: []journey.FormField{
					{
						Path: "businessType", Label: "Business type", Kind: journey.InputChoice,
						Choices: []string{document.BusinessTypeProduct, document.BusinessTypeService, document.BusinessTypeHybrid},
					},
					text("idea", "Idea"),
				},
			},
		},
		{
			ID: 2, Slug: "problem", Name: "Problem & Solution",
			Complete: func(p plan) bool { return journey.AllNonEmpty(p.Problem, p.Solution) },
			Progress: func(p plan) float64 {
				return journey.FieldFraction(journey.NonEmpty(p.Problem), journey.NonEmpty(p.Solution))
			},
			Meta: journey.Form{Fields: []journey.FormField{text("problem", "Problem"), text("solution", "Solution")}},
		},
		{
			ID: 3, Slug: "market", Name: "Market",
			Complete: func(p plan) bool { return journey.NonEmpty(p.TargetMarket) && namedCompetitors(p) > 0 },
			Progress: func(p plan) float64 {
				return journey.FieldFraction(journey.NonEmpty(p.TargetMarket), namedCompetitors(p) > 0)
			},
			Meta: journey.Form{
				Fields: []journey.FormField{
					text("targetMarket", "Target market"),
					text("marketSize", "Market size"),
					{
						Path: "competitors", Label: "Competitors", Kind: journey.InputEntries,
						Hint:    "name | strength | weakness; ...",
						Columns: []journey.Column{{Key: "name"}, {Key: "strength"}, {Key: "weakness"}},
					},
				},
			},
		},
		{
			ID: 4, Slug: "offering", Name: "Offering",
			Complete: func(p plan) bool { return namedOfferings(p) > 0 },
			Meta: journey.Form{
				Fields: []journey.FormField{{
					Path: "offerings", Label: "Offerings", Kind: journey.InputEntries,
					Hint:    "name | description | price; ...",
					Columns: []journey.Column{{Key: "name"}, {Key: "description"}, {Key: "price", Kind: journey.InputNumber}},
				}},
			},
		},
		{
			ID: 5, Slug: "marketing", Name: "Marketing",
			Complete: func(p plan) bool {
				return journey.CountNonEmpty(p.MarketingChannels) > 0 || journey.NonEmpty(p.MarketingStrategy)
			},
			Meta: journey.Form{
				Fields: []journey.FormField{
					{Path: "marketingChannels", Label: "Channels", Kind: journey.InputList},
					text("marketingStrategy", "Strategy"),
				},
			},
		},
		{
			ID: 6, Slug: "operations", Name: "Operations",
			Complete: func(p plan) bool {
				return journey.NonEmpty(p.Operations.Location) || journey.CountNonEmpty(p.Operations.Team) > 0
			},
			Meta: journey.Form{
				Fields: []journey.FormField{
					text("operations.location", "Location"),
					{Path: "operations.team", Label: "Team", Kind: journey.InputList},
					{Path: "operations.suppliers", Label: "Suppliers", Kind: journey.InputList},
				},
			},
		},
		{
			ID: 7, Slug: "financials", Name: "Financials",
			Complete: func(p plan) bool {
				return p.Financials.StartupCosts > 0 && journey.NonEmpty(p.Financials.RevenueModel)
			},
			Progress: func(p plan) float64 {
				return journey.FieldFraction(p.Financials.StartupCosts > 0, journey.NonEmpty(p.Financials.RevenueModel))
			},
			Meta: journey.Form{
				Fields: []journey.FormField{
					{Path: "financials.startupCosts", Label: "Startup costs", Kind: journey.InputNumber},
					{Path: "financials.monthlyExpenses", Label: "Monthly expenses", Kind: journey.InputNumber},
					text("financials.revenueModel", "Revenue model"),
					text("financials.pricing", "Pricing"),
					{Path: "financials.breakEvenMonths", Label: "Break-even (months)", Kind: journey.InputNumber},
				},
			},
		},
		{
			ID: 8, Slug: "risks", Name: "Risks",
			Complete: func(p plan) bool { return describedRisks(p) > 0 },
			Meta: journey.Form{
				Fields: []journey.FormField{{
					Path: "risks", Label: "Risks", Kind: journey.InputEntries,
					Hint: "description | likelihood | impact | mitigation; ...",
					Columns: []journey.Column{
						{Key: "description"}, {Key: "likelihood"}, {Key: "impact"}, {Key: "mitigation"},
					},
				}},
			},
		},
		{
			ID: 9, Slug: "milestones", Name: "Milestones",
			Complete: func(p plan) bool { return titledMilestones(p) > 0 },
			Meta: journey.Form{
				Fields: []journey.FormField{{
					Path: "milestones", Label: "Milestones", Kind: journey.InputEntries,
					Hint:    "title | due date | done; ...",
					Columns: []journey.Column{{Key: "title"}, {Key: "dueDate"}, {Key: "done", Kind: journey.InputBool}},
				}},
			},
		},
		{
			ID: 10, Slug: "summary", Name: "Executive Summary",
			MinPrior: 9,
			Meta: journey.Form{
				Prompt: "Every earlier phase must be complete before the summary counts.",
				Fields: []journey.FormField{text("executiveSummary", "Executive summary")},
			},
		},
	}
}

func namedCompetitors(p plan) int {
	n := 0
	for _, c := range p.Competitors {
		if journey.NonEmpty(c.Name) {
			n++
		}
	}
	return n
}

func namedOfferings(p plan) int {
	n := 0
	for _, o := range p.Offerings {
		if journey.NonEmpty(o.Name) {
			n++
		}
	}
	return n
}

func describedRisks(p plan) int {
	n := 0
	for _, r := range p.Risks {
		if journey.NonEmpty(r.Description) {
			n++
		}
	}
	return n
}

func titledMilestones(p plan) int {
	n := 0
	for _, m := range p.Milestones {
		if journey.NonEmpty(m.Title) {
			n++
		}
	}
	return n
}

// Render builds the export snapshot of a plan.
func Render(p plan) export.Document {
	out := export.Document{Title: "Business Plan", Subtitle: firstLine(p.Idea)}
	add := func(heading string, lines ...string) {
		kept := make([]string, 0, len(lines))
		for _, line := range lines {
			if journey.NonEmpty(line) {
				kept = append(kept, line)
			}
		}
		out.Sections = append(out.Sections, export.Section{Heading: heading, Lines: kept})
	}

	add("Executive Summary", p.ExecutiveSummary)
	add("Idea", labeled("Type", p.BusinessType), labeled("Idea", p.Idea))
	add("Problem & Solution", labeled("Problem", p.Problem), labeled("Solution", p.Solution))

	market := []string{labeled("Target market", p.TargetMarket), labeled("Market size", p.MarketSize)}
	for _, c := range p.Competitors {
		if !journey.NonEmpty(c.Name) {
			continue
		}
		market = append(market, joinParts("Competitor: "+c.Name, labeled("strength", c.Strength), labeled("weakness", c.Weakness)))
	}
	add("Market", market...)

	var offerings []string
	for _, o := range p.Offerings {
		if !journey.NonEmpty(o.Name) {
			continue
		}
		line := o.Name
		if o.Price > 0 {
			line += fmt.Sprintf(" (%s)", money(o.Price))
		}
		offerings = append(offerings, joinParts(line, o.Description))
	}
	add("Offering", offerings...)

	add("Marketing", labeled("Channels", strings.Join(p.MarketingChannels, ", ")), labeled("Strategy", p.MarketingStrategy))
	add("Operations",
		labeled("Location", p.Operations.Location),
		labeled("Team", strings.Join(p.Operations.Team, ", ")),
		labeled("Suppliers", strings.Join(p.Operations.Suppliers, ", ")),
	)

	f := p.Financials
	financials := []string{labeled("Revenue model", f.RevenueModel), labeled("Pricing", f.Pricing)}
	if f.StartupCosts > 0 {
		financials = append(financials, "Startup costs: "+money(f.StartupCosts))
	}
	if f.MonthlyExpenses > 0 {
		financials = append(financials, "Monthly expenses: "+money(f.MonthlyExpenses))
	}
	if f.BreakEvenMonths > 0 {
		financials = append(financials, fmt.Sprintf("Break-even: %d months", f.BreakEvenMonths))
	}
	add("Financials", financials...)

	var risks []string
	for _, r := range p.Risks {
		if !journey.NonEmpty(r.Description) {
			continue
		}
		risks = append(risks, joinParts(r.Description,
			labeled("likelihood", r.Likelihood), labeled("impact", r.Impact), labeled("mitigation", r.Mitigation)))
	}
	add("Risks", risks...)

	var milestones []string
	for _, m := range p.Milestones {
		if !journey.NonEmpty(m.Title) {
			continue
		}
		mark := "[ ]"
		if m.Done {
			mark = "[x]"
		}
		milestones = append(milestones, joinParts(mark+" "+m.Title, labeled("due", m.DueDate)))
	}
	add("Milestones", milestones...)
	return out
}

func labeled(label, value string) string {
	if !journey.NonEmpty(value) {
		return ""
	}
	return label + ": " + strings.TrimSpace(value)
}

func joinParts(head string, parts ...string) string {
	kept := []string{head}
	for _, part := range parts {
		if journey.NonEmpty(part) {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "; ")
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

// Register installs the business plan journey into the catalog.
func Register(c *wizard.Catalog) {
	if err := wizard.RegisterDefinition(c, Definition()); err != nil {
		panic(err)
	}
}
