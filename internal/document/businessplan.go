package document

import "time"

// Business types offered by the plan's first phase.
const (
	BusinessTypeProduct = "product"
	BusinessTypeService = "service"
	BusinessTypeHybrid  = "hybrid"
)

// Competitor is one entry of the market analysis.
type Competitor struct {
	Name     string `json:"name"`
	Strength string `json:"strength"`
	Weakness string `json:"weakness"`
}

// Offering is a product or service line.
type Offering struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Operations covers where and with whom the business runs.
type Operations struct {
	Location  string   `json:"location"`
	Team      []string `json:"team"`
	Suppliers []string `json:"suppliers"`
}

// Financials holds the plan's headline numbers.
type Financials struct {
	StartupCosts    float64 `json:"startupCosts"`
	MonthlyExpenses float64 `json:"monthlyExpenses"`
	RevenueModel    string  `json:"revenueModel"`
	Pricing         string  `json:"pricing"`
	BreakEvenMonths int     `json:"breakEvenMonths"`
}

// Risk is a plan risk with its mitigation.
type Risk struct {
	Description string `json:"description"`
	Likelihood  string `json:"likelihood"`
	Impact      string `json:"impact"`
	Mitigation  string `json:"mitigation"`
}

// Milestone is a dated goal.
type Milestone struct {
	Title   string `json:"title"`
	DueDate string `json:"dueDate"`
	Done    bool   `json:"done"`
}

// BusinessPlan is the document edited by the business plan journey.
type BusinessPlan struct {
	BusinessType      string       `json:"businessType"`
	Idea              string       `json:"idea"`
	Problem           string       `json:"problem"`
	Solution          string       `json:"solution"`
	TargetMarket      string       `json:"targetMarket"`
	MarketSize        string       `json:"marketSize"`
	Competitors       []Competitor `json:"competitors"`
	Offerings         []Offering   `json:"offerings"`
	MarketingChannels []string     `json:"marketingChannels"`
	MarketingStrategy string       `json:"marketingStrategy"`
	Operations        Operations   `json:"operations"`
	Financials        Financials   `json:"financials"`
	Risks             []Risk       `json:"risks"`
	Milestones        []Milestone  `json:"milestones"`
	ExecutiveSummary  string       `json:"executiveSummary"`
	LastUpdated       time.Time    `json:"lastUpdated"`
}

// DefaultBusinessPlan returns the canonical empty plan.
func DefaultBusinessPlan() BusinessPlan {
	return BusinessPlan{
		Competitors:       []Competitor{},
		Offerings:         []Offering{},
		MarketingChannels: []string{},
		Operations: Operations{
			Team:      []string{},
			Suppliers: []string{},
		},
		Risks:      []Risk{},
		Milestones: []Milestone{},
	}
}

// BusinessPlanCodec merges and repairs BusinessPlan documents.
var BusinessPlanCodec = NewStructCodec(DefaultBusinessPlan)
