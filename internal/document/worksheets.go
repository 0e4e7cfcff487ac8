package document

import "time"

// Canvas is a business model canvas: nine blocks of short statements.
type Canvas struct {
	KeyPartners           []string  `json:"keyPartners"`
	KeyActivities         []string  `json:"keyActivities"`
	KeyResources          []string  `json:"keyResources"`
	ValuePropositions     []string  `json:"valuePropositions"`
	CustomerRelationships []string  `json:"customerRelationships"`
	Channels              []string  `json:"channels"`
	CustomerSegments      []string  `json:"customerSegments"`
	CostStructure         []string  `json:"costStructure"`
	RevenueStreams        []string  `json:"revenueStreams"`
	LastUpdated           time.Time `json:"lastUpdated"`
}

// CanvasBlocks lists the canvas keys in reading order.
var CanvasBlocks = []string{
	"keyPartners",
	"keyActivities",
	"keyResources",
	"valuePropositions",
	"customerRelationships",
	"channels",
	"customerSegments",
	"costStructure",
	"revenueStreams",
}

// DefaultCanvas returns an empty canvas.
func DefaultCanvas() Canvas {
	return Canvas{
		KeyPartners:           []string{},
		KeyActivities:         []string{},
		KeyResources:          []string{},
		ValuePropositions:     []string{},
		CustomerRelationships: []string{},
		Channels:              []string{},
		CustomerSegments:      []string{},
		CostStructure:         []string{},
		RevenueStreams:        []string{},
	}
}

// SWOT is a strengths/weaknesses/opportunities/threats grid.
type SWOT struct {
	Strengths     []string  `json:"strengths"`
	Weaknesses    []string  `json:"weaknesses"`
	Opportunities []string  `json:"opportunities"`
	Threats       []string  `json:"threats"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// SWOTQuadrants lists the SWOT keys in reading order.
var SWOTQuadrants = []string{"strengths", "weaknesses", "opportunities", "threats"}

// DefaultSWOT returns an empty grid.
func DefaultSWOT() SWOT {
	return SWOT{
		Strengths:     []string{},
		Weaknesses:    []string{},
		Opportunities: []string{},
		Threats:       []string{},
	}
}

var (
	CanvasCodec = NewStructCodec(DefaultCanvas)
	SWOTCodec   = NewStructCodec(DefaultSWOT)
)
