// Package journeys wires the built-in journeys into a catalog.
package journeys

import (
	"github.com/kingrea/waypoint/internal/journeys/brand"
	"github.com/kingrea/waypoint/internal/journeys/businessplan"
	"github.com/kingrea/waypoint/internal/journeys/namecheck"
	"github.com/kingrea/waypoint/internal/wizard"
)

// RegisterBuiltins installs all of the built-in journeys into the provided
// catalog.
func RegisterBuiltins(c *wizard.Catalog) {
	if c == nil {
		return
	}
	brand.Register(c)
	businessplan.Register(c)
	namecheck.Register(c)
}
