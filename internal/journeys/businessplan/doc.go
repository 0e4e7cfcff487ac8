// Package businessplan defines the ten-phase business plan journey over
// document.BusinessPlan. The final summary phase unlocks once every earlier
// phase is complete.
package businessplan
