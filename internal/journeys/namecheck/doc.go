// Package namecheck defines the six-station name checker journey. Besides the
// common session surface it offers actions to start a search for a candidate
// name and to keep scored snapshots of candidates in a saved list.
package namecheck
