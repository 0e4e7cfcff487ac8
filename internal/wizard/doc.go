// Package wizard hosts the journey runtime. A Controller owns one journey's
// document, current step and explicitly completed steps, and writes every
// change through a Slot into a storage.KV. Controllers start out loading and
// only accept navigation or edits once Hydrate has read the slot.
//
// The Catalog hands out type-erased Sessions so the TUI and CLI can drive any
// registered journey, built-in or custom, without knowing its document type.
package wizard
