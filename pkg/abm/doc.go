// Package abm implements the agent-based model of a single barangay.
//
// Households decide every tick whether to segregate their waste using a
// Theory of Planned Behavior score (attitude, social norm and perceived
// behavioral control) net of the economic cost of segregating. Officials
// patrol the grid fining violators and rewarding compliant households, while
// collection vehicles pick up the waste of compliant households. Households
// that stay non-compliant and uncollected for too long dispose of their waste
// improperly.
//
// A Model is not safe for concurrent use; run separate models in separate
// goroutines instead.
package abm
