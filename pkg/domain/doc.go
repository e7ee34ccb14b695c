// Package domain contains the core domain entities and types used by the
// application. These types represent the business concepts (barangays, policy
// levers, simulation runs and trained policies) and are intentionally free of
// infrastructure concerns so they can be shared across packages.
package domain
