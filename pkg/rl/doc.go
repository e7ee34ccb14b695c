// Package rl learns quarterly lever policies for the municipality with
// tabular Q-learning over a discretised view of the policy environment, and
// evaluates, compares and interrogates the resulting policies.
package rl
