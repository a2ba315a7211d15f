// SPDX-License-Identifier: EPL-2.0

// Package graph owns the live audio pipeline: a decoded track read through
// an optional convolution node and a ramping gain node into a Sink.
//
// There is at most one pipeline at a time. Connect tears the previous one
// down before wiring the next, so two chains never reach the output
// together. Each pipeline has a PipelineID, and operations that name a
// superseded id fail with ErrNotConnected instead of touching the new chain.
//
// Controller state follows
//
//	Idle -> Loading -> Connected -> Playing -> Stopped -> Idle
//
// where Loading is reported while an asset load is in flight and nothing is
// connected, and Teardown returns to Idle.
package graph
