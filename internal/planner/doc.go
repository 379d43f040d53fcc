// Package planner turns mutable build configuration into an immutable plan.
//
// Configuration accumulates in a Builder: libraries and their sources in a
// registry.Registry, compile-time and simulation-time flags in two
// options.Table values. Freeze validates the lot and produces a BuildPlan,
// a detached snapshot that the execution side consumes.
//
// Key responsibilities:
//   - Validate that every library has at least one source file
//   - Re-check library name uniqueness
//   - Preserve registration order as compile order (no dependency inference)
//   - Seal the Builder so no mutation is possible after a successful freeze
//   - Encode plans as manifests for external engines
package planner
