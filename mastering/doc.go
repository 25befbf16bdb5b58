// Package mastering runs a complete offline mastering job: it validates the
// input buffer, builds a processing chain from a named preset, renders the
// buffer and measures the result.
//
// A [Job] moves through the states Validating, Building, Rendering,
// Analyzing and Completed. Any failure ends the job in Failed and is
// reported as a [*JobError] that unwraps to the package sentinel
// ([ErrInvalidInput], [ErrRender]) or to the preset sentinels
// (preset.ErrUnknownPreset, preset.ErrInvalidPreset).
//
// Jobs share nothing mutable, so several jobs may run concurrently on the
// same input buffer and catalog. [Preview] does exactly that for a list of
// presets.
package mastering
