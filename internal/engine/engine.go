// Package engine provides the boundary to the external media-processing
// tool that performs the actual trim/split work. The orchestration core only
// depends on the Engine interface and its callbacks; the ffmpeg subprocess
// implementation lives behind it.
package engine

import "context"

// Preset selects the transcode settings for produced parts.
type Preset string

const (
	// PresetFast remuxes with stream copy; no re-encode.
	PresetFast Preset = "fast"
	// PresetMedium re-encodes with balanced speed/quality settings.
	PresetMedium Preset = "medium"
	// PresetHigh re-encodes for best quality.
	PresetHigh Preset = "high"
)

// Request describes one split job handed to the engine.
type Request struct {
	SourcePath string // uploaded source video
	OutputDir  string // job-specific directory for parts and the zip
	BaseName   string // sanitized stem for part filenames
	IntroSec   int    // seconds trimmed from the start
	OutroSec   int    // seconds trimmed from the end
	PartSec    int    // target length of each part
	Preset     Preset
	BundleZip  bool // bundle all parts into a zip on success
}

// Part is one produced clip, reported in emission order.
type Part struct {
	Index int // 1-based
	Path  string
}

// Callbacks is how the engine reports back into the orchestration core.
// OnProgress may fire zero or more times with a 0-100 processing-phase
// percent. OnPart fires once per produced clip. Exactly one of OnComplete
// (zipPath empty when bundling is off) or OnError ends the job.
type Callbacks struct {
	OnProgress func(percent int)
	OnPart     func(p Part)
	OnComplete func(zipPath string)
	OnError    func(reason string)
}

// Engine is the split-engine contract consumed by the lifecycle controller.
// Split blocks until the job ends; the controller runs it on its own
// goroutine. A cancelled or expired ctx must surface through OnError.
type Engine interface {
	Split(ctx context.Context, req Request, cb Callbacks)
}
