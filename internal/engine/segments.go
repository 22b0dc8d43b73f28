package engine

import "fmt"

// A trailing sliver shorter than this is merged into the previous part
// instead of becoming its own file.
const minTailSec = 1.0

type segment struct {
	Start  float64 // offset into the source, seconds
	Length float64 // seconds
}

// planSegments computes the cut list for a source of the given duration:
// drop introSec from the start and outroSec from the end, then slice the
// remainder into partSec pieces. The last piece absorbs any sub-second tail.
func planSegments(duration float64, introSec, outroSec, partSec int) ([]segment, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("source duration is zero")
	}

	start := float64(introSec)
	end := duration - float64(outroSec)
	if end-start <= 0 {
		return nil, fmt.Errorf("intro (%ds) and outro (%ds) leave no content in a %.1fs video",
			introSec, outroSec, duration)
	}

	step := float64(partSec)
	var segs []segment
	for pos := start; pos < end; pos += step {
		length := step
		if pos+length > end {
			length = end - pos
		}
		segs = append(segs, segment{Start: pos, Length: length})
	}

	if n := len(segs); n > 1 && segs[n-1].Length < minTailSec {
		segs[n-2].Length += segs[n-1].Length
		segs = segs[:n-1]
	}

	return segs, nil
}
