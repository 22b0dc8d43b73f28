package engine

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const maxStderrBytes = 8 * 1024 // 8 KB tail of stderr kept for diagnostics

// FFmpegEngine splits videos by running ffmpeg once per part.
type FFmpegEngine struct {
	ffmpeg  string // resolved ffmpeg path
	ffprobe string // resolved ffprobe path
	logger  *slog.Logger
}

// NewFFmpegEngine resolves the ffmpeg and ffprobe binaries. Empty paths mean
// look them up on PATH.
func NewFFmpegEngine(ffmpegPath, ffprobePath string, logger *slog.Logger) (*FFmpegEngine, error) {
	ffmpeg, err := resolveBinary(ffmpegPath, "ffmpeg")
	if err != nil {
		return nil, err
	}
	ffprobe, err := resolveBinary(ffprobePath, "ffprobe")
	if err != nil {
		return nil, err
	}

	logger.Info("split engine initialised", "ffmpeg", ffmpeg, "ffprobe", ffprobe)
	return &FFmpegEngine{ffmpeg: ffmpeg, ffprobe: ffprobe, logger: logger}, nil
}

// Split runs the full pipeline for one job: probe, plan, cut each part,
// optionally bundle. It reports everything through cb and never returns an
// error itself.
func (e *FFmpegEngine) Split(ctx context.Context, req Request, cb Callbacks) {
	duration, err := e.probeDuration(ctx, req.SourcePath)
	if err != nil {
		cb.OnError(fmt.Sprintf("probe failed: %v", err))
		return
	}

	segs, err := planSegments(duration, req.IntroSec, req.OutroSec, req.PartSec)
	if err != nil {
		cb.OnError(err.Error())
		return
	}

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		cb.OnError(fmt.Sprintf("cannot create output dir: %v", err))
		return
	}

	e.logger.Info("split planned",
		"source_duration_s", duration,
		"parts", len(segs),
		"preset", string(req.Preset),
	)

	var parts []Part
	for i, seg := range segs {
		outPath := filepath.Join(req.OutputDir, fmt.Sprintf("%s_part%02d.mp4", req.BaseName, i+1))

		if err := e.cutSegment(ctx, req, seg, outPath, i, len(segs), cb.OnProgress); err != nil {
			cb.OnError(err.Error())
			return
		}

		part := Part{Index: i + 1, Path: outPath}
		parts = append(parts, part)
		cb.OnPart(part)
		cb.OnProgress((i + 1) * 100 / len(segs))
	}

	zipPath := ""
	if req.BundleZip {
		zipPath = filepath.Join(req.OutputDir, req.BaseName+".zip")
		if err := bundleParts(zipPath, parts); err != nil {
			cb.OnError(fmt.Sprintf("bundle failed: %v", err))
			return
		}
	}

	cb.OnComplete(zipPath)
}

// probeDuration asks ffprobe for the container duration in seconds.
func (e *FFmpegEngine) probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return 0, fmt.Errorf("ffprobe exited %d: %s", exitErr.ExitCode(), tail(string(exitErr.Stderr), 512))
		}
		return 0, err
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse ffprobe duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

// cutSegment runs one ffmpeg invocation and feeds intra-segment progress
// into onProgress. segIndex/segTotal place this segment on the job-wide
// 0-100 scale.
func (e *FFmpegEngine) cutSegment(ctx context.Context, req Request, seg segment, outPath string, segIndex, segTotal int, onProgress func(int)) error {
	args := []string{
		"-hide_banner", "-nostdin",
		"-ss", formatSeconds(seg.Start),
		"-i", req.SourcePath,
		"-t", formatSeconds(seg.Length),
	}
	args = append(args, presetArgs(req.Preset)...)
	args = append(args,
		"-progress", "pipe:1",
		"-y", outPath,
	)

	cmd := exec.CommandContext(ctx, e.ffmpeg, args...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = &limitedWriter{w: &stderrBuf, limit: maxStderrBytes}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start: %w", err)
	}

	// -progress pipe:1 emits key=value lines per stats interval.
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if !strings.HasPrefix(scanner.Text(), "out_time_ms=") {
			continue
		}
		// out_time_ms is microseconds despite the name.
		us, err := strconv.ParseInt(strings.TrimPrefix(scanner.Text(), "out_time_ms="), 10, 64)
		if err != nil || onProgress == nil {
			continue
		}
		onProgress(jobPercent(segIndex, segTotal, float64(us)/1e6, seg.Length))
	}

	err = cmd.Wait()
	elapsed := time.Since(start)

	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		if ctx.Err() != nil {
			return fmt.Errorf("split aborted: %v", ctx.Err())
		}
		e.logger.Warn("ffmpeg failed",
			"exit_code", exitCode,
			"duration_ms", elapsed.Milliseconds(),
			"stderr_tail", tail(stderrBuf.String(), 512),
		)
		return fmt.Errorf("ffmpeg exited %d: %s", exitCode, tail(stderrBuf.String(), 512))
	}

	e.logger.Info("part encoded",
		"part", segIndex+1,
		"of", segTotal,
		"duration_ms", elapsed.Milliseconds(),
	)
	return nil
}

// jobPercent maps progress within one segment onto the whole job's 0-100
// scale, leaving the final point of each segment to the completion path.
func jobPercent(segIndex, segTotal int, segDone, segLength float64) int {
	if segTotal == 0 || segLength <= 0 {
		return 0
	}
	frac := segDone / segLength
	if frac > 1 {
		frac = 1
	}
	if frac < 0 {
		frac = 0
	}
	return int((float64(segIndex) + frac) * 100 / float64(segTotal))
}

func presetArgs(p Preset) []string {
	switch p {
	case PresetMedium:
		return []string{"-c:v", "libx264", "-preset", "veryfast", "-crf", "23", "-c:a", "aac"}
	case PresetHigh:
		return []string{"-c:v", "libx264", "-preset", "slow", "-crf", "18", "-c:a", "aac"}
	default:
		// PresetFast: stream copy, keyframe-accurate cuts only.
		return []string{"-c", "copy", "-avoid_negative_ts", "make_zero"}
	}
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

func resolveBinary(preferred, name string) (string, error) {
	if preferred != "" {
		if p, err := exec.LookPath(preferred); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("configured %s %q not found", name, preferred)
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found on PATH", name)
	}
	return p, nil
}

func tail(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter keeps only the last `limit` bytes written.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		b := lw.w.Bytes()
		lw.w.Reset()
		lw.w.Write(b[len(b)-lw.limit:])
	}
	return n, nil
}
