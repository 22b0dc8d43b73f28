package job

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/splitflow/splitflow/internal/engine"
)

// SplitParams is the normalized form of a submission's cut parameters.
type SplitParams struct {
	IntroSec int
	OutroSec int
	PartSec  int
	Preset   engine.Preset
}

// Recorder receives lifecycle events for the audit trail. Implementations
// must tolerate being called from multiple job goroutines.
type Recorder interface {
	JobCreated(ctx context.Context, id, filename string) error
	JobUpdated(ctx context.Context, id string, status Status, percent, parts int, zipPath, errMsg string) error
}

// Publisher turns a finished local artifact into a client-retrievable URL,
// e.g. by uploading to object storage and presigning. A nil Publisher means
// parts are served from the local /files tree.
type Publisher interface {
	Publish(ctx context.Context, jobID, localPath string) (string, error)
}

// ControllerConfig wires a Controller.
type ControllerConfig struct {
	Store      *Store
	Engine     engine.Engine
	Recorder   Recorder  // optional
	Publisher  Publisher // optional
	Logger     *slog.Logger
	OutputDir  string
	BundleZip  bool
	JobTimeout time.Duration
	MaxActive  int // concurrent processing cap; <1 means 1
}

// Controller owns the per-job state machine. It is the only writer of job
// status; the upload transport and the engine report into it.
type Controller struct {
	store     *Store
	engine    engine.Engine
	recorder  Recorder
	publisher Publisher
	logger    *slog.Logger

	outputDir  string
	bundleZip  bool
	jobTimeout time.Duration
	active     chan struct{}
}

func NewController(cfg ControllerConfig) *Controller {
	if cfg.MaxActive < 1 {
		cfg.MaxActive = 1
	}
	return &Controller{
		store:      cfg.Store,
		engine:     cfg.Engine,
		recorder:   cfg.Recorder,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
		outputDir:  cfg.OutputDir,
		bundleZip:  cfg.BundleZip,
		jobTimeout: cfg.JobTimeout,
		active:     make(chan struct{}, cfg.MaxActive),
	}
}

// NormalizeParams is the submission entry gate: timestamps to integer
// seconds, quality to an engine preset. It never touches the store, so a
// rejected submission leaves no Job Record behind.
func NormalizeParams(intro, outro, part, quality string) (SplitParams, error) {
	introSec, err := ParseTimestamp(intro)
	if err != nil {
		return SplitParams{}, &ValidationError{Field: "intro", Reason: err.Error()}
	}
	outroSec, err := ParseTimestamp(outro)
	if err != nil {
		return SplitParams{}, &ValidationError{Field: "outro", Reason: err.Error()}
	}
	partSec, err := ParseTimestamp(part)
	if err != nil {
		return SplitParams{}, &ValidationError{Field: "part", Reason: err.Error()}
	}
	if partSec <= 0 {
		return SplitParams{}, &ValidationError{Field: "part", Reason: "part duration must be greater than zero"}
	}

	preset, err := mapQuality(quality)
	if err != nil {
		return SplitParams{}, err
	}

	return SplitParams{
		IntroSec: introSec,
		OutroSec: outroSec,
		PartSec:  partSec,
		Preset:   preset,
	}, nil
}

func mapQuality(q string) (engine.Preset, error) {
	switch strings.ToLower(strings.TrimSpace(q)) {
	case "fast":
		return engine.PresetFast, nil
	case "medium", "":
		return engine.PresetMedium, nil
	case "high":
		return engine.PresetHigh, nil
	default:
		return "", &ValidationError{Field: "quality", Reason: fmt.Sprintf("%q is not one of fast, medium, high", q)}
	}
}

// Create accepts a validated submission and registers a queued Job Record.
func (c *Controller) Create(ctx context.Context, filename string) (Snapshot, error) {
	id := NewID()
	snap, err := c.store.Create(id, filename)
	if err != nil {
		return Snapshot{}, err
	}

	c.logger.Info("job created", "job_id", id, "filename", filename)
	if c.recorder != nil {
		if rerr := c.recorder.JobCreated(ctx, id, filename); rerr != nil {
			c.logger.Warn("history record failed", "job_id", id, "error", rerr)
		}
	}
	return snap, nil
}

// BeginUpload marks the transport as receiving bytes for the job.
func (c *Controller) BeginUpload(id string) {
	c.store.SetStatus(id, StatusUploading)
}

// ReportUploadProgress feeds the bytes-received fraction into the record.
// total <= 0 means the transport cannot compute a fraction; the percent is
// left alone rather than guessed.
func (c *Controller) ReportUploadProgress(id string, received, total int64) {
	if total <= 0 {
		return
	}
	c.store.SetProgress(id, int(received*100/total))
}

// Fail moves the job to its terminal error state with the given reason.
func (c *Controller) Fail(ctx context.Context, id, reason string) {
	c.store.SetError(id, reason)
	c.logger.Warn("job failed", "job_id", id, "reason", reason)
	c.recordSnapshot(ctx, id)
}

// StartProcessing transitions the job to the processing phase and runs the
// split engine on its own goroutine. The engine's callbacks flow through the
// store's guarded mutators, so duplicate or late callbacks after a terminal
// state are logged no-ops.
func (c *Controller) StartProcessing(ctx context.Context, id, sourcePath string, params SplitParams) {
	c.store.SetStatus(id, StatusProcessing)
	c.recordSnapshot(ctx, id)

	go c.runSplit(ctx, id, sourcePath, params)
}

func (c *Controller) runSplit(ctx context.Context, id, sourcePath string, params SplitParams) {
	select {
	case c.active <- struct{}{}:
		defer func() { <-c.active }()
	case <-ctx.Done():
		c.Fail(ctx, id, "server shutting down before processing started")
		return
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if c.jobTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, c.jobTimeout)
		defer cancel()
	}

	log := c.logger.With("job_id", id)
	log.Info("processing started", "source", filepath.Base(sourcePath))

	// Part filenames come from the original upload name, not the spool file.
	stem := sourcePath
	if snap, ok := c.store.Get(id); ok && snap.Filename != "" {
		stem = snap.Filename
	}

	req := engine.Request{
		SourcePath: sourcePath,
		OutputDir:  filepath.Join(c.outputDir, id),
		BaseName:   baseName(stem),
		IntroSec:   params.IntroSec,
		OutroSec:   params.OutroSec,
		PartSec:    params.PartSec,
		Preset:     params.Preset,
		BundleZip:  c.bundleZip,
	}

	c.engine.Split(runCtx, req, engine.Callbacks{
		OnProgress: func(percent int) {
			c.store.SetProgress(id, percent)
		},
		OnPart: func(p engine.Part) {
			c.handlePart(runCtx, id, p)
		},
		OnComplete: func(zipPath string) {
			c.handleComplete(ctx, id, zipPath)
		},
		OnError: func(reason string) {
			c.Fail(ctx, id, reason)
		},
	})

	c.cleanupSource(id, sourcePath)
}

func (c *Controller) handlePart(ctx context.Context, id string, p engine.Part) {
	name := filepath.Base(p.Path)
	url := "/files/" + id + "/" + name

	if c.publisher != nil {
		published, err := c.publisher.Publish(ctx, id, p.Path)
		if err != nil {
			c.logger.Warn("part publish failed, serving locally", "job_id", id, "part", p.Index, "error", err)
		} else {
			url = published
		}
	}

	c.store.AppendPart(id, Part{Index: p.Index, Name: name, Path: p.Path, URL: url})
	c.logger.Info("part ready", "job_id", id, "part", p.Index)
}

func (c *Controller) handleComplete(ctx context.Context, id, zipPath string) {
	snap, ok := c.store.Get(id)
	if !ok {
		c.logger.Debug("completion for unknown job ignored", "job_id", id)
		return
	}
	if len(snap.Parts) == 0 {
		c.Fail(ctx, id, "engine completed without producing any parts")
		return
	}

	c.store.SetProgress(id, 100)

	if zipPath != "" {
		zipURL := "/files/" + id + "/" + filepath.Base(zipPath)
		if c.publisher != nil {
			published, err := c.publisher.Publish(ctx, id, zipPath)
			if err != nil {
				c.logger.Warn("zip publish failed, serving locally", "job_id", id, "error", err)
			} else {
				zipURL = published
			}
		}
		c.store.SetZip(id, zipURL)
	}

	c.store.SetStatus(id, StatusDone)
	c.logger.Info("job done", "job_id", id, "parts", len(snap.Parts))
	c.recordSnapshot(ctx, id)
}

// cleanupSource removes the uploaded spool file once the job is terminal.
func (c *Controller) cleanupSource(id, sourcePath string) {
	if sourcePath == "" {
		return
	}
	if err := os.Remove(sourcePath); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("cannot remove upload spool", "job_id", id, "error", err)
	}
}

func (c *Controller) recordSnapshot(ctx context.Context, id string) {
	if c.recorder == nil {
		return
	}
	snap, ok := c.store.Get(id)
	if !ok {
		return
	}
	if err := c.recorder.JobUpdated(ctx, id, snap.Status, snap.Percent, len(snap.Parts), snap.ZipPath, snap.Error); err != nil {
		c.logger.Warn("history record failed", "job_id", id, "error", err)
	}
}

// baseName derives a filesystem-safe stem for part filenames from the
// uploaded filename.
func baseName(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var b strings.Builder
	for _, r := range stem {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "video"
	}
	if len(out) > 64 {
		out = out[:64]
	}
	return out
}
