// internal/services/orchestrator_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/zedarvates/StoryCore-Engine-sub001/internal/errors"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/generation"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/models"
)

// ProgressCallback receives progress snapshots during a generation job,
// zero or more times, before the call returns.
type ProgressCallback func(models.GenerationProgress)

// promptJobKind labels prompt-expansion jobs in the active map; media
// jobs are labelled with their content type.
const promptJobKind = "prompt"

// activeJob is one tracked generation request. cancel is nil for jobs that
// do not support cancellation.
type activeJob struct {
	id      string
	kind    string
	cancel  context.CancelFunc
	started time.Time
}

// GenerationOrchestrator runs asynchronous generation jobs against the
// media backends, tracking each job in an active-jobs map from start until
// its terminal state.
type GenerationOrchestrator struct {
	llm    *LLMService
	image  generation.ImageBackend
	audio  generation.AudioBackend
	video  generation.VideoBackend
	logger *zap.Logger

	mu   sync.Mutex
	jobs map[string]*activeJob
}

func NewGenerationOrchestrator(llm *LLMService, image generation.ImageBackend, audio generation.AudioBackend, video generation.VideoBackend, logger *zap.Logger) *GenerationOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationOrchestrator{
		llm:    llm,
		image:  image,
		audio:  audio,
		video:  video,
		logger: logger,
		jobs:   make(map[string]*activeJob),
	}
}

// register inserts a job into the active map. Every register call is
// paired with exactly one deferred unregister on all exit paths.
func (o *GenerationOrchestrator) register(kind string, cancel context.CancelFunc) *activeJob {
	job := &activeJob{
		id:      uuid.NewString(),
		kind:    kind,
		cancel:  cancel,
		started: time.Now(),
	}
	o.mu.Lock()
	o.jobs[job.id] = job
	o.mu.Unlock()
	return job
}

func (o *GenerationOrchestrator) unregister(id string) {
	o.mu.Lock()
	delete(o.jobs, id)
	o.mu.Unlock()
}

// ActiveJobs lists the ids of jobs that have not reached a terminal state.
func (o *GenerationOrchestrator) ActiveJobs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := make([]string, 0, len(o.jobs))
	for id := range o.jobs {
		ids = append(ids, id)
	}
	return ids
}

// CancelJob triggers the cancellation handle of one active job. Jobs
// without a handle (prompt, audio) report a validation error.
func (o *GenerationOrchestrator) CancelJob(id string) error {
	o.mu.Lock()
	job, ok := o.jobs[id]
	o.mu.Unlock()
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("job %s not found", id), nil)
	}
	if job.cancel == nil {
		return apperrors.NewValidationError(fmt.Sprintf("job %s does not support cancellation", id), nil)
	}
	o.logger.Info("cancelling job", zap.String("job_id", id), zap.String("type", job.kind))
	job.cancel()
	return nil
}

// CancelAllJobs cancels every active job that has a handle.
func (o *GenerationOrchestrator) CancelAllJobs() {
	o.mu.Lock()
	handles := make([]context.CancelFunc, 0, len(o.jobs))
	for _, job := range o.jobs {
		if job.cancel != nil {
			handles = append(handles, job.cancel)
		}
	}
	o.mu.Unlock()
	for _, cancel := range handles {
		cancel()
	}
}

// progressRelay adapts backend progress into the orchestrator shape while
// enforcing that overall progress never decreases.
type progressRelay struct {
	job         *activeJob
	callback    ProgressCallback
	cancellable bool
	lastOverall float64
}

// report maps a stage-local percentage onto the overall range
// [base, base+span] and emits a snapshot.
func (r *progressRelay) report(stage string, stagePercent float64, base, span float64, message string) {
	if stagePercent < 0 {
		stagePercent = 0
	}
	if stagePercent > 100 {
		stagePercent = 100
	}
	overall := base + stagePercent*span/100
	if overall < r.lastOverall {
		overall = r.lastOverall
	}
	r.lastOverall = overall

	if r.callback == nil {
		return
	}
	r.callback(models.GenerationProgress{
		Stage:                  stage,
		StageProgress:          stagePercent,
		OverallProgress:        overall,
		EstimatedTimeRemaining: estimateRemaining(r.job.started, overall),
		Message:                message,
		Cancellable:            r.cancellable,
	})
}

// estimateRemaining linearly extrapolates the remaining seconds from the
// elapsed time and completed percentage.
func estimateRemaining(started time.Time, overall float64) float64 {
	if overall <= 0 || overall >= 100 {
		return 0
	}
	elapsed := time.Since(started).Seconds()
	return elapsed * (100 - overall) / overall
}

// GeneratePrompt expands a short subject into a detailed generation prompt
// with one LLM completion. Not cancellable and not progress-tracked beyond
// the job map.
func (o *GenerationOrchestrator) GeneratePrompt(ctx context.Context, subject, style string) (string, error) {
	job := o.register(promptJobKind, nil)
	defer o.unregister(job.id)

	prompt := fmt.Sprintf(
		"Expand the following subject into a detailed visual generation prompt. Style: %s. Subject: %s. Reply with the prompt only.",
		style, subject)
	result, err := o.llm.GenerateCompletion(ctx, CompletionParams{
		Prompt:      prompt,
		MaxTokens:   200,
		Temperature: 0.7,
	})
	if err != nil {
		return "", apperrors.NewGenerationError("prompt generation failed", err)
	}
	if !result.Success || result.Data == nil {
		return "", apperrors.NewGenerationError("prompt generation returned no content", nil)
	}
	return strings.TrimSpace(result.Data.Content), nil
}

// GenerateImage runs one cancellable image job. The returned asset is nil
// on failure or cancellation.
func (o *GenerationOrchestrator) GenerateImage(ctx context.Context, params generation.Params, callback ProgressCallback) (*models.GeneratedAsset, error) {
	if o.image == nil {
		return nil, apperrors.NewGenerationError("no image backend configured", nil)
	}
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	job := o.register(string(models.ContentImage), cancel)
	defer o.unregister(job.id)

	relay := &progressRelay{job: job, callback: callback, cancellable: true}
	relay.report("image", 0, 0, 100, "starting image generation")

	result, err := o.image.GenerateImage(jobCtx, params, func(percent float64, message string) {
		relay.report("image", percent, 0, 100, message)
	})
	if err != nil {
		return nil, o.generationFailure(job, err)
	}
	relay.report("image", 100, 0, 100, "image ready")

	return o.finishAsset(job, models.ContentImage, result, nil), nil
}

// GenerateAudio runs one audio job. Audio is not cancellable; its duration
// is estimated from word count for asset metadata only.
func (o *GenerationOrchestrator) GenerateAudio(ctx context.Context, params generation.Params, callback ProgressCallback) (*models.GeneratedAsset, error) {
	if o.audio == nil {
		return nil, apperrors.NewGenerationError("no audio backend configured", nil)
	}
	job := o.register(string(models.ContentAudio), nil)
	defer o.unregister(job.id)

	relay := &progressRelay{job: job, callback: callback}
	relay.report("audio", 0, 0, 100, "starting audio generation")

	result, err := o.audio.GenerateAudio(ctx, params, func(percent float64, message string) {
		relay.report("audio", percent, 0, 100, message)
	})
	if err != nil {
		return nil, o.generationFailure(job, err)
	}
	relay.report("audio", 100, 0, 100, "audio ready")

	extra := map[string]any{
		"estimated_duration_seconds": EstimateAudioDuration(
			params.GetString("text", ""),
			params.GetFloat("speed", 1.0)),
	}
	return o.finishAsset(job, models.ContentAudio, result, extra), nil
}

// Overall progress split for the two video stages. Latent generation owns
// 0..60, upscaling 60..100.
const videoLatentShare = 60.0

// GenerateVideo runs one cancellable two-stage video job. Overall progress
// is non-decreasing across the stage boundary and ends at exactly 100.
func (o *GenerationOrchestrator) GenerateVideo(ctx context.Context, params generation.Params, callback ProgressCallback) (*models.GeneratedAsset, error) {
	if o.video == nil {
		return nil, apperrors.NewGenerationError("no video backend configured", nil)
	}
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	job := o.register(string(models.ContentVideo), cancel)
	defer o.unregister(job.id)

	relay := &progressRelay{job: job, callback: callback, cancellable: true}
	relay.report("latent", 0, 0, videoLatentShare, "starting video generation")

	latent, err := o.video.GenerateLatent(jobCtx, params, func(percent float64, message string) {
		relay.report("latent", percent, 0, videoLatentShare, message)
	})
	if err != nil {
		return nil, o.generationFailure(job, err)
	}
	relay.report("latent", 100, 0, videoLatentShare, "latent pass complete")

	final, err := o.video.Upscale(jobCtx, latent, params, func(percent float64, message string) {
		relay.report("upscale", percent, videoLatentShare, 100-videoLatentShare, message)
	})
	if err != nil {
		return nil, o.generationFailure(job, err)
	}
	relay.report("upscale", 100, videoLatentShare, 100-videoLatentShare, "video ready")

	return o.finishAsset(job, models.ContentVideo, final, nil), nil
}

func (o *GenerationOrchestrator) generationFailure(job *activeJob, err error) error {
	if apperrors.IsCancelled(err) {
		o.logger.Info("job cancelled",
			zap.String("job_id", job.id), zap.String("type", job.kind))
		return apperrors.NewCancelledError(fmt.Sprintf("%s generation cancelled", job.kind), err)
	}
	o.logger.Error("generation failed",
		zap.String("job_id", job.id), zap.String("type", job.kind), zap.Error(err))
	return apperrors.NewGenerationError(fmt.Sprintf("%s generation failed", job.kind), err)
}

func (o *GenerationOrchestrator) finishAsset(job *activeJob, t models.ContentType, result *generation.Result, extra map[string]any) *models.GeneratedAsset {
	metadata := map[string]any{}
	for k, v := range result.Metadata {
		metadata[k] = v
	}
	for k, v := range extra {
		metadata[k] = v
	}
	metadata["job_id"] = job.id
	metadata["elapsed_seconds"] = time.Since(job.started).Seconds()

	return &models.GeneratedAsset{
		ID:        uuid.NewString(),
		Type:      t,
		URL:       result.URL,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
}

// narrationWordsPerMinute is the assumed reading pace for duration
// estimates.
const narrationWordsPerMinute = 150.0

// EstimateAudioDuration returns the expected narration length in seconds
// for a text read at the given speed multiplier.
func EstimateAudioDuration(text string, speed float64) float64 {
	if speed <= 0 {
		speed = 1.0
	}
	words := len(strings.Fields(text))
	return float64(words) / (narrationWordsPerMinute * speed) * 60
}
