// internal/services/orchestrator_service_test.go
package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zedarvates/StoryCore-Engine-sub001/internal/errors"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/generation"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/llm"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/models"
)

// fakeImageBackend reports a fixed progress ramp, or blocks until
// cancellation when blocking is set.
type fakeImageBackend struct {
	blocking bool
	started  chan struct{}
}

func (f *fakeImageBackend) GenerateImage(ctx context.Context, params generation.Params, onProgress generation.ProgressFunc) (*generation.Result, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.blocking {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	for _, p := range []float64{10, 40, 80} {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		onProgress(p, "rendering")
	}
	return &generation.Result{URL: "file:///tmp/image.png"}, nil
}

type fakeAudioBackend struct{}

func (fakeAudioBackend) GenerateAudio(ctx context.Context, params generation.Params, onProgress generation.ProgressFunc) (*generation.Result, error) {
	onProgress(50, "synthesizing")
	return &generation.Result{URL: "file:///tmp/audio.wav"}, nil
}

// blockingProvider holds a completion open until its context ends.
type blockingProvider struct {
	started chan struct{}
}

func (p *blockingProvider) Initialize(config map[string]string) error { return nil }

func (p *blockingProvider) GetName() string { return "blocking" }

func (p *blockingProvider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	close(p.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

// fakeVideoBackend emits deliberately non-monotonic stage progress; the
// orchestrator must still report a non-decreasing overall sequence.
type fakeVideoBackend struct {
	failUpscale bool
}

func (f *fakeVideoBackend) GenerateLatent(ctx context.Context, params generation.Params, onProgress generation.ProgressFunc) (*generation.Result, error) {
	for _, p := range []float64{20, 70, 55, 100} {
		onProgress(p, "latent")
	}
	return &generation.Result{URL: "file:///tmp/latent.bin"}, nil
}

func (f *fakeVideoBackend) Upscale(ctx context.Context, latent *generation.Result, params generation.Params, onProgress generation.ProgressFunc) (*generation.Result, error) {
	if f.failUpscale {
		return nil, errors.New("upscaler crashed")
	}
	for _, p := range []float64{30, 90} {
		onProgress(p, "upscaling")
	}
	return &generation.Result{URL: "file:///tmp/video.mp4"}, nil
}

func newOrchestrator(image generation.ImageBackend, video generation.VideoBackend) *GenerationOrchestrator {
	return NewGenerationOrchestrator(NewEmptyLLMService(nil), image, fakeAudioBackend{}, video, nil)
}

func TestGenerateVideoProgressIsMonotonicAndEndsAt100(t *testing.T) {
	o := newOrchestrator(nil, &fakeVideoBackend{})

	var overall []float64
	asset, err := o.GenerateVideo(context.Background(), generation.Params{"prompt": "x"},
		func(p models.GenerationProgress) {
			overall = append(overall, p.OverallProgress)
		})

	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.Equal(t, "file:///tmp/video.mp4", asset.URL)

	require.NotEmpty(t, overall)
	for i := 1; i < len(overall); i++ {
		assert.GreaterOrEqual(t, overall[i], overall[i-1], "sequence %v", overall)
	}
	assert.Equal(t, 100.0, overall[len(overall)-1])
}

func TestGenerateVideoUpscaleFailure(t *testing.T) {
	o := newOrchestrator(nil, &fakeVideoBackend{failUpscale: true})

	asset, err := o.GenerateVideo(context.Background(), generation.Params{"prompt": "x"}, nil)
	require.Error(t, err)
	assert.Nil(t, asset)
	assert.Empty(t, o.ActiveJobs())
}

func TestGenerateImageReportsCompletion(t *testing.T) {
	o := newOrchestrator(&fakeImageBackend{}, nil)

	var last models.GenerationProgress
	asset, err := o.GenerateImage(context.Background(), generation.Params{"prompt": "x"},
		func(p models.GenerationProgress) { last = p })

	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.Equal(t, models.ContentImage, asset.Type)
	assert.Equal(t, 100.0, last.OverallProgress)
	assert.True(t, last.Cancellable)
	assert.Empty(t, o.ActiveJobs())
}

func TestCancelJobRejectsInFlightImage(t *testing.T) {
	backend := &fakeImageBackend{blocking: true, started: make(chan struct{})}
	o := newOrchestrator(backend, nil)

	type outcome struct {
		asset *models.GeneratedAsset
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		asset, err := o.GenerateImage(context.Background(), generation.Params{"prompt": "x"}, nil)
		done <- outcome{asset, err}
	}()

	<-backend.started
	jobs := o.ActiveJobs()
	require.Len(t, jobs, 1)
	require.NoError(t, o.CancelJob(jobs[0]))

	select {
	case result := <-done:
		require.Error(t, result.err)
		assert.True(t, apperrors.IsCancelled(result.err))
		assert.Nil(t, result.asset)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled job did not return")
	}
	assert.Empty(t, o.ActiveJobs())
}

func TestCancelJobUnknownID(t *testing.T) {
	o := newOrchestrator(&fakeImageBackend{}, nil)
	err := o.CancelJob("no-such-job")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestCancelJobRejectsNonCancellable(t *testing.T) {
	backend := &fakeImageBackend{}
	o := newOrchestrator(backend, nil)

	started := make(chan string, 1)
	blockAudio := make(chan struct{})
	go func() {
		o.GenerateAudio(context.Background(), generation.Params{"text": "hello"}, func(models.GenerationProgress) {
			if len(started) == 0 {
				jobs := o.ActiveJobs()
				if len(jobs) == 1 {
					started <- jobs[0]
				}
				<-blockAudio
			}
		})
	}()

	select {
	case id := <-started:
		err := o.CancelJob(id)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidationError(err))
	case <-time.After(2 * time.Second):
		t.Fatal("audio job never started")
	}
	close(blockAudio)
}

func TestCancelAllJobs(t *testing.T) {
	first := &fakeImageBackend{blocking: true, started: make(chan struct{})}
	o := newOrchestrator(first, nil)

	done := make(chan error, 1)
	go func() {
		_, err := o.GenerateImage(context.Background(), generation.Params{"prompt": "x"}, nil)
		done <- err
	}()

	<-first.started
	o.CancelAllJobs()

	select {
	case err := <-done:
		assert.True(t, apperrors.IsCancelled(err))
	case <-time.After(2 * time.Second):
		t.Fatal("jobs were not cancelled")
	}
}

func TestGeneratePromptWithoutLLM(t *testing.T) {
	o := newOrchestrator(nil, nil)
	_, err := o.GeneratePrompt(context.Background(), "a ruined tower", "oil painting")
	require.Error(t, err)
	assert.Empty(t, o.ActiveJobs())
}

func TestGeneratePromptRegistersPromptKind(t *testing.T) {
	provider := &blockingProvider{started: make(chan struct{})}
	o := NewGenerationOrchestrator(NewLLMService(provider, nil), nil, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.GeneratePrompt(ctx, "a ruined tower", "oil painting")
		close(done)
	}()

	<-provider.started
	o.mu.Lock()
	require.Len(t, o.jobs, 1)
	for _, job := range o.jobs {
		assert.Equal(t, promptJobKind, job.kind)
		assert.NotEqual(t, string(models.ContentImage), job.kind)
	}
	o.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("prompt call did not return")
	}
	assert.Empty(t, o.ActiveJobs())
}

func TestEstimateAudioDuration(t *testing.T) {
	// 300 words at 150 wpm is two minutes
	text := ""
	for i := 0; i < 300; i++ {
		text += "word "
	}
	assert.InDelta(t, 120.0, EstimateAudioDuration(text, 1.0), 1e-9)
	assert.InDelta(t, 60.0, EstimateAudioDuration(text, 2.0), 1e-9)
	assert.InDelta(t, 120.0, EstimateAudioDuration(text, 0), 1e-9)
}

func TestGenerateAudioAddsDurationMetadata(t *testing.T) {
	o := newOrchestrator(nil, nil)

	asset, err := o.GenerateAudio(context.Background(),
		generation.Params{"text": "one two three", "speed": 1.0}, nil)

	require.NoError(t, err)
	require.NotNil(t, asset)
	duration, ok := asset.Metadata["estimated_duration_seconds"].(float64)
	require.True(t, ok)
	assert.InDelta(t, 3.0/150.0*60.0, duration, 1e-9)
}
