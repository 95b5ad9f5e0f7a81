package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estatecore/internal/adapter"
	"estatecore/internal/analyzer"
	"estatecore/internal/fusion"
	"estatecore/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// lowConfidenceThreshold marks analyses the downstream consumer may want to
// treat cautiously. Low confidence never blocks the pipeline.
const lowConfidenceThreshold = 0.45

// Generator is the black-box text generation capability invoked at the end
// of a chat turn.
type Generator interface {
	Generate(ctx context.Context, prompt string, history []model.ChatMessage) (string, error)
	IsEnabled() bool
}

// ChatLogStore records completed chat turns. Logging is best-effort and
// never blocks a response.
type ChatLogStore interface {
	LogChatTurn(ctx context.Context, requestID, sessionID, message string, intent model.Intent, confidence float64, sourceCount int, responseTimeMs int64) error
}

// Orchestrator coordinates one chat turn in strict sequence: analyze,
// concurrent adapter fan-out, fuse, serialize, generate. All dependencies
// are injected; the orchestrator holds no cross-request state.
type Orchestrator struct {
	analyzer   *analyzer.Analyzer
	adapters   []adapter.SourceAdapter
	engine     *fusion.Engine
	serializer *fusion.Serializer
	generator  Generator
	logStore   ChatLogStore
	logger     *zap.Logger

	requestTimeout time.Duration
	fetchLimit     int
	budget         int
}

// New creates an orchestrator. logStore may be nil to disable turn logging.
func New(
	an *analyzer.Analyzer,
	adapters []adapter.SourceAdapter,
	engine *fusion.Engine,
	serializer *fusion.Serializer,
	generator Generator,
	logStore ChatLogStore,
	logger *zap.Logger,
	requestTimeout time.Duration,
	fetchLimit int,
	budget int,
) *Orchestrator {
	return &Orchestrator{
		analyzer:       an,
		adapters:       adapters,
		engine:         engine,
		serializer:     serializer,
		generator:      generator,
		logStore:       logStore,
		logger:         logger,
		requestTimeout: requestTimeout,
		fetchLimit:     fetchLimit,
		budget:         budget,
	}
}

// Respond executes one chat turn. Source failures degrade the answer, they
// never surface as errors; the returned error is reserved for a cancelled
// caller context.
func (o *Orchestrator) Respond(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	start := time.Now()
	requestID := uuid.NewString()

	analyzed := o.analyzer.Analyze(req.Message)

	ctx, cancel := context.WithTimeout(ctx, o.requestTimeout)
	defer cancel()

	itemSets, statuses := o.fanOut(ctx, analyzed)

	degraded := false
	for i, status := range statuses {
		switch status {
		case model.StatusTimeout, model.StatusError:
			degraded = true
			o.logger.Warn("source degraded",
				zap.String("request_id", requestID),
				zap.String("source", string(o.adapters[i].Source())),
				zap.String("status", string(status)))
		}
	}

	fused := o.engine.Fuse(analyzed, itemSets, o.budget)
	serialized := o.serializer.Serialize(fused)

	responseText, generated := o.generate(ctx, req, analyzed, fused, serialized)
	if !generated {
		degraded = true
	}

	took := time.Since(start).Milliseconds()

	if o.logStore != nil {
		go func() {
			logCtx, logCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer logCancel()
			if err := o.logStore.LogChatTurn(logCtx, requestID, req.SessionID, req.Message, analyzed.Intent, analyzed.Confidence, len(fused.Items), took); err != nil {
				o.logger.Warn("failed to log chat turn", zap.String("request_id", requestID), zap.Error(err))
			}
		}()
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	return &model.ChatResponse{
		Response:      responseText,
		SourcesUsed:   fused.SourcesUsed(),
		Intent:        analyzed.Intent,
		Confidence:    analyzed.Confidence,
		Parameters:    analyzed.Params.Map(),
		LowConfidence: analyzed.Confidence < lowConfidenceThreshold,
		Degraded:      degraded,
		Took:          took,
	}, nil
}

// fanOut invokes all adapters concurrently under the shared request
// deadline and joins them. Adapters are independent and read-only with
// respect to each other, so no ordering dependency exists.
func (o *Orchestrator) fanOut(ctx context.Context, analyzed *model.AnalyzedQuery) ([][]model.ContextItem, []model.SourceStatus) {
	itemSets := make([][]model.ContextItem, len(o.adapters))
	statuses := make([]model.SourceStatus, len(o.adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range o.adapters {
		i, a := i, a
		g.Go(func() error {
			itemSets[i], statuses[i] = a.Fetch(gctx, analyzed, o.fetchLimit)
			return nil
		})
	}
	// adapters never return errors; Wait only joins
	_ = g.Wait()

	return itemSets, statuses
}

// generate invokes the generator, falling back to a canned response built
// from the serialized context when generation is unavailable or fails.
// The second return reports whether a real generation happened.
func (o *Orchestrator) generate(ctx context.Context, req *model.ChatRequest, analyzed *model.AnalyzedQuery, fused model.FusedContext, serialized string) (string, bool) {
	if o.generator == nil || !o.generator.IsEnabled() {
		return fallbackResponse(fused, serialized), false
	}

	prompt := buildPrompt(serialized, req.Message, analyzed.Intent)
	text, err := o.generator.Generate(ctx, prompt, req.History)
	if err != nil {
		o.logger.Warn("generation failed, using fallback", zap.Error(err))
		return fallbackResponse(fused, serialized), false
	}
	return text, true
}

// buildPrompt assembles the final prompt handed to the generator.
func buildPrompt(serialized, message string, intent model.Intent) string {
	return fmt.Sprintf(
		"You are a Dubai real-estate assistant. Answer using only the context below.\n"+
			"If the context is insufficient, say so honestly.\n\n"+
			"Context:\n%s\n\nQuestion (%s): %s",
		serialized, intent, message,
	)
}

// fallbackResponse is used when no generator is available. With an empty
// fused context the caller sees an explicit no-context answer; otherwise the
// retrieved items are surfaced directly.
func fallbackResponse(fused model.FusedContext, serialized string) string {
	if len(fused.Items) == 0 {
		return "I could not find relevant information for your question. " +
			"Try adding details such as a location, budget or property type."
	}
	return "Here is the most relevant information I found:\n\n" + serialized
}
