// Package pipeline orchestrates the complete question answering flow:
// extraction, classification, statement generation, query translation,
// execution, ranking and response rendering.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/cache"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/endpoint"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/execute"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/extract"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/llm"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/question"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/respond"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/results"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/rosetta"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/sparql"
)

// Pipeline wires the processing stages together. Construct once, use
// for many questions; Close releases endpoint connections.
type Pipeline struct {
	processor  *question.Processor
	generator  *rosetta.Generator
	translator *sparql.Translator
	executor   *execute.Executor
	ranker     *results.Processor
	responder  *respond.Generator
	manager    *endpoint.Manager
	narrator   llm.Provider // nil when narration is disabled
	config     *model.Config
}

// New creates a pipeline from configuration. Endpoints are registered
// in config order; an unparseable LLM config disables narration with
// an error rather than silently.
func New(cfg *model.Config) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	manager := endpoint.NewManager()
	for _, epCfg := range cfg.Endpoints {
		switch epCfg.Type {
		case "mock":
			manager.Register(endpoint.NewMockEndpoint(epCfg.Name), epCfg.IsDefault)
		case "http", "":
			manager.Register(endpoint.NewHTTPEndpoint(epCfg, cfg.HTTP), epCfg.IsDefault)
		default:
			return nil, fmt.Errorf("endpoint %s: unknown type %q", epCfg.Name, epCfg.Type)
		}
	}

	var execOpts []execute.Option
	if cfg.Processor.EnableCaching {
		execOpts = append(execOpts, execute.WithCache(cache.NewMemoryCache(5*time.Minute, 10*time.Minute), 5*time.Minute))
	}
	if cfg.HTTP.Timeout > 0 {
		execOpts = append(execOpts, execute.WithCallTimeout(cfg.HTTP.Timeout.Std()))
	}

	narrator, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return nil, fmt.Errorf("configure LLM provider: %w", err)
	}

	return &Pipeline{
		processor:  question.NewProcessor(extract.NewEntityExtractor()),
		generator:  rosetta.NewGenerator(),
		translator: sparql.NewTranslator(cfg.Processor),
		executor:   execute.NewExecutor(manager, execOpts...),
		ranker:     results.NewProcessor(cfg.Processor),
		responder:  respond.NewGenerator(cfg.Processor, cfg.Output),
		manager:    manager,
		narrator:   narrator,
		config:     cfg,
	}, nil
}

// Manager exposes the endpoint registry for CLI inspection
func (p *Pipeline) Manager() *endpoint.Manager {
	return p.manager
}

// Close releases all endpoint connections
func (p *Pipeline) Close() error {
	return p.manager.CloseAll()
}

// Process answers one natural language question. Stage failures are
// downgraded to diagnostics wherever a partial answer remains
// possible; only an unresolvable endpoint registry is fatal.
func (p *Pipeline) Process(ctx context.Context, text string) (*model.Result, error) {
	start := time.Now()
	res := &model.Result{
		Stats: model.Stats{RequestID: uuid.NewString()},
	}

	frame := p.processor.Process(text)
	res.Stats.Entities = len(frame.Entities())

	stmts := p.statements(&frame)
	res.Stats.Statements = len(stmts)

	queries := p.translate(stmts, res)
	res.Stats.Queries = len(queries)

	outcome, err := p.executor.Execute(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("execute queries: %w", err)
	}
	res.Diagnostics = append(res.Diagnostics, outcome.Diagnostics...)
	res.Stats.Bindings = len(outcome.Bindings)

	res.Findings = p.ranker.Process(stmts, outcome.Bindings)
	res.Stats.Findings = len(res.Findings)

	p.responder.Render(frame, res.Findings, res)

	if p.narrator != nil {
		p.narrate(ctx, &frame, res)
	}

	res.Stats.Elapsed = time.Since(start)
	return res, nil
}

// statements generates candidate statements, dropping weak structured
// interpretations below the match threshold. The text-search fallback
// is never dropped.
func (p *Pipeline) statements(frame *model.IntentFrame) []model.RosettaStatement {
	threshold := p.config.Processor.TemplateMatchThreshold
	all := p.generator.Generate(frame)
	out := make([]model.RosettaStatement, 0, len(all))
	for _, s := range all {
		if s.Template != rosetta.TextSearchTemplate && s.Confidence < threshold {
			continue
		}
		out = append(out, s)
	}
	return out
}

// translate compiles statements to queries. A failing statement is
// recorded as a diagnostic; its siblings still run.
func (p *Pipeline) translate(stmts []model.RosettaStatement, res *model.Result) []model.CompiledQuery {
	var queries []model.CompiledQuery
	for _, s := range stmts {
		q, err := p.translator.Translate(s, "")
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, model.Diagnostic{
				Stage:   "translate",
				Message: err.Error(),
			})
			continue
		}
		queries = append(queries, q)
	}
	return queries
}

// narrate attaches an optional LLM narrative. Failures never affect
// the already-rendered result.
func (p *Pipeline) narrate(ctx context.Context, frame *model.IntentFrame, res *model.Result) {
	if len(res.Findings) == 0 {
		return
	}
	allowed := allowedIRIs(res.Findings)
	resp, err := p.narrator.Narrate(ctx, llm.NarrateRequest{
		Question:    frame.Question.Raw,
		Findings:    res.Findings,
		AllowedIRIs: allowed,
		Model:       p.config.LLM.Model,
		MaxTokens:   p.config.LLM.MaxTokens,
	})
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, model.Diagnostic{
			Stage:   "llm",
			Message: err.Error(),
		})
		return
	}
	res.LLM = &model.LLMSummary{
		Provider:  p.narrator.Name(),
		Model:     resp.Model,
		Narrative: resp.Narrative,
	}
}

// allowedIRIs collects every HTTP IRI appearing in the findings'
// supporting rows, deduplicated in first-seen order.
func allowedIRIs(findings []model.Finding) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range findings {
		for _, b := range f.Bindings {
			keys := make([]string, 0, len(b.Vars))
			for k := range b.Vars {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				v := b.Vars[k]
				if !isIRI(v) || seen[v] {
					continue
				}
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func isIRI(v string) bool {
	return len(v) > 8 && (v[:7] == "http://" || v[:8] == "https://")
}
