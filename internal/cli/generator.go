package cli

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/toyz/delegen/internal/driver"
	"github.com/toyz/delegen/internal/emitter"
	"github.com/toyz/delegen/internal/errors"
	"github.com/toyz/delegen/internal/filter"
	"github.com/toyz/delegen/internal/models"
	"github.com/toyz/delegen/internal/parser"
	"github.com/toyz/delegen/internal/templates"
	"github.com/toyz/delegen/internal/utils"
)

// Generator coordinates the generation rounds of one or more runs
type Generator struct {
	config   *Config
	logger   utils.Logger
	resolver *ModuleResolver
	parser   *parser.Parser
	renderer templates.Renderer
	policy   filter.Policy
	dumpOut  io.Writer

	mu      sync.Mutex
	dirs    []string
	outputs map[string]string // output path -> origin, across runs
}

// NewGenerator creates a generator for config
func NewGenerator(config *Config, logger utils.Logger) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	renderer, err := templates.NewGoRenderer(templates.NewTemplateRegistry())
	if err != nil {
		return nil, err
	}

	return &Generator{
		config:   config,
		logger:   logger,
		resolver: NewModuleResolver(),
		parser: parser.NewParser(parser.Options{
			Dir:        config.Dir,
			Unexported: config.Unexported,
			BuildTags:  config.BuildTags,
		}, logger),
		renderer: renderer,
		policy:   filter.DefaultPolicy().With(config.Exclude...),
		dumpOut:  os.Stdout,
		outputs:  make(map[string]string),
	}, nil
}

// SetDumpOutput redirects declaration dumps
func (g *Generator) SetDumpOutput(w io.Writer) {
	g.dumpOut = w
}

// Run discovers marked declarations and generates them, retrying deferred
// declarations in fresh rounds until none remain, a round makes no
// progress, or max_rounds is reached. The returned error collects every
// problem, failure and stuck declaration of the run.
func (g *Generator) Run(patterns []string) (*Report, error) {
	if len(patterns) == 0 {
		patterns = g.config.Patterns
	}

	module, err := g.resolver.Resolve(g.config.Dir)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Module %s at %s", module.Path, module.Root)

	report := NewReport(module.Path, patterns)
	failures := errors.NewMultipleErrors()
	sink := emitter.NewFileSink()
	d := driver.New(g.policy, emitter.New(g.renderer, sink, g.config.FileSuffix).WithNaming(emitter.Naming(g.config.FileNaming)), g.logger)

	var pending map[string]bool
	for round := 1; ; round++ {
		started := time.Now()
		discovery, err := g.parser.Discover(patterns...)
		if err != nil {
			return report, err
		}

		candidates := discovery.Declarations
		if round == 1 {
			g.setDirs(discovery.Dirs)
			for _, problem := range discovery.Problems.Errors {
				g.logger.Error("%v", problem)
				report.AddFailure(problem)
			}
			failures.Merge(discovery.Problems)
		} else {
			candidates = selectPending(candidates, pending)
		}

		g.dump(round, candidates)

		result := d.Process(candidates)
		report.Rounds = round
		for _, unit := range result.Generated {
			report.AddGenerated(unit, emitter.Path(unit), round)
		}
		for _, failure := range result.Errors.Errors {
			report.AddFailure(failure)
		}
		failures.Merge(result.Errors)
		g.logger.Debug("Round %d: %d generated, %d deferred, %d failed in %s",
			round, len(result.Generated), len(result.Deferred), result.Errors.Count(), time.Since(started))

		if len(result.Deferred) == 0 {
			break
		}

		if !result.Progressed() || round >= g.config.MaxRounds {
			for _, decl := range result.Deferred {
				stuck := errors.NewStuckDeclarationError(decl.Key(), round, decl.Unresolved).
					WithLocation(errors.SourceLocation{File: decl.File, Line: decl.Line})
				g.logger.Error("%v", stuck)
				report.AddStuck(stuck, decl.Unresolved)
				failures.Add(stuck)
			}
			break
		}

		pending = make(map[string]bool, len(result.Deferred))
		for _, decl := range result.Deferred {
			pending[decl.Key()] = true
		}
		g.logger.Info("Retrying %d deferred declaration(s) in round %d", len(pending), round+1)
	}

	g.recordOutputs(sink.Dependencies())
	report.Finish(sink.Unchanged())

	if g.config.Report != "" {
		if err := report.WriteYAML(g.config.Report); err != nil {
			g.logger.Error("%v", err)
			var de errors.DelegenError
			if errors.As(err, &de) {
				failures.Add(de)
			}
		} else {
			g.logger.Debug("Wrote report %s", g.config.Report)
		}
	}

	return report, failures.ErrOrNil()
}

// Dirs returns the package directories loaded by the last run
func (g *Generator) Dirs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.dirs...)
}

// IsOutput reports whether path was written by a previous run
func (g *Generator) IsOutput(path string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.outputs[path]
	return ok
}

func (g *Generator) setDirs(dirs []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dirs = append([]string(nil), dirs...)
}

func (g *Generator) recordOutputs(deps map[string]string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for path, origin := range deps {
		g.outputs[path] = origin
	}
}

func (g *Generator) dump(round int, candidates []models.TypeDeclaration) {
	if !g.config.Dump {
		return
	}
	cfg := spew.ConfigState{Indent: "  ", DisableMethods: true, DisablePointerAddresses: true, SortKeys: true}
	g.logger.Info("Round %d declarations:", round)
	cfg.Fdump(g.dumpOut, candidates)
}

// selectPending keeps the declarations deferred by the previous round
func selectPending(declarations []models.TypeDeclaration, pending map[string]bool) []models.TypeDeclaration {
	var selected []models.TypeDeclaration
	for _, decl := range declarations {
		if pending[decl.Key()] {
			selected = append(selected, decl)
		}
	}
	return selected
}
