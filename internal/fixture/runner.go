package fixture

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	glua "github.com/yuin/gopher-lua"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/markstate/internal/engine/cursor/markup"
	"github.com/dshills/markstate/internal/logging"
	"github.com/dshills/markstate/internal/plugin/lua"
)

// Result is the outcome of a single case.
type Result struct {
	Case Case
	// Got is the rendering the case produced, empty if it never got that far.
	Got      string
	Err      error
	Duration time.Duration
}

// Passed reports whether the case met its expectations.
func (r Result) Passed() bool {
	return r.Err == nil
}

// Summary counts results.
type Summary struct {
	Total  int
	Passed int
	Failed int
}

// Summarize counts passed and failed results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// OK reports whether no case failed.
func (s Summary) OK() bool {
	return s.Failed == 0
}

func (s Summary) String() string {
	return fmt.Sprintf("%d cases, %d passed, %d failed", s.Total, s.Passed, s.Failed)
}

// Runner executes fixture cases.
type Runner struct {
	parser        *markup.Parser
	parallel      int
	scriptTimeout time.Duration
	scriptOutput  io.Writer
	logger        *logging.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithParser sets the parser used for inputs and inside scripts.
func WithParser(p *markup.Parser) RunnerOption {
	return func(r *Runner) {
		r.parser = p
	}
}

// WithParallel bounds the number of cases run at once.
func WithParallel(n int) RunnerOption {
	return func(r *Runner) {
		r.parallel = n
	}
}

// WithScriptTimeout bounds the run time of each case's script.
func WithScriptTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.scriptTimeout = d
	}
}

// WithScriptOutput receives output from print calls in scripts.
func WithScriptOutput(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.scriptOutput = w
	}
}

// WithLogger sets the runner's logger.
func WithLogger(l *logging.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		parser:        markup.NewParser(),
		parallel:      runtime.GOMAXPROCS(0),
		scriptTimeout: lua.DefaultExecutionTimeout,
		scriptOutput:  io.Discard,
		logger:        logging.Null,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.parallel < 1 {
		r.parallel = 1
	}
	return r
}

// Run executes cases and returns one result per case, in input order.
// Case failures are reported in the results; the returned error is
// non-nil only when ctx ends before every case ran.
func (r *Runner) Run(ctx context.Context, cases []Case) ([]Result, error) {
	log := r.logger.WithComponent("runner").WithRunID(logging.NewRunID())
	log.Info("running %d cases", len(cases))

	start := time.Now()
	results := make([]Result, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)

	for i, c := range cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Case: c, Err: err}
				return err
			}

			results[i] = r.RunCase(gctx, c)
			if res := results[i]; res.Passed() {
				log.Debug("pass %s (%s)", c.ID(), res.Duration)
			} else {
				log.Warn("fail %s: %v", c.ID(), res.Err)
			}
			return nil
		})
	}

	err := g.Wait()
	log.Info("%s in %s", Summarize(results), time.Since(start))
	return results, err
}

// RunCase executes a single case.
func (r *Runner) RunCase(ctx context.Context, c Case) Result {
	start := time.Now()
	got, err := r.runCase(ctx, c)
	return Result{Case: c, Got: got, Err: err, Duration: time.Since(start)}
}

func (r *Runner) runCase(ctx context.Context, c Case) (string, error) {
	state, err := r.parser.Parse(c.Input)
	if err != nil {
		return "", fmt.Errorf("parsing input: %w", err)
	}

	if c.Script != "" {
		state, err = r.runScript(ctx, c.Script, state)
		if err != nil {
			return "", err
		}
	}

	got := state.String()

	if c.Content != nil && state.Content != *c.Content {
		return got, &MismatchError{Field: "content", Got: state.Content, Want: *c.Content}
	}
	if want := c.Expected(); got != want {
		return got, &MismatchError{Field: "rendering", Got: got, Want: want}
	}
	return got, nil
}

func (r *Runner) runScript(ctx context.Context, script string, state markup.State) (markup.State, error) {
	L, err := lua.NewState(
		[]lua.Module{lua.NewMarkupModule(r.parser)},
		lua.WithExecutionTimeout(r.scriptTimeout),
		lua.WithOutput(r.scriptOutput),
	)
	if err != nil {
		return markup.State{}, fmt.Errorf("creating lua state: %w", err)
	}
	defer L.Close()

	L.SetGlobal("state", lua.StateToTable(L.L, state))

	if err := L.DoString(ctx, script); err != nil {
		return markup.State{}, fmt.Errorf("running script: %w", err)
	}

	tbl, ok := L.GetGlobal("state").(*glua.LTable)
	if !ok {
		return markup.State{}, fmt.Errorf("%w: state is %s", ErrScriptState, L.GetGlobal("state").Type())
	}

	next, err := lua.TableToState(tbl)
	if err != nil {
		return markup.State{}, fmt.Errorf("%w: %w", ErrScriptState, err)
	}
	return next, nil
}
