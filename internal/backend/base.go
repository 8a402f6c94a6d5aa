package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/broisnischal/zap/internal/logger"
	"github.com/broisnischal/zap/internal/runner"
)

// Env is everything a backend needs from the outside world.
type Env struct {
	Runner runner.Runner
	HTTP   *http.Client
	Log    *logger.Logger
	GOOS   string
	// Root is true when the process already has administrator rights,
	// in which case sudo is never prepended.
	Root bool
	// OnLine receives output lines of streamed operations (install, update).
	OnLine func(line string)
	// UserAgent is sent with REST lookups.
	UserAgent string
}

// parser turns captured tool output into records. Implementations must not
// return partial results alongside an error.
type parser interface {
	parseSearch(query, out string) ([]Package, error)
	parseInfo(name, out string) (*Package, error)
	parseList(out string) ([]Package, error)
}

// noMatcher is implemented by parsers whose tool reports "nothing found"
// through a non-zero exit and a message. out holds stdout and stderr.
type noMatcher interface {
	noMatch(out string) bool
}

// errNoMatch marks "the tool found nothing", as opposed to a failure.
var errNoMatch = errors.New("no match")

// base implements Backend on top of a descriptor and a parser.
type base struct {
	desc Descriptor
	env  Env
	p    parser
}

func newBase(d Descriptor, env Env, p parser) base {
	if env.Log == nil {
		env.Log = logger.NewDiscard()
	}
	if env.HTTP == nil {
		env.HTTP = &http.Client{Timeout: 15 * time.Second}
	}
	if env.UserAgent == "" {
		env.UserAgent = "zap"
	}
	return base{desc: d, env: env, p: p}
}

func (b *base) ID() ID                 { return b.desc.ID }
func (b *base) Descriptor() Descriptor { return b.desc }

func (b *base) IsAvailable() bool {
	for _, exe := range b.desc.Executables {
		if _, err := b.env.Runner.LookPath(exe); err != nil {
			return false
		}
	}
	return len(b.desc.Executables) > 0
}

func (b *base) Search(ctx context.Context, query string) ([]Package, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinQuery {
		return nil, nil
	}
	out, err := b.capture(ctx, OpSearch, map[string]string{"query": query, "name": query})
	if errors.Is(err, errNoMatch) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	pkgs, err := b.p.parseSearch(query, out)
	if err != nil {
		return nil, &ParseError{Backend: b.desc.ID, Op: OpSearch, Raw: out, Err: err}
	}
	if len(pkgs) > MaxResults {
		pkgs = pkgs[:MaxResults]
	}
	return b.tag(pkgs), nil
}

func (b *base) Info(ctx context.Context, name string) (*Package, error) {
	name = strings.TrimSpace(name)
	out, err := b.capture(ctx, OpInfo, map[string]string{"name": name, "query": name})
	if errors.Is(err, errNoMatch) {
		return nil, fmt.Errorf("%s: %q: %w", b.desc.ID, name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	pkg, err := b.p.parseInfo(name, out)
	if err != nil {
		return nil, &ParseError{Backend: b.desc.ID, Op: OpInfo, Raw: out, Err: err}
	}
	if pkg == nil {
		return nil, fmt.Errorf("%s: %q: %w", b.desc.ID, name, ErrNotFound)
	}
	pkg.Backend = b.desc.ID
	return pkg, nil
}

func (b *base) Install(ctx context.Context, names []string) (*runner.Result, error) {
	return b.stream(ctx, OpInstall, names)
}

func (b *base) Update(ctx context.Context) (*runner.Result, error) {
	return b.stream(ctx, OpUpdate, nil)
}

// List parses stdout even when the tool exits non-zero, since npm ls and
// similar commands report tree problems that way while still printing the
// full list.
func (b *base) List(ctx context.Context) ([]Package, error) {
	out, runErr := b.capture(ctx, OpList, nil)
	if errors.Is(runErr, errNoMatch) {
		return nil, nil
	}
	if runErr != nil && strings.TrimSpace(out) == "" {
		return nil, runErr
	}
	pkgs, err := b.p.parseList(out)
	if err != nil {
		if runErr != nil {
			return nil, runErr
		}
		return nil, &ParseError{Backend: b.desc.ID, Op: OpList, Raw: out, Err: err}
	}
	if runErr != nil {
		b.env.Log.Warnw("list exited non-zero, using its output", "backend", b.desc.ID, "error", runErr)
	}
	for i := range pkgs {
		pkgs[i].Installed = true
	}
	return b.tag(pkgs), nil
}

func (b *base) template(op Op) (Template, error) {
	t, ok := b.desc.Commands[op]
	if !ok {
		return Template{}, &UnsupportedError{Backend: b.desc.ID, Op: op}
	}
	return t, nil
}

// capture runs a non-interactive operation and returns its stdout or
// response body. A non-zero exit with no output at all or with one of the
// tool's "not found" notices, or a 404 from a registry, is reported as
// errNoMatch. Any other non-zero exit returns the *runner.ExitError
// together with whatever the tool printed on stdout.
func (b *base) capture(ctx context.Context, op Op, vars map[string]string) (string, error) {
	t, err := b.template(op)
	if err != nil {
		return "", err
	}
	if t.URL != "" {
		u, err := expandURL(t.URL, vars)
		if err != nil {
			return "", fmt.Errorf("%s: %w", b.desc.ID, errNoMatch)
		}
		return b.fetch(ctx, u)
	}

	res, err := b.env.Runner.Run(ctx, runner.Command{
		Name: t.Argv[0],
		Args: expandArgv(t.Argv[1:], vars, nil),
	})
	if err == nil {
		return stripANSI(res.Output), nil
	}
	var exitErr *runner.ExitError
	if !errors.As(err, &exitErr) || res == nil {
		return "", fmt.Errorf("%s %s: %w", b.desc.ID, op, err)
	}
	if b.isNoMatch(res) {
		return "", fmt.Errorf("%w: %w", errNoMatch, err)
	}
	return stripANSI(res.Output), fmt.Errorf("%s %s: %w", b.desc.ID, op, err)
}

func (b *base) isNoMatch(res *runner.Result) bool {
	all := stripANSI(res.Output + "\n" + res.Stderr)
	if strings.TrimSpace(all) == "" {
		return true
	}
	nm, ok := b.p.(noMatcher)
	return ok && nm.noMatch(all)
}

// stream runs an interactive operation with inherited stdin.
func (b *base) stream(ctx context.Context, op Op, names []string) (*runner.Result, error) {
	t, err := b.template(op)
	if err != nil {
		return nil, err
	}
	if op == OpInstall && len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", b.desc.ID, ErrNoPackages)
	}

	cmds := append([][]string(nil), t.Pre...)
	if t.Each {
		for _, n := range names {
			cmds = append(cmds, expandArgv(t.Argv, map[string]string{"name": n}, []string{n}))
		}
	} else {
		first := ""
		if len(names) > 0 {
			first = names[0]
		}
		cmds = append(cmds, expandArgv(t.Argv, map[string]string{"name": first}, names))
	}

	total := &runner.Result{}
	for _, argv := range cmds {
		if t.Sudo {
			argv = b.withSudo(argv)
		}
		res, err := b.run(ctx, runner.Command{Name: argv[0], Args: argv[1:]})
		total = merge(total, res)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (b *base) run(ctx context.Context, c runner.Command) (*runner.Result, error) {
	c.Stream = true
	c.OnLine = b.env.OnLine
	b.env.Log.Infow("run", "backend", b.desc.ID, "cmd", c.String())
	return b.env.Runner.Run(ctx, c)
}

func (b *base) withSudo(argv []string) []string {
	if b.env.Root || b.env.GOOS == "windows" {
		return argv
	}
	return append([]string{"sudo"}, argv...)
}

func (b *base) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", b.desc.ID, err)
	}
	req.Header.Set("User-Agent", b.env.UserAgent)
	req.Header.Set("Accept", "application/json")

	b.env.Log.Debugw("fetch", "backend", b.desc.ID, "url", url)
	resp, err := b.env.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return "", fmt.Errorf("%s: %w", b.desc.ID, errNoMatch)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return string(data), nil
}

func (b *base) tag(pkgs []Package) []Package {
	for i := range pkgs {
		pkgs[i].Backend = b.desc.ID
	}
	return pkgs
}

func merge(total, res *runner.Result) *runner.Result {
	if res == nil {
		return total
	}
	total.ExitCode = res.ExitCode
	total.Output += res.Output
	total.Cancelled = total.Cancelled || res.Cancelled
	total.Duration += res.Duration
	return total
}
