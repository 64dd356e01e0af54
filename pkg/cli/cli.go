// Package cli implements the interactive interpreter for a command tree:
// line dispatch, help lookup and tab completion on top of readline.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/psaab/shellac/pkg/cmdtree"
)

// Recorder receives interpreter events, typically for metrics.
type Recorder interface {
	Dispatched(command string)
	Unknown()
	CompletionRequested()
	CompletionFailed()
}

type nopRecorder struct{}

func (nopRecorder) Dispatched(string)    {}
func (nopRecorder) Unknown()             {}
func (nopRecorder) CompletionRequested() {}
func (nopRecorder) CompletionFailed()    {}

// Config configures a Shell. The zero value is usable.
type Config struct {
	// Prompt defaults to "(<root name>) " on a terminal and "" otherwise.
	Prompt string
	Intro  string
	// Separator follows completed command names. Defaults to " ".
	Separator   string
	HistoryFile string
	// HelpKey lists the commands that may follow when "?" is typed.
	HelpKey bool

	Stdin  io.ReadCloser
	Stdout io.Writer
	Stderr io.Writer

	Logger   *slog.Logger
	Recorder Recorder

	// Default handles a line naming no command. It defaults to
	// printing "*** Unknown syntax: <line>".
	Default func(line string)
	// EmptyLine runs for blank lines. Defaults to doing nothing.
	EmptyLine func()
	// PreCmd may rewrite a line before it is dispatched.
	PreCmd func(line string) string
	// PostCmd sees the dispatch result and decides whether to stop.
	PostCmd  func(stop bool, line string) bool
	PreLoop  func()
	PostLoop func()
}

// Shell is an interpreter bound to one command tree.
type Shell struct {
	cfg       Config
	root      *cmdtree.Group
	stdout    io.Writer
	stderr    io.Writer
	logger    *slog.Logger
	recorder  Recorder
	completer *Completer
	rl        *readline.Instance
	lastCmd   string
}

// New returns a Shell for root. The exit, EOF and help commands are
// added unless root declares its own. The tree is validated here; a
// malformed tree is an error.
func New(root *cmdtree.Group, cfg Config) (*Shell, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", cmdtree.ErrMalformedTree)
	}
	if cfg.Separator == "" {
		cfg.Separator = " "
	}
	s := &Shell{
		cfg:      cfg,
		stdout:   cfg.Stdout,
		stderr:   cfg.Stderr,
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
	}
	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	if s.stderr == nil {
		s.stderr = os.Stderr
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}

	s.root = s.withBuiltins(root)
	if err := cmdtree.Validate(s.root); err != nil {
		return nil, err
	}
	s.completer = newCompleter(s.root, cfg.Separator, s.stdout, s.logger, s.recorder)
	return s, nil
}

// withBuiltins copies root's top level and adds the reserved commands
// it does not define.
func (s *Shell) withBuiltins(root *cmdtree.Group) *cmdtree.Group {
	g := cmdtree.NewGroup(root.Name(), root.Doc(), root.Children()...)
	g.WithHelp(root.Help())
	for _, fn := range root.Completers() {
		g.WithCompleter(fn)
	}
	exit := func(context.Context, string) error { return cmdtree.ErrExit }
	builtins := []cmdtree.Node{
		cmdtree.NewLeaf("exit", "Exit the interactive interpreter.", exit),
		cmdtree.NewLeaf("EOF", "Exit the interactive interpreter.", exit),
		cmdtree.NewLeaf("help", "Show help for a command.", s.doHelp).
			WithHelp(func(string) string { return "Help about the help system" }),
	}
	for _, b := range builtins {
		if _, ok := g.Child(b.Name()); !ok {
			g.Add(b)
		}
	}
	return g
}

// Root returns the tree the shell dispatches on, including built-ins.
func (s *Shell) Root() *cmdtree.Group {
	return s.root
}

// Completer returns the shell's completion adapter.
func (s *Shell) Completer() *Completer {
	return s.completer
}

// Run reads and dispatches lines until a command ends the session or
// input is exhausted. End of input dispatches "EOF". An error returned
// by a command ends the loop and is returned unchanged.
func (s *Shell) Run(ctx context.Context) error {
	prompt := s.cfg.Prompt
	if prompt == "" {
		prompt = defaultPrompt(s.root.Name(), s.cfg.Stdin)
	}
	rlCfg := &readline.Config{
		Prompt:          prompt,
		HistoryFile:     s.cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    s.completer,
		Stdin:           s.cfg.Stdin,
		Stdout:          s.stdout,
		Stderr:          s.stderr,
	}
	if s.cfg.HelpKey {
		rlCfg.Listener = readline.FuncListener(s.helpKey)
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer rl.Close()
	s.rl = rl
	s.completer.out = rl.Stdout()
	s.completer.redraw = rl.Refresh
	s.completer.ctx = ctx
	defer func() {
		s.completer.Reset()
		s.completer.out = s.stdout
		s.completer.redraw = nil
		s.completer.ctx = context.Background()
		s.rl = nil
	}()

	if s.cfg.PreLoop != nil {
		s.cfg.PreLoop()
	}
	if s.cfg.Intro != "" {
		fmt.Fprintln(s.stdout, s.cfg.Intro)
	}

	for {
		line, err := rl.Readline()
		eof := false
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				// Cancel: drop the line and any completion state.
				s.completer.Reset()
				continue
			}
			if !errors.Is(err, io.EOF) {
				return fmt.Errorf("readline: %w", err)
			}
			line, eof = "EOF", true
		}

		if s.cfg.PreCmd != nil {
			line = s.cfg.PreCmd(line)
		}
		stop, err := s.OneCmd(ctx, line)
		if err != nil {
			return err
		}
		if s.cfg.PostCmd != nil {
			stop = s.cfg.PostCmd(stop, line)
		}
		if stop || eof {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if s.cfg.PostLoop != nil {
		s.cfg.PostLoop()
	}
	return nil
}

// helpKey prints the possible completions when "?" is typed, the way
// a router CLI does, and removes the "?" from the line.
func (s *Shell) helpKey(line []rune, pos int, key rune) ([]rune, int, bool) {
	if key != '?' || pos < 1 {
		return line, pos, false
	}
	clean := make([]rune, 0, len(line)-1)
	clean = append(clean, line[:pos-1]...)
	clean = append(clean, line[pos:]...)
	text := string(clean[:pos-1])

	candidates := Describe(s.root, text, len(text))
	if len(candidates) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "  (no help available)")
		return clean, pos - 1, true
	}
	cmdtree.WriteHelp(s.rl.Stdout(), candidates)
	return clean, pos - 1, true
}

func defaultPrompt(name string, in io.Reader) string {
	f, ok := in.(*os.File)
	if in == nil {
		f, ok = os.Stdin, true
	}
	if ok && term.IsTerminal(int(f.Fd())) {
		return "(" + name + ") "
	}
	return ""
}
