package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/psaab/shellac/pkg/cmdtree"
)

// Complete returns the candidates for the words in tokens, the last of
// which is the word being typed, starting at node. Child names are
// suffixed with sep. Completers run only as the sequence is consumed; a
// completer failure is yielded as an error and ends the sequence.
func Complete(ctx context.Context, tokens []string, node cmdtree.Node, sep string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		walkCompletion(ctx, tokens, node, sep, true, yield)
	}
}

// CompleteHelp is Complete for the words after "help". It only offers
// command names and never runs completers.
func CompleteHelp(tokens []string, node cmdtree.Node, sep string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		walkCompletion(context.Background(), tokens, node, sep, false, yield)
	}
}

// walkCompletion yields candidates and reports whether the consumer
// wants more.
func walkCompletion(ctx context.Context, tokens []string, node cmdtree.Node, sep string, useCompleters bool, yield func(string, error) bool) bool {
	var g *cmdtree.Group
	if c, ok := node.(cmdtree.Container); ok {
		if g = c.Instantiate(); g == nil {
			return true
		}
		node = g
	}
	completers := node.Completers()
	if !useCompleters {
		completers = nil
	}

	switch len(tokens) {
	case 0:
		if g == nil {
			return true
		}
		for _, name := range g.Names() {
			if !yield(name, nil) {
				return false
			}
		}
		return true
	case 1:
		if len(completers) > 0 {
			return produce(ctx, completers, tokens[0], yield)
		}
		if g == nil {
			return true
		}
		for _, name := range cmdtree.FilterPrefix(g.Names(), tokens[0]) {
			if !yield(name+sep, nil) {
				return false
			}
		}
		return true
	}

	if g != nil {
		if child, ok := g.Child(tokens[0]); ok {
			return walkCompletion(ctx, tokens[1:], child, sep, useCompleters, yield)
		}
	}
	if len(completers) > 0 {
		// Earlier words are argument text the completers may ignore.
		return produce(ctx, completers, tokens[len(tokens)-1], yield)
	}
	return true
}

// produce runs completers in order and concatenates their output.
func produce(ctx context.Context, completers []cmdtree.Completer, token string, yield func(string, error) bool) bool {
	for _, fn := range completers {
		candidates, err := fn(ctx, token)
		if err != nil {
			yield("", err)
			return false
		}
		for _, c := range candidates {
			if !yield(c, nil) {
				return false
			}
		}
	}
	return true
}

// Completer serves candidates one index at a time for a line editor.
// Calling Complete with state 0 starts a new traversal; later states
// step through it. A failing completer is reported on the output and
// the prompt is redrawn; the failure never reaches the caller.
type Completer struct {
	root     *cmdtree.Group
	sep      string
	out      io.Writer
	redraw   func()
	logger   *slog.Logger
	recorder Recorder
	ctx      context.Context

	next func() (string, error, bool)
	stop func()
}

func newCompleter(root *cmdtree.Group, sep string, out io.Writer, logger *slog.Logger, rec Recorder) *Completer {
	return &Completer{
		root:     root,
		sep:      sep,
		out:      out,
		logger:   logger,
		recorder: rec,
		ctx:      context.Background(),
	}
}

// candidates picks the traversal for the buffer up to pos.
func (c *Completer) candidates(ctx context.Context, buf string, pos int) iter.Seq2[string, error] {
	tokens := Tokenize(buf, pos)
	if len(tokens) > 1 && tokens[0] == "help" {
		return CompleteHelp(tokens[1:], c.root, c.sep)
	}
	return Complete(ctx, tokens, c.root, c.sep)
}

// Complete returns candidate number state for buf with the cursor at
// byte offset pos. buf and pos are only read when state is 0. ok is
// false once the candidates are exhausted or completion failed.
func (c *Completer) Complete(ctx context.Context, buf string, pos, state int) (candidate string, ok bool) {
	if state == 0 {
		c.Reset()
		c.recorder.CompletionRequested()
		c.logger.Debug("completion", "line", buf, "pos", pos)
		c.next, c.stop = iter.Pull2(c.candidates(ctx, buf, pos))
	}
	if c.next == nil {
		return "", false
	}
	candidate, err, ok := c.next()
	if !ok {
		c.Reset()
		return "", false
	}
	if err != nil {
		c.Reset()
		c.fail(err)
		return "", false
	}
	return candidate, true
}

// Reset discards any traversal in progress.
func (c *Completer) Reset() {
	if c.stop != nil {
		c.stop()
	}
	c.next, c.stop = nil, nil
}

func (c *Completer) fail(err error) {
	c.recorder.CompletionFailed()
	if errors.Is(err, cmdtree.ErrCompletion) {
		c.logger.Debug("completion failed", "err", err)
	} else {
		c.logger.Warn("completer error", "err", err)
	}
	fmt.Fprintf(c.out, "\n%s\n", err)
	if c.redraw != nil {
		c.redraw()
	}
}

// Do implements readline.AutoCompleter. It returns the part of each
// candidate that extends the word under the cursor. Candidates that do
// not extend that word cannot be inserted and are skipped.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	pos = max(0, min(pos, len(line)))
	buf := string(line)
	offset := len(string(line[:pos]))
	tokens := Tokenize(buf, offset)
	word := tokens[len(tokens)-1]

	var out [][]rune
	for state := 0; ; state++ {
		candidate, ok := c.Complete(c.ctx, buf, offset, state)
		if !ok {
			break
		}
		if !strings.HasPrefix(candidate, word) {
			continue
		}
		out = append(out, []rune(candidate[len(word):]))
	}
	return out, len([]rune(word))
}

// Describe lists the commands that may follow the words before pos,
// with the first line of their doc strings. It backs the "?" key.
func Describe(root *cmdtree.Group, buf string, pos int) []cmdtree.Candidate {
	tokens := Tokenize(buf, pos)
	g := root
	for _, tok := range tokens[:len(tokens)-1] {
		child, ok := g.Child(tok)
		if !ok {
			return nil
		}
		c, ok := child.(cmdtree.Container)
		if !ok {
			return nil
		}
		if g = c.Instantiate(); g == nil {
			return nil
		}
	}
	word := tokens[len(tokens)-1]
	var matched []cmdtree.Candidate
	for _, cand := range cmdtree.HelpCandidates(g) {
		if strings.HasPrefix(cand.Name, word) {
			matched = append(matched, cand)
		}
	}
	return matched
}
