package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/psaab/shellac/pkg/cmdtree"
)

// resolveCommand walks root consuming tokens that exactly match child
// names until it reaches a leaf. ok is false when a token matches no
// child, or when the tokens run out at a group, which cannot be invoked.
func resolveCommand(root *cmdtree.Group, tokens []string) (leaf *cmdtree.Leaf, path []string, args string, ok bool) {
	cur := root
	for i, tok := range tokens {
		child, found := cur.Child(tok)
		if !found {
			return nil, nil, "", false
		}
		switch n := child.(type) {
		case *cmdtree.Leaf:
			return n, tokens[:i+1], strings.Join(tokens[i+1:], " "), true
		case cmdtree.Container:
			// Templates build a fresh instance here.
			if cur = n.Instantiate(); cur == nil {
				return nil, nil, "", false
			}
		}
	}
	return nil, nil, "", false
}

// OneCmd dispatches a single line. stop reports that a command asked to
// end the session. Errors returned by a command are passed through
// unchanged.
func (s *Shell) OneCmd(ctx context.Context, line string) (stop bool, err error) {
	tokens := Fields(line)
	if len(tokens) == 0 {
		s.emptyLine()
		return false, nil
	}
	s.lastCmd = line
	if line == "EOF" {
		s.lastCmd = ""
	}

	leaf, path, args, ok := resolveCommand(s.root, tokens)
	if !ok {
		s.logger.Debug("unknown command", "line", line)
		s.recorder.Unknown()
		s.defaultHook(line)
		return false, nil
	}

	cmd := strings.Join(path, " ")
	s.logger.Debug("dispatch", "command", cmd, "args", args)
	s.recorder.Dispatched(cmd)
	if err := leaf.Run(ctx, args); err != nil {
		if errors.Is(err, cmdtree.ErrExit) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// RunOnce joins args with single spaces and dispatches the result once.
func (s *Shell) RunOnce(ctx context.Context, args []string) error {
	_, err := s.OneCmd(ctx, strings.Join(args, " "))
	return err
}

// LastCmd returns the last non-empty line dispatched. Dispatching "EOF"
// clears it.
func (s *Shell) LastCmd() string {
	return s.lastCmd
}

func (s *Shell) emptyLine() {
	if s.cfg.EmptyLine != nil {
		s.cfg.EmptyLine()
	}
}

func (s *Shell) defaultHook(line string) {
	if s.cfg.Default != nil {
		s.cfg.Default(line)
		return
	}
	fmt.Fprintf(s.stdout, "*** Unknown syntax: %s\n", line)
}
