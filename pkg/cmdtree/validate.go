package cmdtree

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrMalformedTree is wrapped by every error Validate returns.
var ErrMalformedTree = errors.New("malformed command tree")

// ErrCompletion marks a Completer failure that should be reported to the
// user without ending the session.
var ErrCompletion = errors.New("completion failed")

type completionError struct {
	msg string
}

func (e *completionError) Error() string { return e.msg }

func (e *completionError) Is(target error) bool { return target == ErrCompletion }

// CompletionError returns an error reporting msg that matches
// ErrCompletion under errors.Is.
func CompletionError(msg string) error {
	if msg == "" {
		msg = "Error during completion."
	}
	return &completionError{msg: msg}
}

// Validate checks the tree rooted at root and returns the first defect
// found. Templates are instantiated once so their shape is checked too.
func Validate(root *Group) error {
	if root == nil {
		return fmt.Errorf("%w: nil root", ErrMalformedTree)
	}
	v := &validator{active: make(map[Node]bool)}
	return v.group(root, root, root.Name())
}

type validator struct {
	// containers being expanded on the current path. A tree may refer
	// back to one of its ancestors, so each is checked once per path.
	active map[Node]bool
}

func (v *validator) group(owner Node, g *Group, path string) error {
	v.active[owner] = true
	defer delete(v.active, owner)

	if len(g.dups) > 0 {
		return fmt.Errorf("%w: %s: duplicate command %q", ErrMalformedTree, path, g.dups[0])
	}
	for _, child := range g.children {
		if child == nil {
			return fmt.Errorf("%w: %s: nil command", ErrMalformedTree, path)
		}
		name := child.Name()
		if err := checkName(name); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedTree, path, err)
		}
		childPath := strings.TrimSpace(path + " " + name)
		switch n := child.(type) {
		case *Leaf:
			if n.run == nil {
				return fmt.Errorf("%w: %s: leaf has no handler", ErrMalformedTree, childPath)
			}
		case *Group:
			if v.active[n] {
				continue
			}
			if err := v.group(n, n, childPath); err != nil {
				return err
			}
		case *Template:
			if v.active[n] {
				continue
			}
			if n.newFn == nil {
				return fmt.Errorf("%w: %s: template has no constructor", ErrMalformedTree, childPath)
			}
			inst := n.Instantiate()
			if inst == nil {
				return fmt.Errorf("%w: %s: template constructor returned nil", ErrMalformedTree, childPath)
			}
			if err := v.group(n, inst, childPath); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkName(name string) error {
	if name == "" {
		return errors.New("empty command name")
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("command name %q contains whitespace", name)
	}
	return nil
}
