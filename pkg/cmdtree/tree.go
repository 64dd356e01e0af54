// Package cmdtree defines the command tree walked by the interpreter.
//
// A tree is built once at startup from three node kinds:
//   - Group: a live container of named children
//   - Template: a stateless group constructor, instantiated fresh on
//     every traversal step that reaches it
//   - Leaf: an invocable command taking the remaining argument text
//
// Dispatch, help lookup and tab completion in pkg/cli all walk the
// same tree using the rules in this package.
package cmdtree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// ErrExit is returned by a Handler to end the interactive session.
var ErrExit = errors.New("exit")

// Handler runs a leaf command with the argument text left after the
// command path.
type Handler func(ctx context.Context, args string) error

// HelpFunc produces help text for a node. args holds any words typed
// after the node's path in "help <path> <args>".
type HelpFunc func(args string) string

// Completer produces candidates for the word currently being typed.
// A Completer that cannot produce candidates right now returns an error
// built with CompletionError.
type Completer func(ctx context.Context, token string) ([]string, error)

// Node is a command tree node. It is implemented by *Group, *Template
// and *Leaf only.
type Node interface {
	Name() string
	Doc() string
	Help() HelpFunc
	Completers() []Completer
	node()
}

// Container is a node that owns children: *Group or *Template.
type Container interface {
	Node
	// Instantiate returns the live group to traverse. Templates build
	// a fresh instance on every call.
	Instantiate() *Group
}

type meta struct {
	name       string
	doc        string
	help       HelpFunc
	completers []Completer
}

func (m *meta) Name() string            { return m.name }
func (m *meta) Doc() string             { return m.doc }
func (m *meta) Help() HelpFunc          { return m.help }
func (m *meta) Completers() []Completer { return m.completers }
func (m *meta) node()                   {}

// Group is a live container of named children.
type Group struct {
	meta
	children []Node
	index    map[string]Node
	dups     []string
}

// NewGroup returns a group holding children. Duplicate child names are
// recorded and reported by Validate.
func NewGroup(name, doc string, children ...Node) *Group {
	g := &Group{meta: meta{name: name, doc: doc}, index: make(map[string]Node)}
	for _, c := range children {
		g.Add(c)
	}
	return g
}

// Add appends a child. It is meant for tree construction only; a tree
// must not change once a session is running.
func (g *Group) Add(child Node) *Group {
	if g.index == nil {
		g.index = make(map[string]Node)
	}
	g.children = append(g.children, child)
	if child == nil {
		return g
	}
	if _, ok := g.index[child.Name()]; ok {
		g.dups = append(g.dups, child.Name())
	}
	g.index[child.Name()] = child
	return g
}

// WithHelp sets the help override.
func (g *Group) WithHelp(fn HelpFunc) *Group {
	g.help = fn
	return g
}

// WithCompleter appends a completion producer.
func (g *Group) WithCompleter(fn Completer) *Group {
	g.completers = append(g.completers, fn)
	return g
}

// Instantiate returns g itself.
func (g *Group) Instantiate() *Group { return g }

// Child returns the child with exactly the given name.
func (g *Group) Child(name string) (Node, bool) {
	n, ok := g.index[name]
	return n, ok
}

// Names returns the child names in sorted order.
func (g *Group) Names() []string {
	return KeysFromTree(g.index)
}

// Children returns the children in declaration order.
func (g *Group) Children() []Node {
	return g.children
}

// Template declares a group that is built fresh whenever a traversal
// reaches it. No state survives between instantiations.
type Template struct {
	meta
	newFn func() *Group
}

// NewTemplate returns a template whose instances come from fn.
func NewTemplate(name, doc string, fn func() *Group) *Template {
	return &Template{meta: meta{name: name, doc: doc}, newFn: fn}
}

// WithHelp sets the help override.
func (t *Template) WithHelp(fn HelpFunc) *Template {
	t.help = fn
	return t
}

// WithCompleter appends a completion producer.
func (t *Template) WithCompleter(fn Completer) *Template {
	t.completers = append(t.completers, fn)
	return t
}

// Instantiate builds a new instance. The instance takes the template's
// name, and its doc, help override and completers when it declares none
// of its own.
func (t *Template) Instantiate() *Group {
	g := t.newFn()
	if g == nil {
		return nil
	}
	g.name = t.name
	if g.doc == "" {
		g.doc = t.doc
	}
	if g.help == nil {
		g.help = t.help
	}
	if len(g.completers) == 0 {
		g.completers = t.completers
	}
	return g
}

// Leaf is an invocable command.
type Leaf struct {
	meta
	run Handler
}

// NewLeaf returns a leaf that runs fn.
func NewLeaf(name, doc string, fn Handler) *Leaf {
	return &Leaf{meta: meta{name: name, doc: doc}, run: fn}
}

// WithHelp sets the help override.
func (l *Leaf) WithHelp(fn HelpFunc) *Leaf {
	l.help = fn
	return l
}

// WithCompleter appends a completion producer.
func (l *Leaf) WithCompleter(fn Completer) *Leaf {
	l.completers = append(l.completers, fn)
	return l
}

// Run invokes the handler.
func (l *Leaf) Run(ctx context.Context, args string) error {
	return l.run(ctx, args)
}

// --- Helper functions ---

// KeysFromTree returns the names in tree, sorted.
func KeysFromTree(tree map[string]Node) []string {
	return slices.Sorted(maps.Keys(tree))
}

// Candidate holds a command name and its description for display.
type Candidate struct {
	Name string
	Desc string
}

// HelpCandidates returns Candidates for the children of g.
func HelpCandidates(g *Group) []Candidate {
	candidates := make([]Candidate, 0, len(g.index))
	for _, name := range g.Names() {
		candidates = append(candidates, Candidate{Name: name, Desc: firstLine(g.index[name].Doc())})
	}
	return candidates
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

// WriteHelp lists candidates under a "Possible completions:" header,
// sorted by name with descriptions in a column at least 20 wide. The
// listing reaches w in a single Write, so a line editor redraws its
// prompt once.
func WriteHelp(w io.Writer, candidates []Candidate) {
	slices.SortFunc(candidates, func(a, b Candidate) int { return strings.Compare(a.Name, b.Name) })
	width := 20
	for _, c := range candidates {
		width = max(width, len(c.Name)+2)
	}
	var sb strings.Builder
	sb.WriteString("Possible completions:\n")
	for _, c := range candidates {
		if c.Desc == "" {
			fmt.Fprintf(&sb, "  %s\n", c.Name)
			continue
		}
		fmt.Fprintf(&sb, "  %-*s %s\n", width, c.Name, c.Desc)
	}
	io.WriteString(w, sb.String())
}

// FilterPrefix returns the items that start with prefix, in order. An
// empty prefix returns items itself.
func FilterPrefix(items []string, prefix string) []string {
	if prefix == "" {
		return items
	}
	return slices.DeleteFunc(slices.Clone(items), func(item string) bool {
		return !strings.HasPrefix(item, prefix)
	})
}

// CompleteList returns the items starting with token, each followed by
// a single space so the cursor lands on the next word. The space is
// fixed: completers run without the shell, so Config.Separator applies
// only to the command names the engine itself offers.
func CompleteList(items []string, token string) []string {
	matched := FilterPrefix(items, token)
	result := make([]string, len(matched))
	for i, item := range matched {
		result[i] = item + " "
	}
	return result
}
