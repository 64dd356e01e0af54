package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/psaab/shellac/pkg/cmdtree"
)

// ResolveHelp finds the help text for the command path in tokens,
// starting at g. At each level the deepest resolvable text wins; a node
// falls back from its help override to its doc string. An empty result
// means no help is available. Command handlers are never run.
func ResolveHelp(tokens []string, g *cmdtree.Group) string {
	if len(tokens) == 0 {
		return nodeHelp(g, "")
	}
	child, ok := g.Child(tokens[0])
	if !ok {
		return ""
	}
	rest := tokens[1:]
	if len(rest) > 0 {
		if c, ok := child.(cmdtree.Container); ok {
			if inst := c.Instantiate(); inst != nil {
				if text := ResolveHelp(rest, inst); text != "" {
					return text
				}
			}
		}
	}
	return nodeHelp(child, strings.Join(rest, " "))
}

func nodeHelp(n cmdtree.Node, args string) string {
	if fn := n.Help(); fn != nil {
		return fn(args)
	}
	return n.Doc()
}

// doHelp is the built-in "help" command.
func (s *Shell) doHelp(_ context.Context, args string) error {
	text := ResolveHelp(Fields(args), s.root)
	if text == "" {
		topic := strings.Join(Fields(args), " ")
		if topic == "" {
			topic = s.root.Name()
		}
		text = "*** No help for " + topic
	}
	fmt.Fprintln(s.stdout, text)
	return nil
}
