package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/psaab/shellac/pkg/cmdtree"
)

const rootDoc = `This is a tool which pretends to modify users and groups.

Press <TAB> (or type 'help <TAB>') to see what you can do...`

// buildTree returns the usergroup command tree. Handlers write to out.
func buildTree(dir *Directory, out io.Writer) *cmdtree.Group {
	users := &userCommands{dir: dir, out: out}
	return cmdtree.NewGroup("usergroup", rootDoc,
		cmdtree.NewGroup("user", "Work with users.",
			cmdtree.NewLeaf("list", "Print a list of all users.", users.list),
			cmdtree.NewLeaf("add", "Add a new user.", users.add),
			cmdtree.NewLeaf("remove", "Remove a user.", users.remove).
				WithCompleter(dir.userCompleter),
			cmdtree.NewLeaf("edit", "Rename a user: edit <user> <new-name>.", users.edit).
				WithCompleter(dir.userCompleter),
			cmdtree.NewLeaf("search", "Search users by name prefix.", users.search).
				WithCompleter(dir.userCompleter),
		).WithHelp(func(string) string {
			now := time.Now()
			return fmt.Sprintf("'help user' command run at %d:%02d", now.Hour(), now.Minute())
		}),
		cmdtree.NewTemplate("group", `This command works with groups.

This help is the doc string of the group command, displayed since it
declares no help override.`, func() *cmdtree.Group {
			return newGroupCommands(dir, out).tree()
		}),
	)
}

type userCommands struct {
	dir *Directory
	out io.Writer
}

func (u *userCommands) list(context.Context, string) error {
	fmt.Fprintln(u.out, strings.Join(u.dir.Users(), " "))
	return nil
}

func (u *userCommands) add(_ context.Context, args string) error {
	for _, name := range argWords(args) {
		if err := u.dir.AddUser(name); err != nil {
			fmt.Fprintf(u.out, "User %s: %v\n", name, err)
			continue
		}
		fmt.Fprintln(u.out, "Added user:", name)
	}
	return nil
}

func (u *userCommands) remove(_ context.Context, args string) error {
	for _, name := range argWords(args) {
		if err := u.dir.RemoveUser(name); err != nil {
			fmt.Fprintln(u.out, "No such user to remove:", name)
			continue
		}
		fmt.Fprintln(u.out, "Removed user:", name)
	}
	return nil
}

func (u *userCommands) edit(_ context.Context, args string) error {
	words := argWords(args)
	if len(words) != 2 {
		fmt.Fprintln(u.out, "usage: user edit <user> <new-name>")
		return nil
	}
	if err := u.dir.RenameUser(words[0], words[1]); err != nil {
		fmt.Fprintf(u.out, "Edit user %s: %v\n", words[0], err)
		return nil
	}
	fmt.Fprintln(u.out, "Edited user:", words[0], "->", words[1])
	return nil
}

func (u *userCommands) search(ctx context.Context, args string) error {
	names, err := u.dir.SearchUsers(ctx, strings.TrimSpace(args))
	return printSearch(u.out, names, err)
}

// groupCommands is built fresh for every traversal of "group" and
// snapshots the group names it saw, so a whole command line works
// against one view of the directory.
type groupCommands struct {
	dir    *Directory
	out    io.Writer
	groups []string
}

func newGroupCommands(dir *Directory, out io.Writer) *groupCommands {
	return &groupCommands{dir: dir, out: out, groups: dir.Groups()}
}

func (g *groupCommands) tree() *cmdtree.Group {
	return cmdtree.NewGroup("group", "",
		cmdtree.NewLeaf("list", "Print a list of all groups.", g.list),
		cmdtree.NewLeaf("add", "Add a new group.", g.add),
		cmdtree.NewLeaf("remove", "Remove a group.", g.remove).
			WithCompleter(g.complete),
		cmdtree.NewLeaf("edit", "Rename a group: edit <group> <new-name>.", g.edit).
			WithCompleter(g.complete),
		cmdtree.NewLeaf("search", "Search groups by name prefix.", g.search).
			WithCompleter(g.dir.groupCompleter),
		cmdtree.NewGroup("member", "Modify group membership.",
			cmdtree.NewLeaf("list", "List members: list <group>.", g.memberList).
				WithCompleter(g.complete),
			cmdtree.NewLeaf("add", "Add members: add <group> <user>...", g.memberAdd).
				WithCompleter(g.memberCompleter),
			cmdtree.NewLeaf("remove", "Remove members: remove <group> <user>...", g.memberRemove).
				WithCompleter(g.memberCompleter),
		),
	)
}

// complete offers the group names of this instance's snapshot.
func (g *groupCommands) complete(_ context.Context, token string) ([]string, error) {
	return cmdtree.CompleteList(g.groups, token), nil
}

// memberCompleter offers both groups and users: a completer only sees
// the word being typed, not its position on the line.
func (g *groupCommands) memberCompleter(ctx context.Context, token string) ([]string, error) {
	groups := cmdtree.CompleteList(g.groups, token)
	users, err := g.dir.userCompleter(ctx, token)
	if err != nil {
		return nil, err
	}
	return append(groups, users...), nil
}

func (g *groupCommands) list(context.Context, string) error {
	fmt.Fprintln(g.out, strings.Join(g.groups, " "))
	return nil
}

func (g *groupCommands) add(_ context.Context, args string) error {
	for _, name := range argWords(args) {
		if err := g.dir.AddGroup(name); err != nil {
			fmt.Fprintf(g.out, "Group %s: %v\n", name, err)
			continue
		}
		fmt.Fprintln(g.out, "Added group:", name)
	}
	return nil
}

func (g *groupCommands) remove(_ context.Context, args string) error {
	for _, name := range argWords(args) {
		if err := g.dir.RemoveGroup(name); err != nil {
			fmt.Fprintln(g.out, "No such group to remove:", name)
			continue
		}
		fmt.Fprintln(g.out, "Removed group:", name)
	}
	return nil
}

func (g *groupCommands) edit(_ context.Context, args string) error {
	words := argWords(args)
	if len(words) != 2 {
		fmt.Fprintln(g.out, "usage: group edit <group> <new-name>")
		return nil
	}
	if err := g.dir.RenameGroup(words[0], words[1]); err != nil {
		fmt.Fprintf(g.out, "Edit group %s: %v\n", words[0], err)
		return nil
	}
	fmt.Fprintln(g.out, "Edited group:", words[0], "->", words[1])
	return nil
}

func (g *groupCommands) search(ctx context.Context, args string) error {
	names, err := g.dir.SearchGroups(ctx, strings.TrimSpace(args))
	return printSearch(g.out, names, err)
}

func (g *groupCommands) memberList(_ context.Context, args string) error {
	words := argWords(args)
	if len(words) != 1 {
		fmt.Fprintln(g.out, "usage: group member list <group>")
		return nil
	}
	members, err := g.dir.Members(words[0])
	if err != nil {
		fmt.Fprintln(g.out, "No such group:", words[0])
		return nil
	}
	fmt.Fprintln(g.out, strings.Join(members, " "))
	return nil
}

func (g *groupCommands) memberAdd(_ context.Context, args string) error {
	return g.members(args, "Added member:", g.dir.AddMember)
}

func (g *groupCommands) memberRemove(_ context.Context, args string) error {
	return g.members(args, "Removed member:", g.dir.RemoveMember)
}

func (g *groupCommands) members(args, done string, apply func(group, user string) error) error {
	words := argWords(args)
	if len(words) < 2 {
		fmt.Fprintln(g.out, "usage: group member add|remove <group> <user>...")
		return nil
	}
	group := words[0]
	for _, user := range words[1:] {
		if err := apply(group, user); err != nil {
			fmt.Fprintf(g.out, "Member %s of %s: %v\n", user, group, err)
			continue
		}
		fmt.Fprintln(g.out, done, user)
	}
	return nil
}

// printSearch prints search results. A timed-out search is reported
// like any other failed command; it does not end the session.
func printSearch(out io.Writer, names []string, err error) error {
	if err != nil {
		if errors.Is(err, cmdtree.ErrCompletion) {
			fmt.Fprintln(out, err)
			return nil
		}
		return err
	}
	fmt.Fprintln(out, strings.Join(names, " "))
	return nil
}
