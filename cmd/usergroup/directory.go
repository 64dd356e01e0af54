package main

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/psaab/shellac/pkg/cmdtree"
)

var (
	errExists   = errors.New("already exists")
	errNotFound = errors.New("not found")
)

// Directory is an in-memory user and group store. Searches go through
// the same timeout a remote directory would impose.
type Directory struct {
	users   map[string]bool
	groups  map[string]map[string]bool
	timeout time.Duration
	latency time.Duration
}

// NewDirectory seeds a directory from cfg.
func NewDirectory(cfg *Config) *Directory {
	d := &Directory{
		users:   make(map[string]bool),
		groups:  make(map[string]map[string]bool),
		timeout: cfg.Timeout,
		latency: cfg.Latency,
	}
	for _, u := range cfg.Users {
		d.users[u] = true
	}
	for g, members := range cfg.Groups {
		d.groups[g] = make(map[string]bool)
		for _, m := range members {
			d.groups[g][m] = true
		}
	}
	return d
}

// Users returns the sorted user names.
func (d *Directory) Users() []string { return sortedKeys(d.users) }

// Groups returns the sorted group names.
func (d *Directory) Groups() []string { return sortedKeys(d.groups) }

// Members returns the sorted members of group.
func (d *Directory) Members(group string) ([]string, error) {
	members, ok := d.groups[group]
	if !ok {
		return nil, errNotFound
	}
	return sortedKeys(members), nil
}

func (d *Directory) AddUser(name string) error {
	if d.users[name] {
		return errExists
	}
	d.users[name] = true
	return nil
}

// RemoveUser deletes a user and drops it from every group.
func (d *Directory) RemoveUser(name string) error {
	if !d.users[name] {
		return errNotFound
	}
	delete(d.users, name)
	for _, members := range d.groups {
		delete(members, name)
	}
	return nil
}

// RenameUser renames a user, keeping its group memberships.
func (d *Directory) RenameUser(from, to string) error {
	if !d.users[from] {
		return errNotFound
	}
	if d.users[to] {
		return errExists
	}
	delete(d.users, from)
	d.users[to] = true
	for _, members := range d.groups {
		if members[from] {
			delete(members, from)
			members[to] = true
		}
	}
	return nil
}

func (d *Directory) AddGroup(name string) error {
	if _, ok := d.groups[name]; ok {
		return errExists
	}
	d.groups[name] = make(map[string]bool)
	return nil
}

func (d *Directory) RemoveGroup(name string) error {
	if _, ok := d.groups[name]; !ok {
		return errNotFound
	}
	delete(d.groups, name)
	return nil
}

func (d *Directory) RenameGroup(from, to string) error {
	members, ok := d.groups[from]
	if !ok {
		return errNotFound
	}
	if _, ok := d.groups[to]; ok {
		return errExists
	}
	delete(d.groups, from)
	d.groups[to] = members
	return nil
}

// AddMember adds an existing user to an existing group.
func (d *Directory) AddMember(group, user string) error {
	members, ok := d.groups[group]
	if !ok || !d.users[user] {
		return errNotFound
	}
	if members[user] {
		return errExists
	}
	members[user] = true
	return nil
}

func (d *Directory) RemoveMember(group, user string) error {
	members, ok := d.groups[group]
	if !ok || !members[user] {
		return errNotFound
	}
	delete(members, user)
	return nil
}

// SearchUsers returns the users whose names start with prefix.
func (d *Directory) SearchUsers(ctx context.Context, prefix string) ([]string, error) {
	return d.search(ctx, d.Users(), prefix)
}

// SearchGroups returns the groups whose names start with prefix.
func (d *Directory) SearchGroups(ctx context.Context, prefix string) ([]string, error) {
	return d.search(ctx, d.Groups(), prefix)
}

func (d *Directory) search(ctx context.Context, names []string, prefix string) ([]string, error) {
	if d.latency > 0 {
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}
		t := time.NewTimer(d.latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, cmdtree.CompletionError("Search timed out.")
			}
			return nil, ctx.Err()
		}
	}
	return cmdtree.FilterPrefix(names, prefix), nil
}

// userCompleter and groupCompleter offer directory entries as argument
// words.
func (d *Directory) userCompleter(ctx context.Context, token string) ([]string, error) {
	return d.complete(d.SearchUsers(ctx, token))
}

func (d *Directory) groupCompleter(ctx context.Context, token string) ([]string, error) {
	return d.complete(d.SearchGroups(ctx, token))
}

func (d *Directory) complete(names []string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	return cmdtree.CompleteList(names, ""), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// argWords splits argument text, which arrives as a single string.
func argWords(args string) []string {
	return strings.Fields(args)
}
