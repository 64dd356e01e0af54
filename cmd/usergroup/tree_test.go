package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/psaab/shellac/pkg/cli"
)

func newTestShell(t *testing.T, dir *Directory) (*cli.Shell, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	sh, err := cli.New(buildTree(dir, out), cli.Config{
		Stdout: out,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("cli.New: %v", err)
	}
	return sh, out
}

func TestUsergroupCommands(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "add user",
			lines: []string{"user add zebedee", "user list"},
			want:  "Added user: zebedee\nalice anne bob bruce cliff clive zebedee\n",
		},
		{
			name:  "remove missing user",
			lines: []string{"user remove nobody"},
			want:  "No such user to remove: nobody\n",
		},
		{
			name:  "edit user usage",
			lines: []string{"user edit alice"},
			want:  "usage: user edit <user> <new-name>\n",
		},
		{
			name:  "search users",
			lines: []string{"user search b"},
			want:  "bob bruce\n",
		},
		{
			name:  "group sees groups added earlier",
			lines: []string{"group add admins", "group list"},
			want:  "Added group: admins\nadmins staff students visitors\n",
		},
		{
			name:  "member add",
			lines: []string{"group member add visitors cliff", "group member list visitors"},
			want:  "Added member: cliff\ncliff\n",
		},
		{
			name:  "unknown command",
			lines: []string{"user frob"},
			want:  "*** Unknown syntax: user frob\n",
		},
		{
			name:  "group help is its doc",
			lines: []string{"help group"},
			want:  "This command works with groups.",
		},
		{
			name:  "nested help",
			lines: []string{"help group member add"},
			want:  "Add members: add <group> <user>...\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh, out := newTestShell(t, testDirectory())
			for _, line := range tt.lines {
				if _, err := sh.OneCmd(context.Background(), line); err != nil {
					t.Fatalf("OneCmd(%q): %v", line, err)
				}
			}
			if !strings.HasPrefix(out.String(), tt.want) {
				t.Errorf("output = %q, want prefix %q", out.String(), tt.want)
			}
		})
	}
}

func TestUserHelpOverride(t *testing.T) {
	sh, out := newTestShell(t, testDirectory())
	if _, err := sh.OneCmd(context.Background(), "help user"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "'help user' command run at ") {
		t.Errorf("help user = %q", out.String())
	}
}

func TestUsergroupExit(t *testing.T) {
	sh, _ := newTestShell(t, testDirectory())
	stop, err := sh.OneCmd(context.Background(), "exit")
	if err != nil || !stop {
		t.Errorf("exit = %v, %v; want stop", stop, err)
	}
}

func completions(sh *cli.Shell, buf string) []string {
	var got []string
	c := sh.Completer()
	for state := 0; ; state++ {
		cand, ok := c.Complete(context.Background(), buf, len(buf), state)
		if !ok {
			return got
		}
		got = append(got, cand)
	}
}

func TestUsergroupCompletion(t *testing.T) {
	tests := []struct {
		buf  string
		want []string
	}{
		{"us", []string{"user "}},
		{"user re", []string{"remove "}},
		{"user remove a", []string{"alice ", "anne "}},
		{"group remove st", []string{"staff ", "students "}},
		{"group member add s", []string{"staff ", "students "}},
		{"help group m", []string{"member "}},
	}
	for _, tt := range tests {
		t.Run(tt.buf, func(t *testing.T) {
			sh, _ := newTestShell(t, testDirectory())
			if got := completions(sh, tt.buf); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("completions(%q) = %q, want %q", tt.buf, got, tt.want)
			}
		})
	}
}

func TestUsergroupCompletionTimeout(t *testing.T) {
	dir := testDirectory()
	dir.latency = time.Second
	dir.timeout = time.Millisecond
	sh, out := newTestShell(t, dir)
	if got := completions(sh, "user remove a"); len(got) != 0 {
		t.Errorf("completions after timeout = %q", got)
	}
	if out.String() != "\nSearch timed out.\n" {
		t.Errorf("failure output = %q", out.String())
	}
}
