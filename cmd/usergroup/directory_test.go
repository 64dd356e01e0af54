package main

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/psaab/shellac/pkg/cmdtree"
)

func testDirectory() *Directory {
	cfg := &Config{Timeout: time.Second}
	cfg.seedDirectory()
	return NewDirectory(cfg)
}

func TestDirectoryUsers(t *testing.T) {
	d := testDirectory()
	if err := d.AddUser("zebedee"); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if err := d.AddUser("zebedee"); !errors.Is(err, errExists) {
		t.Errorf("AddUser duplicate = %v, want errExists", err)
	}
	if err := d.RenameUser("bob", "robert"); err != nil {
		t.Fatalf("RenameUser: %v", err)
	}
	members, _ := d.Members("staff")
	if want := []string{"alice", "robert"}; !reflect.DeepEqual(members, want) {
		t.Errorf("staff members after rename = %v, want %v", members, want)
	}
	if err := d.RemoveUser("alice"); err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}
	members, _ = d.Members("staff")
	if want := []string{"robert"}; !reflect.DeepEqual(members, want) {
		t.Errorf("staff members after remove = %v, want %v", members, want)
	}
	if err := d.RemoveUser("alice"); !errors.Is(err, errNotFound) {
		t.Errorf("RemoveUser missing = %v, want errNotFound", err)
	}
}

func TestDirectoryGroups(t *testing.T) {
	d := testDirectory()
	tests := []struct {
		name string
		op   func() error
		want error
	}{
		{"add group", func() error { return d.AddGroup("admins") }, nil},
		{"add existing group", func() error { return d.AddGroup("staff") }, errExists},
		{"rename group", func() error { return d.RenameGroup("visitors", "guests") }, nil},
		{"rename onto existing", func() error { return d.RenameGroup("guests", "staff") }, errExists},
		{"remove missing group", func() error { return d.RemoveGroup("visitors") }, errNotFound},
		{"add member", func() error { return d.AddMember("admins", "cliff") }, nil},
		{"add member twice", func() error { return d.AddMember("admins", "cliff") }, errExists},
		{"add unknown user", func() error { return d.AddMember("admins", "nobody") }, errNotFound},
		{"remove member", func() error { return d.RemoveMember("staff", "bob") }, nil},
		{"remove non-member", func() error { return d.RemoveMember("staff", "bob") }, errNotFound},
	}
	for _, tt := range tests {
		if err := tt.op(); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
	if want := []string{"admins", "guests", "staff", "students"}; !reflect.DeepEqual(d.Groups(), want) {
		t.Errorf("Groups() = %v, want %v", d.Groups(), want)
	}
}

func TestDirectorySearch(t *testing.T) {
	d := testDirectory()
	got, err := d.SearchUsers(context.Background(), "cl")
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if want := []string{"cliff", "clive"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SearchUsers(cl) = %v, want %v", got, want)
	}
	got, err = d.SearchGroups(context.Background(), "st")
	if err != nil {
		t.Fatalf("SearchGroups: %v", err)
	}
	if want := []string{"staff", "students"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SearchGroups(st) = %v, want %v", got, want)
	}
}

func TestDirectorySearchTimeout(t *testing.T) {
	d := testDirectory()
	d.latency = time.Second
	d.timeout = time.Millisecond
	_, err := d.SearchUsers(context.Background(), "")
	if !errors.Is(err, cmdtree.ErrCompletion) {
		t.Fatalf("SearchUsers = %v, want a completion error", err)
	}
	if err.Error() != "Search timed out." {
		t.Errorf("message = %q", err.Error())
	}
}

func TestDirectorySearchCanceled(t *testing.T) {
	d := testDirectory()
	d.latency = time.Second
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.SearchUsers(ctx, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("SearchUsers = %v, want context.Canceled", err)
	}
	if errors.Is(err, cmdtree.ErrCompletion) {
		t.Error("a canceled search was reported as a timeout")
	}
}
