package slash

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestSyncInputOpensOnSlashToken(t *testing.T) {
	state := NewState(0)
	state.SyncInput("/co")
	if !state.Open() {
		t.Fatalf("expected slash popup to open")
	}
	got := state.Matches()
	if len(got) == 0 || got[0].Command != CommandCopy {
		t.Fatalf("expected /copy as best match, got %+v", got)
	}
}

func TestSyncInputOpensOnBareSlash(t *testing.T) {
	state := NewState(0)
	state.SyncInput("/")
	if !state.Open() {
		t.Fatalf("expected slash popup to open on bare slash")
	}
	if len(state.Matches()) != len(builtinItems()) {
		t.Fatalf("expected all commands on bare slash, got %d", len(state.Matches()))
	}
}

func TestSyncInputClosesForPlainTextAndArgs(t *testing.T) {
	state := NewState(0)
	for _, value := range []string{"hello", "/copy now", "/help\nmore", ""} {
		state.SyncInput(value)
		if state.Open() {
			t.Fatalf("SyncInput(%q) should keep popup closed", value)
		}
	}
}

func TestHandleKeyTabCompletesBuiltin(t *testing.T) {
	state := NewState(0)
	state.SyncInput("/he")
	action, handled := state.HandleKey("tab")
	if !handled {
		t.Fatalf("expected tab handled")
	}
	if action.Kind != ActionInsert || action.NewValue != "/help " {
		t.Fatalf("unexpected action %+v", action)
	}
}

func TestHandleKeyEnterDispatchesCommand(t *testing.T) {
	state := NewState(0)
	state.SyncInput("/quit")
	action, handled := state.HandleKey("enter")
	if !handled {
		t.Fatalf("expected enter handled")
	}
	if action.Kind != ActionSubmit || action.Command != CommandQuit {
		t.Fatalf("unexpected action %+v", action)
	}
	if state.Open() {
		t.Fatalf("popup should close after submit")
	}
}

func TestHandleKeyNavigationWraps(t *testing.T) {
	state := NewState(0)
	state.SyncInput("/")
	if _, handled := state.HandleKey("up"); !handled {
		t.Fatalf("expected up handled")
	}
	action, _ := state.HandleKey("enter")
	last := builtinItems()[len(builtinItems())-1].Command
	if action.Command != last {
		t.Fatalf("up from first entry should select the last, got %q", action.Command)
	}
}

func TestHandleKeyIgnoredWhenClosed(t *testing.T) {
	state := NewState(0)
	if _, handled := state.HandleKey("enter"); handled {
		t.Fatalf("closed popup must not consume keys")
	}
}

func TestResolveSubmit(t *testing.T) {
	state := NewState(0)
	if action := state.ResolveSubmit("/copy"); action.Kind != ActionSubmit || action.Command != CommandCopy {
		t.Fatalf("expected submit command, got %+v", action)
	}
	if action := state.ResolveSubmit("/status verbose"); action.Args != "verbose" {
		t.Fatalf("expected args, got %+v", action)
	}
	for _, text := range []string{"/nope", "/etc/hosts what is this file?", "/h is for help?"} {
		if action := state.ResolveSubmit(text); action.Kind != ActionNone {
			t.Fatalf("ResolveSubmit(%q) = %+v, want plain message", text, action)
		}
	}
	if action := state.ResolveSubmit("plain text"); action.Kind != ActionNone {
		t.Fatalf("expected no action for plain text, got %+v", action)
	}
}

func TestView(t *testing.T) {
	state := NewState(0)
	state.SyncInput("/")
	view := ansi.Strip(state.View(60))
	for _, item := range builtinItems() {
		if !strings.Contains(view, item.DisplayName()) {
			t.Fatalf("view missing %s:\n%s", item.DisplayName(), view)
		}
	}
	state.SyncInput("/zzz")
	if got := ansi.Strip(state.View(60)); got != "no matches" {
		t.Fatalf("View() = %q", got)
	}
}

func TestHandleKeyEnterWithoutMatchesFallsThrough(t *testing.T) {
	state := NewState(0)
	state.SyncInput("/etc/hosts")
	if !state.Open() {
		t.Fatalf("expected popup to open for a single slash token")
	}
	if len(state.Matches()) != 0 {
		t.Fatalf("expected no matches, got %v", state.Matches())
	}
	if _, handled := state.HandleKey("enter"); handled {
		t.Fatalf("enter without matches must be left to the composer")
	}
	if state.Open() {
		t.Fatalf("popup should close")
	}
}
