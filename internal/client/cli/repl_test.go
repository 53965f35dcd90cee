package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.record("register", nil)
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.record("login", nil)
	f.loggedIn = true
	return nil
}
func (f *fakeExec) List(ctx context.Context, args []string) error {
	f.record("ls", args)
	return nil
}
func (f *fakeExec) MakeFolder(ctx context.Context, args []string) error {
	f.record("mkdir", args)
	return nil
}
func (f *fakeExec) Put(ctx context.Context, args []string) error {
	f.record("put", args)
	return nil
}
func (f *fakeExec) Get(ctx context.Context, args []string) error {
	f.record("get", args)
	return nil
}
func (f *fakeExec) RemoveFile(ctx context.Context, args []string) error {
	f.record("rm", args)
	return nil
}
func (f *fakeExec) RemoveFolder(ctx context.Context, args []string) error {
	f.record("rmdir", args)
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.record("logout", nil)
	f.loggedIn = false
	return nil
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"ls docs",
		"mkdir photos docs",
		"put report.pdf docs",
		"get report.pdf docs",
		"rm report.pdf docs",
		"rmdir photos docs",
		"foobar",
		"logout",
		"exit",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"login", "ls", "mkdir", "put", "get", "rm", "rmdir", "logout"}
	if len(exec.calls) != len(wantOrder) {
		t.Fatalf("unexpected calls: %+v", exec.calls)
	}
	for i, want := range wantOrder {
		if exec.calls[i] != want {
			t.Fatalf("call %d: got %q, want %q (all: %+v)", i, exec.calls[i], want, exec.calls)
		}
	}

	// arguments after the command name reach the handler untouched
	if got := exec.args[2]; len(got) != 2 || got[0] != "photos" || got[1] != "docs" {
		t.Fatalf("mkdir args: %+v", got)
	}
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &fakeExec{}
	sc := bufio.NewScanner(strings.NewReader("ls\n"))

	// no "exit" in the input; the loop must stop when the scanner runs dry
	runREPL(context.Background(), exec, func() string { return "" }, sc)

	if len(exec.calls) != 1 || exec.calls[0] != "ls" {
		t.Fatalf("unexpected calls: %+v", exec.calls)
	}
}

func TestRunREPL_SkipsBlankLines(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &fakeExec{}
	sc := bufio.NewScanner(strings.NewReader("\n   \nregister\nexit\n"))

	runREPL(context.Background(), exec, func() string { return "" }, sc)

	if len(exec.calls) != 1 || exec.calls[0] != "register" {
		t.Fatalf("unexpected calls: %+v", exec.calls)
	}
}
