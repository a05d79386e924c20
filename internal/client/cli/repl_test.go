package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	failOn   string
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	if call == f.failOn {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeExec) isLoggedIn(ctx context.Context) bool { return f.loggedIn }

func (f *fakeExec) Login(ctx context.Context, args []string) error {
	f.loggedIn = true
	return f.record("login " + strings.Join(args, " "))
}

func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func (f *fakeExec) Request(ctx context.Context, method string, args []string) error {
	return f.record(method + " " + strings.Join(args, " "))
}

func (f *fakeExec) Burst(ctx context.Context, args []string) error {
	return f.record("burst " + strings.Join(args, " "))
}

func (f *fakeExec) Status(ctx context.Context) error { return f.record("status") }

func (f *fakeExec) Health(ctx context.Context) error { return f.record("health") }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_Commands(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login demo",
		"help",
		"get /orders",
		"",
		`post /orders {"qty": 1}`,
		"put /orders/1 {}",
		"delete /orders/1",
		"burst 10 /orders",
		"status",
		"health",
		"foobar",
		"logout",
		"exit",
		"get /never",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	assert.Equal(t, []string{
		"login demo",
		"GET /orders",
		`POST /orders {"qty": 1}`,
		"PUT /orders/1 {}",
		"DELETE /orders/1",
		"burst 10 /orders",
		"status",
		"health",
		"logout",
	}, exec.calls)

	joined := strings.Join(*out, "")
	assert.Contains(t, joined, "Available commands: login")
	assert.Contains(t, joined, "Available commands: get, post")
	assert.Contains(t, joined, "Unknown command: foobar")
	assert.Contains(t, joined, "Bye!")
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader("status\nlogout\n")
	exec := &fakeExec{failOn: "status"}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"status", "logout"}, exec.calls)
	assert.Contains(t, strings.Join(*out, ""), "error: boom")
}

func TestRunREPL_EOF(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(strings.NewReader("")))

	assert.Empty(t, exec.calls)
}
