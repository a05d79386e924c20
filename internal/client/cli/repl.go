package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	Request(ctx context.Context, method string, args []string) error
	Burst(ctx context.Context, args []string) error
	Status(ctx context.Context) error
	Health(ctx context.Context) error
}

// Run starts the REPL on stdin.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to gophgate (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, bufio.NewScanner(os.Stdin))
}

// runREPL reads a line from the scanner, parses the first token as the
// command and dispatches to a. The loop exits on scanner EOF or when the
// user types "exit" or "quit".
//
//	help                       show available commands
//	login <username>           authenticate (password is read without echo)
//	get|delete <path>          send a request
//	post|put <path> [json]     send a request with an optional JSON body
//	burst <n> <path>           n concurrent GETs
//	status                     session and refresh state
//	health                     gRPC health check (authenticated)
//	logout                     end the session
//	exit | quit                leave the program
//
// Errors returned by handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("gg %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: get, post, put, delete, burst, status, health, logout, exit")
			} else {
				printlnFn("Available commands: login, get, post, put, delete, status, exit")
			}

		case "login":
			err = a.Login(ctx, args)

		case "get", "post", "put", "delete":
			err = a.Request(ctx, strings.ToUpper(cmd), args)

		case "burst":
			err = a.Burst(ctx, args)

		case "status":
			err = a.Status(ctx)

		case "health":
			err = a.Health(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("error:", err)
		}
	}
}

