package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	List(ctx context.Context, args []string) error
	MakeFolder(ctx context.Context, args []string) error
	Put(ctx context.Context, args []string) error
	Get(ctx context.Context, args []string) error
	RemoveFile(ctx context.Context, args []string) error
	RemoveFolder(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the FileKeeper CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a' with the remaining tokens as
// arguments. Unknown commands are reported back to the user. The loop exits
// on scanner EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                  — show available commands
//	  - register              — create an account
//	  - login                 — authenticate
//	  - exit | quit           — leave the program
//
//	Logged in:
//	  - help                  — show available commands
//	  - ls [path]             — list one folder level
//	  - mkdir <name> [path]   — create a folder
//	  - put <file> [path]     — upload a local file
//	  - get <name> [path]     — download a file to the current directory
//	  - rm <name> [path]      — delete a file
//	  - rmdir <name> [path]   — delete a folder and its contents
//	  - logout                — log out
//	  - exit | quit           — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// report their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("fk> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: ls, mkdir, put, get, rm, rmdir, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "l", "ls", "list":
			_ = a.List(ctx, args)

		case "mkdir":
			_ = a.MakeFolder(ctx, args)

		case "put":
			_ = a.Put(ctx, args)

		case "get":
			_ = a.Get(ctx, args)

		case "rm":
			_ = a.RemoveFile(ctx, args)

		case "rmdir":
			_ = a.RemoveFolder(ctx, args)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
