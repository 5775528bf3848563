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
	Logout(ctx context.Context) error
	NewEntry(ctx context.Context) error
	Open(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Record(ctx context.Context, args []string) error
	Attach(ctx context.Context, args []string) error
	Pending(ctx context.Context) error
	Save(ctx context.Context) error
	Delete(ctx context.Context, args []string) error
}

// runREPL starts a simple read-eval-print loop for the journal CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands that operate on an entry (record, attach, pending, save) act on
// the current draft, set by "new" or "open <id>".
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tj %s> ", statusFn()))
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
				printlnFn("Available commands: new, open <id>, (l)ist, record [audio|video|both], attach <path>, pending, save, delete <id>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, new, open <id>, (l)ist, record, attach <path>, pending, delete <id>, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "new":
			_ = a.NewEntry(ctx)

		case "open":
			_ = a.Open(ctx, args)

		case "l", "list":
			_ = a.List(ctx)

		case "record":
			_ = a.Record(ctx, args)

		case "attach":
			_ = a.Attach(ctx, args)

		case "pending":
			_ = a.Pending(ctx)

		case "save":
			_ = a.Save(ctx)

		case "delete":
			_ = a.Delete(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
