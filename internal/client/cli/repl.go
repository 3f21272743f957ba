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
	SelectDate(ctx context.Context) error
	Show(ctx context.Context) error
	Comment(ctx context.Context) error
	Photo(ctx context.Context) error
	City(ctx context.Context) error
	Mode(ctx context.Context) error
	Fix(ctx context.Context) error
	Weather(ctx context.Context) error
	Save(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the Daybook CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("daybook> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: date, show, comment, photo, city, mode, fix, weather, save, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "date":
			_ = a.SelectDate(ctx)

		case "show":
			_ = a.Show(ctx)

		case "comment":
			_ = a.Comment(ctx)

		case "photo":
			_ = a.Photo(ctx)

		case "city":
			_ = a.City(ctx)

		case "mode":
			_ = a.Mode(ctx)

		case "fix":
			_ = a.Fix(ctx)

		case "weather":
			_ = a.Weather(ctx)

		case "save":
			_ = a.Save(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
