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
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Remove(ctx context.Context, id string) error
	Enable(ctx context.Context, id string) error
	Disable(ctx context.Context, id string) error
	Snooze(ctx context.Context, args []string) error
	Snoozes(ctx context.Context) error
	Devices(ctx context.Context) error
	Sync(ctx context.Context, direction string) error
}

// runREPL starts a simple read–eval–print loop for the Alarmify CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Always:
//	  - help                 - show available commands
//	  - add                  - create an alarm (interactive)
//	  - list | l             - list alarms
//	  - remove <id>          - delete an alarm
//	  - enable <id>          - activate an alarm
//	  - disable <id>         - deactivate an alarm
//	  - snooze <id> [min]    - snooze a firing alarm (default 10 minutes)
//	  - snoozes              - list pending snoozes
//	  - devices              - list playback devices
//	  - exit | quit          - leave the program
//
//	Account:
//	  - register             - create an account on the sync server
//	  - login                - authenticate
//	  - logout               - drop the session
//	  - sync [up|down|both]  - synchronize with the server
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("alarmify %s> ", statusFn()))
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
			printlnFn("Alarms: add, (l)ist, remove <id>, enable <id>, disable <id>")
			printlnFn("Snooze: snooze <id> [minutes], snoozes")
			printlnFn("Playback: devices")
			if a.isLoggedIn() {
				printlnFn("Account: sync [up|down|both], logout, exit")
			} else {
				printlnFn("Account: register, login, exit")
			}

		case "add":
			_ = a.Add(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "remove", "rm":
			if len(args) == 0 {
				printlnFn("Usage: remove <id>")
				continue
			}
			_ = a.Remove(ctx, args[0])

		case "enable":
			if len(args) == 0 {
				printlnFn("Usage: enable <id>")
				continue
			}
			_ = a.Enable(ctx, args[0])

		case "disable":
			if len(args) == 0 {
				printlnFn("Usage: disable <id>")
				continue
			}
			_ = a.Disable(ctx, args[0])

		case "snooze":
			_ = a.Snooze(ctx, args)

		case "snoozes":
			_ = a.Snoozes(ctx)

		case "devices":
			_ = a.Devices(ctx)

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "sync":
			direction := "both"
			if len(args) > 0 {
				direction = args[0]
			}
			_ = a.Sync(ctx, direction)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
