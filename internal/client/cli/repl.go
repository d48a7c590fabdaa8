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
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Refresh(ctx context.Context) error
	Update(ctx context.Context) error
	Deactivate(ctx context.Context) error
	Open(ctx context.Context, target string) error
	Banks(ctx context.Context, args []string) error
	Geocode(ctx context.Context, args []string) error
	Chat(ctx context.Context) error
}

const (
	helpGuest    = "Available commands: register [donor|recipient|bloodbank], login [role], open <path>, banks, geocode, chat, exit"
	helpSignedIn = "Available commands: whoami, refresh, update, deactivate, open <path>, dashboard, profile, banks, geocode, chat, logout, exit"
)

// runREPL starts a read–eval–print loop for the BloodLink CLI.
//
// It reads a line from in, parses the first token as the command and
// dispatches to methods on 'a'. The loop exits on EOF or when the user types
// "exit" or "quit".
//
//	Always:
//	  - help                           show available commands
//	  - open <path>                    navigate, e.g. open /dashboard
//	  - banks <lat> <lng> [group]      find blood banks near a point
//	  - geocode <lat> <lng>            print the address of a point
//	  - chat                           talk to the support assistant
//	  - exit | quit                    leave the program
//
//	Not logged in:
//	  - register [role]                create an account
//	  - login [role]                   authenticate
//
//	Logged in:
//	  - whoami                         print the profile
//	  - refresh                        reload the profile from the server
//	  - update                         edit profile fields
//	  - deactivate                     deactivate the account
//	  - dashboard | profile            shortcuts for open /dashboard, /profile
//	  - logout                         sign out
//
// Errors returned by command handlers are ignored here; handlers print
// their own messages.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("bloodlink %s> ", statusFn()))
		line, err := in.ReadString('\n')
		if line == "" && err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			_ = a.Register(ctx, args)

		case "login":
			_ = a.Login(ctx, args)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami", "me":
			_ = a.WhoAmI(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "update":
			_ = a.Update(ctx)

		case "deactivate":
			_ = a.Deactivate(ctx)

		case "open", "o":
			if len(args) == 0 {
				printlnFn("Usage: open <path>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "dashboard":
			_ = a.Open(ctx, "/dashboard")

		case "profile":
			_ = a.Open(ctx, "/profile")

		case "banks":
			_ = a.Banks(ctx, args)

		case "geocode":
			_ = a.Geocode(ctx, args)

		case "chat":
			_ = a.Chat(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
