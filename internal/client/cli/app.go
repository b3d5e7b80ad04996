package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Amawers/idmsystem-sub001/internal/client/config"
	"github.com/Amawers/idmsystem-sub001/internal/client/idm"
	"github.com/Amawers/idmsystem-sub001/internal/logging"
)

// App is the interactive client shell: it wires configuration and the
// facade, then runs a small REPL for auth, query, RPC, and realtime
// commands.
type App struct {
	config *config.Config
	client *idm.Client
	email  string
	reader *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	client, err := idm.New(ctx, c, logger)
	if err != nil {
		return nil, err
	}
	return &App{config: c, client: client, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) getStatus() string {
	if a.email == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.email)
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()
	a.Root(ctx)
}

func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to the IDM client (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("idm %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Println("Available commands: login, logout, register, whoami, select, rpc, listen, exit")

		case "login":
			a.Login(ctx)

		case "logout":
			a.Logout(ctx)

		case "register":
			a.Register(ctx)

		case "whoami":
			a.WhoAmI(ctx)

		case "select":
			a.Select(ctx, args)

		case "rpc":
			a.Rpc(ctx, args)

		case "listen":
			a.Listen(ctx, args)

		case "exit", "quit":
			return

		default:
			fmt.Printf("Unknown command: %s\n", cmd)
		}
	}
}
