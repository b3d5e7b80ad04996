package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/Amawers/idmsystem-sub001/internal/client/auth"
	"github.com/Amawers/idmsystem-sub001/internal/client/realtime"
)

func (a *App) Login(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	user, err := a.client.Auth().Login(ctx, email, password)
	if err != nil {
		log.Printf("Login unsuccessful: %v", err)
		return
	}
	a.email = email
	log.Printf("Login successful: %v", user["email"])
}

func (a *App) Logout(ctx context.Context) {
	if err := a.client.Auth().Logout(ctx); err != nil {
		log.Printf("error: %v", err)
		return
	}
	a.email = ""
	log.Println("Logged out")
}

func (a *App) Register(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	role, err := GetSimpleText(a.reader, "Enter role (empty for default)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	data, err := a.client.Auth().SignUp(ctx, auth.SignUpParams{Email: email, Password: password, Role: role})
	if err != nil {
		log.Printf("Registration unsuccessful: %v", err)
		return
	}
	log.Printf("Registered: %s", string(data))
}

func (a *App) WhoAmI(ctx context.Context) {
	user, err := a.client.Auth().GetUser(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	if user == nil {
		fmt.Println("Not logged in")
		return
	}
	out, _ := json.MarshalIndent(user, "", "  ")
	fmt.Println(string(out))
}

// Select runs: select <table> [columns]
func (a *App) Select(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: select <table> [columns]")
		return
	}
	b := a.client.From(args[0])
	if len(args) > 1 {
		b = b.Select(strings.Join(args[1:], ","))
	}

	result, err := b.Execute(ctx)
	if err != nil {
		log.Printf("query failed: %v", err)
		return
	}
	out, _ := json.MarshalIndent(result.Data, "", "  ")
	fmt.Println(string(out))
}

// Rpc runs: rpc <name> [json-params]
func (a *App) Rpc(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: rpc <name> [json-params]")
		return
	}
	var params any
	if len(args) > 1 {
		if err := json.Unmarshal([]byte(strings.Join(args[1:], " ")), &params); err != nil {
			log.Printf("invalid params: %v", err)
			return
		}
	}

	data, err := a.client.Rpc(ctx, args[0], params)
	if err != nil {
		log.Printf("rpc failed: %v", err)
		return
	}
	fmt.Println(string(data))
}

// Listen runs: listen <table> [event], printing matching row-change
// notifications until interrupted.
func (a *App) Listen(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: listen <table> [event]")
		return
	}
	filter := realtime.ChannelFilter{Table: args[0], Event: realtime.AnyEvent}
	if len(args) > 1 {
		filter.Event = args[1]
	}

	ch := a.client.Channel("cli:"+args[0]).
		On(realtime.RowChanges, filter, func(ev realtime.Event) {
			fmt.Printf("%s %s %s\n", ev.Event, ev.Table, string(ev.Record))
		}).
		Subscribe()
	defer a.client.RemoveChannel(ch)

	fmt.Println("Listening, press Ctrl+C to stop...")
	stop, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()
	<-stop.Done()
}
