// cmd/cli/main.go runs commands from standard input, one per line, without
// any chat transport. Useful for trying commands locally.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/keshon/slashbot/internal/bot"
	"github.com/keshon/slashbot/internal/config"
	"github.com/keshon/slashbot/internal/storage"
	"github.com/keshon/slashbot/pkg/cmd"
	"golang.org/x/time/rate"
)

const replyTimeout = 30 * time.Second

var (
	helpColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	channelColor = color.New(color.FgCyan)
)

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("[ERR] Config: %v", err)
	}

	store, err := storage.New(context.Background(), cfg.StoragePath)
	if err != nil {
		log.Fatalf("[ERR] Storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("[WARN] Storage close: %v", err)
		}
	}()

	dispatcher, err := bot.New(bot.Options{
		Store:       store,
		AliasesFile: cfg.AliasesFile,
		RateLimit:   rate.Limit(cfg.RateLimit),
		RateBurst:   cfg.RateBurst,
	})
	if err != nil {
		log.Fatalf("[ERR] %v", err)
	}

	user := os.Getenv("USER")
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			break
		}
		if line != "" {
			runLine(dispatcher, line, user)
		}
		fmt.Print("> ")
	}
	if err := scanner.Err(); err != nil {
		log.Printf("[ERR] Reading input: %v", err)
	}
}

type result struct {
	resp *cmd.Response
	err  error
}

func runLine(d *cmd.Dispatcher, line, user string) {
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	results := make(chan result, 1)
	req := &cmd.Request{
		Text:      line,
		UserID:    user,
		UserName:  user,
		ChannelID: "cli",
		RequestID: fmt.Sprintf("cli-%d", time.Now().UnixNano()),
		Transport: "cli",
	}
	outcome := d.Dispatch(ctx, req, cmd.Once(func(resp *cmd.Response, err error) {
		results <- result{resp: resp, err: err}
	}))

	select {
	case r := <-results:
		printResult(r, outcome)
	case <-ctx.Done():
		errorColor.Printf("No reply within %s\n", replyTimeout)
	}
}

func printResult(r result, outcome cmd.Outcome) {
	if r.err != nil {
		errorColor.Printf("Error: %v\n", r.err)
		return
	}
	if r.resp == nil {
		return
	}

	text := r.resp.Text
	for _, a := range r.resp.Attachments {
		text += "\n" + a.Text
	}
	if outcome == cmd.OutcomeHelp {
		helpColor.Println(text)
		return
	}
	if r.resp.Visibility == cmd.VisibilityInChannel {
		channelColor.Println(text)
		return
	}
	fmt.Println(text)
}
