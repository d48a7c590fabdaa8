package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/bloodlink/internal/client/chat"
)

// chatPrinter writes each new log entry once. Snapshots may arrive out of
// order from timer goroutines; older ones are skipped.
type chatPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	printed int
}

func (p *chatPrinter) print(s chat.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ; p.printed < len(s.Messages); p.printed++ {
		m := s.Messages[p.printed]
		who := "bot"
		if m.Sender == chat.SenderUser {
			who = "you"
		}
		fmt.Fprintf(p.w, "%s: %s\n", who, m.Text)
	}
}

// Chat runs an interactive chat session until /quit or EOF. Lines starting
// with '/' are chat commands; everything else is sent as a message.
func (a *App) Chat(ctx context.Context) error {
	p := &chatPrinter{w: a.out}
	ctrl := chat.NewController(a.connect,
		chat.WithDelays(a.config.ChatFallbackDelay, a.config.ChatReconnectDelay),
		chat.WithLogger(a.log),
		chat.WithOnChange(func(s chat.Snapshot) {
			a.setChatStatus(s.Status)
			p.print(s)
		}),
	)
	defer func() {
		ctrl.Close()
		a.setChatStatus(ctrl.Status())
	}()

	printlnFn("Chat started. Type a message, /topics for shortcuts, /quit to leave.")
	ctrl.Start()

	for {
		line, err := a.reader.ReadString('\n')
		text := strings.TrimSpace(line)

		if text != "" {
			if done := a.chatCommand(ctx, ctrl, text); done {
				return nil
			}
		}
		if err != nil {
			return nil
		}
	}
}

// chatCommand handles one input line and reports whether the session ends.
func (a *App) chatCommand(ctx context.Context, ctrl *chat.Controller, text string) bool {
	if !strings.HasPrefix(text, "/") {
		ctrl.Send(ctx, text)
		return false
	}

	switch cmd := strings.TrimPrefix(text, "/"); cmd {
	case "quit", "exit":
		return true
	case "topics":
		for i, t := range chat.Topics {
			printlnFn(fmt.Sprintf("  /%d %s", i+1, t.Label))
		}
	case "status":
		printlnFn("Chat " + string(ctrl.Status()))
	default:
		n, err := strconv.Atoi(cmd)
		if err != nil || n < 1 || n > len(chat.Topics) {
			printlnFn("Unknown chat command: " + text)
			return false
		}
		ctrl.SendTopic(ctx, chat.Topics[n-1])
	}
	return false
}
