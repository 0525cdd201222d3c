package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"ragchat-client/internal/service"
	"ragchat-client/pkg/events"
)

var (
	showEvents       bool
	openConversation string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat",
	Long: `Starts a chat session. Type a question to ask it, or /help for commands.
Only one question is answered at a time.`,
	RunE: runChat,
}

func init() {
	registerChatFlags(chatCmd)
	rootCmd.AddCommand(chatCmd)
}

func registerChatFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&showEvents, "events", false, "Print session events as they happen")
	cmd.Flags().StringVarP(&openConversation, "conversation", "c", "", "Open this conversation on start")
}

func runChat(cmd *cobra.Command, args []string) error {
	c, closeFn, err := openContainer()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := signalContext()
	defer cancel()

	out := &syncWriter{w: os.Stdout}
	render := NewRenderer(out, c.Backend.CitationURL)

	if showEvents {
		ch, err := c.Bus.Subscribe(ctx)
		if err != nil {
			return fmt.Errorf("error subscribing to events: %w", err)
		}
		go printEvents(ctx, out, ch)
	}

	// The list is advisory; a backend without conversations still chats.
	if err := c.Session.RefreshConversationList(ctx); err != nil {
		render.Warn(err)
	}
	openOnStart(ctx, c.Session, render, openConversation)

	return NewRepl(c.Session, render, os.Stdin, out).Run(ctx)
}

func openOnStart(ctx context.Context, session service.IChatSessionService, render *Renderer, id string) {
	if id == "" {
		return
	}
	if err := session.LoadConversation(ctx, id); err != nil {
		render.Warn(err)
	}
}

func printEvents(ctx context.Context, w io.Writer, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			faintColor.Fprintf(w, "· %s %s\n", e.EventType(), eventSummary(e))
		}
	}
}

func eventSummary(e events.Event) string {
	p := e.Payload()
	if reason, ok := p["reason"]; ok {
		return fmt.Sprint(reason)
	}
	if id, ok := p["conversation_id"]; ok {
		return fmt.Sprint(id)
	}
	if n, ok := p["count"]; ok {
		return fmt.Sprintf("%v conversations", n)
	}
	return ""
}

// syncWriter serializes the REPL and the event printer.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
