package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ragchat-client/internal/entity"
	"ragchat-client/internal/pkg/apperror"
	"ragchat-client/internal/service"
	"ragchat-client/pkg/rag/response"
)

// Repl reads questions and slash commands and drives one chat session.
type Repl struct {
	session service.IChatSessionService
	render  *Renderer
	out     io.Writer
	in      *bufio.Scanner
}

func NewRepl(session service.IChatSessionService, render *Renderer, in io.Reader, out io.Writer) *Repl {
	return &Repl{
		session: session,
		render:  render,
		out:     out,
		in:      bufio.NewScanner(in),
	}
}

// Run loops until /quit, end of input or ctx is done.
func (r *Repl) Run(ctx context.Context) error {
	r.render.Session(r.session.Snapshot())
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, ok := r.prompt("> ")
		if !ok {
			return r.in.Err()
		}
		if quit := r.Handle(ctx, line); quit {
			return nil
		}
	}
}

func (r *Repl) prompt(p string) (string, bool) {
	fmt.Fprint(r.out, p)
	if !r.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

// Handle executes one input line and reports whether the user asked to quit.
func (r *Repl) Handle(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		r.ask(ctx, line)
		return false
	}

	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		r.render.Help()
	case "/list":
		r.list(ctx)
	case "/refresh":
		if err := r.session.RefreshConversationList(ctx); err != nil {
			r.render.Warn(err)
			return false
		}
		r.list(ctx)
	case "/load":
		if len(args) != 1 {
			r.usage("/load <id>")
			return false
		}
		r.load(ctx, args[0])
	case "/delete":
		if len(args) != 1 {
			r.usage("/delete <id>")
			return false
		}
		r.delete(ctx, args[0])
	case "/clear":
		r.session.Clear()
		r.render.Session(r.session.Snapshot())
	case "/retry":
		r.report(r.session.Retry(ctx))
		r.render.Session(r.session.Snapshot())
	case "/followup":
		r.followup(ctx, args)
	case "/thoughts":
		r.toggle(entity.PanelTabThoughtProcess, args, "/thoughts <n>")
	case "/support":
		r.toggle(entity.PanelTabSupportingContent, args, "/support <n>")
	case "/citation":
		r.citation(args)
	case "/close":
		r.session.ClosePanel()
	case "/options":
		r.render.Options(r.session.Snapshot().Options)
	case "/set":
		r.set(args)
	default:
		r.render.Warn(fmt.Errorf("unknown command %s, type /help", cmd))
	}
	return false
}

func (r *Repl) ask(ctx context.Context, question string) {
	r.report(r.session.SubmitQuestion(ctx, question))
	r.render.Session(r.session.Snapshot())
}

func (r *Repl) list(ctx context.Context) {
	list, fetched := r.session.Conversations()
	if !fetched {
		if err := r.session.RefreshConversationList(ctx); err != nil {
			r.render.Warn(err)
			return
		}
		list, fetched = r.session.Conversations()
	}
	r.render.Conversations(list, fetched, r.session.Snapshot().ConversationId)
}

func (r *Repl) load(ctx context.Context, id string) {
	r.report(r.session.LoadConversation(ctx, id))
	r.render.Session(r.session.Snapshot())
}

func (r *Repl) delete(ctx context.Context, id string) {
	if err := r.session.RequestDelete(id); err != nil {
		r.render.Warn(err)
		return
	}
	answer, ok := r.prompt(fmt.Sprintf("Delete conversation %s? [y/N] ", id))
	if !ok || !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		r.session.CancelDelete()
		r.render.Info("Cancelled.")
		return
	}
	if err := r.session.ConfirmDelete(id); err != nil {
		r.render.Warn(err)
		return
	}
	if err := r.session.DeleteConversation(ctx, id); err != nil {
		r.render.Warn(err)
		return
	}
	r.render.Info("Deleted %s.", id)
}

func (r *Repl) followup(ctx context.Context, args []string) {
	last, ok := r.session.Snapshot().LastAnswer()
	if !ok {
		r.render.Warn(fmt.Errorf("no answer to follow up on"))
		return
	}
	questions := response.ParseAnswer(last.Text).FollowupQuestions
	k, found := r.index(args, len(questions), "/followup <k>")
	if !found {
		return
	}
	r.ask(ctx, questions[k])
}

func (r *Repl) toggle(tab entity.PanelTab, args []string, usage string) {
	n, ok := r.answerIndex(args, usage)
	if !ok {
		return
	}
	if err := r.session.TogglePanel(tab, n); err != nil {
		r.render.Warn(err)
		return
	}
	r.render.Panel(r.session.Snapshot())
}

// citation accepts either the citation name or its number in the answer.
func (r *Repl) citation(args []string) {
	if len(args) != 2 {
		r.usage("/citation <n> <name|k>")
		return
	}
	n, ok := r.answerIndex(args[:1], "/citation <n> <name|k>")
	if !ok {
		return
	}
	name := args[1]
	snap := r.session.Snapshot()
	if n < 0 || n >= len(snap.History) {
		r.render.Warn(fmt.Errorf("no answer %d (have %d)", n+1, len(snap.History)))
		return
	}
	if k, err := strconv.Atoi(name); err == nil {
		citations := response.ParseAnswer(snap.History[n].Answer.Text).Citations
		if k < 1 || k > len(citations) {
			r.render.Warn(fmt.Errorf("answer %d has no citation %d", n+1, k))
			return
		}
		name = citations[k-1]
	}
	if err := r.session.ShowCitation(name, n); err != nil {
		r.render.Warn(err)
		return
	}
	r.render.Panel(r.session.Snapshot())
}

func (r *Repl) set(args []string) {
	if len(args) < 1 {
		r.usage("/set <key> <value>")
		return
	}
	opts := r.session.Snapshot().Options
	value := strings.Join(args[1:], " ")
	var err error
	switch args[0] {
	case "top":
		opts.TopK, err = strconv.Atoi(value)
	case "ranker":
		opts.UseSemanticRanker, err = strconv.ParseBool(value)
	case "captions":
		opts.UseSemanticCaptions, err = strconv.ParseBool(value)
	case "followups":
		opts.SuggestFollowupQuestions, err = strconv.ParseBool(value)
	case "exclude":
		opts.ExcludeCategory = value
	case "template":
		opts.PromptTemplate = value
	default:
		err = fmt.Errorf("unknown option %q", args[0])
	}
	if err == nil {
		err = r.session.SetOptions(opts)
	}
	if err != nil {
		r.render.Warn(err)
		return
	}
	r.render.Options(r.session.Snapshot().Options)
}

// answerIndex parses the 1-based answer number shown next to each answer.
func (r *Repl) answerIndex(args []string, usage string) (int, bool) {
	if len(args) != 1 {
		r.usage(usage)
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		r.usage(usage)
		return 0, false
	}
	return n - 1, true
}

func (r *Repl) index(args []string, count int, usage string) (int, bool) {
	k, ok := r.answerIndex(args, usage)
	if !ok {
		return 0, false
	}
	if k < 0 || k >= count {
		r.render.Warn(fmt.Errorf("no item %d (have %d)", k+1, count))
		return 0, false
	}
	return k, true
}

func (r *Repl) usage(u string) {
	r.render.Warn(fmt.Errorf("usage: %s", u))
}

// report prints errors the session snapshot does not already show.
func (r *Repl) report(err error) {
	if err == nil {
		return
	}
	if apperror.Is(err, apperror.KindRequestFailed) || apperror.Is(err, apperror.KindEmptyResult) {
		return
	}
	r.render.Warn(err)
}
