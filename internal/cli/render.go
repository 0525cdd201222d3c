package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"ragchat-client/internal/constant"
	"ragchat-client/internal/entity"
	"ragchat-client/internal/pkg/apperror"
	"ragchat-client/pkg/rag/response"
)

var (
	userColor     = color.New(color.FgCyan, color.Bold)
	botColor      = color.New(color.FgGreen)
	citationColor = color.New(color.FgMagenta)
	faintColor    = color.New(color.Faint)
	warnColor     = color.New(color.FgYellow)
	errorColor    = color.New(color.FgRed, color.Bold)
	headerColor   = color.New(color.FgBlue, color.Bold)
)

// Renderer prints session snapshots as plain colored text.
type Renderer struct {
	out         io.Writer
	citationURL func(string) string
}

func NewRenderer(out io.Writer, citationURL func(string) string) *Renderer {
	if citationURL == nil {
		citationURL = func(c string) string { return c }
	}
	return &Renderer{out: out, citationURL: citationURL}
}

func (r *Renderer) Session(s entity.Session) {
	if len(s.History) == 0 && !s.IsLoading && !s.IsFetchingHistory {
		r.emptyState()
	}
	if s.IsFetchingHistory {
		faintColor.Fprintln(r.out, "Loading conversation...")
	}

	for i, ex := range s.History {
		r.exchange(i, ex, i == len(s.History)-1 && s.Options.SuggestFollowupQuestions)
	}

	if s.IsLoading {
		userColor.Fprintf(r.out, "You: ")
		fmt.Fprintln(r.out, s.LastQuestion)
		faintColor.Fprintln(r.out, "Generating answer...")
	}
	if s.LastError != nil {
		errorColor.Fprintf(r.out, "Error: %s\n", apperror.Message(s.LastError))
		faintColor.Fprintln(r.out, "Type /retry to ask again.")
	}
	if s.Panel.IsOpen() {
		r.Panel(s)
	}
}

func (r *Renderer) emptyState() {
	headerColor.Fprintln(r.out, "Chat with your data")
	faintColor.Fprintln(r.out, "Ask anything or try an example:")
	for i, q := range constant.ExampleQuestions {
		fmt.Fprintf(r.out, "  %d. %s\n", i+1, q)
	}
}

func (r *Renderer) exchange(i int, ex entity.Exchange, withFollowups bool) {
	userColor.Fprintf(r.out, "You: ")
	fmt.Fprintln(r.out, ex.Question)

	if ex.Answer.Error != nil {
		errorColor.Fprintf(r.out, "Bot [%d]: %s\n", i+1, *ex.Answer.Error)
		return
	}

	parsed := response.ParseAnswer(ex.Answer.Text)
	botColor.Fprintf(r.out, "Bot [%d]: ", i+1)
	for _, seg := range parsed.Segments {
		if seg.CitationIndex > 0 {
			citationColor.Fprintf(r.out, "[%d]", seg.CitationIndex)
			continue
		}
		fmt.Fprint(r.out, seg.Text)
	}
	fmt.Fprintln(r.out)

	if len(parsed.Citations) > 0 {
		faintColor.Fprint(r.out, "  Citations:")
		for j, c := range parsed.Citations {
			citationColor.Fprintf(r.out, " %d. %s", j+1, c)
		}
		fmt.Fprintln(r.out)
	}
	if withFollowups && len(parsed.FollowupQuestions) > 0 {
		faintColor.Fprintln(r.out, "  Follow-up questions:")
		for j, q := range parsed.FollowupQuestions {
			fmt.Fprintf(r.out, "    %d. %s\n", j+1, q)
		}
	}
}

// Panel prints the open inspection tab for the selected answer.
func (r *Renderer) Panel(s entity.Session) {
	idx := s.Panel.SelectedAnswerIndex
	if idx < 0 || idx >= len(s.History) {
		return
	}
	answer := s.History[idx].Answer

	headerColor.Fprintf(r.out, "-- %s (answer %d) --\n", tabTitle(s.Panel.ActiveTab), idx+1)
	switch s.Panel.ActiveTab {
	case entity.PanelTabThoughtProcess:
		if answer.CitationsRaw == nil || *answer.CitationsRaw == "" {
			faintColor.Fprintln(r.out, "No thought process recorded.")
			return
		}
		fmt.Fprintln(r.out, strings.ReplaceAll(*answer.CitationsRaw, "<br>", "\n"))
	case entity.PanelTabSupportingContent:
		if len(answer.SupportingFacts) == 0 {
			faintColor.Fprintln(r.out, "No supporting content.")
			return
		}
		for _, f := range answer.SupportingFacts {
			fmt.Fprintf(r.out, "  - %s\n", f)
		}
	case entity.PanelTabCitation:
		if s.Panel.ActiveCitation != nil {
			citationColor.Fprintln(r.out, *s.Panel.ActiveCitation)
			fmt.Fprintln(r.out, r.citationURL(*s.Panel.ActiveCitation))
		}
	}
}

func tabTitle(t entity.PanelTab) string {
	switch t {
	case entity.PanelTabThoughtProcess:
		return "Thought process"
	case entity.PanelTabSupportingContent:
		return "Supporting content"
	case entity.PanelTabCitation:
		return "Citation"
	}
	return "Panel"
}

func (r *Renderer) Conversations(list []entity.ConversationSummary, fetched bool, activeId string) {
	if !fetched {
		faintColor.Fprintln(r.out, "Conversation list not loaded yet. Type /refresh.")
		return
	}
	if len(list) == 0 {
		faintColor.Fprintln(r.out, "No conversations yet.")
		return
	}
	headerColor.Fprintln(r.out, "Conversations")
	for _, c := range list {
		marker := " "
		if c.Id == activeId {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %s  %s", marker, c.Id, c.Title)
		if !c.UpdatedAt.IsZero() {
			faintColor.Fprintf(r.out, "  (%s)", c.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(r.out)
		if c.Summary != "" {
			faintColor.Fprintf(r.out, "    %s\n", c.Summary)
		}
	}
}

func (r *Renderer) Options(o entity.GenerationOptions) {
	headerColor.Fprintln(r.out, "Generation options")
	fmt.Fprintf(r.out, "  top        %d\n", o.TopK)
	fmt.Fprintf(r.out, "  ranker     %t\n", o.UseSemanticRanker)
	fmt.Fprintf(r.out, "  captions   %t\n", o.UseSemanticCaptions)
	fmt.Fprintf(r.out, "  followups  %t\n", o.SuggestFollowupQuestions)
	fmt.Fprintf(r.out, "  exclude    %q\n", o.ExcludeCategory)
	fmt.Fprintf(r.out, "  template   %q\n", o.PromptTemplate)
}

func (r *Renderer) Warn(err error) {
	warnColor.Fprintf(r.out, "! %s\n", apperror.Message(err))
}

func (r *Renderer) Info(format string, args ...interface{}) {
	faintColor.Fprintf(r.out, format+"\n", args...)
}

func (r *Renderer) Help() {
	headerColor.Fprintln(r.out, "Commands")
	for _, line := range []string{
		"/list                    show the cached conversation list",
		"/refresh                 fetch the conversation list",
		"/load <id>               open a conversation",
		"/delete <id>             delete a conversation (asks first)",
		"/clear                   start a new conversation",
		"/citation <n> <name|k>   show a citation of answer n",
		"/thoughts <n>            toggle the thought process of answer n",
		"/support <n>             toggle the supporting content of answer n",
		"/close                   close the panel",
		"/retry                   ask the last question again",
		"/followup <k>            ask follow-up question k of the last answer",
		"/options                 show generation options",
		"/set <key> <value>       change an option (top, ranker, captions, followups, exclude, template)",
		"/help                    this text",
		"/quit                    leave",
	} {
		fmt.Fprintf(r.out, "  %s\n", line)
	}
}
