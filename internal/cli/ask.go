package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ragchat-client/internal/pkg/apperror"
)

var askConversation string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askConversation, "conversation", "c", "", "Continue this conversation")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	c, closeFn, err := openContainer()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := signalContext()
	defer cancel()

	if askConversation != "" {
		if err := c.Session.LoadConversation(ctx, askConversation); err != nil {
			return err
		}
	}

	submitErr := c.Session.SubmitQuestion(ctx, strings.Join(args, " "))
	snap := c.Session.Snapshot()
	render := NewRenderer(os.Stdout, c.Backend.CitationURL)
	if submitErr != nil {
		if snap.LastError != nil {
			return errors.New(apperror.Message(snap.LastError))
		}
		return submitErr
	}
	render.Session(snap)
	return nil
}
