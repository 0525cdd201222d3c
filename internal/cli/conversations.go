package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteYes bool

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "List, show and delete stored conversations",
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := openContainer()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := signalContext()
		defer cancel()

		if err := c.Session.RefreshConversationList(ctx); err != nil {
			return err
		}
		list, fetched := c.Session.Conversations()
		NewRenderer(os.Stdout, nil).Conversations(list, fetched, "")
		return nil
	},
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := openContainer()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := signalContext()
		defer cancel()

		if err := c.Session.LoadConversation(ctx, args[0]); err != nil {
			return err
		}
		NewRenderer(os.Stdout, c.Backend.CitationURL).Session(c.Session.Snapshot())
		return nil
	},
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored conversation",
	Long: `Deletes a conversation on the backend.
It will prompt for confirmation before proceeding unless the --yes flag is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		c, closeFn, err := openContainer()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := signalContext()
		defer cancel()

		if err := c.Session.RequestDelete(id); err != nil {
			return err
		}
		if !deleteYes {
			fmt.Printf("Delete conversation %s? [y/N] ", id)
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				c.Session.CancelDelete()
				fmt.Println("Cancelled.")
				return nil
			}
		}
		if err := c.Session.ConfirmDelete(id); err != nil {
			return err
		}
		if err := c.Session.DeleteConversation(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Deleted %s.\n", id)
		return nil
	},
}

func init() {
	conversationsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip confirmation prompt")
	conversationsCmd.AddCommand(conversationsListCmd, conversationsShowCmd, conversationsDeleteCmd)
	rootCmd.AddCommand(conversationsCmd)
}
