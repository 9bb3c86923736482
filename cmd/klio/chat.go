package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dsablic/klio/internal/chat"
	"github.com/dsablic/klio/internal/ui"
)

func (c *cli) newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to Klio: list folders, run analyses, search files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in := chat.NewInterpreter(c.app.client, c.app.gate, c.app.controller, c.app.logger)

			if !ui.StdinIsTTY() {
				return ui.RunPlainChat(ctx, os.Stdin, os.Stdout, in.Handle)
			}

			greeting := "Hi, I'm Klio. Type help to see what I can do, or exit to leave."
			if ok, _, known := c.app.gate.Hint(); known && !ok {
				greeting += "\nYou were not connected to Google Drive last time. Run `klio auth login` first if commands fail."
			}
			return ui.RunChat(ctx, greeting, in.Handle)
		},
	}
}
