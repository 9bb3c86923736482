package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dsablic/klio/internal/model"
)

func (c *cli) newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Google Drive connection",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "login",
		Short: "Connect Google Drive through the backend",
		RunE:  c.runAuthLogin,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Check whether the backend holds a Drive session",
		RunE:  c.runAuthStatus,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE:  c.runAuthLogout,
	})
	return cmd
}

func (c *cli) runAuthLogin(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(os.Stderr, "Opening browser for Google Drive authorization...")
	state, err := c.app.gate.Connect(cmd.Context())
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if state != model.AuthAuthenticated {
		return fmt.Errorf("authentication failed: backend still reports no Drive session")
	}
	fmt.Fprintln(os.Stderr, "Successfully connected to Google Drive!")
	return nil
}

func (c *cli) runAuthStatus(cmd *cobra.Command, args []string) error {
	if ok, at, known := c.app.gate.Hint(); known {
		last := "not authenticated"
		if ok {
			last = "authenticated"
		}
		fmt.Fprintf(os.Stderr, "Last known: %s (%s)\n", last, humanize.Time(at))
	}

	state, err := c.app.gate.Check(cmd.Context())
	if err != nil {
		return err
	}
	if state != model.AuthAuthenticated {
		fmt.Println("Not authenticated. Run `klio auth login` to connect Google Drive.")
		return nil
	}
	fmt.Println("Authenticated.")
	return nil
}

func (c *cli) runAuthLogout(cmd *cobra.Command, args []string) error {
	if err := c.app.gate.SignOut(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Session forgotten.")
	return nil
}
