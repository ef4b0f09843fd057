package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var aboutCmd = &cobra.Command{
	Use:   "about [name...]",
	Short: "Find the Behind the Name pages of a name",
	Long: `Checks which Behind the Name profile pages exist for the given names. The last
of several names is looked up as a surname first. Without arguments, $USER is used.`,
	RunE: runAbout,
}

func init() {
	rootCmd.AddCommand(aboutCmd)
}

func runAbout(cmd *cobra.Command, args []string) error {
	var names []string
	for _, a := range args {
		names = append(names, strings.Fields(a)...)
	}
	if len(names) == 0 {
		names = strings.Fields(os.Getenv("USER"))
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	about, err := app.Checker().Lookup(ctx, names)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), RenderError(err))
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), RenderAbout(about))
	return nil
}
