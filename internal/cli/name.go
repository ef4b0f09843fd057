package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vietddude/namecord/internal/resolve/resolver"
)

var (
	genderFlag string
	modeFlag   string
)

var nameCmd = &cobra.Command{
	Use:   "name",
	Short: "Generate a random full name",
	Example: `  namecord name
  namecord name --gender f
  namecord name --gender mf --mode chaotic`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runName(cmd, resolver.Request{Mode: modeFlag, Gender: genderFlag})
	},
}

var debugNameCmd = &cobra.Command{
	Use:   "debug-name <first-name>",
	Short: "Find a last name for the given first name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runName(cmd, resolver.Request{Gender: genderFlag, FirstName: args[0]})
	},
}

func init() {
	nameCmd.Flags().StringVarP(&genderFlag, "gender", "g", "", "gender filter: m, f, u/mf, or empty for any")
	nameCmd.Flags().StringVarP(&modeFlag, "mode", "m", "coherent", "generation mode: coherent or chaotic")
	debugNameCmd.Flags().StringVarP(&genderFlag, "gender", "g", "", "gender filter: m, f, u/mf, or empty for any")

	rootCmd.AddCommand(nameCmd, debugNameCmd)
}

func runName(cmd *cobra.Command, req resolver.Request) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name, err := app.Resolver().Handle(ctx, req)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), RenderError(err))
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), RenderName(name))
	return nil
}
