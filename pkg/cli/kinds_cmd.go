package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"
)

func kindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the brick kinds that can be used in blueprints",
		Args:  cobra.NoArgs,
		RunE:  printKinds,
	}
}

func printKinds(cmd *cobra.Command, _ []string) error {
	root := tree.Root("Brick kinds:")
	for _, kind := range registry.Kinds() {
		root.Child(tree.Root(fmt.Sprintf("%s %s", kind.Name, kind.Version)).Child(kind.Description))
	}

	fmt.Fprintln(cmd.OutOrStdout(), root.Enumerator(tree.RoundedEnumerator)) //nolint:errcheck // don't care
	return nil
}
