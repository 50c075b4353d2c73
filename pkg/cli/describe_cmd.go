package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/vbehar/bricks/pkg/blueprint"
)

func describeCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "describe [blueprints]",
		Short:             "Show the bricks of a blueprint, in execution order",
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: blueprintsValidArgsFunction,
		RunE:              describe,
	}
}

func describe(cmd *cobra.Command, args []string) error {
	bp, err := loadBlueprint(args)
	if err != nil {
		return err
	}

	root, err := blueprintTree(*bp, bricksConfig.initialParams("").Keys())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), root) //nolint:errcheck // don't care
	return nil
}

func blueprintTree(bp blueprint.Blueprint, initialKeys []string) (*tree.Tree, error) {
	err := bp.Validate(initialKeys)
	if err != nil {
		return nil, err
	}

	root := tree.Root(fmt.Sprintf("Blueprint %s:", bp.Name))
	for _, brick := range bp.Bricks {
		child := tree.Root(fmt.Sprintf("%s (%s)", brick.Metadata.Name, brick.Kind))

		labelKeys := make([]string, 0, len(brick.Metadata.Labels))
		for k := range brick.Metadata.Labels {
			labelKeys = append(labelKeys, k)
		}
		slices.Sort(labelKeys)
		for _, k := range labelKeys {
			child.Child(fmt.Sprintf("%s=%s", k, brick.Metadata.Labels[k]))
		}
		if len(brick.Requires) > 0 {
			child.Child("requires: " + strings.Join(brick.Requires, ", "))
		}
		if len(brick.Provides) > 0 {
			child.Child("provides: " + strings.Join(brick.Provides, ", "))
		}

		dependencies, err := bp.Dependencies(brick.Metadata.Name, initialKeys)
		if err != nil {
			return nil, err
		}
		if len(dependencies) > 0 {
			child.Child("depends on: " + strings.Join(dependencies, ", "))
		}
		root.Child(child)
	}
	return root.Enumerator(tree.RoundedEnumerator), nil
}
