package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spachava753/pluginmatrix/internal/config"
	"github.com/spachava753/pluginmatrix/internal/fixture"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List the fixture cases and their expected files",
	Args:  cobra.NoArgs,
	RunE:  listCases,
}

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the configured version sets in install order",
	Args:  cobra.NoArgs,
	RunE:  listVersions,
}

func init() {
	rootCmd.AddCommand(casesCmd)
	rootCmd.AddCommand(versionsCmd)
}

func listCases(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadMatrixConfig(configPath)
	if err != nil {
		return err
	}
	cases, err := fixture.Discover(cfg.FixturesDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, tc := range cases {
		names, err := fixture.ListFixtures(tc)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintf(out, "%s\t(no expected files)\n", tc.Name)
			continue
		}
		for _, name := range names {
			fmt.Fprintf(out, "%s\t%s\n", tc.Name, name)
		}
	}
	return nil
}

func listVersions(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadMatrixConfig(configPath)
	if err != nil {
		return err
	}
	for i, vs := range cfg.Versions {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, vs)
	}
	return nil
}
