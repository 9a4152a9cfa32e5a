package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func configCmd(c *cli) *cobra.Command {
	var write string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file and
COOPSYNC_* environment variables have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if write != "" {
				if err := c.cfg.WriteFile(write); err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "Wrote %s", write)
				return nil
			}
			data, err := c.cfg.Marshal()
			if err != nil {
				return err
			}
			if path := c.cfg.Path(); path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", path)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&write, "write", "w", "", "write the configuration to this file instead of printing it")

	return cmd
}
