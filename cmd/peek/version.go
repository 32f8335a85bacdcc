package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/peek/internal/version"
)

func newVersionCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.Module(), version.Current())
				return err
			}
			info := version.Read()
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "%s %s\n", info.Module, info.Version); err != nil {
				return err
			}
			if info.Revision != "" {
				if _, err := fmt.Fprintf(out, "revision %s\n", info.Revision); err != nil {
					return err
				}
			}
			if !info.Time.IsZero() {
				if _, err := fmt.Fprintf(out, "built %s\n", info.Time.UTC().Format("2006-01-02T15:04:05Z")); err != nil {
					return err
				}
			}
			if info.GoVersion != "" {
				if _, err := fmt.Fprintf(out, "go %s\n", info.GoVersion); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include build details")
	return cmd
}
