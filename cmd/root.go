package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stratastor/svcgate/cmd/serve"
	"github.com/stratastor/svcgate/cmd/spec"
	"github.com/stratastor/svcgate/cmd/version"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "svcgate",
		Short: "svcgate: storage array control gateway",
	}

	rootCmd.AddCommand(serve.NewServeCmd())
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(spec.NewSpecCmd())

	return rootCmd
}
