package main

import (
	"fmt"
	"runtime"

	irinabot "github.com/Forevka/IrinaWebSocketClient"
	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), irinabot.Version())
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "irinabot %s %s %s/%s\n",
				irinabot.Version(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}
