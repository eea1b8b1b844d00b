package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/graphbase-io/graphbase/pkg/graphbase"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("graphbase %s (%s/%s, %s)\n", graphbase.Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
	},
}
