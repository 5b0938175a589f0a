// Command fabricstated is the CLI entry point for the RIB-to-FIB compiler:
// "serve" loads a declarative config file, compiles it into a resolved
// SwitchState and (optionally) keeps an HTTP endpoint open for Prometheus
// scraping; "dump" just loads and prints the compiled state for inspection.
// Grounded on the teacher's cilium-dbg/bugtool cobra root commands — a
// flat command tree built with github.com/spf13/cobra, no hive/cell
// dependency injection, since fabricstated has a single coordinator and no
// plugin surface to wire.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fabricstated",
	Short: "RIB-to-FIB forwarding state compiler",
	Long:  "fabricstated compiles a declarative switch configuration into recursively-resolved forwarding state, the way a merchant-silicon routing stack turns a RIB into a FIB.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
