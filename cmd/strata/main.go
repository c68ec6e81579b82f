// Command strata is the Strata framework CLI. It compiles entity definition
// documents into the typed schema consumed by the code generators.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Strata backend framework CLI",
	Long:  "Compile Strata entity definition documents and generate framework code",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
