package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "inscricaoctl",
	Short: "Run and administer the inscricao registration server",
	Long: `Run and administer the inscricao registration server.

Configuration is read from $INSCRICAO_CONFIG_PATH/inscricao.yml and the
environment. See "inscricaoctl configuration show".`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
