// Fabrica CLI — инструмент командной строки для управления
// рецептами, изделиями и производственными заказами через HTTP API.
//
// Использование:
//
//	fabrica [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	recipe   Управление рецептами
//	product  Управление изделиями
//	project  Управление заказами
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Fabrica/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "fabrica",
		Short:         "Fabrica CLI — work order tracking tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewRecipeCmd(clientFn, outputFn),
		cli.NewProductCmd(clientFn, outputFn),
		cli.NewProjectCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
