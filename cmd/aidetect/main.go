package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ardanlabs/aidetect/cmd/aidetect/libs"
	"github.com/ardanlabs/aidetect/cmd/aidetect/model"
	"github.com/ardanlabs/aidetect/cmd/aidetect/server"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Settings in a local .env file fill in AIDETECT_* variables that are
	// not already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "loading .env:", err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "aidetect",
	Short: "Detect AI generated text",
	Long:  "Detect if a text was most likely written by a person or generated by AI. A sequence classification model runs locally on llama.cpp through yzma and the result is served as a single web page.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")
	rootCmd.SetVersionTemplate(version)

	rootCmd.AddCommand(server.Cmd)
	rootCmd.AddCommand(libs.Cmd)
	rootCmd.AddCommand(model.Cmd)
}
