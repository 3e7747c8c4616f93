// Package libs provides the libs command code.
package libs

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/aidetect/sdk/detector"
	"github.com/ardanlabs/aidetect/sdk/tools/libs"
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "libs",
	Short: "Install or upgrade llama.cpp libraries",
	Long: `Install or upgrade llama.cpp libraries

Environment Variables:
      AIDETECT_PROCESSOR  (default: cpu)  Options: cpu, cuda, metal, vulkan`,
	Args: cobra.NoArgs,
	Run:  main,
}

func main(cmd *cobra.Command, args []string) {
	if err := run(); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	lbs, err := libs.New()
	if err != nil {
		return err
	}

	if _, err := lbs.Download(ctx, detector.FmtLogger); err != nil {
		return fmt.Errorf("unable to install llama.cpp: %w", err)
	}

	if err := detector.Init(detector.WithLibPath(lbs.LibsPath())); err != nil {
		return fmt.Errorf("libs: installation invalid: %w", err)
	}

	fmt.Println("libraries installed at", detector.LibraryLocation())

	return nil
}
