// Package pull provides the model pull command code.
package pull

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ardanlabs/aidetect/sdk/detector"
	"github.com/ardanlabs/aidetect/sdk/tools/defaults"
	"github.com/ardanlabs/aidetect/sdk/tools/models"
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "pull <MODEL_URL>",
	Short: "Pull a classifier model from the web",
	Long: `Pull a classifier model from the web

Environment Variables:
      AIDETECT_BASE_PATH  (default: $HOME/.aidetect)  The path to the detector files
      AIDETECT_HF_TOKEN                               Token for gated huggingface models`,
	Args: cobra.ExactArgs(1),
	Run:  main,
}

func main(cmd *cobra.Command, args []string) {
	if err := run(args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(args []string) error {
	modelURL := args[0]

	if _, err := url.ParseRequestURI(modelURL); err != nil {
		return fmt.Errorf("parse-request-uri: invalid URL: %s", modelURL)
	}

	mdls, err := models.New()
	if err != nil {
		return fmt.Errorf("unable to create models system: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	mp, err := mdls.Download(ctx, detector.FmtLogger, modelURL, defaults.HFToken(""))
	if err != nil {
		return fmt.Errorf("download-model: %w", err)
	}

	fmt.Println("model file:", mp.ModelFile)

	return nil
}
