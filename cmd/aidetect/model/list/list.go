// Package list provides the model list command code.
package list

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ardanlabs/aidetect/sdk/tools/models"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "list",
	Short: "List installed models",
	Long: `List installed models

Environment Variables:
      AIDETECT_BASE_PATH  (default: $HOME/.aidetect)  The path to the detector files`,
	Args: cobra.NoArgs,
	Run:  main,
}

func main(cmd *cobra.Command, args []string) {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	mdls, err := models.New()
	if err != nil {
		return fmt.Errorf("unable to create models system: %w", err)
	}

	if err := mdls.BuildIndex(); err != nil {
		return fmt.Errorf("build-index: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tREPO\tSIZE\tMODIFIED")

	for _, id := range mdls.List() {
		mp, err := mdls.RetrievePath(id)
		if err != nil {
			continue
		}

		info, err := os.Stat(mp.ModelFile)
		if err != nil {
			continue
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, mp.Repo, humanize.Bytes(uint64(info.Size())), humanize.Time(info.ModTime()))
	}

	return w.Flush()
}
