// Package remove provides the model remove command code.
package remove

import (
	"fmt"
	"os"

	"github.com/ardanlabs/aidetect/sdk/tools/models"
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "rm <MODEL_ID>",
	Short: "Remove an installed model",
	Args:  cobra.ExactArgs(1),
	Run:   main,
}

func main(cmd *cobra.Command, args []string) {
	if err := run(args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(args []string) error {
	mdls, err := models.New()
	if err != nil {
		return fmt.Errorf("unable to create models system: %w", err)
	}

	mp, err := mdls.RetrievePath(args[0])
	if err != nil {
		return err
	}

	if err := mdls.Remove(mp); err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	fmt.Println("removed", mp.ModelFile)

	return nil
}
