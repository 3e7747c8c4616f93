// Package model provide support for the model sub-command.
package model

import (
	"github.com/ardanlabs/aidetect/cmd/aidetect/model/list"
	"github.com/ardanlabs/aidetect/cmd/aidetect/model/pull"
	"github.com/ardanlabs/aidetect/cmd/aidetect/model/remove"
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "model",
	Short: "Manage models",
	Long:  `Manage models - list, pull and remove classifier models`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	Cmd.AddCommand(list.Cmd)
	Cmd.AddCommand(pull.Cmd)
	Cmd.AddCommand(remove.Cmd)
}
