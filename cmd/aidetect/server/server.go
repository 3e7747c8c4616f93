// Package server manages the server sub-command.
package server

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ardanlabs/aidetect/cmd/server/api/services/aidetect"
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"start"},
	Short:   "Start the detector web server",
	Long:    `Start the detector web server. Use --help to get environment settings`,
	Args:    cobra.NoArgs,
	Run:     main,
}

func init() {
	Cmd.Flags().String("api-host", "", "API host address (e.g., localhost:8080)")
	Cmd.Flags().String("debug-host", "", "Debug host address (e.g., localhost:8090)")
	Cmd.Flags().String("model-file", "", "Path to the GGUF classifier file")
	Cmd.Flags().String("model-url", "", "URL to download the GGUF classifier file from")
	Cmd.Flags().String("device", "", "Device to use for inference (e.g., cuda, metal)")
	Cmd.Flags().Int("instances", 0, "Maximum number of concurrent forward passes")
	Cmd.Flags().Int("llama-log", -1, "Llama log level (1=silent, 2=normal)")

	Cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		err := aidetect.Run(true)
		cmd.Long = fmt.Sprintf("Start the detector web server\n\n%s", err.Error())
		cmd.Parent().HelpFunc()(cmd, args)
	})
}

func main(cmd *cobra.Command, args []string) {
	if err := run(cmd); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command) error {
	for key, value := range buildEnvVars(cmd) {
		os.Setenv(key, value)
	}

	if err := aidetect.Run(false); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	return nil
}

func buildEnvVars(cmd *cobra.Command) map[string]string {
	envVars := make(map[string]string)

	if v, _ := cmd.Flags().GetString("api-host"); v != "" {
		envVars["AIDETECT_WEB_API_HOST"] = v
	}

	if v, _ := cmd.Flags().GetString("debug-host"); v != "" {
		envVars["AIDETECT_WEB_DEBUG_HOST"] = v
	}

	if v, _ := cmd.Flags().GetString("model-file"); v != "" {
		envVars["AIDETECT_MODEL_FILE"] = v
	}

	if v, _ := cmd.Flags().GetString("model-url"); v != "" {
		envVars["AIDETECT_MODEL_URL"] = v
	}

	if v, _ := cmd.Flags().GetString("device"); v != "" {
		envVars["AIDETECT_MODEL_DEVICE"] = v
	}

	if v, _ := cmd.Flags().GetInt("instances"); v != 0 {
		envVars["AIDETECT_MODEL_INSTANCES"] = strconv.Itoa(v)
	}

	if v, _ := cmd.Flags().GetInt("llama-log"); v != -1 {
		envVars["AIDETECT_LLAMA_LOG"] = strconv.Itoa(v)
	}

	return envVars
}
