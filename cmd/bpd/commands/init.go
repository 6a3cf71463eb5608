package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtn-stack/bplib/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.InitConfig(GetConfigFile(), initForce)
		if err != nil {
			return err
		}
		fmt.Printf("wrote starter configuration to %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration file")
}
