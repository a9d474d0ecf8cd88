// Copyright © 2018 One Concern

package cmd

import (
	"github.com/oneconcern/datasets/pkg/core"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the datasets of a repository",
	Long:  `List the datasets of a repository, with the number of data files and of published files of each`,
	Example: `% datasets list --repository ./repository
DATASET	DATA FILES	PUBLISHED FILES
iris   	2         	2
mnist  	-         	5`,
	Run: func(cmd *cobra.Command, args []string) {
		summaries, err := core.New(core.Logger(app.logger)).List(app.settings.Repository)
		if err != nil {
			wrapFatalln("list datasets", err)
			return
		}
		printDatasets(cmd.OutOrStdout(), summaries)
	},
}

func init() {
	addRepositoryFlag(listCmd)
	rootCmd.AddCommand(listCmd)
}
