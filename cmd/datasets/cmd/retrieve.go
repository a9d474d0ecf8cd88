// Copyright © 2018 One Concern

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Retrieve the files of a dataset from IPFS",
	Long: `Retrieve materializes in the repository every file listed in the "metadata.toml" document of a dataset.

Files are fetched with the IPFS binary when it is available, from the HTTP gateway otherwise.
The --http flag forces the use of the gateway. Gateway requests are retried up to 10 times.

Files which cannot be fetched are reported, and the command exits with status 2.
`,
	Example: `% datasets retrieve --repository ./repository --dataset iris --http`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		sess, err := newSession(cmd)
		if err != nil {
			wrapFatalln("select transport", err)
			return
		}

		dataset := app.settings.Dataset
		report, err := newSyncer(sess).Retrieve(ctx, app.settings.Repository, dataset)
		if report != nil {
			printRetrieveReport(cmd.OutOrStdout(), report)
		}
		if err != nil {
			wrapFatalln(fmt.Sprintf("retrieve dataset %q", dataset), err)
			return
		}
		if err = report.Err(); err != nil {
			wrapFatalWithCodef(exitIncomplete, "%v", err)
			return
		}
	},
}

func init() {
	addRepositoryFlag(retrieveCmd)
	addDatasetFlag(retrieveCmd)
	addGatewayFlag(retrieveCmd)
	addHTTPFlag(retrieveCmd)
	rootCmd.AddCommand(retrieveCmd)
}
