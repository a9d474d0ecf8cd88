// Copyright © 2018 One Concern

package cmd

import (
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the datasets of a repository to IPFS",
	Long: `Publish adds the files found under the "data" directory of every dataset to IPFS,
then records their hashes in the "metadata.toml" document of the dataset.

Datasets without any data file keep their metadata unchanged. Publishing requires the IPFS binary.
`,
	Example: `% datasets publish --repository ./repository
DATASET	FILES	STATUS
iris   	2    	published
mnist  	-    	skipped: no data directory
published 2 files from repository ./repository`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		sess, err := newSession(cmd)
		if err != nil {
			wrapFatalln("select transport", err)
			return
		}
		if err = sess.CheckPublish(); err != nil {
			wrapFatalln("publish repository", err)
			return
		}

		report, err := newSyncer(sess).Publish(ctx, app.settings.Repository)
		if report != nil {
			printPublishReport(cmd.OutOrStdout(), report)
		}
		if err != nil {
			wrapFatalln("publish repository", err)
			return
		}
	},
}

func init() {
	addRepositoryFlag(publishCmd)
	rootCmd.AddCommand(publishCmd)
}
