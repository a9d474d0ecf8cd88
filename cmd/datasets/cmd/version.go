package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

// Build information, set at link time with -ldflags "-X github.com/oneconcern/datasets/cmd/datasets/cmd.Version=..."
var (
	Version   string
	BuildDate string
	GitCommit string
	GitState  string
)

const devVersion = "dev"

type buildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
	GitState  string
	GoVersion string
}

// currentBuild describes the running binary.
//
// Link time values win. Otherwise, the module version and the VCS stamps recorded by the go
// toolchain are used, when available.
func currentBuild() buildInfo {
	info := buildInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GitState:  GitState,
	}
	if info.Version != "" && info.GitState == "" {
		info.GitState = "clean"
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = setting.Value
				}
			case "vcs.time":
				if info.BuildDate == "" {
					info.BuildDate = setting.Value
				}
			case "vcs.modified":
				if info.GitState == "" {
					info.GitState = map[string]string{"true": "dirty", "false": "clean"}[setting.Value]
				}
			}
		}
	}

	if info.Version == "" {
		info.Version = devVersion
	}
	return info
}

func (b buildInfo) table() *uitable.Table {
	table := uitable.New()
	table.AddRow("Version:", b.Version)
	table.AddRow("Build date:", b.BuildDate)
	table.AddRow("Commit:", b.GitCommit)
	table.AddRow("Working tree:", b.GitState)
	table.AddRow("Go:", b.GoVersion)
	return table
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version of datasets",
	Long: `Prints the version of datasets, with the commit it was built from.

The working tree is "dirty" when the build included uncommitted changes.`,
	Run: func(cmd *cobra.Command, args []string) {
		build := currentBuild()
		if datasetsFlags.version.short {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), build.Version)
			return
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), build.table())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	addShortFlag(versionCmd)
}
