package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

const (
	formatMarkdown = "markdown"
	formatMan      = "man"
)

// frontMatter heads each markdown page with its title and the version it documents
func frontMatter(filename string) string {
	title := strings.ReplaceAll(strings.TrimSuffix(filepath.Base(filename), ".md"), "_", " ")
	return fmt.Sprintf("---\ntitle: %q\nversion: %s\n---\n\n", title, currentBuild().Version)
}

func generateDocs(root *cobra.Command, format, target string) error {
	if err := os.MkdirAll(target, 0755); err != nil {
		return err
	}
	root.DisableAutoGenTag = true

	switch format {
	case formatMarkdown:
		return doc.GenMarkdownTreeCustom(root, target, frontMatter, func(link string) string { return link })
	case formatMan:
		return doc.GenManTree(root, &doc.GenManHeader{
			Title:   strings.ToUpper(root.Name()),
			Section: "1",
			Source:  root.Name() + " " + currentBuild().Version,
		}, target)
	default:
		return fmt.Errorf("unsupported documentation format %q: expected %s or %s", format, formatMarkdown, formatMan)
	}
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Generates the documentation of the datasets commands",
	Long: `Generates one page per command, as markdown (default) or as man pages.

The target directory is created when missing.`,
	Run: func(cmd *cobra.Command, args []string) {
		target := datasetsFlags.doc.docTarget
		if err := generateDocs(rootCmd, datasetsFlags.doc.format, target); err != nil {
			wrapFatalln("failed to generate documentation", err)
			return
		}

		pages, _ := os.ReadDir(target)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "generated %d %s pages in %s\n", len(pages), datasetsFlags.doc.format, target)
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
	addTargetFlag(usageCmd)
	addDocFormatFlag(usageCmd)
}
