package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"vidscraper/pkg/metadata"
	"vidscraper/pkg/ui"
)

var captionLength int

var metadataCmd = &cobra.Command{
	Use:   "metadata <url>",
	Short: "Print the metadata of a post as JSON",
	Long: `Scrape a single Instagram or Facebook URL and print its metadata as
JSON on stdout. Logs go to stderr.`,
	Example: `  vidscraper metadata https://www.instagram.com/reel/Cx1abc/
  vidscraper metadata "https://www.facebook.com/watch/?v=1234567890"`,
	Args: cobra.ExactArgs(1),
	RunE: runMetadata,
}

var videoURLCmd = &cobra.Command{
	Use:   "video-url <url>",
	Short: "Print the direct video URL of a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runVideoURL,
}

var supportedCmd = &cobra.Command{
	Use:   "supported <url>...",
	Short: "Report which URLs belong to a supported platform",
	Long:  `Check URLs against the supported platforms without making any request.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSupported,
}

func init() {
	rootCmd.AddCommand(metadataCmd, videoURLCmd, supportedCmd)
	metadataCmd.Flags().IntVar(&captionLength, "caption-length", 0, "truncate the caption to this many characters (0 keeps it whole)")
}

func runMetadata(cmd *cobra.Command, args []string) error {
	s, err := newScraper()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	meta, err := s.GetMetadata(ctx, args[0])
	if err != nil {
		return err
	}

	if captionLength > 0 {
		meta.Base().Caption = metadata.FormattedCaption(meta, captionLength)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func runVideoURL(cmd *cobra.Command, args []string) error {
	s, err := newScraper()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	url, err := s.GetVideoURL(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}

func runSupported(cmd *cobra.Command, args []string) error {
	s, err := newScraper()
	if err != nil {
		return err
	}

	unsupported := 0
	for _, url := range args {
		mark := ui.Green("yes")
		if !s.IsSupported(url) {
			mark = ui.Red("no")
			unsupported++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", mark, url)
	}

	if unsupported > 0 {
		return fmt.Errorf("%d of %d urls are not supported", unsupported, len(args))
	}
	return nil
}
