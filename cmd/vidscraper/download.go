package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vidscraper/internal/batch"
	"vidscraper/pkg/logger"
	"vidscraper/pkg/metadata"
	"vidscraper/pkg/scraper"
	"vidscraper/pkg/storage"
	"vidscraper/pkg/ui"
)

var (
	outputDir  string
	concurrent int
	inputFile  string
	overwrite  bool
	noMetadata bool
	notify     bool
	verbose    bool
)

var downloadCmd = &cobra.Command{
	Use:   "download [url]...",
	Short: "Download videos to the output directory",
	Long: `Download one or more videos. Each video is saved as
<platform>_<id>.mp4 in the output directory, with its metadata in a JSON
sidecar next to it unless --no-metadata is given. Videos already on disk
are skipped unless --overwrite is given.`,
	Example: `  vidscraper download https://www.instagram.com/reel/Cx1abc/
  vidscraper download -i urls.txt -o ./videos --concurrent 5`,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	flags := downloadCmd.Flags()
	flags.StringVarP(&outputDir, "output", "o", "", "output directory (default from config)")
	flags.IntVar(&concurrent, "concurrent", 0, "number of concurrent downloads (default from config)")
	flags.StringVarP(&inputFile, "input", "i", "", "file with one url per line")
	flags.BoolVar(&overwrite, "overwrite", false, "download again even if the video exists")
	flags.BoolVar(&noMetadata, "no-metadata", false, "do not write JSON sidecars")
	flags.BoolVar(&notify, "notify", false, "send a desktop notification when done")
	flags.BoolVarP(&verbose, "verbose", "v", false, "print a line per video instead of a progress bar")
}

func runDownload(cmd *cobra.Command, args []string) error {
	urls := append([]string{}, args...)
	if inputFile != "" {
		fromFile, err := readURLs(inputFile)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no urls given")
	}

	s, err := newScraper()
	if err != nil {
		return err
	}

	store, err := storage.NewManager(appConfig.Output.BaseDirectory, storage.Options{
		Overwrite:     overwrite || appConfig.Output.OverwriteExisting,
		WriteMetadata: appConfig.Output.WriteMetadata && !noMetadata,
	})
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	log := logger.GetLogger()
	log.InfoWithFields("Starting downloads", map[string]interface{}{
		"urls":       len(urls),
		"output":     store.GetOutputDir(),
		"concurrent": appConfig.Download.ConcurrentDownloads,
	})

	if verbose {
		ui.PrintLogo()
		ui.PrintHighlight(fmt.Sprintf("Downloading %d videos to %s", len(urls), store.GetOutputDir()))
	}

	progress := ui.NewProgressDisplay(cmd.OutOrStdout(), len(urls), verbose)
	pool := batch.NewWorkerPool(
		appConfig.Download.ConcurrentDownloads,
		s,
		store,
		scraper.DownloadOptions{
			Quality:      appConfig.Download.Quality,
			IncludeAudio: appConfig.Download.IncludeAudio,
			Timeout:      appConfig.Download.DownloadTimeout,
		},
		log,
	)

	pool.Run(ctx, urls, func(r batch.Result) {
		switch {
		case r.Skipped:
			progress.Skipped(r.Job.URL)
		case r.Success:
			caption := ""
			if r.Metadata != nil {
				caption = metadata.FormattedCaption(r.Metadata, 50)
			}
			progress.Saved(r.Job.URL, r.Path, int64(r.Size), caption)
		default:
			progress.Failed(r.Job.URL, r.Error)
		}
	})

	failed := progress.Complete()

	if notify {
		n := ui.NewNotifier()
		if failed > 0 {
			n.SendError("vidscraper", fmt.Sprintf("%d of %d downloads failed", failed, len(urls)))
		} else {
			n.SendSuccess("vidscraper", fmt.Sprintf("%d downloads finished", len(urls)))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(urls))
	}
	return nil
}

// readURLs reads one url per line, skipping blanks and # comments
func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return urls, nil
}
