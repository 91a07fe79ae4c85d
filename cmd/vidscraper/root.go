package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"vidscraper/pkg/auth"
	"vidscraper/pkg/config"
	"vidscraper/pkg/logger"
	"vidscraper/pkg/platform"
	"vidscraper/pkg/ratelimit"
	"vidscraper/pkg/scraper"
	"vidscraper/pkg/ui"
)

var (
	version   = "0.3.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile  string
	logLevel    string
	profileName string
	userAgent   string
	proxy       string
	cookie      string
	timeout     time.Duration
	retries     int
	retryDelay  time.Duration

	appConfig *config.Config
)

// Commands annotated with skipConfigAnnotation run before any
// configuration file exists
const skipConfigAnnotation = "skip-config"

var rootCmd = &cobra.Command{
	Use:   "vidscraper",
	Short: "Extract videos and metadata from Instagram and Facebook posts",
	Long: `vidscraper fetches video metadata and video files from public
Instagram posts, reels and stories and Facebook videos, reels and posts.

Each platform is tried with several extraction strategies in order, with
retries between attempts. Session cookies can be stored per platform with
'vidscraper cookies set' to reach content that requires a login.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipConfigAnnotation] == "true" {
			return nil
		}
		cfg, err := config.Load(configFile, changedFlags(cmd.Flags()))
		if err != nil {
			return err
		}
		if err := logger.Initialize(&cfg.Logging); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		appConfig = cfg
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.Output = os.Stderr
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (default is ./.vidscraper.yaml or "+config.DefaultPath()+")")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVarP(&profileName, "profile", "p", "", "stored cookie profile to use")
	flags.StringVar(&userAgent, "user-agent", "", "user agent sent with every request")
	flags.StringVar(&proxy, "proxy", "", "proxy url")
	flags.StringVar(&cookie, "cookie", "", "cookie header sent to both platforms")
	flags.DurationVar(&timeout, "timeout", 0, "per request timeout")
	flags.IntVar(&retries, "retries", 0, "attempts per extraction")
	flags.DurationVar(&retryDelay, "retry-delay", 0, "base delay between attempts")

	rootCmd.SetVersionTemplate(`vidscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// changedFlags collects the flags the user set, keyed by flag name, for
// config.MergeCommandLineFlags
func changedFlags(fs *pflag.FlagSet) map[string]interface{} {
	out := make(map[string]interface{})
	fs.Visit(func(f *pflag.Flag) {
		switch f.Value.Type() {
		case "int":
			if v, err := fs.GetInt(f.Name); err == nil {
				out[f.Name] = v
			}
		case "duration":
			if v, err := fs.GetDuration(f.Name); err == nil {
				out[f.Name] = v
			}
		case "bool":
			if v, err := fs.GetBool(f.Name); err == nil {
				out[f.Name] = v
			}
		default:
			out[f.Name] = f.Value.String()
		}
	})
	return out
}

// newScraper builds a Scraper from the loaded configuration, throttled by
// the configured rate limit and carrying stored cookies
func newScraper() (*scraper.Scraper, error) {
	log := logger.GetLogger()

	opts := []scraper.Option{
		scraper.WithLogger(log),
		scraper.WithLimiter(ratelimit.FromConfig(appConfig.RateLimit)),
	}
	opts = append(opts, cookieOptions(log)...)

	return scraper.New(appConfig.Scraper, opts...)
}

func cookieOptions(log logger.Logger) []scraper.Option {
	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Debug("Cookie vault unavailable")
		return nil
	}

	var opts []scraper.Option
	if profileName != "" {
		profile, err := manager.Retrieve(profileName)
		if err != nil {
			log.WithError(err).WarnWithFields("Cookie profile not found", map[string]interface{}{
				"profile": profileName,
			})
			return nil
		}
		return profileOptions(profile)
	}

	for _, p := range platform.All {
		profile, err := manager.ForPlatform(p)
		if err != nil {
			if !errors.Is(err, auth.ErrProfileNotFound) {
				log.WithError(err).Debug("Failed to read cookie profile")
			}
			continue
		}
		log.DebugWithFields("Using cookie profile", map[string]interface{}{
			"platform": string(p),
			"profile":  profile.Name,
		})
		opts = append(opts, profileOptions(profile)...)
	}
	return opts
}

// profileOptions sends the profile's cookie, and its browser user agent
// when one was stored, to the profile's platform
func profileOptions(profile *auth.Profile) []scraper.Option {
	opts := []scraper.Option{scraper.WithCookie(profile.Platform, profile.Cookie)}
	if profile.UserAgent != "" {
		opts = append(opts, scraper.WithUserAgent(profile.Platform, profile.UserAgent))
	}
	return opts
}

// commandContext is cancelled on interrupt
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
