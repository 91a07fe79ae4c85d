package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vidscraper/pkg/auth"
	"vidscraper/pkg/platform"
	"vidscraper/pkg/ui"
)

var (
	cookiePlatform  string
	cookieUserAgent string
)

var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Manage stored session cookies",
	Long: `Manage named cookie profiles for Instagram and Facebook.

Profiles are stored in:
  - the system keychain when available
  - an encrypted file in the config directory otherwise

VIDSCRAPER_INSTAGRAM_COOKIE and VIDSCRAPER_FACEBOOK_COOKIE are read as
profiles named after their platform.`,
}

var cookiesSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Store a cookie profile",
	Long: `Store a cookie profile. The cookie header is read from stdin without
echo when stdin is a terminal.`,
	Example: `  vidscraper cookies set work --platform instagram
  pbpaste | vidscraper cookies set fb --platform facebook`,
	Args: cobra.ExactArgs(1),
	RunE: runCookiesSet,
}

var cookiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored cookie profiles with masked values",
	RunE:  runCookiesList,
}

var cookiesDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a cookie profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runCookiesDelete,
}

var cookiesGuideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show how to copy a session cookie from a browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parsePlatform(cookiePlatform)
		if err != nil {
			return err
		}
		auth.WriteCookieGuide(cmd.OutOrStdout(), p)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cookiesCmd)
	cookiesCmd.AddCommand(cookiesSetCmd, cookiesListCmd, cookiesDeleteCmd, cookiesGuideCmd)

	cookiesSetCmd.Flags().StringVar(&cookiePlatform, "platform", "instagram", "platform the cookie belongs to (instagram, facebook)")
	cookiesSetCmd.Flags().StringVar(&cookieUserAgent, "cookie-user-agent", "", "user agent of the browser the cookie came from")
	cookiesGuideCmd.Flags().StringVar(&cookiePlatform, "platform", "instagram", "platform to show the guide for")
}

func parsePlatform(s string) (platform.Platform, error) {
	p := platform.Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range platform.All {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

func runCookiesSet(cmd *cobra.Command, args []string) error {
	p, err := parsePlatform(cookiePlatform)
	if err != nil {
		return err
	}

	cookieValue, err := readSecret(fmt.Sprintf("Cookie header for %s: ", p))
	if err != nil {
		return fmt.Errorf("failed to read cookie: %w", err)
	}

	if missing := auth.MissingCookies(p, cookieValue); len(missing) > 0 {
		ui.PrintWarning("Cookie is missing", strings.Join(missing, ", "))
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open cookie vault: %w", err)
	}

	profile := &auth.Profile{
		Name:      args[0],
		Platform:  p,
		Cookie:    cookieValue,
		UserAgent: cookieUserAgent,
	}
	if err := manager.Store(profile); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Profile saved: %s (%s)", profile.Name, p))
	return nil
}

// readSecret reads a line without echo from a terminal, or plainly from a
// pipe
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runCookiesList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open cookie vault: %w", err)
	}

	profiles, err := manager.List()
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		ui.PrintWarning("No cookie profiles stored")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPLATFORM\tCOOKIE\tMODIFIED")
	for _, profile := range profiles {
		masked := auth.Sanitize(profile)
		modified := "-"
		if !profile.LastModified.IsZero() {
			modified = profile.LastModified.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", masked.Name, masked.Platform, masked.Cookie, modified)
	}
	return w.Flush()
}

func runCookiesDelete(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open cookie vault: %w", err)
	}

	if err := manager.Delete(args[0]); err != nil {
		return err
	}
	ui.PrintSuccess("Profile removed: " + args[0])
	return nil
}
