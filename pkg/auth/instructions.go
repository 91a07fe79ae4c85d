package auth

import (
	"fmt"
	"io"
	"strings"

	"vidscraper/pkg/platform"
)

var requiredCookies = map[platform.Platform][]string{
	platform.Instagram: {"sessionid", "csrftoken", "ds_user_id"},
	platform.Facebook:  {"c_user", "xs", "datr"},
}

// RequiredCookies lists the cookie names a logged-in session of p carries
func RequiredCookies(p platform.Platform) []string {
	return requiredCookies[p]
}

// MissingCookies returns the required names absent from a cookie header
func MissingCookies(p platform.Platform, cookie string) []string {
	present := make(map[string]bool)
	for _, pair := range strings.Split(cookie, ";") {
		name, _, _ := strings.Cut(strings.TrimSpace(pair), "=")
		present[name] = true
	}

	var missing []string
	for _, name := range requiredCookies[p] {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// WriteCookieGuide writes step-by-step instructions for copying the
// session cookie of p out of a browser
func WriteCookieGuide(w io.Writer, p platform.Platform) {
	host := "https://www.instagram.com"
	if p == platform.Facebook {
		host = "https://www.facebook.com"
	}

	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintf(w, "%s COOKIE GUIDE\n", strings.ToUpper(string(p)))
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "1. Open %s in your browser and log in.\n", host)
	fmt.Fprintln(w, "2. Open Developer Tools (F12, or Cmd+Option+I on Mac).")
	fmt.Fprintln(w, "3. Go to the Network tab and refresh the page.")
	fmt.Fprintf(w, "4. Click any request to %s and find the Cookie request header.\n", strings.TrimPrefix(host, "https://"))
	fmt.Fprintln(w, "5. Copy the whole header value, for example:")
	fmt.Fprintln(w)

	var example []string
	for _, name := range requiredCookies[p] {
		example = append(example, name+"=...")
	}
	fmt.Fprintf(w, "   %s\n", strings.Join(example, "; "))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Then run: vidscraper cookies set --platform %s <name>\n", p)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Session cookies give full access to the account. They are stored")
	fmt.Fprintln(w, "in the system keychain or an encrypted file, never in plain text.")
	fmt.Fprintln(w, strings.Repeat("=", 72))
}
