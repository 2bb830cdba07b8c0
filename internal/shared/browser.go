package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var (
	getRuntime = func() string { return runtime.GOOS }
	startCmd   = func(name string, args ...string) error { return exec.Command(name, args...).Start() }
)

// BrowserCommand returns the command line that opens url on goos.
//
// $BROWSER wins when set; its first entry is used as the program.
func BrowserCommand(goos, url string) ([]string, error) {
	if b := strings.TrimSpace(os.Getenv("BROWSER")); b != "" {
		program, _, _ := strings.Cut(b, ":")
		return []string{program, url}, nil
	}

	switch goos {
	case "darwin":
		return []string{"open", url}, nil
	case "linux", "freebsd", "openbsd":
		return []string{"xdg-open", url}, nil
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", url}, nil
	default:
		return nil, fmt.Errorf("%w: cannot open a browser on %s", ErrInvalidArgument, goos)
	}
}

// OpenBrowser starts the system browser on url for the OAuth consent page.
func OpenBrowser(url string) error {
	argv, err := BrowserCommand(getRuntime(), url)
	if err != nil {
		return err
	}

	if err := startCmd(argv[0], argv[1:]...); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
