package util

import (
	"errors"
	"fmt"
	"net"
	"os/exec"
	"runtime"
)

// browserCommands 按优先级排列的打开方式
func browserCommands(goos, url string) [][]string {
	switch goos {
	case "windows":
		// rundll32 在 Windows 7 上比 cmd /c start 更稳定
		return [][]string{
			{"rundll32", "url.dll,FileProtocolHandler", url},
			{"explorer", url},
		}
	case "darwin":
		return [][]string{{"open", url}}
	default:
		cmds := [][]string{{"xdg-open", url}}
		for _, browser := range []string{"sensible-browser", "google-chrome", "firefox", "chromium-browser"} {
			cmds = append(cmds, []string{browser, url})
		}
		return cmds
	}
}

// OpenBrowser 用默认浏览器打开 url，依次尝试备选方式
func OpenBrowser(url string) error {
	var errs []error
	for _, args := range browserCommands(runtime.GOOS, url) {
		err := exec.Command(args[0], args[1:]...).Start()
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", args[0], err))
	}
	return errors.Join(errs...)
}

// FindAvailablePort 从 startPort 起查找可监听的端口，最多尝试 attempts 个
func FindAvailablePort(startPort, attempts int) (int, error) {
	for port := startPort; port < startPort+attempts && port <= 65535; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			continue
		}
		_ = ln.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no free port in %d-%d", startPort, startPort+attempts-1)
}
