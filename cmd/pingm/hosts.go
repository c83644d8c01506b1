package main

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var errNoHostsGiven = errors.New("no hosts given (arguments, stdin, or the settings file)")

// gatherHosts merges the host list sources: positional arguments win,
// then piped stdin (or an explicit "-"), then the settings file.
func gatherHosts(args, fromConfig []string) ([]string, error) {
	switch {
	case len(args) == 1 && args[0] == "-":
		hosts, err := readHosts(os.Stdin)
		if err != nil || len(hosts) > 0 {
			return hosts, err
		}
	case len(args) > 0:
		return args, nil
	case !term.IsTerminal(int(os.Stdin.Fd())):
		hosts, err := readHosts(os.Stdin)
		if err != nil || len(hosts) > 0 {
			return hosts, err
		}
	}

	if len(fromConfig) > 0 {
		return fromConfig, nil
	}
	return nil, errNoHostsGiven
}

// readHosts reads one host per line. Blank lines and #-comments are
// skipped; anything after the first field is ignored.
func readHosts(r io.Reader) ([]string, error) {
	var hosts []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		hosts = append(hosts, strings.Fields(line)[0])
	}
	return hosts, scanner.Err()
}
