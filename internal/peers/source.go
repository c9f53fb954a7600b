// Package peers loads the candidate peer list.
//
// The input is line oriented: one host:port per line. Blank lines and lines starting
// with '#' are ignored. Malformed lines are reported as warnings and skipped.
package peers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
)

// Warning describes a skipped input line.
type Warning struct {
	Line   int
	Text   string
	Reason error
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d %q: %v", w.Line, w.Text, w.Reason)
}

// Load reads path and returns the de-duplicated peers. Skipped lines are logged.
func Load(path string) ([]entity.Peer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.WrapOp("open peer list", err)
	}
	defer f.Close()

	list, warnings, err := Parse(f)
	for _, w := range warnings {
		logger.Warn("skipping peer line", "file", path, "line", w.Line, "text", w.Text, "reason", w.Reason)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("loaded peers", "file", path, "count", len(list), "skipped", len(warnings))
	return list, nil
}

// Parse reads host:port lines. A host seen twice keeps its first position and takes the last port.
func Parse(r io.Reader) ([]entity.Peer, []Warning, error) {
	var (
		list     []entity.Peer
		warnings []Warning
		index    = make(map[string]int)
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		peer, err := ParseLine(text)
		if err != nil {
			warnings = append(warnings, Warning{Line: lineNo, Text: text, Reason: err})
			continue
		}

		key := strings.ToLower(peer.Host)
		if i, ok := index[key]; ok {
			list[i].Port = peer.Port
			continue
		}
		index[key] = len(list)
		list = append(list, peer)
	}
	if err := scanner.Err(); err != nil {
		return nil, warnings, domain.WrapOp("read peer list", err)
	}
	if len(list) == 0 {
		return nil, warnings, domain.ErrNoPeers
	}
	return list, warnings, nil
}

// ParseLine parses a single "host:port" entry. The port is taken after the last colon.
func ParseLine(text string) (entity.Peer, error) {
	i := strings.LastIndex(text, ":")
	if i < 0 {
		return entity.Peer{}, fmt.Errorf("%w: missing port", domain.ErrInvalidPeer)
	}
	host := strings.TrimSpace(text[:i])
	portStr := strings.TrimSpace(text[i+1:])
	if host == "" || portStr == "" {
		return entity.Peer{}, fmt.Errorf("%w: missing host or port", domain.ErrInvalidPeer)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return entity.Peer{}, fmt.Errorf("%w: non-numeric port %q", domain.ErrInvalidPort, portStr)
	}

	peer := entity.Peer{Host: host, Port: port}
	if err := peer.Validate(); err != nil {
		return entity.Peer{}, err
	}
	return peer, nil
}
