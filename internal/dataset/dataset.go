// Package dataset loads per-example label counts for an evaluation set, from
// a local file or an HTTP source. The format is one integer per line (the
// number of possible labels for that example), blank lines and '#' comments
// ignored. Example order is preserved.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/maxrand/go/pkg/probspec"
)

type SourceFetcher interface {
	Fetch(ctx context.Context, src string) (string, error)
}

type HTTPFetcher struct {
	Client *http.Client
}

func (h HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	c := h.Client
	if c == nil {
		c = &http.Client{Timeout: 12 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return "", errors.New("http_status_" + resp.Status)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type FileFetcher struct{}

func (FileFetcher) Fetch(_ context.Context, path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Load fetches and parses label counts from src, choosing the fetcher by
// scheme.
func Load(ctx context.Context, src string) ([]int, error) {
	var f SourceFetcher = FileFetcher{}
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		f = HTTPFetcher{}
	}
	text, err := f.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	return ParseLabelCounts(text)
}

// ParseLabelCounts reads one label count per non-empty line.
func ParseLabelCounts(text string) ([]int, error) {
	out := []int{}
	for i, line := range strings.Split(text, "\n") {
		l := strings.TrimSpace(line)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		if j := strings.Index(l, "#"); j >= 0 {
			l = strings.TrimSpace(l[:j])
		}
		v, err := strconv.Atoi(l)
		if err != nil {
			return nil, fmt.Errorf("line %d: %q is not an integer", i+1, l)
		}
		if v < 1 {
			return nil, fmt.Errorf("line %d: label count must be >= 1, got %d", i+1, v)
		}
		out = append(out, v)
	}
	return out, nil
}

// Probabilities converts label counts into per-example chance-guessing
// probabilities, preserving example order.
func Probabilities(counts []int) probspec.PerExample {
	ps := make(probspec.PerExample, len(counts))
	for i, k := range counts {
		ps[i] = 1 / float64(k)
	}
	return ps
}
