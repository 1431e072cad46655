package fetch

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/civiccrawl/govharvest/internal/model"
)

// RenderStrategy fetches a page through a headless browser so
// client-rendered sites still yield extractable text. It is an
// optional, pluggable strategy: the engine works without it, and it is
// only consulted when the static strategy returns an HTML shell with
// no usable text.
type RenderStrategy struct {
	// userAgent is applied to the browser context.
	userAgent string

	// renderWait is how long to let scripts settle after load.
	renderWait time.Duration
}

// NewRenderStrategy creates a headless-browser strategy.
func NewRenderStrategy(userAgent string) *RenderStrategy {
	return &RenderStrategy{
		userAgent:  userAgent,
		renderWait: 2 * time.Second,
	}
}

// Name returns the strategy name.
func (s *RenderStrategy) Name() string { return "headless-render" }

// Do renders the page and returns its final DOM as HTML.
func (s *RenderStrategy) Do(ctx context.Context, url string) (*model.FetchResult, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.UserAgent(s.userAgent),
			chromedp.NoSandbox,
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(s.renderWait),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, err
	}

	result := &model.FetchResult{
		URL:         url,
		StatusCode:  200,
		Body:        []byte(html),
		ContentType: "text/html",
		FetchedAt:   time.Now(),
	}
	result.TruncateBody()
	return result, nil
}

// NeedsRender is the deterministic rule deciding when the render
// strategy applies: the static fetch succeeded, claims HTML, but the
// body has a script tag and essentially no visible text.
func NeedsRender(result *model.FetchResult) bool {
	if result == nil || !result.Outcome.Success() || !result.IsHTML() {
		return false
	}
	body := strings.ToLower(string(result.Body))
	if !strings.Contains(body, "<script") {
		return false
	}

	// Drop script and style blocks, then strip tags crudely; a
	// server-rendered page keeps plenty of visible characters.
	body = scriptBlockPattern.ReplaceAllString(body, "")
	body = styleBlockPattern.ReplaceAllString(body, "")
	text := 0
	inTag := false
	for _, r := range body {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag && r > ' ':
			text++
		}
	}
	return text < 200
}

var (
	scriptBlockPattern = regexp.MustCompile(`(?s)<script.*?</script>`)
	styleBlockPattern  = regexp.MustCompile(`(?s)<style.*?</style>`)
)
