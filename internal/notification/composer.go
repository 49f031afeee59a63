package notification

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	dErrors "confreg/pkg/domain-errors"
)

// Resource is an inline image referenced from an HTML body by its
// content ID.
type Resource struct {
	CID         string
	ContentType string
	Content     []byte
}

// Content is a fully composed HTML email body with its inline
// resources.
type Content struct {
	HTML      string
	Resources []Resource
}

// Placeholder maps a template token to the inline image that replaces
// it.
type Placeholder struct {
	Token string
	CID   string
	Asset string
}

// DefaultPlaceholders are the tokens the stock templates use.
var DefaultPlaceholders = []Placeholder{
	{Token: "{imgheader}", CID: "imgheader", Asset: "header.jpg"},
	{Token: "{imgfooter}", CID: "imgfooter", Asset: "footer.jpg"},
	{Token: "{imgsecuritymarking}", CID: "imgsecurity", Asset: "security.jpg"},
	{Token: "{map}", CID: "map", Asset: "map.jpg"},
	{Token: "{apple}", CID: "apple", Asset: "apple.jpg"},
	{Token: "{google}", CID: "google", Asset: "google.jpg"},
	{Token: "{web}", CID: "web", Asset: "web.jpg"},
}

// Composer renders email bodies by fetching a template page and
// swapping its image tokens for inline resources.
type Composer struct {
	baseURL      string
	assetDir     string
	client       *http.Client
	placeholders []Placeholder
	logger       *slog.Logger
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithComposerLogger sets the composer logger.
func WithComposerLogger(logger *slog.Logger) ComposerOption {
	return func(c *Composer) { c.logger = logger }
}

// WithHTTPClient overrides the template fetch client.
func WithHTTPClient(client *http.Client) ComposerOption {
	return func(c *Composer) { c.client = client }
}

// WithPlaceholders overrides the token table.
func WithPlaceholders(p []Placeholder) ComposerOption {
	return func(c *Composer) { c.placeholders = p }
}

// NewComposer creates a Composer fetching templates below baseURL and
// inline images from assetDir.
func NewComposer(baseURL, assetDir string, opts ...ComposerOption) *Composer {
	c := &Composer{
		baseURL:      strings.TrimRight(baseURL, "/"),
		assetDir:     assetDir,
		client:       &http.Client{Timeout: 15 * time.Second},
		placeholders: DefaultPlaceholders,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose fetches the template page rendered for one recipient and
// substitutes its image tokens. Extra query parameters let the
// template server personalize beyond the recipient address.
func (c *Composer) Compose(ctx context.Context, page, recipient string, extra url.Values) (*Content, error) {
	q := url.Values{"user": {recipient}}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	target := c.baseURL + "/" + page + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build template request: %w", err)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "fetch email template")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("email template %q returned status %d", page, res.StatusCode))
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read template %q: %w", page, err)
	}

	content := &Content{HTML: string(body)}
	for _, ph := range c.placeholders {
		if !strings.Contains(content.HTML, ph.Token) {
			continue
		}
		img, err := os.ReadFile(filepath.Join(c.assetDir, ph.Asset))
		if err != nil {
			c.logger.WarnContext(ctx, "email asset missing", "asset", ph.Asset, "error", err)
			content.HTML = strings.ReplaceAll(content.HTML, ph.Token, "")
			continue
		}
		content.HTML = strings.ReplaceAll(content.HTML, ph.Token,
			fmt.Sprintf("<img src=cid:%s />", ph.CID))
		content.Resources = append(content.Resources, Resource{
			CID:         ph.CID,
			ContentType: "image/jpeg",
			Content:     img,
		})
	}
	return content, nil
}
