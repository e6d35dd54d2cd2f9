package catalog

import (
	"bytes"
	"cmp"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Discoverer reads a catalog feed and lists the course documents it links to.
type Discoverer struct {
	gofeedParser *gofeed.Parser
}

func NewDiscoverer() *Discoverer {
	return &Discoverer{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run returns one reference per distinct document URL, in feed order. Item
// links win over enclosures; relative links resolve against the feed's own
// link.
func (d *Discoverer) Run(data []byte) ([]DocumentRef, error) {
	feed, err := d.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog feed: %w", err)
	}

	var base *url.URL
	if feed.Link != "" {
		base, _ = url.Parse(feed.Link)
	}

	seen := make(map[string]bool, len(feed.Items))
	refs := make([]DocumentRef, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		link := d.documentLink(item)
		if link == "" {
			continue
		}

		resolved := d.resolve(base, link)
		if seen[resolved] {
			continue
		}
		seen[resolved] = true

		refs = append(refs, DocumentRef{
			URL:   resolved,
			Title: strings.TrimSpace(item.Title),
			GUID:  cmp.Or(item.GUID, resolved),
		})
	}

	return refs, nil
}

func (d *Discoverer) documentLink(item *gofeed.Item) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}

	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.TrimSpace(enclosure.URL) != "" {
			return strings.TrimSpace(enclosure.URL)
		}
	}

	return ""
}

func (d *Discoverer) resolve(base *url.URL, link string) string {
	ref, err := url.Parse(link)
	if err != nil || base == nil || ref.IsAbs() {
		return link
	}
	return base.ResolveReference(ref).String()
}
