// Package feed renders an episode list into a podcast-compatible RSS 2.0
// document with iTunes extensions.
package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/pixelnated/digg-daily-rss/internal/app/diggrss/podcast"
	"github.com/pixelnated/digg-daily-rss/internal/configs"
)

const (
	itunesNS = "http://www.itunes.com/dtds/podcast-1.0.dtd"
	atomNS   = "http://www.w3.org/2005/Atom"
)

// Generator renders RSS from fixed channel metadata. Only lastBuildDate and
// the copyright year depend on the render time, everything else is
// deterministic for identical input.
type Generator struct {
	Channel         configs.Channel
	CDNBase         string
	FeedURL         string
	EnclosureLength int64

	now func() time.Time
}

// NewGenerator creates a generator from the loaded configuration.
func NewGenerator(conf *configs.Conf) *Generator {
	return &Generator{
		Channel:         conf.Channel,
		CDNBase:         conf.API.CDNBase,
		FeedURL:         conf.Feed.URL,
		EnclosureLength: conf.Feed.EnclosureLength,
		now:             time.Now,
	}
}

// Run renders the full feed document. Episodes are expected newest first,
// the generator does not reorder them.
func (g *Generator) Run(episodes []podcast.Episode) string {
	var buf bytes.Buffer
	now := g.timeNow()

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	if g.FeedURL != "" {
		buf.WriteString(fmt.Sprintf(`<rss version="2.0" xmlns:itunes="%s" xmlns:atom="%s">`, itunesNS, atomNS))
	} else {
		buf.WriteString(fmt.Sprintf(`<rss version="2.0" xmlns:itunes="%s">`, itunesNS))
	}
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", g.Channel.Title, 4)
	g.writeElement(&buf, "link", g.Channel.Link, 4)
	g.writeElement(&buf, "description", g.Channel.Description, 4)
	g.writeElement(&buf, "language", g.Channel.Language, 4)
	if g.Channel.Copyright != "" {
		g.writeElement(&buf, "copyright", fmt.Sprintf("%s %d", g.Channel.Copyright, now.Year()), 4)
	}
	g.writeElement(&buf, "lastBuildDate", now.UTC().Format("Mon, 02 Jan 2006 15:04:05 +0000"), 4)
	g.writeElement(&buf, "generator", "Digg Daily RSS Generator", 4)

	if g.FeedURL != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\"/>\n",
			html.EscapeString(g.FeedURL)))
	}

	g.writeElement(&buf, "itunes:author", g.Channel.Author, 4)
	g.writeElement(&buf, "itunes:summary", g.Channel.Description, 4)
	g.writeElement(&buf, "itunes:explicit", g.Channel.Explicit, 4)
	g.writeElement(&buf, "itunes:type", "episodic", 4)

	if g.Channel.OwnerName != "" || g.Channel.OwnerEmail != "" {
		buf.WriteString("    <itunes:owner>\n")
		g.writeElement(&buf, "itunes:name", g.Channel.OwnerName, 6)
		g.writeElement(&buf, "itunes:email", g.Channel.OwnerEmail, 6)
		buf.WriteString("    </itunes:owner>\n")
	}

	if g.Channel.Category != "" {
		if g.Channel.Subcategory != "" {
			buf.WriteString(fmt.Sprintf("    <itunes:category text=\"%s\">\n", html.EscapeString(g.Channel.Category)))
			buf.WriteString(fmt.Sprintf("      <itunes:category text=\"%s\"/>\n", html.EscapeString(g.Channel.Subcategory)))
			buf.WriteString("    </itunes:category>\n")
		} else {
			buf.WriteString(fmt.Sprintf("    <itunes:category text=\"%s\"/>\n", html.EscapeString(g.Channel.Category)))
		}
	}

	if g.Channel.Image != "" {
		buf.WriteString(fmt.Sprintf("    <itunes:image href=\"%s\"/>\n", html.EscapeString(g.Channel.Image)))
		buf.WriteString("    <image>\n")
		g.writeElement(&buf, "url", g.Channel.Image, 6)
		g.writeElement(&buf, "title", g.Channel.Title, 6)
		g.writeElement(&buf, "link", g.Channel.Link, 6)
		buf.WriteString("    </image>\n")
	}

	for _, episode := range episodes {
		g.writeItem(&buf, episode)
	}

	buf.WriteString("  </channel>\n</rss>\n")

	return buf.String()
}

func (g *Generator) writeItem(buf *bytes.Buffer, e podcast.Episode) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", e.Title, 6)
	g.writeElement(buf, "link", podcast.HomepageURL, 6)
	g.writeElement(buf, "description", e.Description, 6)
	g.writeElement(buf, "pubDate", e.PubDateRFC2822(), 6)

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(e.GUID())) // nolint
	buf.WriteString("</guid>\n")

	// RSS 2.0 requires a length attribute, a placeholder stands in when the
	// true size was never probed
	length := e.SizeBytes
	if length == 0 {
		length = g.EnclosureLength
	}
	buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" type=\"audio/mpeg\" length=\"%d\"/>\n",
		html.EscapeString(e.AudioURL(g.CDNBase)), length))

	g.writeElement(buf, "itunes:author", g.Channel.Author, 6)
	g.writeElement(buf, "itunes:summary", e.Description, 6)
	g.writeElement(buf, "itunes:explicit", g.Channel.Explicit, 6)
	g.writeElement(buf, "itunes:episodeType", "full", 6)
	if g.Channel.Image != "" {
		buf.WriteString(fmt.Sprintf("      <itunes:image href=\"%s\"/>\n", html.EscapeString(g.Channel.Image)))
	}
	g.writeElement(buf, "itunes:duration", e.DurationFormatted(), 6)

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content)) // nolint
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) timeNow() time.Time {
	if g.now != nil {
		return g.now()
	}
	return time.Now()
}
