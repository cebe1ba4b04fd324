package model

import "encoding/xml"

// Sparkle appcast wire model. Namespace prefixes are emitted literally
// in the tag names; encoding/xml would otherwise rewrite them.
type Appcast struct {
	XMLName   xml.Name       `xml:"rss"`
	Version   string         `xml:"version,attr"`
	SparkleNS string         `xml:"xmlns:sparkle,attr"`
	DCNS      string         `xml:"xmlns:dc,attr"`
	Channel   AppcastChannel `xml:"channel"`
}

type AppcastChannel struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description"`
	Language    string        `xml:"language"`
	Items       []AppcastItem `xml:"item"`
}

type AppcastItem struct {
	Title                string            `xml:"title"`
	Description          *CDATA            `xml:"description,omitempty"`
	PubDate              string            `xml:"pubDate"`
	MinimumSystemVersion string            `xml:"sparkle:minimumSystemVersion,omitempty"`
	Tags                 *AppcastTags      `xml:"sparkle:tags,omitempty"`
	Enclosure            AppcastEnclosure  `xml:"enclosure"`
}

// AppcastTags carries the critical update marker understood by
// Sparkle 1.x clients.
type AppcastTags struct {
	CriticalUpdate *struct{} `xml:"sparkle:criticalUpdate,omitempty"`
}

type AppcastEnclosure struct {
	URL          string `xml:"url,attr"`
	Version      string `xml:"sparkle:version,attr"`
	ShortVersion string `xml:"sparkle:shortVersionString,attr,omitempty"`
	DSASignature string `xml:"sparkle:dsaSignature,attr,omitempty"`
	Length       int64  `xml:"length,attr"`
	Type         string `xml:"type,attr"`
}

type CDATA struct {
	Text string `xml:",cdata"`
}
