package model

import (
	"encoding/xml"
	"sort"
)

// Wire level status values. These are a fixed contract with deployed
// clients, covered byte-for-byte by the builder tests.
const (
	StatusOK                 = "ok"
	StatusNoUpdate           = "noupdate"
	StatusUnknownApplication = "error-unknownApplication"
	StatusInternalError      = "error-internal"
	StatusNoData             = "error-nodata"

	ProtocolVersion = "3.0"
	ServerName      = "prod"

	// FaultInternal is the reason carried by the engine fault envelope.
	FaultInternal = "internal"
)

type UpdateResponse struct {
	XMLName  xml.Name       `xml:"response"`
	Protocol string         `xml:"protocol,attr"`
	Server   string         `xml:"server,attr"`
	DayStart DayStart       `xml:"daystart"`
	Apps     []AppResponse  `xml:"app"`
	Error    *ResponseError `xml:"error,omitempty"`
}

type DayStart struct {
	ElapsedSeconds int `xml:"elapsed_seconds,attr"`
}

// ResponseError is the fixed engine fault envelope: a distinguishable
// reason attribute instead of leaked internals.
type ResponseError struct {
	Reason string `xml:"reason,attr"`
}

type AppResponse struct {
	AppID       string               `xml:"appid,attr"`
	Status      string               `xml:"status,attr"`
	UpdateCheck *UpdateCheckResponse `xml:"updatecheck,omitempty"`
	Ping        *StatusReply         `xml:"ping,omitempty"`
	Events      []StatusReply        `xml:"event"`
	Data        []DataResponse       `xml:"data"`
}

type StatusReply struct {
	Status string `xml:"status,attr"`
}

type UpdateCheckResponse struct {
	Status   string    `xml:"status,attr"`
	Critical string    `xml:"critical,attr,omitempty"`
	URLs     *URLList  `xml:"urls,omitempty"`
	Manifest *Manifest `xml:"manifest,omitempty"`
}

type URLList struct {
	URLs []CodebaseURL `xml:"url"`
}

type CodebaseURL struct {
	Codebase string `xml:"codebase,attr"`
}

type Manifest struct {
	Version  string      `xml:"version,attr"`
	Packages PackageList `xml:"packages"`
	Actions  *ActionList `xml:"actions,omitempty"`
}

type PackageList struct {
	Packages []Package `xml:"package"`
}

type Package struct {
	Hash       string `xml:"hash,attr"`
	Name       string `xml:"name,attr"`
	Required   bool   `xml:"required,attr"`
	Size       int64  `xml:"size,attr"`
	HashSHA256 string `xml:"hash_sha256,attr,omitempty"`
}

type ActionList struct {
	Actions []ActionResponse `xml:"action"`
}

// ActionResponse renders one <action> element: the fixed typed fields
// merged with the record's free-form extra attributes. On a key
// collision the typed field wins.
type ActionResponse struct {
	Event                string
	Run                  string
	Arguments            string
	SuccessURL           string
	OnSuccess            string
	TerminateAllBrowsers bool
	Extra                map[string]string
}

func (a ActionResponse) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "action"}
	start.Attr = start.Attr[:0]

	fixed := map[string]bool{"event": true}
	add := func(name, val string) {
		if val == "" {
			return
		}
		fixed[name] = true
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: name}, Value: val})
	}

	start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "event"}, Value: a.Event})
	add("run", a.Run)
	add("arguments", a.Arguments)
	add("successurl", a.SuccessURL)
	add("onsuccess", a.OnSuccess)
	if a.TerminateAllBrowsers {
		add("terminateallbrowsers", "true")
	}

	// extras in sorted order so the output stays deterministic
	keys := make([]string, 0, len(a.Extra))
	for k := range a.Extra {
		if !fixed[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: k}, Value: a.Extra[k]})
	}

	if err := e.EncodeToken(start); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

type DataResponse struct {
	Status string `xml:"status,attr"`
	Index  string `xml:"index,attr,omitempty"`
	Name   string `xml:"name,attr"`
	Value  string `xml:",chardata"`
}
