package whoops

import "strings"

// Format is the symbolic output kind derived from content negotiation.
type Format string

const (
	FormatJSON    Format = "json"
	FormatHTML    Format = "html"
	FormatXML     Format = "xml"
	FormatPlain   Format = "plain"
	FormatUnknown Format = "unknown"
)

func (f Format) String() string {
	return string(f)
}

// formats is scanned in order, the first format with a matching mime wins.
var formats = []struct {
	format Format
	mimes  []string
}{
	{FormatJSON, []string{MIMEApplicationJSON}},
	{FormatHTML, []string{MIMETextHTML}},
	{FormatXML, []string{MIMETextXML, MIMEApplicationXML}},
	{FormatPlain, []string{MIMETextPlain, MIMETextCSS, MIMETextJavaScript, MIMEApplicationJavaScript}},
}

// SelectFormat maps an Accept header value to a Format.
//
// Non-interactive callers always get FormatPlain. Otherwise every known mime
// is looked up as a case-insensitive substring of accept, so
// "Application/JSON; q=0.9" still selects FormatJSON. FormatUnknown is returned
// when nothing matches, including an empty header.
func SelectFormat(accept string, nonInteractive bool) Format {
	if nonInteractive {
		return FormatPlain
	}

	accept = strings.ToLower(accept)

	for _, item := range formats {
		for _, mime := range item.mimes {
			if strings.Contains(accept, mime) {
				return item.format
			}
		}
	}

	return FormatUnknown
}
