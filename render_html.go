package whoops

import (
	"embed"
	"html/template"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"
)

const (
	defaultPageTitle = "Whoops! There was an error."
	hiddenValue      = "********"
)

//go:embed templates/pretty.html
var templatesFS embed.FS

var prettyTemplate = template.Must(template.ParseFS(templatesFS, "templates/pretty.html"))

// DefaultHiddenHeaders are masked on the pretty page unless HideHeaders is set.
var DefaultHiddenHeaders = []string{
	HeaderAuthorization,
	HeaderCookie,
	HeaderProxyAuthorization,
	HeaderSetCookie,
}

type row struct {
	Name  string
	Value string
}

type dataTable struct {
	Label string
	Rows  []row
}

type prettyPage struct {
	Title     string
	ID        string
	Type      string
	Message   string
	Origin    Frame
	HasOrigin bool
	Frames    []Frame
	Request   *RequestInfo
	Headers   []row
	Tables    []dataTable
}

// PrettyPageRenderer renders a self-contained HTML page describing the error.
// It always includes the stack trace.
type PrettyPageRenderer struct {
	// Title of the page.
	// Optional. Default value "Whoops! There was an error.".
	Title string

	// HideHeaders lists request headers whose values are masked.
	// Optional. Default value DefaultHiddenHeaders, use an empty slice to show everything.
	HideHeaders []string

	tables []dataTable
}

// AddDataTable appends a named table of extra values shown after the request details.
func (r *PrettyPageRenderer) AddDataTable(label string, data map[string]string) *PrettyPageRenderer {
	table := dataTable{Label: label, Rows: make([]row, 0, len(data))}
	for _, name := range slices.Sorted(maps.Keys(data)) {
		table.Rows = append(table.Rows, row{Name: name, Value: data[name]})
	}

	r.tables = append(r.tables, table)

	return r
}

func (r *PrettyPageRenderer) Render(w io.Writer, event *Event) error {
	page := prettyPage{
		Title:   r.Title,
		ID:      event.ID,
		Type:    event.Type(),
		Message: event.Message(),
		Frames:  event.Frames,
		Request: event.Request,
		Tables:  r.tables,
	}
	if page.Title == "" {
		page.Title = defaultPageTitle
	}
	page.Origin, page.HasOrigin = event.Origin()

	if event.Request != nil {
		page.Headers = r.headers(event.Request.Header)
	}

	return prettyTemplate.Execute(w, page)
}

func (*PrettyPageRenderer) ContentType() string {
	return MIMETextHTML
}

func (*PrettyPageRenderer) LoggerOnly() bool {
	return false
}

func (r *PrettyPageRenderer) headers(header http.Header) []row {
	hidden := r.HideHeaders
	if hidden == nil {
		hidden = DefaultHiddenHeaders
	}

	rows := make([]row, 0, len(header))
	for _, name := range slices.Sorted(maps.Keys(header)) {
		value := strings.Join(header[name], ", ")
		if slices.ContainsFunc(hidden, func(h string) bool { return strings.EqualFold(h, name) }) {
			value = hiddenValue
		}
		rows = append(rows, row{Name: name, Value: value})
	}
	return rows
}
