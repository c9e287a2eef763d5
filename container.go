package whoops

// HandlerContainer resolves the renderer used for a request.
type HandlerContainer interface {
	// SelectFormat maps an Accept header value to a Format.
	SelectFormat(accept string, nonInteractive bool) Format

	// BuildRenderer returns a fresh renderer for format.
	BuildRenderer(format Format) Renderer
}

var _ HandlerContainer = (*Container)(nil)

// Container is the default HandlerContainer.
//
// json, xml and plain renderers include the stack trace, html and unknown
// formats get the pretty page unless Default is set.
type Container struct {
	// Default replaces the renderer used for FormatHTML and FormatUnknown.
	Default Renderer

	// Title of the pretty page.
	Title string

	// HideHeaders is passed to the pretty page.
	HideHeaders []string
}

func (c *Container) SelectFormat(accept string, nonInteractive bool) Format {
	return SelectFormat(accept, nonInteractive)
}

func (c *Container) BuildRenderer(format Format) Renderer {
	switch format {
	case FormatJSON:
		return &JSONRenderer{Trace: true}
	case FormatXML:
		return &XMLRenderer{Trace: true}
	case FormatPlain:
		return &PlainTextRenderer{Trace: true}
	default:
		return c.html()
	}
}

func (c *Container) html() Renderer {
	if c.Default != nil {
		return c.Default
	}
	return &PrettyPageRenderer{
		Title:       c.Title,
		HideHeaders: c.HideHeaders,
	}
}
