package whoops

const (
	HeaderAccept             = "Accept"
	HeaderAuthorization      = "Authorization"
	HeaderContentLength      = "Content-Length"
	HeaderContentType        = "Content-Type"
	HeaderCookie             = "Cookie"
	HeaderProxyAuthorization = "Proxy-Authorization"
	HeaderSetCookie          = "Set-Cookie"
	HeaderXRequestID         = "X-Request-Id"
	HeaderXContentTypeOpts   = "X-Content-Type-Options"
)

const (
	MIMEApplicationJSON       = "application/json"
	MIMEApplicationXML        = "application/xml"
	MIMEApplicationJavaScript = "application/javascript"
	MIMETextXML               = "text/xml"
	MIMETextHTML              = "text/html"
	MIMETextPlain             = "text/plain"
	MIMETextCSS               = "text/css"
	MIMETextJavaScript        = "text/javascript"
)
