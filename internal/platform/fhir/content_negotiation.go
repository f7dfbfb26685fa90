package fhir

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Format is a FHIR exchange format.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// Content types with charset.
const (
	FHIRContentType    = "application/fhir+json; charset=utf-8"
	FHIRXMLContentType = "application/fhir+xml; charset=utf-8"
)

const formatContextKey = "fhir_format"

// ContentType returns the media type for the format.
func (f Format) ContentType() string {
	if f == FormatXML {
		return FHIRXMLContentType
	}
	return FHIRContentType
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	if f == FormatXML {
		return "xml"
	}
	return "json"
}

// ParseFormat accepts the short and media-type spellings of a format.
func ParseFormat(raw string) (Format, bool) {
	switch {
	case isJSONFormat(raw):
		return FormatJSON, true
	case isXMLFormat(raw):
		return FormatXML, true
	}
	return "", false
}

// Encode renders a resource in the format.
func (f Format) Encode(r Resource) ([]byte, error) {
	if f == FormatXML {
		return MarshalXML(r)
	}
	return marshalJSONIndent(r)
}

// ContentNegotiationMiddleware resolves the response format from the _format
// query parameter, then the Accept header, defaulting to JSON. Unsupported
// formats are rejected with 406 Not Acceptable.
func ContentNegotiationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := c.QueryParam("_format"); raw != "" {
				format, ok := ParseFormat(raw)
				if !ok {
					return c.JSON(http.StatusNotAcceptable, ErrorOutcome("Unsupported _format value: "+raw))
				}
				c.Set(formatContextKey, format)
				return next(c)
			}

			if accept := c.Request().Header.Get("Accept"); accept != "" {
				format, ok := negotiateAccept(accept)
				if !ok {
					return c.JSON(http.StatusNotAcceptable, ErrorOutcome("Accept header does not include a supported FHIR content type."))
				}
				c.Set(formatContextKey, format)
				return next(c)
			}

			c.Set(formatContextKey, FormatJSON)
			return next(c)
		}
	}
}

// NegotiatedFormat returns the format chosen by ContentNegotiationMiddleware.
func NegotiatedFormat(c echo.Context) Format {
	if f, ok := c.Get(formatContextKey).(Format); ok {
		return f
	}
	return FormatJSON
}

// Respond writes resource in the negotiated format.
func Respond(c echo.Context, status int, r Resource) error {
	format := NegotiatedFormat(c)
	body, err := format.Encode(r)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(status, format.ContentType(), body)
}

// normalizeFormat lowercases and restores the "+" that query-string decoding
// may have turned into a space.
func normalizeFormat(raw string) string {
	f := strings.TrimSpace(strings.ToLower(raw))
	f = strings.ReplaceAll(f, "fhir json", "fhir+json")
	f = strings.ReplaceAll(f, "fhir xml", "fhir+xml")
	return f
}

func isJSONFormat(format string) bool {
	switch normalizeFormat(format) {
	case "json", "application/json", "application/fhir+json":
		return true
	}
	return false
}

func isXMLFormat(format string) bool {
	switch normalizeFormat(format) {
	case "xml", "application/xml", "text/xml", "application/fhir+xml":
		return true
	}
	return false
}

// negotiateAccept returns the first supported media type in the Accept header.
func negotiateAccept(accept string) (Format, bool) {
	for _, part := range strings.Split(accept, ",") {
		mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		switch mediaType {
		case "application/fhir+json", "application/json", "json", "*/*":
			return FormatJSON, true
		case "application/fhir+xml", "application/xml", "text/xml", "xml":
			return FormatXML, true
		}
	}
	return "", false
}
