package httpcaching

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

var ErrInvalidHeaders = errors.New("headers must be encoded as an object of strings")

//go:generate go tool github.com/tinylib/msgp -io=false -tests=false
//msgp:tuple Field
//msgp:ignore Request Response

// Field is a single header, with its name in lowercase.
type Field struct {
	Name  string
	Value string
}

// Headers is an ordered, read-only view over a header collection. Names are
// lowercase, and fields with multiple values are joined with ", ", except
// Set-Cookie whose values cannot be combined (RFC 9110 section 5.3) and are
// kept as separate fields.
//
// Every method returning Headers returns a copy, the receiver is never
// modified.
type Headers []Field

const setCookie = "set-cookie"

// HeadersFromHTTP builds a view over the given header, sorted by name.
func HeadersFromHTTP(header http.Header) Headers {
	headers := make(Headers, 0, len(header))
	for name, values := range header {
		name = strings.ToLower(name)
		if name == setCookie {
			for _, value := range values {
				headers = append(headers, Field{name, value})
			}
			continue
		}
		headers = append(headers, Field{name, strings.Join(values, ", ")})
	}

	slices.SortStableFunc(headers, func(a, b Field) int { return strings.Compare(a.Name, b.Name) })
	return headers
}

// NewHeaders builds a view from name/value pairs, in the given order.
// Later duplicate names are appended to the first occurrence.
func NewHeaders(pairs ...string) Headers {
	if len(pairs)%2 != 0 {
		panic("BUG: NewHeaders requires name/value pairs")
	}

	headers := make(Headers, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		headers = headers.add(pairs[i], pairs[i+1])
	}
	return headers
}

func (h Headers) index(name string) int {
	name = strings.ToLower(name)
	for i, field := range h {
		if field.Name == name {
			return i
		}
	}
	return -1
}

func (h Headers) add(name, value string) Headers {
	if idx := h.index(name); idx != -1 && h[idx].Name != setCookie {
		h[idx].Value += ", " + value
		return h
	}
	return append(h, Field{strings.ToLower(name), value})
}

// Get returns the value of the given header, or "" if absent. Only the first
// Set-Cookie field is returned.
func (h Headers) Get(name string) string {
	if idx := h.index(name); idx != -1 {
		return h[idx].Value
	}
	return ""
}

// Lookup returns the value of the given header and whether it is present.
func (h Headers) Lookup(name string) (string, bool) {
	if idx := h.index(name); idx != -1 {
		return h[idx].Value, true
	}
	return "", false
}

func (h Headers) Has(name string) bool {
	return h.index(name) != -1
}

func (h Headers) Len() int {
	return len(h)
}

// With returns a copy where the given header is set to value. An existing
// field keeps its position.
func (h Headers) With(name, value string) Headers {
	headers := slices.Clone(h)
	if idx := headers.index(name); idx != -1 {
		headers[idx].Value = value
		return headers
	}
	return append(headers, Field{strings.ToLower(name), value})
}

// Without returns a copy without the given headers.
func (h Headers) Without(names ...string) Headers {
	headers := make(Headers, 0, len(h))
	for _, field := range h {
		if !slices.ContainsFunc(names, func(n string) bool { return strings.EqualFold(n, field.Name) }) {
			headers = append(headers, field)
		}
	}
	return headers
}

// HTTPHeader converts the view back into an http.Header.
func (h Headers) HTTPHeader() http.Header {
	header := make(http.Header, len(h))
	for _, field := range h {
		header.Add(field.Name, field.Value)
	}
	return header
}

func (h Headers) MarshalJSON() ([]byte, error) {
	buffer := bytes.NewBuffer(nil)
	buffer.WriteByte('{')

	for i, field := range h {
		if i != 0 {
			buffer.WriteByte(',')
		}

		name, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}

		buffer.Write(name)
		buffer.WriteByte(':')
		buffer.Write(value)
	}

	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

func (h *Headers) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*h = nil
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(data))

	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return ErrInvalidHeaders
	}

	headers := Headers{}
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		name, ok := token.(string)
		if !ok {
			return ErrInvalidHeaders
		}

		var value string
		if err := decoder.Decode(&value); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidHeaders, err)
		}
		headers = headers.add(name, value)
	}

	if _, err := decoder.Token(); err != nil {
		return err
	}

	*h = headers
	return nil
}

// Request is the part of a request the cache policy needs.
type Request struct {
	URL     string
	Method  string
	Headers Headers
}

// RequestFromHTTP captures the given request.
func RequestFromHTTP(r *http.Request) Request {
	req := Request{Method: r.Method, Headers: HeadersFromHTTP(r.Header)}
	if r.URL != nil {
		req.URL = r.URL.String()
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	return req
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

// Response is the part of a response the cache policy needs.
type Response struct {
	Status  int
	Headers Headers
}

// ResponseFromHTTP captures the given response.
func ResponseFromHTTP(r *http.Response) Response {
	return Response{r.StatusCode, HeadersFromHTTP(r.Header)}
}
