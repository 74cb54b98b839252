package sitemap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Namespace is the sitemap.org 0.9 schema namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// MalformedError reports that a sitemap body is not well-formed XML.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("sitemap: malformed xml: %v", e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// ExtractURLs returns the text of every <loc> element in the sitemap
// namespace, in document order and without deduplication. A well-formed
// document without any <loc> yields an empty slice.
func ExtractURLs(data []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel

	urls := []string{}
	sawRoot := false
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedError{Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if sawRoot && depth == 0 {
				return nil, &MalformedError{Err: errors.New("multiple root elements")}
			}
			sawRoot = true
			if t.Name.Space == Namespace && t.Name.Local == "loc" {
				var loc string
				if err := dec.DecodeElement(&loc, &t); err != nil {
					return nil, &MalformedError{Err: err}
				}
				urls = append(urls, strings.TrimSpace(loc))
				continue
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return nil, &MalformedError{Err: errors.New("text outside root element")}
			}
		}
	}
	if !sawRoot {
		return nil, &MalformedError{Err: errors.New("no root element")}
	}
	return urls, nil
}
