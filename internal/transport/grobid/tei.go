package grobid

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// TEI document structure, limited to the elements extraction needs.
// GROBID namespaces everything under http://www.tei-c.org/ns/1.0; the
// stdlib decoder matches local names, so no namespace plumbing is needed.
type teiDocument struct {
	XMLName xml.Name  `xml:"TEI"`
	Header  teiHeader `xml:"teiHeader"`
	Text    teiText   `xml:"text"`
}

type teiHeader struct {
	FileDesc    teiFileDesc    `xml:"fileDesc"`
	ProfileDesc teiProfileDesc `xml:"profileDesc"`
}

type teiFileDesc struct {
	TitleStmt struct {
		Title mixedText `xml:"title"`
	} `xml:"titleStmt"`
	PublicationStmt struct {
		Date teiDate `xml:"date"`
	} `xml:"publicationStmt"`
	SourceDesc struct {
		Authors []teiAuthor `xml:"biblStruct>analytic>author"`
	} `xml:"sourceDesc"`
}

type teiProfileDesc struct {
	AbstractParagraphs []mixedText `xml:"abstract>div>p"`
}

type teiDate struct {
	When string `xml:"when,attr"`
	Text string `xml:",chardata"`
}

type teiAuthor struct {
	PersName struct {
		Forenames []string `xml:"forename"`
		Surname   string   `xml:"surname"`
	} `xml:"persName"`
}

type teiText struct {
	Body struct {
		Divs []teiDiv `xml:"div"`
	} `xml:"body"`
	Back struct {
		References []teiBiblStruct `xml:"div>listBibl>biblStruct"`
	} `xml:"back"`
}

type teiDiv struct {
	Head       mixedText   `xml:"head"`
	Paragraphs []mixedText `xml:"p"`
}

type teiBiblStruct struct {
	Titles []mixedText `xml:"analytic>title"`
	// Monograph title covers references GROBID could not split into
	// analytic/monogr parts (books, theses, web pages).
	MonogrTitles []mixedText `xml:"monogr>title"`
}

// mixedText collects all character data of an element and its children,
// so inline markup (<ref>, <hi>, formulas) does not truncate the text.
type mixedText struct {
	Value string
}

func (m *mixedText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var parts []string
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if s := strings.TrimSpace(string(t)); s != "" {
				parts = append(parts, s)
			}
		case xml.EndElement:
			if t.Name == start.Name {
				m.Value = strings.Join(parts, " ")
				return nil
			}
		}
	}
}

// ParseTEI parses a GROBID TEI response into extraction output.
// Malformed XML wraps domain.ErrExtractionFailed; a well-formed document
// missing individual fields parses with those fields empty.
func ParseTEI(data []byte) (domain.Extraction, error) {
	var doc teiDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return domain.Extraction{}, fmt.Errorf("parse TEI: %v: %w", err, domain.ErrExtractionFailed)
	}

	ext := domain.Extraction{
		Title:    doc.Header.FileDesc.TitleStmt.Title.Value,
		Authors:  joinAuthors(doc.Header.FileDesc.SourceDesc.Authors),
		Year:     extractYear(doc.Header.FileDesc.PublicationStmt.Date),
		Abstract: joinParagraphs(doc.Header.ProfileDesc.AbstractParagraphs),
	}

	for _, div := range doc.Text.Body.Divs {
		text := joinParagraphs(div.Paragraphs)
		if text == "" {
			continue
		}
		name := div.Head.Value
		if name == "" {
			name = "Body"
		}
		ext.Sections = append(ext.Sections, domain.Section{
			Name: name,
			Text: text,
			Page: "N/A",
		})
	}

	for _, ref := range doc.Text.Back.References {
		if title := refTitle(ref); title != "" {
			ext.References = append(ext.References, title)
		}
	}

	return ext, nil
}

func joinAuthors(authors []teiAuthor) string {
	var names []string
	for _, a := range authors {
		parts := append([]string{}, a.PersName.Forenames...)
		if a.PersName.Surname != "" {
			parts = append(parts, a.PersName.Surname)
		}
		if name := strings.TrimSpace(strings.Join(parts, " ")); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

func joinParagraphs(ps []mixedText) string {
	var parts []string
	for _, p := range ps {
		if p.Value != "" {
			parts = append(parts, p.Value)
		}
	}
	return strings.Join(parts, " ")
}

// extractYear prefers the machine-readable when attribute (ISO date or
// bare year) over free-form date text.
func extractYear(d teiDate) string {
	if len(d.When) >= 4 {
		return d.When[:4]
	}
	text := strings.TrimSpace(d.Text)
	if len(text) >= 4 {
		for i := 0; i+4 <= len(text); i++ {
			if isYear(text[i : i+4]) {
				return text[i : i+4]
			}
		}
	}
	return ""
}

func isYear(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s[0] == '1' || s[0] == '2'
}

func refTitle(ref teiBiblStruct) string {
	if len(ref.Titles) > 0 && ref.Titles[0].Value != "" {
		return ref.Titles[0].Value
	}
	if len(ref.MonogrTitles) > 0 {
		return ref.MonogrTitles[0].Value
	}
	return ""
}
