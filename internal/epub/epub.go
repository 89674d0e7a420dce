package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// Parsing is stdlib zip + xml: an EPUB is a zip archive with a container
// document pointing at an OPF package, whose spine lists the reading order.

var ErrNoRootfile = errors.New("epub: no rootfile in container")

type Book struct {
	Title    string
	Chapters []Chapter
}

// Chapter is one spine entry: an XHTML content document.
type Chapter struct {
	Title string
	Href  string
	xhtml []byte
}

// Markdown converts the chapter's XHTML to markdown for terminal rendering.
func (c *Chapter) Markdown() (string, error) {
	conv := md.NewConverter("", true, nil)
	out, err := conv.ConvertString(string(c.xhtml))
	if err != nil {
		return "", fmt.Errorf("converting chapter %s: %w", c.Href, err)
	}
	return out, nil
}

type container struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	Title    string `xml:"metadata>title"`
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine struct {
		Toc      string `xml:"toc,attr"`
		Itemrefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type ncx struct {
	NavPoints []navPoint `xml:"navMap>navPoint"`
}

type navPoint struct {
	Label   string `xml:"navLabel>text"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []navPoint `xml:"navPoint"`
}

// Open parses an EPUB archive held in memory. Corrupt archives and malformed
// package documents come back as errors; the reader treats any of them as a
// failed load.
func Open(data []byte) (*Book, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening epub archive: %w", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	containerXML, err := readFile(files, "META-INF/container.xml")
	if err != nil {
		return nil, fmt.Errorf("reading container: %w", err)
	}

	var cont container
	if err := xml.Unmarshal(containerXML, &cont); err != nil {
		return nil, fmt.Errorf("parsing container: %w", err)
	}
	if len(cont.Rootfiles) == 0 || cont.Rootfiles[0].FullPath == "" {
		return nil, ErrNoRootfile
	}

	opfPath := cont.Rootfiles[0].FullPath
	opfXML, err := readFile(files, opfPath)
	if err != nil {
		return nil, fmt.Errorf("reading package document: %w", err)
	}

	var pkg opfPackage
	if err := xml.Unmarshal(opfXML, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package document: %w", err)
	}

	opfDir := path.Dir(opfPath)
	hrefByID := make(map[string]string, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		hrefByID[item.ID] = item.Href
	}

	titles := chapterTitles(files, opfDir, hrefByID[pkg.Spine.Toc])

	book := &Book{Title: pkg.Title}
	for i, ref := range pkg.Spine.Itemrefs {
		href, ok := hrefByID[ref.IDRef]
		if !ok {
			return nil, fmt.Errorf("spine references unknown item %q", ref.IDRef)
		}

		content, err := readFile(files, resolve(opfDir, href))
		if err != nil {
			return nil, fmt.Errorf("reading chapter %s: %w", href, err)
		}

		title := titles[href]
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		book.Chapters = append(book.Chapters, Chapter{Title: title, Href: href, xhtml: content})
	}

	if len(book.Chapters) == 0 {
		return nil, errors.New("epub: empty spine")
	}
	return book, nil
}

// chapterTitles maps content hrefs to titles from the NCX, when one exists.
func chapterTitles(files map[string]*zip.File, opfDir, ncxHref string) map[string]string {
	titles := make(map[string]string)
	if ncxHref == "" {
		return titles
	}

	ncxXML, err := readFile(files, resolve(opfDir, ncxHref))
	if err != nil {
		return titles
	}

	var toc ncx
	if err := xml.Unmarshal(ncxXML, &toc); err != nil {
		return titles
	}

	var walk func(points []navPoint)
	walk = func(points []navPoint) {
		for _, p := range points {
			src := p.Content.Src
			if i := strings.IndexByte(src, '#'); i >= 0 {
				src = src[:i]
			}
			if src != "" {
				if _, seen := titles[src]; !seen {
					titles[src] = strings.TrimSpace(p.Label)
				}
			}
			walk(p.Children)
		}
	}
	walk(toc.NavPoints)
	return titles
}

func resolve(dir, href string) string {
	if dir == "." || dir == "" {
		return href
	}
	return path.Join(dir, href)
}

func readFile(files map[string]*zip.File, name string) ([]byte, error) {
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("missing file %q", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
