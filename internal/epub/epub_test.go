package epub

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const containerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const contentOPF = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>A Short Treatise</dc:title>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`

const tocNCX = `<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="n1" playOrder="1">
      <navLabel><text>The Beginning</text></navLabel>
      <content src="ch1.xhtml"/>
    </navPoint>
    <navPoint id="n2" playOrder="2">
      <navLabel><text>The End</text></navLabel>
      <content src="ch2.xhtml#frag"/>
    </navPoint>
  </navMap>
</ncx>`

func buildEpub(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func minimalEpub(t *testing.T) []byte {
	return buildEpub(t, map[string]string{
		"META-INF/container.xml": containerXML,
		"OEBPS/content.opf":      contentOPF,
		"OEBPS/toc.ncx":          tocNCX,
		"OEBPS/ch1.xhtml":        `<html><body><h1>The Beginning</h1><p>It was a dark and stormy night.</p></body></html>`,
		"OEBPS/ch2.xhtml":        `<html><body><p>They all lived happily ever after.</p></body></html>`,
	})
}

func TestOpenMinimalEpub(t *testing.T) {
	book, err := Open(minimalEpub(t))
	require.NoError(t, err)

	assert.Equal(t, "A Short Treatise", book.Title)
	require.Len(t, book.Chapters, 2)
	assert.Equal(t, "The Beginning", book.Chapters[0].Title)
	assert.Equal(t, "The End", book.Chapters[1].Title, "fragment in the ncx src is ignored")
}

func TestChapterMarkdown(t *testing.T) {
	book, err := Open(minimalEpub(t))
	require.NoError(t, err)

	markdown, err := book.Chapters[0].Markdown()
	require.NoError(t, err)
	assert.Contains(t, markdown, "The Beginning")
	assert.Contains(t, markdown, "It was a dark and stormy night.")
}

func TestOpenWithoutNCXFallsBackToNumbering(t *testing.T) {
	opf := `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata><title>Untitled</title></metadata>
  <manifest>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
  </spine>
</package>`

	book, err := Open(buildEpub(t, map[string]string{
		"META-INF/container.xml": containerXML,
		"OEBPS/content.opf":      opf,
		"OEBPS/ch1.xhtml":        `<html><body><p>Text.</p></body></html>`,
	}))
	require.NoError(t, err)
	require.Len(t, book.Chapters, 1)
	assert.Equal(t, "Chapter 1", book.Chapters[0].Title)
}

func TestOpenRejectsCorruptArchive(t *testing.T) {
	_, err := Open([]byte("this is not a zip file"))
	assert.Error(t, err)
}

func TestOpenRejectsMissingContainer(t *testing.T) {
	_, err := Open(buildEpub(t, map[string]string{"mimetype": "application/epub+zip"}))
	assert.Error(t, err)
}

func TestOpenRejectsDanglingSpineRef(t *testing.T) {
	opf := `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <manifest/>
  <spine><itemref idref="ghost"/></spine>
</package>`

	_, err := Open(buildEpub(t, map[string]string{
		"META-INF/container.xml": containerXML,
		"OEBPS/content.opf":      opf,
	}))
	assert.Error(t, err)
}
