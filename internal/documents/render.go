package documents

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/lukasjarosch/go-docx"
)

// Bold spans in bullet values are marked with private-use runes so that the
// post-pass only touches text that came from a bullet placeholder.
const (
	boldOpen  = "\uE000"
	boldClose = "\uE001"
)

var (
	markdownBold = regexp.MustCompile(`\*\*(.+?)\*\*`)
	textRun      = regexp.MustCompile(`(?s)<w:r(\s[^>]*)?>(<w:rPr>.*?</w:rPr>)?((?:<w:t(?:\s[^>]*)?>[^<]*</w:t>|<w:br/>|<w:tab/>)+)</w:r>`)
	runSegment   = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>|<w:br/>|<w:tab/>`)
	markedSpan   = regexp.MustCompile(boldOpen + `(.*?)` + boldClose)
	rPrHead      = regexp.MustCompile(`^<w:rPr>(<w:rStyle[^>]*/>)?(<w:rFonts[^>]*/>)?`)
)

// IsBulletKey reports whether a placeholder takes **bold** markup
func IsBulletKey(key string) bool {
	return strings.HasPrefix(key, "Bullet")
}

// Render substitutes {key} placeholders in a DOCX. Values of bullet keys may
// use **text** to produce bold runs. Escaping is left to go-docx; newlines
// become line breaks.
func Render(template []byte, mapping map[string]string) ([]byte, error) {
	replacements := make(docx.PlaceholderMap, len(mapping))
	hasBold := false
	for key, value := range mapping {
		value = strings.ReplaceAll(value, "\r\n", "\n")
		if IsBulletKey(key) && markdownBold.MatchString(value) {
			value = markdownBold.ReplaceAllString(value, boldOpen+"$1"+boldClose)
			hasBold = true
		}
		replacements[key] = value
	}

	doc, err := docx.OpenBytes(template)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer doc.Close()

	if err := doc.ReplaceAll(replacements); err != nil {
		return nil, fmt.Errorf("failed to replace placeholders: %w", err)
	}

	var out bytes.Buffer
	if err := doc.Write(&out); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}

	if !hasBold {
		return out.Bytes(), nil
	}
	return rewriteParts(out.Bytes(), splitBoldRuns)
}

// splitBoldRuns turns every run containing marked spans into a sequence of
// runs with the same properties, the marked ones bold. Line breaks and tabs
// inside the run get a run of their own.
func splitBoldRuns(xml string) string {
	return textRun.ReplaceAllStringFunc(xml, func(run string) string {
		m := textRun.FindStringSubmatch(run)
		attrs, rPr, content := m[1], m[2], m[3]
		if !strings.Contains(content, boldOpen) {
			return run
		}

		var b strings.Builder
		for _, seg := range runSegment.FindAllStringSubmatch(content, -1) {
			if !strings.HasPrefix(seg[0], "<w:t") {
				b.WriteString("<w:r" + attrs + ">" + rPr + seg[0] + "</w:r>")
				continue
			}
			text := seg[1]
			last := 0
			for _, loc := range markedSpan.FindAllStringSubmatchIndex(text, -1) {
				writeRun(&b, attrs, rPr, text[last:loc[0]], false)
				writeRun(&b, attrs, rPr, text[loc[2]:loc[3]], true)
				last = loc[1]
			}
			writeRun(&b, attrs, rPr, text[last:], false)
		}
		return b.String()
	})
}

func writeRun(b *strings.Builder, attrs, rPr, text string, bold bool) {
	if text == "" {
		return
	}
	b.WriteString("<w:r" + attrs + ">")
	if bold {
		b.WriteString(withBold(rPr))
	} else {
		b.WriteString(rPr)
	}
	b.WriteString(`<w:t xml:space="preserve">` + text + "</w:t></w:r>")
}

// withBold adds <w:b/> to run properties after the style and font elements,
// which must come first
func withBold(rPr string) string {
	if rPr == "" {
		return "<w:rPr><w:b/></w:rPr>"
	}
	if strings.Contains(rPr, "<w:b/>") {
		return rPr
	}
	head := rPrHead.FindString(rPr)
	return head + "<w:b/>" + rPr[len(head):]
}

// rewriteParts applies fn to the main document, header and footer parts of
// a DOCX archive, copying every other entry unchanged
func rewriteParts(data []byte, fn func(string) string) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read document archive: %w", err)
	}

	var out bytes.Buffer
	w := zip.NewWriter(&out)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}

		if isTextPart(f.Name) {
			content = []byte(fn(string(content)))
		}

		dst, err := w.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, err
		}
		if _, err := dst.Write(content); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func isTextPart(name string) bool {
	if !strings.HasPrefix(name, "word/") || !strings.HasSuffix(name, ".xml") {
		return false
	}
	base := strings.TrimPrefix(name, "word/")
	return base == "document.xml" || strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")
}
