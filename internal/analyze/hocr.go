package analyze

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"mangapages/pkg/geometry"
)

// Block is one hOCR paragraph (or content area, when the file has no
// paragraphs) in image pixels.
type Block struct {
	Rect       geometry.Rect
	Text       string
	Confidence float64 // mean word confidence in [0,1], -1 when unknown
}

// ParseBlocks reads the ocr_par blocks of an hOCR document, falling back to
// ocr_carea. Lines are joined with newlines and words with spaces.
func ParseBlocks(data []byte) ([]Block, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse hocr: %w", err)
	}

	var blocks []Block
	for _, class := range []string{"ocr_par", "ocr_carea"} {
		for _, n := range findClass(root, class) {
			if b, ok := toBlock(n); ok {
				blocks = append(blocks, b)
			}
		}
		if len(blocks) > 0 {
			break
		}
	}
	return blocks, nil
}

func toBlock(n *html.Node) (Block, bool) {
	props := parseTitle(attr(n, "title"))
	r, ok := bboxOf(props)
	if !ok {
		return Block{}, false
	}

	var lines []string
	var confSum float64
	var confN int
	lineNodes := findClass(n, "ocr_line")
	if len(lineNodes) == 0 {
		lineNodes = []*html.Node{n}
	}
	for _, ln := range lineNodes {
		var words []string
		for _, w := range findClass(ln, "ocrx_word") {
			text := strings.TrimSpace(textOf(w))
			if text == "" {
				continue
			}
			words = append(words, text)
			if v, ok := props2conf(parseTitle(attr(w, "title"))); ok {
				confSum += v
				confN++
			}
		}
		if len(words) > 0 {
			lines = append(lines, strings.Join(words, " "))
		}
	}
	if len(lines) == 0 {
		return Block{}, false
	}

	b := Block{Rect: r, Text: strings.Join(lines, "\n"), Confidence: -1}
	if confN > 0 {
		b.Confidence = confSum / float64(confN) / 100
	}
	return b, true
}

// parseTitle splits an hOCR title such as "bbox 1 2 3 4; x_wconf 95".
func parseTitle(title string) map[string][]string {
	out := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) > 0 {
			out[items[0]] = items[1:]
		}
	}
	return out
}

func bboxOf(props map[string][]string) (geometry.Rect, bool) {
	v := props["bbox"]
	if len(v) < 4 {
		return geometry.Rect{}, false
	}
	var c [4]float64
	for i := range c {
		f, err := strconv.ParseFloat(v[i], 64)
		if err != nil {
			return geometry.Rect{}, false
		}
		c[i] = f
	}
	if c[2] <= c[0] || c[3] <= c[1] {
		return geometry.Rect{}, false
	}
	return geometry.Rect{X: c[0], Y: c[1], W: c[2] - c[0], H: c[3] - c[1]}, true
}

func props2conf(props map[string][]string) (float64, bool) {
	v := props["x_wconf"]
	if len(v) == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(v[0], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func findClass(n *html.Node, class string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && hasClass(c, class) {
			out = append(out, c)
			return
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		walk(ch)
	}
	return out
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return sb.String()
}
