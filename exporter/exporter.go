package exporter

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"social_post_studio/generator"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.Linkify),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// RenderHTML converts post text (plain text or light Markdown) to HTML.
// Raw HTML in the input is omitted by the default renderer.
func RenderHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Exporter writes a completed result set to a directory as a draft bundle.
type Exporter struct {
	dir    string
	logger *zap.Logger
}

// New creates an Exporter rooted at dir. The directory is created on Export.
func New(dir string, logger *zap.Logger) (*Exporter, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("output directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{dir: dir, logger: logger}, nil
}

// Export writes one image and one Markdown file per post plus index.html,
// and returns the path of index.html.
func (e *Exporter) Export(ctx context.Context, idea string, results []generator.GenerationResult) (string, error) {
	if len(results) == 0 {
		return "", errors.New("nothing to export")
	}
	for _, r := range results {
		if r.ImageURL == "" {
			return "", fmt.Errorf("result for %s has no image yet", r.Platform)
		}
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", err
	}

	var index strings.Builder
	index.WriteString("# " + idea + "\n\n")
	for _, r := range results {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		base := strings.ToLower(string(r.Platform))

		data, mime, err := decodeDataURI(r.ImageURL)
		if err != nil {
			return "", fmt.Errorf("%s image: %w", r.Platform, err)
		}
		imgName := base + extensionFor(mime)
		if err := os.WriteFile(filepath.Join(e.dir, imgName), data, 0o644); err != nil {
			return "", err
		}
		e.logger.Debug("image written", zap.String("platform", string(r.Platform)), zap.String("file", imgName))

		post := fmt.Sprintf("![%s](%s)\n\n%s\n", r.Platform, imgName, r.Text)
		if err := os.WriteFile(filepath.Join(e.dir, base+".md"), []byte(post), 0o644); err != nil {
			return "", err
		}

		index.WriteString(fmt.Sprintf("## %s (%s)\n\n", r.Platform, r.AspectRatio()))
		index.WriteString(post)
		index.WriteString("\n")
	}

	body, err := RenderHTML(index.String())
	if err != nil {
		return "", err
	}
	page := fmt.Sprintf("<!doctype html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n%s</body></html>\n",
		html.EscapeString(Digest(idea, 60)), body)
	indexPath := filepath.Join(e.dir, "index.html")
	if err := os.WriteFile(indexPath, []byte(page), 0o644); err != nil {
		return "", err
	}
	e.logger.Info("drafts exported", zap.String("path", indexPath))
	return indexPath, nil
}

// Digest compacts whitespace in s and cuts it to at most limit runes.
func Digest(s string, limit int) string {
	joined := strings.Join(strings.Fields(s), " ")
	runes := []rune(joined)
	if len(runes) <= limit {
		return joined
	}
	return string(runes[:limit])
}

func decodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errors.New("malformed data URI")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", errors.New("data URI is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}
	return data, mime, nil
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
