package report

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/nguyentantai21042004/keymoments/internal/models"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

var (
	reBold      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reParagraph = regexp.MustCompile(`\n\s*\n`)
)

// Path returns {dir}/{videoID}_key_moments.docx.
func Path(dir, videoID string) string {
	return filepath.Join(dir, videoID+"_key_moments.docx")
}

func (w *implWriter) Write(ctx context.Context, videoID string, moments []models.KeyMoment) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return "", fmt.Errorf("new document: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), fmt.Sprintf("Key moments: %s", videoID), true, 16)
	if len(moments) == 0 {
		addStyledRun(doc.AddParagraph(""), "No key moments were found.", false, fontSize)
	}

	for i, m := range moments {
		doc.AddParagraph("")
		title := fmt.Sprintf("%d. %s - %s (%ss)", i+1, clock(m.Start), clock(m.End), models.FormatSeconds(math.Round(m.Duration()*10)/10))
		addStyledRun(doc.AddParagraph(""), title, true, 14)

		for _, para := range reParagraph.Split(strings.TrimSpace(m.Description), -1) {
			para = strings.Join(strings.Fields(para), " ")
			if para == "" {
				continue
			}
			addRichText(doc.AddParagraph(""), para)
		}

		if m.ClipPath != "" {
			addStyledRun(doc.AddParagraph(""), "Clip: "+m.ClipPath, false, 11)
		}
	}

	path := Path(w.dir, videoID)
	if err := doc.SaveTo(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}

	w.logger.Info(ctx, "Report written: %s", path)
	return path, nil
}

// clock formats seconds as h:mm:ss or m:ss.
func clock(sec float64) string {
	total := int(math.Floor(sec))
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

// addRichText renders **bold** spans; everything else is plain text.
func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(part).Font(fontName).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(matches[i][1]).Font(fontName).Size(fontSize).Color("000000").Bold(true)
		}
	}
}
