package cli

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"books-search/internal/common/pagination"
	"books-search/internal/domain/entity"
	"books-search/internal/usecase/browse"
)

const (
	gridColumns = 3
	gridWidth   = 26
)

// view is what the renderer needs from a session.
type view struct {
	Query        string
	State        browse.State
	Presentation browse.PresentationKind
	Snapshot     browse.Snapshot
	Settled      bool
}

func renderView(w io.Writer, v view) {
	for _, r := range v.Snapshot.Restores {
		fmt.Fprintf(w, "page %d has no results any more, showing page %d\n", r.From, r.To)
	}

	switch {
	case v.Snapshot.Signal == browse.SignalNetworkError:
		fmt.Fprintln(w, "Network unavailable. Check your connection and run 'reload'.")
		return
	case v.Snapshot.Signal == browse.SignalEmpty:
		fmt.Fprintf(w, "No results for %q.\n", v.Query)
		return
	case len(v.Snapshot.Rows) == 0:
		if !v.Settled {
			fmt.Fprintln(w, "Still loading...")
		} else {
			fmt.Fprintln(w, "Nothing to show. Try 'search <query>'.")
		}
		return
	}

	page := v.Snapshot.Page
	fmt.Fprintf(w, "%s  page %d of %d\n", quoted(v.Query), page.Current, page.Highest)
	if v.Presentation == browse.KindGrid {
		renderGrid(w, v.Snapshot.Rows)
	} else {
		renderList(w, v.Snapshot.Rows)
	}
	fmt.Fprintln(w, buttonStrip(page.Buttons))
	if !v.Settled {
		fmt.Fprintln(w, "(still loading)")
	}
}

func quoted(q string) string {
	if q == "" {
		return "Results"
	}
	return fmt.Sprintf("Results for %q", q)
}

func renderList(w io.Writer, rows []*entity.Book) {
	width := len(fmt.Sprint(len(rows)))
	for i, b := range rows {
		fmt.Fprintf(w, "%*d. %s\n", width, i+1, b.DisplayKey())
		var meta []string
		if a := b.AuthorsString(); a != "" {
			meta = append(meta, a)
		}
		if p := b.PublisherString(); p != "" {
			meta = append(meta, p)
		}
		if d := b.PublishedDateMedium(); d != "" {
			meta = append(meta, d)
		}
		if b.RatingCount() > 0 {
			meta = append(meta, fmt.Sprintf("%.1f★ (%s)", b.Rating(), b.RatingCountString()))
		}
		if price := b.RetailPriceString(); price != "" {
			meta = append(meta, price)
		}
		if len(meta) > 0 {
			fmt.Fprintf(w, "%*s  %s\n", width, "", strings.Join(meta, " · "))
		}
	}
}

func renderGrid(w io.Writer, rows []*entity.Book) {
	for i := 0; i < len(rows); i += gridColumns {
		var line strings.Builder
		for j := i; j < i+gridColumns && j < len(rows); j++ {
			cell := fmt.Sprintf("%2d %s", j+1, truncate(rows[j].DisplayKey(), gridWidth-4))
			line.WriteString(cell)
			if j < i+gridColumns-1 && j < len(rows)-1 {
				line.WriteString(strings.Repeat(" ", gridWidth-utf8.RuneCountInString(cell)))
			}
		}
		fmt.Fprintln(w, line.String())
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// buttonStrip renders the navigation buttons. Disabled buttons are shown
// in parentheses.
func buttonStrip(b pagination.Buttons) string {
	buttons := []struct {
		label   string
		enabled bool
	}{
		{"first", b.First},
		{"previous", b.Previous},
		{"next", b.Next},
		{"last", b.Last},
		{"jump", b.More},
	}
	parts := make([]string, len(buttons))
	for i, btn := range buttons {
		if btn.enabled {
			parts[i] = "[" + btn.label + "]"
		} else {
			parts[i] = "(" + btn.label + ")"
		}
	}
	return strings.Join(parts, " ")
}

func renderDetail(w io.Writer, index int, b *entity.Book) {
	fmt.Fprintf(w, "#%d %s\n", index, b.Title())
	if b.Subtitle() != "" {
		fmt.Fprintln(w, b.Subtitle())
	}
	fields := []struct{ name, value string }{
		{"Authors", b.AuthorsString()},
		{"Publisher", b.PublisherString()},
		{"Published", b.PublishedDateMedium()},
		{"Type", b.BookType()},
		{"Pages", b.PageCountString()},
		{"Categories", b.CategoriesString()},
		{"List price", b.ListPriceString()},
		{"Price", b.RetailPriceString()},
		{"Preview", b.PreviewLink()},
		{"Info", b.InfoLink()},
		{"Buy", b.BuyLink()},
		{"EPUB", b.EpubLink()},
		{"PDF", b.PdfLink()},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(w, "  %-11s %s\n", f.name+":", f.value)
		}
	}
	if b.RatingCount() > 0 {
		fmt.Fprintf(w, "  %-11s %.1f (%s ratings)\n", "Rating:", b.Rating(), b.RatingCountString())
	}
	if text := descriptionText(b.Description()); text != "" {
		fmt.Fprintf(w, "\n%s\n", text)
	}
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// descriptionText flattens catalog HTML to plain text. Paragraphs and line
// breaks become newlines; scripts and styles are dropped.
func descriptionText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}
