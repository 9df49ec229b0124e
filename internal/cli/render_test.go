package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"books-search/internal/common/pagination"
	"books-search/internal/domain/entity"
	"books-search/internal/usecase/browse"
)

func TestButtonStrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		b    pagination.Buttons
		want string
	}{
		{name: "all disabled", want: "(first) (previous) (next) (last) (jump)"},
		{
			name: "middle page",
			b:    pagination.Buttons{First: true, Previous: true, Next: true, Last: true, More: true},
			want: "[first] [previous] [next] [last] [jump]",
		},
		{
			name: "first page",
			b:    pagination.Buttons{Next: true, Last: true, More: true},
			want: "(first) (previous) [next] [last] [jump]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, buttonStrip(tt.b))
		})
	}
}

func TestDescriptionText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "  ", want: ""},
		{name: "plain text", in: "Just   text", want: "Just text"},
		{name: "inline markup", in: "<p>Intro <b>bold</b></p>", want: "Intro bold"},
		{name: "paragraphs", in: "<p>One</p><p>Two</p>", want: "One\n\nTwo"},
		{name: "line break", in: "One<br>Two", want: "One\nTwo"},
		{name: "script dropped", in: "<p>Safe</p><script>alert(1)</script><style>p{}</style>", want: "Safe"},
		{name: "list items", in: "<ul><li>a</li><li>b</li></ul>", want: "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, descriptionText(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10!", truncate("exactly10!", 10))
	assert.Equal(t, "Die Verwa…", truncate("Die Verwandlung", 10))
	assert.Equal(t, "日本語の…", truncate("日本語の本です", 5))
}

func books(n int) []*entity.Book {
	out := make([]*entity.Book, n)
	for i := range out {
		out[i] = entity.NewBook(entity.BookFields{ID: fmt.Sprint(i), Title: fmt.Sprintf("Book %d", i)})
	}
	return out
}

func TestRenderView(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		v        view
		contains []string
		excludes []string
	}{
		{
			name: "network error",
			v:    view{Query: "go", Snapshot: browse.Snapshot{Rows: books(2), Signal: browse.SignalNetworkError}, Settled: true},
			contains: []string{"Network unavailable"},
			excludes: []string{"Book 0"},
		},
		{
			name:     "empty result",
			v:        view{Query: "zzqx", Snapshot: browse.Snapshot{Signal: browse.SignalEmpty}, Settled: true},
			contains: []string{`No results for "zzqx".`},
		},
		{
			name:     "still loading",
			v:        view{Query: "go"},
			contains: []string{"Still loading..."},
		},
		{
			name: "restored page",
			v: view{
				Query: "go",
				Snapshot: browse.Snapshot{
					Rows:     books(2),
					Signal:   browse.SignalPage,
					Page:     browse.PageState{Current: 3, Highest: 3, Buttons: pagination.Enablement(3, 3)},
					Restores: []browse.Restore{{From: 5, To: 3}},
				},
				Settled: true,
			},
			contains: []string{
				"page 5 has no results any more, showing page 3\n",
				`Results for "go"  page 3 of 3`,
				"1. Book 0\n",
				"2. Book 1\n",
			},
			excludes: []string{"still loading"},
		},
		{
			name: "partial result",
			v: view{
				Query:    "go",
				Snapshot: browse.Snapshot{Rows: books(1), Page: browse.PageState{Current: 1, Highest: 1}},
			},
			contains: []string{"1. Book 0\n", "(still loading)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			renderView(&buf, tt.v)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestRenderGrid(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	renderGrid(&buf, books(4))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		" 1 Book 0" + strings.Repeat(" ", gridWidth-9) + " 2 Book 1" + strings.Repeat(" ", gridWidth-9) + " 3 Book 2",
		" 4 Book 3",
	}, lines)
}

func TestRenderDetail(t *testing.T) {
	t.Parallel()
	b := entity.NewBook(entity.BookFields{
		ID:          "x",
		Title:       "The Go Programming Language",
		Subtitle:    "Second Edition",
		Authors:     []string{"Alan Donovan"},
		Description: "<p>First.</p><p>Second.</p>",
	})

	var buf bytes.Buffer
	renderDetail(&buf, 1, b)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "#1 The Go Programming Language\nSecond Edition\n"), out)
	assert.Contains(t, out, "  Authors:    Alan Donovan\n")
	assert.NotContains(t, out, "Rating:")
	assert.True(t, strings.HasSuffix(out, "\nFirst.\n\nSecond.\n"), out)
}
