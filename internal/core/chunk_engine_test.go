// ABOUTME: Tests for ChunkEngine recursive chunking
// ABOUTME: Verifies size bounds, overlap, boundary preference and document ordering

package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/harper/guia/internal/models"
)

func mustChunkEngine(t *testing.T, size, overlap int) *ChunkEngine {
	t.Helper()
	ce, err := NewChunkEngine(size, overlap)
	if err != nil {
		t.Fatalf("NewChunkEngine(%d, %d) error = %v", size, overlap, err)
	}
	return ce
}

func TestNewChunkEngine_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
		{"zero size", 0, 0},
		{"negative size", -5, 0},
		{"negative overlap", 100, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce, err := NewChunkEngine(tt.size, tt.overlap)
			if ce != nil {
				t.Error("expected nil engine")
			}
			var ce2 *models.ConfigError
			if !errors.As(err, &ce2) {
				t.Fatalf("error = %v, want *models.ConfigError", err)
			}
		})
	}
}

func TestNewChunkEngine_Defaults(t *testing.T) {
	ce := mustChunkEngine(t, DefaultChunkSize, DefaultChunkOverlap)
	if ce.ChunkSize() != 1000 || ce.ChunkOverlap() != 200 {
		t.Errorf("got (%d, %d), want (1000, 200)", ce.ChunkSize(), ce.ChunkOverlap())
	}
}

func TestSplit_WordOverlapExample(t *testing.T) {
	ce := mustChunkEngine(t, 3, 1)

	got := ce.Split("A B C D E")
	want := []string{"A B", "B C", "C D", "D E"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split() = %q, want %q", got, want)
	}
}

func TestSplit_HardCutOverlapIsExact(t *testing.T) {
	ce := mustChunkEngine(t, 4, 2)
	got := ce.Split("abcdefghij")
	want := []string{"abcd", "cdef", "efgh", "ghij"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Split() = %q, want %q", got, want)
	}

	ce = mustChunkEngine(t, 10, 3)
	chunks := ce.Split("abcdefghijklmnopqrstuvwxyz")
	for i := 1; i < len(chunks); i++ {
		prev, next := chunks[i-1], chunks[i]
		if prev[len(prev)-3:] != next[:3] {
			t.Errorf("chunks %q and %q do not share exactly 3 characters", prev, next)
		}
	}
}

func TestSplit_PrefersParagraphs(t *testing.T) {
	ce := mustChunkEngine(t, 12, 3)

	got := ce.Split("para one.\n\npara two.")
	want := []string{"para one.", "para two."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split() = %q, want %q", got, want)
	}
}

func TestSplit_ShortTextIsSingleChunk(t *testing.T) {
	ce := mustChunkEngine(t, DefaultChunkSize, DefaultChunkOverlap)
	text := "Art. 1º Fica instituído o Imposto Sobre Serviços."

	got := ce.Split(text)
	if len(got) != 1 || got[0] != text {
		t.Errorf("Split() = %q, want single chunk %q", got, text)
	}
}

func TestSplit_EmptyText(t *testing.T) {
	ce := mustChunkEngine(t, 10, 2)
	for _, text := range []string{"", "   ", "\n\n\n"} {
		if got := ce.Split(text); len(got) != 0 {
			t.Errorf("Split(%q) = %q, want no chunks", text, got)
		}
	}
}

func TestSplit_LongWordFallsBackToHardCut(t *testing.T) {
	ce := mustChunkEngine(t, 8, 2)
	chunks := ce.Split("ok supercalifragilistic ok")

	if len(chunks) < 3 {
		t.Fatalf("expected the long word to be cut, got %q", chunks)
	}
	for _, c := range chunks {
		if utf8.RuneCountInString(c) > 8 {
			t.Errorf("chunk %q exceeds 8 characters", c)
		}
	}
}

func TestSplit_CountsRunesNotBytes(t *testing.T) {
	ce := mustChunkEngine(t, 9, 4)
	chunks := ce.Split("ação ação ação")

	want := []string{"ação ação", "ação ação"}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("Split() = %q, want %q", chunks, want)
	}
}

// generateText builds paragraphs of unique words so overlaps cannot match by accident
func generateText(paragraphs int) string {
	var b strings.Builder
	word := 0
	for p := 0; p < paragraphs; p++ {
		if p > 0 {
			b.WriteString("\n\n")
		}
		for line := 0; line < 3; line++ {
			if line > 0 {
				b.WriteString("\n")
			}
			for w := 0; w < 12; w++ {
				if w > 0 {
					b.WriteString(" ")
				}
				fmt.Fprintf(&b, "w%04d", word)
				word++
			}
		}
	}
	return b.String()
}

// sharedEdge returns the longest suffix of a that is also a prefix of b
func sharedEdge(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	best := 0
	for k := 1; k <= len(ra) && k <= len(rb); k++ {
		if string(ra[len(ra)-k:]) == string(rb[:k]) {
			best = k
		}
	}
	return best
}

func TestSplit_Properties(t *testing.T) {
	text := generateText(6)

	tests := []struct {
		size    int
		overlap int
	}{
		{25, 5},
		{60, 15},
		{100, 30},
		{200, 0},
		{DefaultChunkSize, DefaultChunkOverlap},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("size=%d/overlap=%d", tt.size, tt.overlap), func(t *testing.T) {
			ce := mustChunkEngine(t, tt.size, tt.overlap)
			chunks := ce.Split(text)
			if len(chunks) == 0 {
				t.Fatal("no chunks produced")
			}

			lastStart := -1
			for i, c := range chunks {
				if n := utf8.RuneCountInString(c); n > tt.size {
					t.Errorf("chunk %d has %d characters, max %d", i, n, tt.size)
				}
				start := strings.Index(text, c)
				if start < 0 {
					t.Fatalf("chunk %d %q is not a substring of the source", i, c)
				}
				if start <= lastStart {
					t.Errorf("chunk %d does not advance (start %d after %d)", i, start, lastStart)
				}
				lastStart = start

				if i > 0 {
					if shared := sharedEdge(chunks[i-1], c); shared > tt.overlap {
						t.Errorf("chunks %d and %d share %d characters, max %d", i-1, i, shared, tt.overlap)
					}
				}
			}

			if !strings.HasSuffix(text, chunks[len(chunks)-1]) {
				t.Errorf("last chunk %q does not end the text", chunks[len(chunks)-1])
			}
		})
	}
}

func TestSplitDocuments_Ordering(t *testing.T) {
	ce := mustChunkEngine(t, 3, 1)
	docs := []models.Document{
		{Source: "a.pdf", Page: 1, Content: "A B C"},
		{Source: "a.pdf", Page: 2, Content: ""},
		{Source: "b.pdf", Page: 1, Content: "D E"},
	}

	chunks := ce.SplitDocuments(docs)

	want := []struct {
		content  string
		source   string
		page     int
		position int
	}{
		{"A B", "a.pdf", 1, 0},
		{"B C", "a.pdf", 1, 1},
		{"D E", "b.pdf", 1, 0},
	}
	if len(chunks) != len(want) {
		t.Fatalf("len(chunks) = %d, want %d: %+v", len(chunks), len(want), chunks)
	}
	for i, w := range want {
		c := chunks[i]
		if c.Content != w.content || c.Source != w.source || c.Page != w.page || c.Position != w.position {
			t.Errorf("chunk %d = %+v, want %+v", i, c, w)
		}
		if c.Order != i {
			t.Errorf("chunk %d Order = %d, want %d", i, c.Order, i)
		}
		if c.ID != models.ChunkID(w.source, w.page, w.position) {
			t.Errorf("chunk %d ID = %q, want deterministic id", i, c.ID)
		}
	}
}

func TestSplitDocuments_Deterministic(t *testing.T) {
	ce := mustChunkEngine(t, 60, 15)
	docs := []models.Document{{Source: "x.txt", Page: 1, Content: generateText(2)}}

	first := ce.SplitDocuments(docs)
	second := ce.SplitDocuments(docs)
	if !reflect.DeepEqual(first, second) {
		t.Error("SplitDocuments is not deterministic")
	}
}

func TestWithSeparators(t *testing.T) {
	ce, err := NewChunkEngine(5, 0, WithSeparators("|", ""))
	if err != nil {
		t.Fatalf("NewChunkEngine() error = %v", err)
	}
	got := ce.Split("ab|cd|ef")
	want := []string{"ab|cd", "ef"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split() = %q, want %q", got, want)
	}
}
