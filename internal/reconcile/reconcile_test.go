package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "Report.PDF", "report.pdf"},
		{"trim whitespace", "  notes.txt\t\n", "notes.txt"},
		{"trim information separators", "\x1cnotes.txt\x1f", "notes.txt"},
		{"trim non-breaking space", "\u00a0notes.txt\u3000", "notes.txt"},
		{"inner separator kept", "a\x1eb.txt", "a\x1eb.txt"},
		{"composed stays composed", "caf\u00e9.png", "caf\u00e9.png"},
		{"decomposed becomes composed", "cafe\u0301.png", "caf\u00e9.png"},
		{"uppercase decomposed", "CAFE\u0301.PNG", "caf\u00e9.png"},
		{"non latin", "ОТЧЁТ.docx", "отчёт.docx"},
		{"inner spaces kept", "My File.txt", "my file.txt"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_SameIdentity(t *testing.T) {
	pairs := [][2]string{
		{"Report.PDF", "report.pdf"},
		{"re\u0301sume\u0301.doc", "R\u00c9SUM\u00c9.doc"},
		{" doc1.PDF", "doc1.pdf "},
	}
	for _, p := range pairs {
		assert.Equal(t, Normalize(p[0]), Normalize(p[1]), "%q vs %q", p[0], p[1])
	}
}

func TestOrphans_Filenames(t *testing.T) {
	tests := []struct {
		name       string
		referenced []string
		present    []string
		want       []string
	}{
		{
			name:       "case difference is not an orphan",
			referenced: []string{"report.pdf"},
			present:    []string{"Report.PDF"},
			want:       nil,
		},
		{
			name:       "unicode form difference is not an orphan",
			referenced: []string{"caf\u00e9.png"},
			present:    []string{"cafe\u0301.png"},
			want:       nil,
		},
		{
			name:       "unreferenced entry",
			referenced: []string{"a.txt"},
			present:    []string{"a.txt", "b.txt"},
			want:       []string{"b.txt"},
		},
		{
			name:       "empty referenced names reference nothing",
			referenced: []string{"", "   "},
			present:    []string{"x.bin"},
			want:       []string{"x.bin"},
		},
		{
			name:       "nothing present",
			referenced: []string{"a.txt"},
			present:    nil,
			want:       nil,
		},
		{
			name:       "nothing referenced",
			referenced: nil,
			present:    []string{"b", "a"},
			want:       []string{"a", "b"},
		},
		{
			name:       "colliding originals are all orphans",
			referenced: []string{"other.txt"},
			present:    []string{"Dup.txt", "dup.txt"},
			want:       []string{"Dup.txt", "dup.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Orphans(tt.referenced, tt.present, Normalize)
			assert.Equal(t, tt.want, res.Orphans)
		})
	}
}

func TestOrphans_IDs(t *testing.T) {
	res := Orphans([]string{"f1", "f2", "F9"}, []string{"f1", "f9", "f2", "f3"}, Identity)

	assert.Equal(t, []string{"f3", "f9"}, res.Orphans, "ids are compared exactly")
	assert.Equal(t, 3, res.Referenced)
	assert.Equal(t, 4, res.Present)
	assert.Empty(t, res.Collisions)
}

func TestOrphans_Collisions(t *testing.T) {
	res := Orphans([]string{"dup.txt"}, []string{"dup.txt", "DUP.txt", "other"}, Normalize)

	assert.Equal(t, []string{"other"}, res.Orphans)
	assert.Equal(t, map[string][]string{"dup.txt": {"DUP.txt", "dup.txt"}}, res.Collisions)
	assert.Equal(t, 2, res.Present)
}

func TestOrphans_DuplicatePresentNames(t *testing.T) {
	res := Orphans(nil, []string{"a", "a"}, Identity)

	assert.Equal(t, []string{"a"}, res.Orphans)
	assert.Empty(t, res.Collisions)
}

func TestIndex(t *testing.T) {
	ix := NewIndex([]string{"b.TXT", "B.txt", "c"}, Normalize)

	assert.Equal(t, []string{"B.txt", "b.TXT"}, ix["b.txt"])
	assert.Equal(t, []string{"c"}, ix["c"])
	assert.Equal(t, []string{"b.txt", "c"}, ix.Keys())
}
