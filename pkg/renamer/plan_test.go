package renamer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func files(names ...string) []Entry {
	entries := make([]Entry, 0, len(names))
	for _, n := range names {
		entries = append(entries, Entry{Name: n})
	}
	return entries
}

func TestNewPlan(t *testing.T) {
	entries := append(files("b.wav", "c.txt", "a.wav", "A.WAV"), Entry{Name: "dir.wav", IsDir: true})

	t.Run("listing order", func(t *testing.T) {
		p := newPlan("/m", ".wav", "凉", entries, OrderListing)
		assert.Equal(t, []Step{
			{Index: 1, From: "b.wav", To: "凉1.wav"},
			{Index: 2, From: "a.wav", To: "凉2.wav"},
		}, p.Steps)
	})

	t.Run("name order", func(t *testing.T) {
		p := newPlan("/m", ".wav", "凉", entries, OrderName)
		assert.Equal(t, []Step{
			{Index: 1, From: "a.wav", To: "凉1.wav"},
			{Index: 2, From: "b.wav", To: "凉2.wav"},
		}, p.Steps)
	})

	t.Run("empty prefix", func(t *testing.T) {
		p := newPlan("/m", ".wav", "", files("x.wav"), OrderListing)
		assert.Equal(t, "1.wav", p.Steps[0].To)
	})
}

func TestTargetName(t *testing.T) {
	assert.Equal(t, "X1.wav", TargetName("X", 1, ".wav"))
	assert.Equal(t, "track12.flac", TargetName("track", 12, ".flac"))
}

func TestPlanConflicts(t *testing.T) {
	cases := []struct {
		name    string
		entries []Entry
		want    []Conflict
	}{
		{
			name:    "no occupants",
			entries: files("a.wav", "b.wav", "notes.txt"),
		},
		{
			name:    "same name is not a conflict",
			entries: files("X1.wav", "X2.wav"),
		},
		{
			name:    "untouched file occupies target",
			entries: append(files("a.wav"), Entry{Name: "X1.wav", IsDir: true}),
			want:    []Conflict{{Step: Step{Index: 1, From: "a.wav", To: "X1.wav"}, Reason: "target exists"}},
		},
		{
			name:    "source not yet moved",
			entries: files("X2.wav", "X1.wav"),
			want: []Conflict{
				{Step: Step{Index: 1, From: "X2.wav", To: "X1.wav"}, Reason: "target exists"},
				{Step: Step{Index: 2, From: "X1.wav", To: "X2.wav"}, Reason: "target exists"},
			},
		},
		{
			name:    "source already moved frees its name",
			entries: files("X3.wav", "a.wav", "b.wav"),
			// X3 -> X1, a -> X2, b -> X3 (X3 left at step 1)
		},
		{
			name:    "non matching file with the target name",
			entries: append(files("a.wav", "b.wav"), Entry{Name: "X2.wav", IsDir: true}),
			want:    []Conflict{{Step: Step{Index: 2, From: "b.wav", To: "X2.wav"}, Reason: "target exists"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPlan("/m", ".wav", "X", tc.entries, OrderListing)
			assert.Equal(t, tc.want, p.Conflicts())
		})
	}
}

func TestPlanLog(t *testing.T) {
	var buf bytes.Buffer
	newPlan("/m", ".wav", "X", files("a.wav", "b.wav"), OrderListing).Log(&buf)
	assert.Equal(t, "Plan for \"rename\" operation:\n  - a.wav -> X1.wav\n  - b.wav -> X2.wav\n", buf.String())

	buf.Reset()
	empty := newPlan("/m", ".wav", "X", nil, OrderListing)
	assert.True(t, empty.Empty())
	empty.Log(&buf)
	assert.Equal(t, "Plan for \"rename\" operation:\n  no files to rename\n", buf.String())
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("")
	require.NoError(t, err)
	assert.Equal(t, OrderListing, o)

	o, err = ParseOrder("name")
	require.NoError(t, err)
	assert.Equal(t, OrderName, o)

	_, err = ParseOrder("mtime")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
