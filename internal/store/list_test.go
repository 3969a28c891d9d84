package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/joe-prompts/internal/store"
)

func titles(prompts []*store.Prompt) []string {
	out := make([]string, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, p.Title)
	}
	return out
}

func TestPromptStore_List(t *testing.T) {
	ps, _ := newPromptStore(t, 0)
	ctx := context.Background()

	seed := []struct {
		title, body, desc string
		tags              []string
		favorite          bool
		uses              int
	}{
		{title: "bravo", body: "Write a [Tone=formal,casual] email", tags: []string{"email"}, uses: 1},
		{title: "Alpha", body: "Summarize [Text]", desc: "TL;DR helper", favorite: true, uses: 3},
		{title: "charlie", body: "Translate [Text] to [Lang=German]", tags: []string{"email", "lang"}},
	}
	for _, s := range seed {
		p, err := ps.Create(ctx, s.title, s.body, s.desc)
		require.NoError(t, err)
		if len(s.tags) > 0 {
			require.NoError(t, ps.SetTags(ctx, p.ID, s.tags))
		}
		if s.favorite {
			_, err = ps.SetFavorite(ctx, p.ID, true)
			require.NoError(t, err)
		}
		for i := 0; i < s.uses; i++ {
			_, err = ps.MarkUsed(ctx, p.ID)
			require.NoError(t, err)
		}
	}

	tests := []struct {
		name string
		opts store.ListOptions
		want []string
	}{
		{name: "title sort is case-insensitive", opts: store.ListOptions{Sort: store.SortTitle}, want: []string{"Alpha", "bravo", "charlie"}},
		{name: "search body", opts: store.ListOptions{Query: "TEXT", Sort: store.SortTitle}, want: []string{"Alpha", "charlie"}},
		{name: "search description", opts: store.ListOptions{Query: "tl;dr", Sort: store.SortTitle}, want: []string{"Alpha"}},
		{name: "tag filter", opts: store.ListOptions{Tag: "email", Sort: store.SortTitle}, want: []string{"bravo", "charlie"}},
		{name: "tag and search", opts: store.ListOptions{Tag: "email", Query: "german", Sort: store.SortTitle}, want: []string{"charlie"}},
		{name: "favorites", opts: store.ListOptions{FavoritesOnly: true}, want: []string{"Alpha"}},
		{name: "most used", opts: store.ListOptions{Sort: store.SortUsed}, want: []string{"Alpha", "bravo", "charlie"}},
		{name: "limit", opts: store.ListOptions{Sort: store.SortTitle, Limit: 2}, want: []string{"Alpha", "bravo"}},
		{name: "offset", opts: store.ListOptions{Sort: store.SortTitle, Limit: 2, Offset: 2}, want: []string{"charlie"}},
		{name: "no match", opts: store.ListOptions{Query: "zzz"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ps.List(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestPromptStore_List_LiteralWildcards(t *testing.T) {
	ps, _ := newPromptStore(t, 0)
	ctx := context.Background()

	for _, c := range []struct{ title, body string }{
		{"discount", "Take 50% off [Item]"},
		{"fifty", "50 items in stock"},
		{"snake", "rename a_b to [New]"},
		{"plain", "rename axb"},
		{"bang", "wow! [Name]"},
		{"nobang", "wow [Name]"},
	} {
		_, err := ps.Create(ctx, c.title, c.body, "")
		require.NoError(t, err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{query: "50%", want: []string{"discount"}},
		{query: "a_b", want: []string{"snake"}},
		{query: "wow!", want: []string{"bang"}},
		{query: "%", want: []string{"discount"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := ps.List(ctx, store.ListOptions{Query: tt.query, Sort: store.SortTitle})
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    store.SortOrder
		wantErr error
	}{
		{in: "", want: store.SortUpdated},
		{in: "Title", want: store.SortTitle},
		{in: " used ", want: store.SortUsed},
		{in: "created", want: store.SortCreated},
		{in: "updated", want: store.SortUpdated},
		{in: "random", wantErr: store.ErrInvalidSort},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := store.ParseSortOrder(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
