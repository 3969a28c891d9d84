package placeholder

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	long := strings.Repeat("x", 70)

	tests := []struct {
		name string
		text string
		want []Placeholder
	}{
		{
			name: "text with default",
			text: "Hi [Name=World]",
			want: []Placeholder{{Key: "Name", Kind: KindText, DefaultValue: "World", Options: []string{}}},
		},
		{
			name: "text without default",
			text: "Hi [Name]",
			want: []Placeholder{{Key: "Name", Kind: KindText, Options: []string{}}},
		},
		{
			name: "dropdown",
			text: "[Color=Red,Green,Blue]",
			want: []Placeholder{{Key: "Color", Kind: KindDropdown, Options: []string{"", "Red", "Green", "Blue"}}},
		},
		{
			name: "dropdown options are trimmed",
			text: "[Tone = formal , casual ]",
			want: []Placeholder{{Key: "Tone", Kind: KindDropdown, Options: []string{"", "formal", "casual"}}},
		},
		{
			name: "empty option falls back to text",
			text: "[List=a,,b]",
			want: []Placeholder{{Key: "List", Kind: KindText, DefaultValue: "a,,b", Options: []string{}}},
		},
		{
			name: "trailing comma falls back to text",
			text: "[List=a,]",
			want: []Placeholder{{Key: "List", Kind: KindText, DefaultValue: "a,", Options: []string{}}},
		},
		{
			name: "long default is multiline",
			text: "[Bio=" + long + "]",
			want: []Placeholder{{Key: "Bio", Kind: KindMultilineText, DefaultValue: long, Options: []string{}}},
		},
		{
			name: "exactly sixty characters stays text",
			text: "[Bio=" + strings.Repeat("y", 60) + "]",
			want: []Placeholder{{Key: "Bio", Kind: KindText, DefaultValue: strings.Repeat("y", 60), Options: []string{}}},
		},
		{
			name: "newline in default is multiline",
			text: "[Notes=line one\nline two]",
			want: []Placeholder{{Key: "Notes", Kind: KindMultilineText, DefaultValue: "line one\nline two", Options: []string{}}},
		},
		{
			name: "only first equals splits",
			text: "[Expr=a=b]",
			want: []Placeholder{{Key: "Expr", Kind: KindText, DefaultValue: "a=b", Options: []string{}}},
		},
		{
			name: "first occurrence wins",
			text: "[T=KI] and [T=AI]",
			want: []Placeholder{{Key: "T", Kind: KindText, DefaultValue: "KI", Options: []string{}}},
		},
		{
			name: "first occurrence order",
			text: "[B] [A] [B=x] [C]",
			want: []Placeholder{
				{Key: "B", Kind: KindText, Options: []string{}},
				{Key: "A", Kind: KindText, Options: []string{}},
				{Key: "C", Kind: KindText, Options: []string{}},
			},
		},
		{
			name: "empty and label-less expressions are skipped",
			text: "[] [=x] [  ] [Real]",
			want: []Placeholder{{Key: "Real", Kind: KindText, Options: []string{}}},
		},
		{
			name: "nested bracket uses innermost close",
			text: "[outer [inner]",
			want: []Placeholder{{Key: "outer [inner", Kind: KindText, Options: []string{}}},
		},
		{
			name: "no placeholders",
			text: "plain text",
			want: []Placeholder{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text))
		})
	}
}

func TestExtract_MultilineLength(t *testing.T) {
	tests := []struct {
		name string
		rest string
		want Kind
	}{
		{name: "60 ascii", rest: strings.Repeat("a", 60), want: KindText},
		{name: "61 ascii", rest: strings.Repeat("a", 61), want: KindMultilineText},
		{name: "60 cjk", rest: strings.Repeat("語", 60), want: KindText},
		{name: "30 emoji", rest: strings.Repeat("😀", 30), want: KindText},
		{name: "31 emoji", rest: strings.Repeat("😀", 31), want: KindMultilineText},
		{name: "40 emoji", rest: strings.Repeat("😀", 40), want: KindMultilineText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract("[Note=" + tt.rest + "]")
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Kind)
		})
	}
}

func TestFill(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		values map[string]string
		want   string
	}{
		{name: "default used", text: "Hi [Name=World]", values: map[string]string{}, want: "Hi World"},
		{name: "value wins", text: "Hi [Name=World]", values: map[string]string{"Name": "Ann"}, want: "Hi Ann"},
		{name: "blank value falls back", text: "Hi [Name=World]", values: map[string]string{"Name": "  "}, want: "Hi World"},
		{name: "nil values", text: "Hi [Name=World]", values: nil, want: "Hi World"},
		{name: "no default becomes empty", text: "Hi [Name]!", values: nil, want: "Hi !"},
		{name: "dropdown has no default", text: "Use [Tone=formal,casual].", values: nil, want: "Use ."},
		{name: "dropdown selection", text: "Use [Tone=formal,casual].", values: map[string]string{"Tone": "casual"}, want: "Use casual."},
		{name: "repeated keys each replaced", text: "[A] and [A]", values: map[string]string{"A": "x"}, want: "x and x"},
		{name: "repeated keys keep local defaults", text: "[T=KI] and [T=AI]", values: nil, want: "KI and AI"},
		{name: "value not trimmed", text: "<[A]>", values: map[string]string{"A": " v "}, want: "< v >"},
		{name: "empty key uses empty entry", text: "a[=x]b", values: map[string]string{"": "E"}, want: "aEb"},
		{name: "empty key without entry", text: "a[=x]b[]c", values: nil, want: "abc"},
		{name: "stray close bracket kept", text: "a ] [B=1] ]", values: nil, want: "a ] 1 ]"},
		{name: "unterminated open kept", text: "[A=1] [open", values: nil, want: "1 [open"},
		{name: "multiline default", text: "[N=one\ntwo]", values: nil, want: "one\ntwo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fill(tt.text, tt.values))
		})
	}
}

func TestFill_Idempotent(t *testing.T) {
	text := "Dear [Name=Ann],\n\nThanks for [Reason=your order]. Regards, [Sender]"
	once := Fill(text, map[string]string{"Sender": "Bob"})
	require.False(t, HasPlaceholders(once))
	assert.Equal(t, once, Fill(once, map[string]string{"Sender": "Eve"}))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "well formed", text: "[A] [B=1]", want: nil},
		{name: "unbalanced", text: "[A] [B=1] ]", want: []string{UnbalancedWarning(2, 3)}},
		{name: "empty placeholder", text: "[]", want: []string{EmptyWarning}},
		{name: "blank placeholder", text: "[   ]", want: []string{EmptyWarning}},
		{name: "missing label", text: "x [=value] y", want: []string{MissingLabelWarning("[=value]")}},
		{name: "missing label keeps raw match", text: "[ = v ]", want: []string{MissingLabelWarning("[ = v ]")}},
		{
			name: "balance warning first then scan order",
			text: "[=a] [] [ok] [",
			want: []string{UnbalancedWarning(4, 3), MissingLabelWarning("[=a]"), EmptyWarning},
		},
		{name: "duplicates reported per match", text: "[] []", want: []string{EmptyWarning, EmptyWarning}},
		{name: "no brackets", text: "nothing", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.text))
		})
	}
}

func TestHasAndCount(t *testing.T) {
	assert.False(t, HasPlaceholders("no brackets here"))
	assert.True(t, HasPlaceholders("[x]"))
	assert.True(t, HasPlaceholders("[]"))
	assert.False(t, HasPlaceholders("] ["))

	assert.Equal(t, 0, Count("none"))
	assert.Equal(t, 4, Count("[A] [A] [] [=x]"))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, `Hi "Name"`, Preview("Hi [Name]", map[string]string{}))
	assert.Equal(t, "Hi Ann", Preview("Hi [Name]", map[string]string{"Name": "Ann"}))
	assert.Equal(t, "Hi World", Preview("Hi [Name=World]", nil))
	assert.Equal(t, `Pick "Tone"`, Preview("Pick [Tone=a,b]", map[string]string{"Tone": " "}))
}

func TestAnnotatedPreview(t *testing.T) {
	got := AnnotatedPreview("Hi [Name], meet [Other=Bob][Gap]!", map[string]string{"Name": "Ann"})
	want := []PreviewSegment{
		{Text: "Hi "},
		{Text: "Ann", IsPlaceholder: true, IsFilled: true},
		{Text: ", meet "},
		{Text: "Bob", IsPlaceholder: true, IsFilled: true},
		{Text: "[Gap]", IsPlaceholder: true},
		{Text: "!"},
	}
	assert.Equal(t, want, got)
}

func TestAnnotatedPreview_Edges(t *testing.T) {
	assert.Empty(t, AnnotatedPreview("", nil))
	assert.Equal(t, []PreviewSegment{{Text: "plain"}}, AnnotatedPreview("plain", nil))
	assert.Equal(t,
		[]PreviewSegment{{Text: "[X]", IsPlaceholder: true}},
		AnnotatedPreview("[X]", nil),
	)
}

// Joining segment texts reproduces Preview except for the unresolved marker.
func TestAnnotatedPreview_MatchesPreview(t *testing.T) {
	text := "A [x=1] b [y] c [z=p,q]"
	values := map[string]string{"z": "q"}

	var b strings.Builder
	for _, s := range AnnotatedPreview(text, values) {
		b.WriteString(s.Text)
	}
	assert.Equal(t, "A 1 b [y] c q", b.String())
	assert.Equal(t, `A 1 b "y" c q`, Preview(text, values))
}

func TestConcurrentUse(t *testing.T) {
	text := "[Greeting=Hello] [Name] from [Place=home,work]"
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "Hello Ann from work", Fill(text, map[string]string{"Name": "Ann", "Place": "work"}))
			assert.Len(t, Extract(text), 3)
		}()
	}
	wg.Wait()
}
