package include

import (
	stderrors "errors"
	"testing"

	"emojiscraper/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData() models.EmojiData {
	return models.EmojiData{
		Servers: []string{"Alpha", "Beta", "Gaming Hub"},
		Emojis: []models.EmojiRecord{
			{ID: "1", Name: "joy", Server: "Alpha"},
			{ID: "2", Name: "partyparrot", Server: "Beta"},
			{ID: "3", Name: "sadcat", Server: "Alpha"},
			{ID: "4", Name: "party", Server: "Gaming Hub"},
			{ID: "5", Name: "gg", Server: "Gaming Hub"},
		},
	}
}

func ids(records []models.EmojiRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		include string
		want    []string
	}{
		{
			name:    "default includes everything",
			include: Default,
			want:    []string{"1", "2", "3", "4", "5"},
		},
		{
			name:    "exclude all",
			include: "- all\n",
			want:    []string{},
		},
		{
			name:    "exclude one server",
			include: "+ all\n- \"Beta\"\n",
			want:    []string{"1", "3", "4", "5"},
		},
		{
			name:    "include one server",
			include: "- all\n+ \"Gaming Hub\" // games\n",
			want:    []string{"4", "5"},
		},
		{
			name:    "server regex",
			include: "+ /^(Alpha|Beta)$/\n",
			want:    []string{"1", "2", "3"},
		},
		{
			name:    "emoji exclusion within server",
			include: "+ \"Alpha\"\n    - \"sadcat\"\n",
			want:    []string{"1"},
		},
		{
			name:    "passive server line scopes emoji lines",
			include: "\"Gaming Hub\"\n    + \"gg\"\n",
			want:    []string{"5"},
		},
		{
			name:    "emoji regex limited to selected servers",
			include: "\"Gaming Hub\"\n    + /^party/\n",
			want:    []string{"4"},
		},
		{
			name:    "comments and blank lines",
			include: "// header\n\n+ all // everything\n\n// trailer\n",
			want:    []string{"1", "2", "3", "4", "5"},
		},
		{
			name:    "crlf line endings",
			include: "+ all\r\n- \"Alpha\"\r\n",
			want:    []string{"2", "4", "5"},
		},
		{
			name:    "empty file",
			include: "",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(testData(), tt.include)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterKeepsDataOrder(t *testing.T) {
	got, err := Filter(testData(), "+ \"Gaming Hub\"\n+ \"Alpha\"\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3", "4", "5"}, ids(got))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		include string
		line    int
		reason  string
	}{
		{"emoji before server", "    + \"joy\"\n", 1, "emoji without server filter"},
		{"emoji without mode", "+ all\n    \"joy\"\n", 2, `emoji must start with "+ " or "- "`},
		{"bad server search", "+ everything\n", 1, "invalid server search"},
		{"all is not an emoji search", "+ all\n    + all\n", 2, "invalid emoji search"},
		{"unterminated name", "+ \"Alpha\n", 1, "invalid server search"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.include)
			require.Error(t, err)

			var lineErr *LineError
			require.True(t, stderrors.As(err, &lineErr))
			assert.Equal(t, tt.line, lineErr.Line)
			assert.Equal(t, tt.reason, lineErr.Reason)
		})
	}
}

func TestParseInvalidRegex(t *testing.T) {
	_, err := Parse("+ /(/\n")
	var lineErr *LineError
	require.True(t, stderrors.As(err, &lineErr))
	assert.Contains(t, lineErr.Reason, "invalid regex")
}

func TestApplyUnknownServer(t *testing.T) {
	rules, err := Parse("+ \"Nowhere\"\n")
	require.NoError(t, err)

	_, err = rules.Apply(testData())
	var lineErr *LineError
	require.True(t, stderrors.As(err, &lineErr))
	assert.Equal(t, 1, lineErr.Line)
	assert.Equal(t, `line 1 "+ \"Nowhere\"": invalid server search`, err.Error())
}

func TestParseRules(t *testing.T) {
	rules, err := Parse("+ all\n/Gam/\n    - \"gg\" // no\n")
	require.NoError(t, err)

	got := rules.Rules()
	require.Len(t, got, 3)
	assert.True(t, got[0].All)
	assert.Equal(t, ModeInclude, got[0].Mode)
	assert.Equal(t, ModePassive, got[1].Mode)
	assert.NotNil(t, got[1].Regexp)
	assert.Equal(t, TargetEmoji, got[2].Target)
	assert.Equal(t, ModeExclude, got[2].Mode)
	assert.Equal(t, "gg", got[2].Name)
	assert.Equal(t, "exclude", got[2].Mode.String())
}
