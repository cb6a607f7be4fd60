package hal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersBody = `{
  "total": 2,
  "_links": {
    "self": {"href": "https://api.test/orders"},
    "search": {"href": "https://api.test/orders/search{?q}", "templated": true},
    "curies": [{"href": "https://docs.test/{rel}", "name": "doc", "templated": true}]
  },
  "_embedded": {
    "orders": [
      {"id": 3, "_links": {"self": {"href": "https://api.test/orders/3"}}},
      {"id": 4, "_links": {"self": {"href": "https://api.test/orders/4"}, "items": {"href": "https://api.test/orders/4/items"}}},
      {"id": 5}
    ],
    "owner": {"_links": {"self": "https://api.test/users/7"}}
  }
}`

func TestParseDecodesLinksEmbeddedAndFields(t *testing.T) {
	res, err := Parse([]byte(ordersBody))
	require.NoError(t, err)

	assert.True(t, res.HasLinks())
	assert.Equal(t, json.Number("2"), res.Fields["total"])

	search, ok := res.Link("search")
	require.True(t, ok)
	assert.True(t, search.Templated)
	assert.Len(t, res.Links["curies"], 1)
	assert.Equal(t, "doc", res.Links["curies"][0].Name)

	require.Len(t, res.Embedded["orders"], 3)
	require.Len(t, res.Embedded["owner"], 1)
	assert.Equal(t, "https://api.test/users/7", res.Embedded["owner"][0].Links["self"][0].Href)
}

func TestRequireLinksFailsWhenAbsent(t *testing.T) {
	res, err := Parse([]byte(`{"name": "plain"}`))
	require.NoError(t, err)

	_, err = res.RequireLinks()
	assert.ErrorIs(t, err, ErrNoLinks)
}

func TestEmbeddedValuesEmptyWhenAbsent(t *testing.T) {
	res, err := Parse([]byte(`{"_links": {}}`))
	require.NoError(t, err)

	assert.Empty(t, res.EmbeddedValues())
	assert.Empty(t, res.EmbeddedHrefs())

	links, err := res.RequireLinks()
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestEmbeddedHrefsSkipsItemsWithoutLinks(t *testing.T) {
	res, err := Parse([]byte(ordersBody))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"https://api.test/orders/3",
		"https://api.test/orders/4/items",
		"https://api.test/orders/4",
		"https://api.test/users/7",
	}, res.EmbeddedHrefs())
}

func TestParseRejectsNonObjects(t *testing.T) {
	_, err := Parse([]byte(`[1, 2]`))
	assert.Error(t, err)

	_, err = Parse([]byte(`pong`))
	assert.Error(t, err)
}

func TestStripBase(t *testing.T) {
	base := "https://api.test/orders/"
	tests := []struct {
		href string
		want string
	}{
		{href: "https://api.test/orders/3", want: "3"},
		{href: "https://api.test/orders/search{?q}", want: "search"},
		{href: "https://api.test/orders/", want: ""},
		{href: "https://other.test/x", want: "https://other.test/x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripBase(base, tt.href), tt.href)
	}

	// Regex metacharacters in the base are matched literally.
	assert.Equal(t, "https://apiXtest/a", StripBase("https://api.test/", "https://apiXtest/a"))
}

func TestIndexNotation(t *testing.T) {
	assert.Equal(t, "[3].sub", IndexNotation("3/sub"))
	assert.Equal(t, "items/3", IndexNotation("items/3"))
	assert.Equal(t, "42", IndexNotation("42"))
}

func TestLinkSetRoundTripKeepsSingleObjectShape(t *testing.T) {
	out, err := json.Marshal(Links{"self": {{Href: "/a"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"self": {"href": "/a"}}`, string(out))
}
