package dashdoc_test

import (
	"context"
	"testing"

	"github.com/fwojciec/dashdoc"
	"github.com/fwojciec/dashdoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBaseURI = "windows/win32/api"
	testBaseURL = "https://learn.microsoft.com/en-us/windows/win32/api"
)

const baseTocJSON = `{ "items": [
	{"href":"_input_touchinjection/","toc_title":"Touch Injection"},
	{"href":"_ad/","toc_title":"Active Directory Domain Services",
	 "children": [
		{"href":"../adsprop/","toc_title":"Overview"},
		{"href":"/windows/win32/api/adsprop/nf-adsprop-adspropcheckifwritable","toc_title":"ADsPropCheckIfWritable function"}
	 ]}
], "metadata": {
	"ms.author":"jken", "ms.prod":"desktop",
	"searchScope":["Windows","Desktop"], "titleSuffix":"Win32 apps"
}}`

const rootTocJSON = `{"items":[
	{"toc_title":"Windows Desktop Technologies", "href":"./", "children":[
		{"toc_title":"Headers", "children":[
			{"href":"_ad/","toc_title":"Active Directory Domain Services"}
		]}
	]}
]}`

const adTocJSON = `{"items":[
	{"children":[
		{"children":[
			{"href":"../adsprop/","toc_title":"Overview"},
			{"href":"../adsprop/nf-adsprop-adspropcheckifwritable","toc_title":"ADsPropCheckIfWritable function"}
		], "toc_title": "Adsprop.h"}
	], "href":"./", "toc_title":"Active Directory Domain Services"}
], "metadata": {"titleSuffix":"Win32 apps"}}`

const adspropTocJSON = `{"items":[
	{"children":[
		{"href":"./","toc_title":"Overview"},
		{"href":"/windows/win32/api/adsprop/nf-adsprop-adspropcheckifwritable","toc_title":"ADsPropCheckIfWritable function"}
	], "toc_title":"Adsprop.h"}
]}`

func parse(t *testing.T, f *dashdoc.Forest, data string, owner dashdoc.NodeID) *dashdoc.Tree {
	t.Helper()
	id, err := f.Parse([]byte(data), owner, "https://example.test/toc.json")
	require.NoError(t, err)
	return f.Tree(id)
}

func child(f *dashdoc.Forest, id dashdoc.NodeID, i int) dashdoc.NodeID {
	return f.Node(id).Children[i]
}

func TestForest_Parse(t *testing.T) {
	t.Parallel()

	f := dashdoc.NewForest(testBaseURI, testBaseURL)
	tree := parse(t, f, baseTocJSON, dashdoc.NoNode)

	require.Len(t, tree.Items, 2)
	assert.Equal(t, dashdoc.NoNode, tree.Owner)

	touch := f.Node(tree.Items[0])
	assert.Equal(t, "Touch Injection", touch.Title)
	assert.Equal(t, dashdoc.LeafNode, touch.Kind)

	ad := f.Node(tree.Items[1])
	assert.Equal(t, dashdoc.BranchNode, ad.Kind)
	assert.Len(t, ad.Children, 2)
	assert.Equal(t, 4, f.Len())

	require.NotNil(t, tree.Metadata)
	assert.Equal(t, "jken", tree.Metadata.Author)
	assert.Equal(t, "desktop", tree.Metadata.Product)
	assert.Equal(t, "Win32 apps", tree.Metadata.TitleSuffix)
	assert.Equal(t, []string{"Windows", "Desktop"}, tree.Metadata.SearchScope)
}

func TestForest_Parse_EmptyChildrenMakesBranch(t *testing.T) {
	t.Parallel()

	f := dashdoc.NewForest(testBaseURI, testBaseURL)
	tree := parse(t, f, `{"items":[{"href":"x/","toc_title":"X","children":[]}]}`, dashdoc.NoNode)

	n := f.Node(tree.Items[0])
	assert.Equal(t, dashdoc.BranchNode, n.Kind)
	assert.Nil(t, tree.Metadata)

	u, ok := f.TocURL(n.ID)
	assert.True(t, ok)
	assert.Equal(t, testBaseURL+"/x/toc.json", u)
}

func TestForest_Parse_MissingTitleIsMalformed(t *testing.T) {
	t.Parallel()

	f := dashdoc.NewForest(testBaseURI, testBaseURL)
	_, err := f.Parse([]byte(`{"items":[{"toc_title":"ok","children":[{"href":"x"}]}]}`), dashdoc.NoNode, "u")

	require.Error(t, err)
	assert.Equal(t, dashdoc.EMALFORMED, dashdoc.ErrorCode(err))
	assert.Equal(t, 0, f.Len(), "no nodes are added from a malformed document")
	assert.Empty(t, f.Trees())
}

func TestForest_Parse_InvalidJSONIsMalformed(t *testing.T) {
	t.Parallel()

	f := dashdoc.NewForest(testBaseURI, testBaseURL)
	_, err := f.Parse([]byte(`<html>`), dashdoc.NoNode, "u")

	assert.Equal(t, dashdoc.EMALFORMED, dashdoc.ErrorCode(err))
}

func TestForest_Parse_UnknownOwner(t *testing.T) {
	t.Parallel()

	f := dashdoc.NewForest(testBaseURI, testBaseURL)
	_, err := f.Parse([]byte(`{"items":[]}`), 42, "u")

	assert.Equal(t, dashdoc.EINVALID, dashdoc.ErrorCode(err))
}

func TestForest_DirectoryChild(t *testing.T) {
	t.Parallel()

	f := dashdoc.NewForest(testBaseURI, testBaseURL)
	tree := parse(t, f, baseTocJSON, dashdoc.NoNode)
	id := tree.Items[0]

	assert.False(t, f.IsFile(id))
	assert.Equal(t, "_input_touchinjection/", f.Folder(id))
	assert.Equal(t, "_input_touchinjection/index.html", f.File(id))
	assert.Equal(t, testBaseURL+"/_input_touchinjection/", f.URL(id))
	u, ok := f.TocURL(id)
	assert.True(t, ok)
	assert.Equal(t, testBaseURL+"/_input_touchinjection/toc.json", u)
}

func TestForest_BranchWithChildrenRequestsNoToc(t *testing.T) {
	t.Parallel()

	f := dashdoc.NewForest(testBaseURI, testBaseURL)
	tree := parse(t, f, baseTocJSON, dashdoc.NoNode)
	id := tree.Items[1]

	assert.Equal(t, "_ad/", f.Folder(id))
	assert.Equal(t, "_ad/index.html", f.File(id))
	assert.Equal(t, testBaseURL+"/_ad/", f.URL(id))
	_, ok := f.TocURL(id)
	assert.False(t, ok)
}

func TestForest_RelativeChildEscapesParent(t *testing.T) {
	t.Parallel()

	f := dashdoc.NewForest(testBaseURI, testBaseURL)
	tree := parse(t, f, baseTocJSON, dashdoc.NoNode)
	id := child(f, tree.Items[1], 0)

	assert.Equal(t, "adsprop/", f.Folder(id))
	assert.Equal(t, "adsprop/index.html", f.File(id))
	assert.Equal(t, testBaseURL+"/adsprop/", f.URL(id))
	u, ok := f.TocURL(id)
	assert.True(t, ok)
	assert.Equal(t, testBaseURL+"/adsprop/toc.json", u)
}

func TestForest_AbsoluteChildStripsBase(t *testing.T) {
	t.Parallel()

	f := dashdoc.NewForest(testBaseURI, testBaseURL)
	tree := parse(t, f, baseTocJSON, dashdoc.NoNode)
	id := child(f, tree.Items[1], 1)

	assert.True(t, f.IsFile(id))
	assert.Equal(t, "adsprop/", f.Folder(id))
	assert.Equal(t, "adsprop/nf-adsprop-adspropcheckifwritable.html", f.File(id))
	assert.Equal(t, testBaseURL+"/adsprop/nf-adsprop-adspropcheckifwritable", f.URL(id))
	_, ok := f.TocURL(id)
	assert.False(t, ok)
}

func TestForest_NestedTrees(t *testing.T) {
	t.Parallel()

	f := dashdoc.NewForest(testBaseURI, testBaseURL)
	root := parse(t, f, rootTocJSON, dashdoc.NoNode)

	top := root.Items[0]
	headers := child(f, top, 0)
	adNode := child(f, headers, 0)
	assert.Equal(t, "", f.Folder(top), "./ at the root resolves to the base folder")
	assert.Equal(t, "index.html", f.File(top))
	assert.Equal(t, testBaseURL+"/", f.URL(top))
	assert.Equal(t, "", f.Folder(headers), "a node without href inherits its parent's folder")
	assert.Equal(t, "_ad/", f.Folder(adNode))

	ad := parse(t, f, adTocJSON, adNode)
	assert.Equal(t, adNode, ad.Owner)
	assert.Equal(t, "_ad/", f.TreeFolder(ad.ID))
	assert.Equal(t, "Win32 apps", ad.Metadata.TitleSuffix)

	adTop := ad.Items[0]
	adsprop := child(f, adTop, 0)
	overview := child(f, adsprop, 0)
	writable := child(f, adsprop, 1)
	assert.Equal(t, "_ad/", f.Folder(adTop))
	assert.Equal(t, "_ad/", f.Folder(adsprop))
	assert.Equal(t, "adsprop/", f.Folder(overview))
	assert.Equal(t, "adsprop/index.html", f.File(overview))
	assert.False(t, f.IsFile(overview))
	assert.Equal(t, "adsprop/", f.Folder(writable))
	assert.Equal(t, "adsprop/nf-adsprop-adspropcheckifwritable.html", f.File(writable))
	assert.True(t, f.IsFile(writable))

	nested := parse(t, f, adspropTocJSON, overview)
	header := nested.Items[0]
	assert.Equal(t, "adsprop/", f.TreeFolder(nested.ID))
	assert.Equal(t, "adsprop/", f.Folder(header))
	assert.False(t, f.IsFile(header))
	assert.Equal(t, "adsprop/index.html", f.File(header))
	assert.Equal(t, "adsprop/", f.Folder(child(f, header, 0)))
	assert.Equal(t, "adsprop/nf-adsprop-adspropcheckifwritable.html", f.File(child(f, header, 1)))
}

func TestForest_QueryIsKeptInURLs(t *testing.T) {
	t.Parallel()

	f := dashdoc.NewForest("powershell/module", "https://learn.microsoft.com/en-us/powershell/module")
	tree := parse(t, f, `{"items":[
		{"href":"microsoft.powershell.core/?view=powershell-7","toc_title":"Core"},
		{"href":"microsoft.powershell.core/get-help?view=powershell-7#syntax","toc_title":"Get-Help"}
	]}`, dashdoc.NoNode)

	dir, page := tree.Items[0], tree.Items[1]
	assert.Equal(t, "microsoft.powershell.core/index.html", f.File(dir))
	u, ok := f.TocURL(dir)
	assert.True(t, ok)
	assert.Equal(t, "https://learn.microsoft.com/en-us/powershell/module/microsoft.powershell.core/toc.json?view=powershell-7", u)

	assert.True(t, f.IsFile(page))
	assert.Equal(t, "microsoft.powershell.core/get-help.html", f.File(page))
	assert.Equal(t, "https://learn.microsoft.com/en-us/powershell/module/microsoft.powershell.core/get-help?view=powershell-7", f.URL(page))
}

func TestForest_RelativePathsNeverLeaveTheRoot(t *testing.T) {
	t.Parallel()

	f := dashdoc.NewForest(testBaseURI, testBaseURL)
	tree := parse(t, f, `{"items":[{"href":"../../outside/","toc_title":"Out"}]}`, dashdoc.NoNode)

	assert.Equal(t, "outside/", f.Folder(tree.Items[0]))
}

func TestForest_EntryTypeFallsBackToAncestors(t *testing.T) {
	t.Parallel()

	f := dashdoc.NewForest(testBaseURI, testBaseURL)
	tree := parse(t, f, `{"items":[
		{"toc_title":"Helper functions","children":[{"toc_title":"Adsprop.h","href":"adsprop/"}]},
		{"toc_title":"Overview","href":"./"}
	]}`, dashdoc.NoNode)

	nested := child(f, tree.Items[0], 0)
	assert.Equal(t, dashdoc.TypeFunction, f.EntryType(nested))
	assert.Equal(t, dashdoc.TypeCategory, f.EntryType(tree.Items[1]))

	sub := parse(t, f, `{"items":[{"toc_title":"Overview","href":"./"}]}`, nested)
	assert.Equal(t, dashdoc.TypeFunction, f.EntryType(sub.Items[0]), "nested documents inherit through their owner")
}

func TestForest_Walk(t *testing.T) {
	t.Parallel()

	f := dashdoc.NewForest(testBaseURI, testBaseURL)
	tree := parse(t, f, baseTocJSON, dashdoc.NoNode)

	var titles []string
	err := f.Walk(tree.ID, func(n *dashdoc.Node) error {
		titles = append(titles, n.Title)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"Touch Injection",
		"Active Directory Domain Services",
		"Overview",
		"ADsPropCheckIfWritable function",
	}, titles)
}

func TestReduce(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/adsprop/", dashdoc.Reduce("windows/win32/api", "/windows/win32/api/adsprop/"))
	assert.Equal(t, "/other/", dashdoc.Reduce("windows/win32/api", "/other/"))
	assert.Equal(t, "/x/", dashdoc.Reduce("", "/x/"))
}

func TestWriteTree(t *testing.T) {
	t.Parallel()

	t.Run("writes each file once under the prefix", func(t *testing.T) {
		t.Parallel()

		f := dashdoc.NewForest(testBaseURI, testBaseURL)
		tree := parse(t, f, `{"items":[
			{"href":"a/","toc_title":"A","children":[{"toc_title":"Group"}]},
			{"href":"a/page","toc_title":"Page"}
		]}`, dashdoc.NoNode)
		for i := range f.Len() {
			f.Node(dashdoc.NodeID(i)).Content = []byte("body")
		}

		written := map[string]int{}
		w := &mock.EntryWriter{
			WriteEntryFn: func(_ context.Context, name string, data []byte) error {
				written[name]++
				assert.Equal(t, "body", string(data))
				return nil
			},
		}

		err := dashdoc.WriteTree(context.Background(), w, "Contents/Resources/Documents", f, tree.ID)

		require.NoError(t, err)
		assert.Equal(t, map[string]int{
			"Contents/Resources/Documents/a/index.html": 1,
			"Contents/Resources/Documents/a/page.html":  1,
		}, written)
	})

	t.Run("fails on nodes without content", func(t *testing.T) {
		t.Parallel()

		f := dashdoc.NewForest(testBaseURI, testBaseURL)
		tree := parse(t, f, `{"items":[{"href":"a/","toc_title":"A"}]}`, dashdoc.NoNode)

		err := dashdoc.WriteTree(context.Background(), &mock.EntryWriter{}, "", f, tree.ID)

		assert.Equal(t, dashdoc.ESTATE, dashdoc.ErrorCode(err))
	})
}

func TestIndexTree(t *testing.T) {
	t.Parallel()

	f := dashdoc.NewForest(testBaseURI, testBaseURL)
	tree := parse(t, f, baseTocJSON, dashdoc.NoNode)

	var entries []dashdoc.IndexEntry
	store := &mock.IndexStore{
		InsertEntryFn: func(_ context.Context, e *dashdoc.IndexEntry) (bool, error) {
			entries = append(entries, *e)
			return len(entries) != 2, nil
		},
	}

	n, err := dashdoc.IndexTree(context.Background(), store, f, tree.ID)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, entries, 4)
	assert.Equal(t, dashdoc.IndexEntry{
		Name: "ADsPropCheckIfWritable function",
		Type: dashdoc.TypeFunction,
		Path: "adsprop/nf-adsprop-adspropcheckifwritable.html",
	}, entries[3])
	assert.Equal(t, dashdoc.TypeCategory, entries[0].Type)
}
