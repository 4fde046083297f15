package dashdoc

import (
	"encoding/json"
	"path"
	"strings"
)

// NodeID identifies a node within a Forest.
type NodeID int

// NoNode is the parent of top-level items of the root TOC tree.
const NoNode NodeID = -1

// TreeID identifies a parsed TOC document within a Forest.
type TreeID int

// NodeKind distinguishes pages from pages with children.
type NodeKind int

const (
	// LeafNode has no children key in its TOC document.
	LeafNode NodeKind = iota
	// BranchNode carries a children list, possibly empty.
	BranchNode
)

// Node is one entry of a TOC document.
type Node struct {
	ID       NodeID
	Kind     NodeKind
	Title    string
	Href     string
	Parent   NodeID
	Tree     TreeID
	Children []NodeID

	// Content holds the page HTML once fetched or loaded from a previous run.
	Content []byte
}

// HasContent reports whether the node's page has been fetched or loaded.
func (n *Node) HasContent() bool { return n.Content != nil }

// Metadata is the optional metadata block of a TOC document.
type Metadata struct {
	Author      string
	Product     string
	TitleSuffix string
	SearchScope []string
}

// Tree is one parsed TOC document. The root document has no owner; nested
// documents are owned by the node whose TOC URL produced them.
type Tree struct {
	ID       TreeID
	URL      string
	Owner    NodeID
	Items    []NodeID
	Metadata *Metadata
}

// Forest stores every node and tree discovered while crawling one doc
// source. Nodes refer to their parents by id, so ownership chains are
// walked iteratively and never form reference cycles.
type Forest struct {
	baseURI string
	baseURL string
	nodes   []*Node
	trees   []*Tree
}

// NewForest returns an empty forest resolving paths against baseURI and
// URLs against baseURL.
func NewForest(baseURI, baseURL string) *Forest {
	return &Forest{
		baseURI: strings.Trim(baseURI, "/"),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// NewSourceForest returns an empty forest bound to the source's base path.
func NewSourceForest(src *DocSource) *Forest {
	return NewForest(src.BaseURI, src.BaseURL())
}

type tocDocument struct {
	Items    []tocItem    `json:"items"`
	Metadata *tocMetadata `json:"metadata"`
}

type tocItem struct {
	TocTitle string     `json:"toc_title"`
	Title    string     `json:"title"`
	Href     string     `json:"href"`
	Children *[]tocItem `json:"children"`
}

type tocMetadata struct {
	Author      string   `json:"ms.author"`
	Product     string   `json:"ms.prod"`
	TitleSuffix string   `json:"titleSuffix"`
	SearchScope []string `json:"searchScope"`
}

// Parse decodes a TOC document and adds it to the forest as a new tree
// owned by owner. Nothing is added when the document is malformed.
func (f *Forest) Parse(data []byte, owner NodeID, tocURL string) (TreeID, error) {
	if owner != NoNode && f.Node(owner) == nil {
		return 0, Errorf(EINVALID, "unknown owner node %d for %s", owner, tocURL)
	}

	var doc tocDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, Errorf(EMALFORMED, "decode toc %s: %s", tocURL, err)
	}
	if err := validateItems(doc.Items, tocURL); err != nil {
		return 0, err
	}

	tree := &Tree{ID: TreeID(len(f.trees)), URL: tocURL, Owner: owner}
	if doc.Metadata != nil {
		tree.Metadata = &Metadata{
			Author:      doc.Metadata.Author,
			Product:     doc.Metadata.Product,
			TitleSuffix: doc.Metadata.TitleSuffix,
			SearchScope: doc.Metadata.SearchScope,
		}
	}
	f.trees = append(f.trees, tree)
	tree.Items = f.addItems(doc.Items, NoNode, tree.ID)
	return tree.ID, nil
}

func validateItems(items []tocItem, tocURL string) error {
	for _, item := range items {
		if item.TocTitle == "" && item.Title == "" {
			return Errorf(EMALFORMED, "toc %s: item with href %q has no title", tocURL, item.Href)
		}
		if item.Children != nil {
			if err := validateItems(*item.Children, tocURL); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Forest) addItems(items []tocItem, parent NodeID, tree TreeID) []NodeID {
	ids := make([]NodeID, 0, len(items))
	for _, item := range items {
		n := &Node{
			ID:     NodeID(len(f.nodes)),
			Kind:   LeafNode,
			Title:  item.TocTitle,
			Href:   item.Href,
			Parent: parent,
			Tree:   tree,
		}
		if n.Title == "" {
			n.Title = item.Title
		}
		f.nodes = append(f.nodes, n)
		if item.Children != nil {
			n.Kind = BranchNode
			n.Children = f.addItems(*item.Children, n.ID, tree)
		}
		ids = append(ids, n.ID)
	}
	return ids
}

// Node returns the node with the given id, or nil.
func (f *Forest) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(f.nodes) {
		return nil
	}
	return f.nodes[id]
}

// Tree returns the tree with the given id, or nil.
func (f *Forest) Tree(id TreeID) *Tree {
	if id < 0 || int(id) >= len(f.trees) {
		return nil
	}
	return f.trees[id]
}

// Trees returns all trees in parse order.
func (f *Forest) Trees() []*Tree { return f.trees }

// Len returns the number of nodes in the forest.
func (f *Forest) Len() int { return len(f.nodes) }

// Owner returns the node that id resolves relative paths against: its
// parent within the same document, or else the node owning its document.
// NoNode means the doc source itself.
func (f *Forest) Owner(id NodeID) NodeID {
	n := f.Node(id)
	if n == nil {
		return NoNode
	}
	if n.Parent != NoNode {
		return n.Parent
	}
	return f.trees[n.Tree].Owner
}

// IsFile reports whether the node names a page rather than a directory.
func (f *Forest) IsFile(id NodeID) bool {
	n := f.Node(id)
	if n == nil {
		return false
	}
	p, _ := splitHref(n.Href)
	return p != "" && !strings.HasSuffix(p, "/")
}

// Folder returns the node's canonical folder relative to the documents
// root. The result is empty for the root or ends in a slash.
func (f *Forest) Folder(id NodeID) string {
	var chain []NodeID
	for cur := id; cur != NoNode; cur = f.Owner(cur) {
		if f.Node(cur) == nil {
			break
		}
		chain = append(chain, cur)
	}
	folder := ""
	for i := len(chain) - 1; i >= 0; i-- {
		folder = f.resolveFolder(chain[i], folder)
	}
	return folder
}

func (f *Forest) resolveFolder(id NodeID, parent string) string {
	href, _ := splitHref(f.nodes[id].Href)
	if href == "" {
		return parent
	}
	dir := href
	if f.IsFile(id) {
		dir = href[:strings.LastIndex(href, "/")+1]
	}

	if strings.HasPrefix(dir, "/") {
		return asFolder(path.Clean(strings.TrimPrefix(Reduce(f.baseURI, dir), "/")))
	}

	joined := path.Join(parent, dir)
	if joined == "." || joined == "" {
		return parent
	}
	for joined == ".." || strings.HasPrefix(joined, "../") {
		joined = strings.TrimPrefix(strings.TrimPrefix(joined, ".."), "/")
	}
	return asFolder(joined)
}

func asFolder(p string) string {
	if p == "" || p == "." || p == "/" {
		return ""
	}
	return strings.TrimSuffix(p, "/") + "/"
}

// Reduce drops everything in p up to and including the first occurrence
// of root. It returns p unchanged when root does not occur.
func Reduce(root, p string) string {
	if root == "" {
		return p
	}
	if i := strings.Index(p, root); i >= 0 {
		return p[i+len(root):]
	}
	return p
}

// splitHref separates an href into its path and its query, dropping any
// fragment. The query keeps its leading question mark.
func splitHref(href string) (p, query string) {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if i := strings.IndexByte(href, '?'); i >= 0 {
		return href[:i], href[i:]
	}
	return href, ""
}

// File returns the path of the node's page relative to the documents root.
func (f *Forest) File(id NodeID) string {
	folder := f.Folder(id)
	if !f.IsFile(id) {
		return folder + "index.html"
	}
	href, _ := splitHref(f.nodes[id].Href)
	return folder + path.Base(href) + ".html"
}

// URL returns the canonical URL the node's page is fetched from.
func (f *Forest) URL(id NodeID) string {
	return f.pageURL(id) + f.query(id)
}

func (f *Forest) pageURL(id NodeID) string {
	u := f.baseURL + "/" + f.Folder(id)
	if f.IsFile(id) {
		href, _ := splitHref(f.nodes[id].Href)
		u += path.Base(href)
	}
	return u
}

func (f *Forest) query(id NodeID) string {
	n := f.Node(id)
	if n == nil {
		return ""
	}
	_, q := splitHref(n.Href)
	return q
}

// TocURL returns the URL of the nested TOC document describing the node's
// children. The bool result is false for pages and for nodes whose
// children were already listed by their own document.
func (f *Forest) TocURL(id NodeID) (string, bool) {
	n := f.Node(id)
	if n == nil || f.IsFile(id) || len(n.Children) > 0 {
		return "", false
	}
	return strings.TrimSuffix(f.pageURL(id), "/") + "/toc.json" + f.query(id), true
}

// TreeFolder returns the folder of the node owning the tree, which is the
// doc source's base folder for the root tree.
func (f *Forest) TreeFolder(id TreeID) string {
	t := f.Tree(id)
	if t == nil || t.Owner == NoNode {
		return ""
	}
	return f.Folder(t.Owner)
}

// EntryType classifies the node by its title. Nodes whose title names no
// entry type inherit the type of the nearest classifiable ancestor, and
// are categories otherwise.
func (f *Forest) EntryType(id NodeID) EntryType {
	for cur := id; cur != NoNode; cur = f.Owner(cur) {
		n := f.Node(cur)
		if n == nil {
			break
		}
		if t, ok := ClassifyTitle(n.Title); ok {
			return t
		}
	}
	return TypeCategory
}

// Walk calls fn for every node of the tree in depth-first pre-order and
// stops at the first error.
func (f *Forest) Walk(tree TreeID, fn func(*Node) error) error {
	t := f.Tree(tree)
	if t == nil {
		return Errorf(EINVALID, "unknown tree %d", tree)
	}
	return f.walk(t.Items, fn)
}

func (f *Forest) walk(ids []NodeID, fn func(*Node) error) error {
	for _, id := range ids {
		n := f.nodes[id]
		if err := fn(n); err != nil {
			return err
		}
		if err := f.walk(n.Children, fn); err != nil {
			return err
		}
	}
	return nil
}
