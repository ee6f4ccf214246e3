package models

// NodeKind discriminates the two kinds of entries found in a bookmark export file.
type NodeKind int

const (
	NodeFolder NodeKind = iota
	NodeBookmark
)

func (k NodeKind) String() string {
	switch k {
	case NodeFolder:
		return "folder"
	case NodeBookmark:
		return "bookmark"
	default:
		return ""
	}
}

// TreeNode is the transient parser output for a single entry of a bookmark export file.
//
// TempID is process-local and never persisted; ParentTempID is empty for root-level nodes and
// otherwise names the TempID of the enclosing folder. URL is set only for bookmark nodes.
type TreeNode struct {
	Kind         NodeKind
	TempID       string
	ParentTempID string
	Title        string
	URL          string
}

// Folders returns the folder nodes of a parsed batch in document order.
func Folders(nodes []TreeNode) []TreeNode {
	var out []TreeNode
	for _, n := range nodes {
		if n.Kind == NodeFolder {
			out = append(out, n)
		}
	}
	return out
}

// Bookmarks returns the bookmark nodes of a parsed batch in document order.
func Bookmarks(nodes []TreeNode) []TreeNode {
	var out []TreeNode
	for _, n := range nodes {
		if n.Kind == NodeBookmark {
			out = append(out, n)
		}
	}
	return out
}
