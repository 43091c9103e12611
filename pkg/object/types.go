package object

import "fmt"

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

const (
	// Tree mode constants compatible with Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
	TreeModeSymlink    = "120000"
	TreeModeGitlink    = "160000"
)

// ParseObjectType maps a kind tag to its ObjectType.
func ParseObjectType(s string) (ObjectType, error) {
	switch t := ObjectType(s); t {
	case TypeBlob, TypeTree, TypeCommit, TypeTag:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownObjectKind, s)
	}
}

// Object is one of *Blob, *Tree, *Commit or *Tag. The set is closed.
type Object interface {
	Type() ObjectType
	sealed()
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Mode   string // 5 or 6 octal digits, e.g. 100644 or 40000
	Path   string // single path component
	Target Hash
}

// IsDir reports whether the entry points at a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode == TreeModeDir || e.Mode == "0"+TreeModeDir
}

// Tree holds an ordered list of entries. The order is serialized as given.
type Tree struct {
	Entries []TreeEntry
}

// Commit is a KVLM-encoded commit.
type Commit struct {
	KVLM
}

// Tag is a KVLM-encoded annotated tag.
type Tag struct {
	KVLM
}

func (*Blob) Type() ObjectType   { return TypeBlob }
func (*Tree) Type() ObjectType   { return TypeTree }
func (*Commit) Type() ObjectType { return TypeCommit }
func (*Tag) Type() ObjectType    { return TypeTag }

func (*Blob) sealed()   {}
func (*Tree) sealed()   {}
func (*Commit) sealed() {}
func (*Tag) sealed()    {}

// TreeHash returns the commit's root tree id.
func (c *Commit) TreeHash() Hash { return Hash(c.Get("tree")) }

// Parents returns the parent ids in the order they were recorded.
func (c *Commit) Parents() []Hash {
	values := c.Values("parent")
	out := make([]Hash, 0, len(values))
	for _, v := range values {
		out = append(out, Hash(v))
	}
	return out
}

func (c *Commit) Author() string    { return string(c.Get("author")) }
func (c *Commit) Committer() string { return string(c.Get("committer")) }

// Target returns the id the tag annotates (its "object" field).
func (t *Tag) Target() Hash { return Hash(t.Get("object")) }

func (t *Tag) TargetType() ObjectType { return ObjectType(t.Get("type")) }
func (t *Tag) Name() string           { return string(t.Get("tag")) }
func (t *Tag) Tagger() string         { return string(t.Get("tagger")) }
