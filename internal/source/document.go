package source

import "github.com/lawnchairsociety/rosterforge/server/internal/roster"

// Info is roster-level metadata read from an upload.
type Info struct {
	Name       string
	Game       string
	DataSet    string
	Edition    string
	Version    string
	App        string
	AppVersion string
	Hash       string
}

// Document is the result of decoding an upload: metadata, document-level
// errors and the root of the asset tree.
type Document struct {
	Info   Info
	Meta   *roster.OrderedMap[any]
	Errors []string
	Root   *Node
}

// Loader decodes one upload format into a Document.
type Loader interface {
	Load(data []byte) (*Document, error)
}
