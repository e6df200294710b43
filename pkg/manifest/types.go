package manifest

import "strings"

// Type names a manifest flavor.
type Type string

const (
	TypeSuper      Type = "super"
	TypeBoard      Type = "board"
	TypeApp        Type = "app"
	TypeMiddleware Type = "middleware"
	TypeDependency Type = "dependency"
)

// Types lists every supported manifest type in pipeline order.
func Types() []Type {
	return []Type{TypeSuper, TypeBoard, TypeApp, TypeMiddleware, TypeDependency}
}

// ParseType maps a command-line name onto a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.TrimSpace(s))
	for _, known := range Types() {
		if t == known {
			return t, nil
		}
	}
	return "", &UnknownTypeError{Type: s}
}

// elementKind describes the per-asset element of board, app and middleware manifests.
type elementKind struct {
	tag    string // entry element under the root
	uriTag string // element holding the repository URI
}

var assetKinds = map[Type]elementKind{
	TypeBoard:      {tag: "board", uriTag: "board_uri"},
	TypeApp:        {tag: "app", uriTag: "uri"},
	TypeMiddleware: {tag: "middleware", uriTag: "uri"},
}

// superLists are the manifest-reference lists of a super manifest, in processing order.
var superLists = []struct {
	list  string
	entry string
}{
	{"board-manifest-list", "board-manifest"},
	{"app-manifest-list", "app-manifest"},
	{"middleware-manifest-list", "middleware-manifest"},
}
