package tags

import "fmt"

// SymbolKind is a normalized view of the ctags kind field.
type SymbolKind int

const (
	KindUnknown SymbolKind = iota
	KindClass
	KindInterface
	KindTrait
	KindFunction
	KindMethod
	KindConstant
	KindVariable
	KindNamespace
)

var kindNames = map[SymbolKind]string{
	KindUnknown:   "unknown",
	KindClass:     "class",
	KindInterface: "interface",
	KindTrait:     "trait",
	KindFunction:  "function",
	KindMethod:    "method",
	KindConstant:  "constant",
	KindVariable:  "variable",
	KindNamespace: "namespace",
}

// ctags emits either single-letter kinds or, with --fields=+K, long names.
// The letters are the PHP ones since that is the default language.
var ctagsKinds = map[string]SymbolKind{
	"c":         KindClass,
	"class":     KindClass,
	"i":         KindInterface,
	"interface": KindInterface,
	"t":         KindTrait,
	"trait":     KindTrait,
	"f":         KindFunction,
	"function":  KindFunction,
	"m":         KindMethod,
	"method":    KindMethod,
	"d":         KindConstant,
	"define":    KindConstant,
	"constant":  KindConstant,
	"v":         KindVariable,
	"variable":  KindVariable,
	"n":         KindNamespace,
	"namespace": KindNamespace,
}

// String returns the human-readable name of the kind.
func (k SymbolKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a raw ctags kind field to a SymbolKind.
// Returns KindUnknown if the name is not recognized.
func ParseKind(raw string) SymbolKind {
	if k, ok := ctagsKinds[raw]; ok {
		return k
	}
	return KindUnknown
}

// NormalizedKind is shorthand for ParseKind(r.Kind).
func (r Record) NormalizedKind() SymbolKind {
	return ParseKind(r.Kind)
}
