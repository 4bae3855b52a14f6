package css

// Keyword is the enumeration of identifiers the IdentMatcher recognizes: a
// small, fixed set of at-rule names, unit names, and the literal "url".
// Matching is case-insensitive on ASCII.
type Keyword int

const (
	KeywordNone Keyword = iota

	// At-rule names.
	KeywordCharset
	KeywordImport
	KeywordMedia
	KeywordFontFace
	KeywordPage
	KeywordKeyframes
	KeywordSupports
	KeywordNamespace
	KeywordDocument
	KeywordViewport
	KeywordCounterStyle
	KeywordFontFeatureValues
	KeywordLayer

	// The url() function name, matched separately from the at-rule set.
	KeywordURL

	// Units.
	KeywordUnitPX
	KeywordUnitEM
	KeywordUnitREM
	KeywordUnitEX
	KeywordUnitCH
	KeywordUnitVW
	KeywordUnitVH
	KeywordUnitVMin
	KeywordUnitVMax
	KeywordUnitCM
	KeywordUnitMM
	KeywordUnitQ
	KeywordUnitIN
	KeywordUnitPT
	KeywordUnitPC
	KeywordUnitDeg
	KeywordUnitGrad
	KeywordUnitRad
	KeywordUnitTurn
	KeywordUnitS
	KeywordUnitMS
	KeywordUnitHz
	KeywordUnitKHz
	KeywordUnitDPI
	KeywordUnitDPCM
	KeywordUnitDPPX
	KeywordUnitFR
)

// atRuleKeywords maps at-rule names (without the leading '@') to their
// Keyword constant. Only names recognized here get a non-None at_rule extra;
// unrecognized at-rules still parse, just with extra.AtRule == KeywordNone.
var atRuleKeywords = map[string]Keyword{
	"charset":             KeywordCharset,
	"import":              KeywordImport,
	"media":               KeywordMedia,
	"font-face":           KeywordFontFace,
	"page":                KeywordPage,
	"keyframes":           KeywordKeyframes,
	"supports":            KeywordSupports,
	"namespace":           KeywordNamespace,
	"document":            KeywordDocument,
	"viewport":            KeywordViewport,
	"counter-style":       KeywordCounterStyle,
	"font-feature-values": KeywordFontFeatureValues,
	"layer":               KeywordLayer,
}

var unitKeywords = map[string]Keyword{
	"px":   KeywordUnitPX,
	"em":   KeywordUnitEM,
	"rem":  KeywordUnitREM,
	"ex":   KeywordUnitEX,
	"ch":   KeywordUnitCH,
	"vw":   KeywordUnitVW,
	"vh":   KeywordUnitVH,
	"vmin": KeywordUnitVMin,
	"vmax": KeywordUnitVMax,
	"cm":   KeywordUnitCM,
	"mm":   KeywordUnitMM,
	"q":    KeywordUnitQ,
	"in":   KeywordUnitIN,
	"pt":   KeywordUnitPT,
	"pc":   KeywordUnitPC,
	"deg":  KeywordUnitDeg,
	"grad": KeywordUnitGrad,
	"rad":  KeywordUnitRad,
	"turn": KeywordUnitTurn,
	"s":    KeywordUnitS,
	"ms":   KeywordUnitMS,
	"hz":   KeywordUnitHz,
	"khz":  KeywordUnitKHz,
	"dpi":  KeywordUnitDPI,
	"dpcm": KeywordUnitDPCM,
	"dppx": KeywordUnitDPPX,
	"fr":   KeywordUnitFR,
}

// trieNode is one node of a prefix tree keyed by lowercased ASCII byte.
// Non-ASCII bytes never appear in any keyword, so the matcher rejects them
// without consulting the trie; other bytes absent from every keyword simply
// have no child node.
type trieNode struct {
	children [128]*trieNode
	keyword  Keyword
}

// IdentMatcher is a prefix tree matching a fixed, small set of ASCII
// keywords case-insensitively. It is built at package initialization from
// the keyword maps below, not at compile time. It never allocates once
// built and is safe for concurrent read-only use.
type IdentMatcher struct {
	root *trieNode
}

func newTrie() *trieNode { return &trieNode{} }

func (n *trieNode) insert(key string, kw Keyword) {
	cur := n
	for i := 0; i < len(key); i++ {
		b := lowerASCIIByte(key[i])
		if b >= 128 {
			return
		}
		child := cur.children[b]
		if child == nil {
			child = newTrie()
			cur.children[b] = child
		}
		cur = child
	}
	cur.keyword = kw
}

func lowerASCIIByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

func buildMatcher(tables ...map[string]Keyword) *IdentMatcher {
	root := newTrie()
	for _, table := range tables {
		for key, kw := range table {
			root.insert(key, kw)
		}
	}
	return &IdentMatcher{root: root}
}

// atRuleMatcher and unitMatcher are built once at package init and shared by
// every Tokenizer/Parser: the keyword sets are fixed, so there is nothing to
// construct per call.
var (
	atRuleMatcher = buildMatcher(atRuleKeywords)
	unitMatcher   = buildMatcher(unitKeywords)
	urlMatcher    = buildMatcher(map[string]Keyword{"url": KeywordURL})
)

// Match walks an already-scanned identifier byte by byte through the trie
// and returns the matched Keyword, or KeywordNone if the identifier is not
// a member of this matcher's keyword set. The tokenizer calls it once the
// whole name has been collected, not while scanning. Non-ASCII bytes never
// match any keyword and immediately fail the lookup.
func (m *IdentMatcher) Match(ident string) Keyword {
	cur := m.root
	for i := 0; i < len(ident); i++ {
		b := ident[i]
		if b >= 128 {
			return KeywordNone
		}
		b = lowerASCIIByte(b)
		next := cur.children[b]
		if next == nil {
			return KeywordNone
		}
		cur = next
	}
	return cur.keyword
}

// MatchAtRule matches name (without the leading '@') against the at-rule
// keyword set.
func MatchAtRule(name string) Keyword { return atRuleMatcher.Match(name) }

// MatchUnit matches a dimension's unit string against the known unit set.
func MatchUnit(name string) Keyword { return unitMatcher.Match(name) }

// IsURLKeyword reports whether name is the literal keyword "url",
// case-insensitively.
func IsURLKeyword(name string) bool { return urlMatcher.Match(name) == KeywordURL }
