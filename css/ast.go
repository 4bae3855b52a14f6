package css

import "fmt"

// Tag identifies the kind of a Component in an Ast. Every Token variant has
// a same-named leaf tag; containers additionally group children beneath
// them, with the group's extent encoded by NextSibling.
type Tag int

const (
	TagEOF Tag = iota
	TagWhitespace
	TagComments
	TagCDO
	TagCDC
	TagColon
	TagSemicolon
	TagComma
	TagLeftParen
	TagRightParen
	TagLeftSquare
	TagRightSquare
	TagLeftCurly
	TagRightCurly

	TagIdent
	TagFunction
	TagAtKeyword
	TagHashID
	TagHashUnrestricted

	TagString
	TagBadString
	TagURL
	TagBadURL

	TagNumber
	TagInteger
	TagPercentage
	TagDimension
	TagUnit // child of TagDimension; extra.Unit holds the matched keyword

	TagDelim

	// Containers.
	TagRuleList
	TagComponentList
	TagAtRule
	TagQualifiedRule
	TagStyleBlock
	TagDeclarationNormal
	TagDeclarationImportant
	TagSimpleBlockCurly
	TagSimpleBlockSquare
	TagSimpleBlockParen

	// zml tags.
	TagZMLDocument
	TagZMLElement
	TagZMLFeatures
	TagZMLChildren
	TagZMLStyles
	TagZMLEmpty
	TagZMLType
	TagZMLClass
	TagZMLID
	TagZMLAttribute
)

// IsDeclaration reports whether tag is one of the two declaration variants.
func (t Tag) IsDeclaration() bool {
	return t == TagDeclarationNormal || t == TagDeclarationImportant
}

// Extra is the 32-bit-ish payload attached to a Component. Its
// interpretation is fixed by the Component's Tag; unused fields for a given
// tag are zero. Deliberately modeled as one flat struct carrying every
// variant's fields side by side rather than a tagged union, since Go has no
// compact sum type and the caller already has the Tag to know which field
// applies.
type Extra struct {
	Index     uint32  // qualified_rule/style_block/declaration_*: child or previous-declaration index
	Integer   int32   // integer token value
	Number    float64 // number/percentage/dimension token value
	HasValue  bool    // false means the numeric literal overflowed (null payload)
	Codepoint rune    // delim token
	Unit      Keyword // unit node, or "none" if not a known unit
	AtRule    Keyword // at_rule node, or "none" if not a recognized at-rule name
}

// Component is one record of the flat Ast. NextSibling encodes tree shape:
// for the component at index i, its children occupy [i+1, NextSibling) and
// its following sibling, if any, begins at NextSibling.
type Component struct {
	NextSibling uint32
	Tag         Tag
	Location    Location
	Extra       Extra
}

// maxAstSize is the largest number of components an Ast may hold, per the
// 32-bit index bound; exceeding it fails with ErrOverflow.
const maxAstSize = 1<<32 - 1

// ErrOverflow is returned by Ast and IdentifierSet operations that would
// exceed their fixed-size index space.
var ErrOverflow = fmt.Errorf("Overflow: index space exhausted")

// Ast is the flat, append-only component store produced by the CSS and zml
// parsers. Index 0, once parsing completes, is the root container and its
// NextSibling equals len(Components) (total coverage).
type Ast struct {
	Components []Component
}

// NewAst returns an empty Ast. capacityHint pre-sizes the backing slice; pass
// 0 for no hint.
func NewAst(capacityHint int) *Ast {
	var comps []Component
	if capacityHint > 0 {
		comps = make([]Component, 0, capacityHint)
	}
	return &Ast{Components: comps}
}

// Len returns the number of components currently in the Ast.
func (a *Ast) Len() int { return len(a.Components) }

// AddToken appends one leaf component for a single token and returns its
// index. Dimension tokens are two components (a TagDimension followed
// immediately by a TagUnit child carrying the matched unit keyword, or
// KeywordNone) and are appended with AddDimension instead.
func (a *Ast) AddToken(tag Tag, loc Location, extra Extra) (uint32, error) {
	if len(a.Components) >= maxAstSize {
		return 0, ErrOverflow
	}
	idx := uint32(len(a.Components))
	a.Components = append(a.Components, Component{
		NextSibling: idx + 1,
		Tag:         tag,
		Location:    loc,
		Extra:       extra,
	})
	return idx, nil
}

// AddDimension appends a TagDimension leaf and its TagUnit child in one step
// and returns the dimension's index.
func (a *Ast) AddDimension(loc Location, number float64, hasValue bool, unit Keyword) (uint32, error) {
	if len(a.Components) >= maxAstSize-1 {
		return 0, ErrOverflow
	}
	idx := uint32(len(a.Components))
	a.Components = append(a.Components,
		Component{
			NextSibling: idx + 2,
			Tag:         TagDimension,
			Location:    loc,
			Extra:       Extra{Number: number, HasValue: hasValue},
		},
		Component{
			NextSibling: idx + 2,
			Tag:         TagUnit,
			Location:    loc,
			Extra:       Extra{Unit: unit},
		},
	)
	return idx, nil
}

// AddComplex appends a container whose extent is not yet known. The caller
// must later call FinishComplex with the same index once all of the
// container's children have been appended.
func (a *Ast) AddComplex(tag Tag, loc Location) (uint32, error) {
	if len(a.Components) >= maxAstSize {
		return 0, ErrOverflow
	}
	idx := uint32(len(a.Components))
	a.Components = append(a.Components, Component{
		Tag:      tag,
		Location: loc,
	})
	return idx, nil
}

// FinishComplex sets a container's NextSibling to the current end of the Ast
// and, if extra is provided, installs it. Call with no extra to leave the
// zero value.
func (a *Ast) FinishComplex(index uint32, extra ...Extra) {
	a.Components[index].NextSibling = uint32(len(a.Components))
	if len(extra) > 0 {
		a.Components[index].Extra = extra[0]
	}
}

// SetExtra overwrites a component's extra payload in place, used when a
// container's final extra value (e.g. a back-link index) is only known after
// later components have already been appended.
func (a *Ast) SetExtra(index uint32, extra Extra) {
	a.Components[index].Extra = extra
}

// Shrink retracts the Ast back to index, discarding it and every component
// appended after it. Used to discard speculative containers (e.g. a
// qualified rule abandoned at EOF) without committing partial state.
func (a *Ast) Shrink(index uint32) {
	a.Components = a.Components[:index]
}

// Children returns the half-open index range [start, end) of c's direct and
// indirect descendants, i.e. [i+1, c.NextSibling).
func (a *Ast) Children(index uint32) (start, end uint32) {
	return index + 1, a.Components[index].NextSibling
}

// Walk visits index's immediate children in pre-order, skipping over each
// child's own descendants using its NextSibling.
func (a *Ast) Walk(index uint32, visit func(child uint32)) {
	start, end := a.Children(index)
	for c := start; c < end; c = a.Components[c].NextSibling {
		visit(c)
	}
}

// DeclarationChain returns the indices of every declaration reachable by
// following back-links from last, in reverse insertion order (newest
// first), terminating when it reaches index 0 with no predecessor. last
// should be a style_block's Extra.Index (0 if the block has no
// declarations, in which case the result is empty).
func (a *Ast) DeclarationChain(last uint32) []uint32 {
	if last == 0 {
		return nil
	}
	var chain []uint32
	seen := make(map[uint32]bool)
	for idx := last; ; {
		if seen[idx] {
			break // defensive: invariant 4 guarantees this can't happen
		}
		seen[idx] = true
		chain = append(chain, idx)
		prev := a.Components[idx].Extra.Index
		if prev == 0 {
			break
		}
		idx = prev
	}
	return chain
}
