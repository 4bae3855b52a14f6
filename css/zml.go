package css

import "strings"

// Cause enumerates the ways a zml parse can fail. Unlike the CSS parser,
// the zml parser never recovers from a syntax error: it returns a
// ParseError carrying one of these causes and the Location it occurred at.
type Cause int

const (
	CauseNone Cause = iota
	CauseElementWithNoFeatures
	CauseEmptyWithOtherFeatures
	CauseMultipleTypes
	CauseInlineStyleBlockBeforeFeatures
	CauseMultipleInlineStyleBlocks
	CauseMissingSpaceBetweenFeatures
	CauseElementDepthLimitReached
	CauseBlockDepthLimitReached
	CauseEmptyDeclarationValue
	CauseEmptyInlineStyleBlock
	CauseExpectedColon
	CauseExpectedIdentifier
	CauseInvalidFeature
	CauseInvalidToken
	CauseUnexpectedEOF
)

func (c Cause) String() string {
	switch c {
	case CauseElementWithNoFeatures:
		return "element_with_no_features"
	case CauseEmptyWithOtherFeatures:
		return "empty_with_other_features"
	case CauseMultipleTypes:
		return "multiple_types"
	case CauseInlineStyleBlockBeforeFeatures:
		return "inline_style_block_before_features"
	case CauseMultipleInlineStyleBlocks:
		return "multiple_inline_style_blocks"
	case CauseMissingSpaceBetweenFeatures:
		return "missing_space_between_features"
	case CauseElementDepthLimitReached:
		return "element_depth_limit_reached"
	case CauseBlockDepthLimitReached:
		return "block_depth_limit_reached"
	case CauseEmptyDeclarationValue:
		return "empty_declaration_value"
	case CauseEmptyInlineStyleBlock:
		return "empty_inline_style_block"
	case CauseExpectedColon:
		return "expected_colon"
	case CauseExpectedIdentifier:
		return "expected_identifier"
	case CauseInvalidFeature:
		return "invalid_feature"
	case CauseInvalidToken:
		return "invalid_token"
	case CauseUnexpectedEOF:
		return "unexpected_eof"
	default:
		return "none"
	}
}

// ParseError is returned by ParseZML. It is fatal: zml parsing never
// recovers, because zml source is hand-authored for this tool and a
// precise failure location is more useful than a best-effort parse.
type ParseError struct {
	Cause    Cause
	Location Location
}

func (e *ParseError) Error() string {
	return "zml parse error: " + e.Cause.String()
}

const (
	maxElementDepth = 1000
	maxBlockDepth   = 32
)

// ParseZML parses source as a zml document: a tree of elements with
// type/class/id/attribute features and optional inline CSS style blocks,
// reusing the CSS tokenizer. The grammar is given piece by piece in the doc
// comments of parseElement, parseFeatures, parseAttributeFeature and
// parseInlineStyles.
func ParseZML(source SourceCode) (*Ast, error) {
	p, err := newParser(source, NewAst(0))
	if err != nil {
		return nil, err
	}
	z := &zmlParser{parser: p}
	rootIdx, err := z.ast.AddComplex(TagZMLDocument, z.cur.Location)
	if err != nil {
		return nil, err
	}
	if err := z.skipWhitespaceAndComments(); err != nil {
		return nil, err
	}
	for z.cur.Tag != TagEOF {
		if err := z.parseElement(0); err != nil {
			return nil, err
		}
		if err := z.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}
	}
	z.ast.FinishComplex(rootIdx)
	return z.ast, nil
}

type zmlParser struct {
	*parser
}

func (z *zmlParser) fail(cause Cause) error {
	return &ParseError{Cause: cause, Location: z.cur.Location}
}

func isFeatureStart(tok Token) bool {
	switch tok.Tag {
	case TagIdent, TagHashID, TagHashUnrestricted, TagLeftSquare:
		return true
	case TagDelim:
		return tok.Delim == '.'
	default:
		return false
	}
}

// parseElement implements `element = features ( "(" inline_styles ")" )?
// "{" element* "}"`.
func (z *zmlParser) parseElement(depth int) error {
	if depth >= maxElementDepth {
		return z.fail(CauseElementDepthLimitReached)
	}

	loc := z.cur.Location
	elemIdx, err := z.ast.AddComplex(TagZMLElement, loc)
	if err != nil {
		return err
	}

	if z.cur.Tag == TagLeftCurly {
		return z.fail(CauseElementWithNoFeatures)
	}
	if z.cur.Tag == TagLeftParen {
		return z.fail(CauseInlineStyleBlockBeforeFeatures)
	}

	if err := z.parseFeatures(); err != nil {
		return err
	}

	sawStyles := false
	if z.cur.Tag == TagLeftParen {
		if err := z.parseInlineStyles(); err != nil {
			return err
		}
		sawStyles = true
		if z.cur.Tag == TagLeftParen {
			return z.fail(CauseMultipleInlineStyleBlocks)
		}
	}
	_ = sawStyles

	if err := z.skipWhitespaceAndComments(); err != nil {
		return err
	}

	switch z.cur.Tag {
	case TagEOF:
		return z.fail(CauseUnexpectedEOF)
	case TagLeftCurly:
		// fallthrough below
	case TagLeftParen:
		if sawStyles {
			return z.fail(CauseMultipleInlineStyleBlocks)
		}
		return z.fail(CauseInvalidToken)
	default:
		return z.fail(CauseInvalidToken)
	}

	childrenIdx, err := z.ast.AddComplex(TagZMLChildren, z.cur.Location)
	if err != nil {
		return err
	}
	if err := z.advance(); err != nil { // consume '{'
		return err
	}
	if err := z.skipWhitespaceAndComments(); err != nil {
		return err
	}
	for z.cur.Tag != TagRightCurly {
		if z.cur.Tag == TagEOF {
			return z.fail(CauseUnexpectedEOF)
		}
		if err := z.parseElement(depth + 1); err != nil {
			return err
		}
		if err := z.skipWhitespaceAndComments(); err != nil {
			return err
		}
	}
	if err := z.advance(); err != nil { // consume '}'
		return err
	}
	z.ast.FinishComplex(childrenIdx)
	z.ast.FinishComplex(elemIdx)
	return nil
}

// parseFeatures implements `features = "*" | feature (<whitespace>
// feature)*`.
func (z *zmlParser) parseFeatures() error {
	featLoc := z.cur.Location
	featIdx, err := z.ast.AddComplex(TagZMLFeatures, featLoc)
	if err != nil {
		return err
	}

	if z.cur.Tag == TagDelim && z.cur.Delim == '*' {
		emptyLoc := z.cur.Location
		if err := z.advance(); err != nil {
			return err
		}
		if _, err := z.ast.AddToken(TagZMLEmpty, emptyLoc, Extra{}); err != nil {
			return err
		}
		hadGap, err := z.skipFeatureGap()
		if err != nil {
			return err
		}
		_ = hadGap
		if isFeatureStart(z.cur) {
			return z.fail(CauseEmptyWithOtherFeatures)
		}
		z.ast.FinishComplex(featIdx)
		return nil
	}

	typeCount := 0
	for {
		if !isFeatureStart(z.cur) {
			return z.fail(CauseInvalidFeature)
		}
		isType, err := z.parseOneFeature()
		if err != nil {
			return err
		}
		if isType {
			typeCount++
			if typeCount > 1 {
				return z.fail(CauseMultipleTypes)
			}
		}
		hadGap, err := z.skipFeatureGap()
		if err != nil {
			return err
		}
		if !isFeatureStart(z.cur) {
			break
		}
		if !hadGap {
			return z.fail(CauseMissingSpaceBetweenFeatures)
		}
	}
	z.ast.FinishComplex(featIdx)
	return nil
}

// skipFeatureGap consumes a run of whitespace/comments (the separator
// between two features) and reports whether any was actually present.
func (z *zmlParser) skipFeatureGap() (bool, error) {
	saw := false
	for z.cur.Tag == TagWhitespace || z.cur.Tag == TagComments {
		saw = true
		if err := z.advance(); err != nil {
			return false, err
		}
	}
	return saw, nil
}

// parseOneFeature consumes a single type/class/id/attribute feature and
// reports whether it was a type (bare ident) feature.
func (z *zmlParser) parseOneFeature() (bool, error) {
	switch {
	case z.cur.Tag == TagIdent:
		loc := z.cur.Location
		if err := z.advance(); err != nil {
			return false, err
		}
		_, err := z.ast.AddToken(TagZMLType, loc, Extra{})
		return true, err
	case z.cur.Tag == TagHashID || z.cur.Tag == TagHashUnrestricted:
		loc := z.cur.Location
		if err := z.advance(); err != nil {
			return false, err
		}
		_, err := z.ast.AddToken(TagZMLID, loc, Extra{})
		return false, err
	case z.cur.Tag == TagDelim && z.cur.Delim == '.':
		loc := z.cur.Location
		if err := z.advance(); err != nil {
			return false, err
		}
		if z.cur.Tag != TagIdent {
			return false, z.fail(CauseExpectedIdentifier)
		}
		if err := z.advance(); err != nil {
			return false, err
		}
		_, err := z.ast.AddToken(TagZMLClass, loc, Extra{})
		return false, err
	case z.cur.Tag == TagLeftSquare:
		return false, z.parseAttributeFeature()
	default:
		return false, z.fail(CauseInvalidFeature)
	}
}

// parseAttributeFeature implements `"[" ident ("=" (ident|string))? "]"`.
func (z *zmlParser) parseAttributeFeature() error {
	loc := z.cur.Location
	if err := z.advance(); err != nil { // '['
		return err
	}
	if z.cur.Tag != TagIdent {
		return z.fail(CauseExpectedIdentifier)
	}
	if err := z.advance(); err != nil {
		return err
	}
	if z.cur.Tag == TagDelim && z.cur.Delim == '=' {
		if err := z.advance(); err != nil {
			return err
		}
		if z.cur.Tag != TagIdent && z.cur.Tag != TagString {
			return z.fail(CauseInvalidToken)
		}
		if err := z.advance(); err != nil {
			return err
		}
	}
	if z.cur.Tag != TagRightSquare {
		return z.fail(CauseInvalidToken)
	}
	if err := z.advance(); err != nil {
		return err
	}
	_, err := z.ast.AddToken(TagZMLAttribute, loc, Extra{})
	return err
}

// parseInlineStyles implements `"(" inline_styles ")"` where inline_styles
// = declaration (";" declaration)*, reusing the CSS declaration algorithm's
// !important ring-buffer/back-link behavior but failing fast instead of
// recovering.
func (z *zmlParser) parseInlineStyles() error {
	loc := z.cur.Location
	stylesIdx, err := z.ast.AddComplex(TagZMLStyles, loc)
	if err != nil {
		return err
	}
	if err := z.advance(); err != nil { // '('
		return err
	}
	if err := z.skipWhitespaceAndComments(); err != nil {
		return err
	}
	if z.cur.Tag == TagRightParen {
		return z.fail(CauseEmptyInlineStyleBlock)
	}

	var lastDecl uint32
	for {
		if z.cur.Tag != TagIdent {
			return z.fail(CauseExpectedIdentifier)
		}
		lastDecl, err = z.parseZMLDeclaration(lastDecl)
		if err != nil {
			return err
		}
		if err := z.skipWhitespaceAndComments(); err != nil {
			return err
		}
		if z.cur.Tag == TagSemicolon {
			if err := z.advance(); err != nil {
				return err
			}
			if err := z.skipWhitespaceAndComments(); err != nil {
				return err
			}
			if z.cur.Tag == TagRightParen {
				break
			}
			continue
		}
		break
	}
	if z.cur.Tag != TagRightParen {
		return z.fail(CauseInvalidToken)
	}
	if err := z.advance(); err != nil {
		return err
	}
	z.ast.FinishComplex(stylesIdx)
	return nil
}

// parseZMLDeclaration mirrors parser.consumeDeclaration's value-collection
// and !important detection, but terminates on ';'/')' and fails fast
// (expected_colon, empty_declaration_value) instead of recovering, and
// bounds nested-bracket depth at maxBlockDepth.
func (z *zmlParser) parseZMLDeclaration(prevLast uint32) (uint32, error) {
	nameLoc := z.cur.Location
	if err := z.advance(); err != nil {
		return 0, err
	}
	if err := z.skipWhitespaceAndComments(); err != nil {
		return 0, err
	}
	if z.cur.Tag != TagColon {
		return 0, z.fail(CauseExpectedColon)
	}
	if err := z.advance(); err != nil {
		return 0, err
	}
	if err := z.skipWhitespaceAndComments(); err != nil {
		return 0, err
	}

	declIdx, err := z.ast.AddComplex(TagDeclarationNormal, nameLoc)
	if err != nil {
		return 0, err
	}
	valueStart := uint32(z.ast.Len())

	var ring [3]uint32
	ringLen := 0
	pushRing := func(idx uint32) {
		if ringLen < 3 {
			ring[ringLen] = idx
			ringLen++
			return
		}
		ring[0], ring[1], ring[2] = ring[1], ring[2], idx
	}

	for z.cur.Tag != TagSemicolon && z.cur.Tag != TagRightParen {
		if z.cur.Tag == TagEOF {
			return 0, z.fail(CauseUnexpectedEOF)
		}
		idx, err := z.consumeBoundedComponentValue(0)
		if err != nil {
			return 0, err
		}
		if z.ast.Components[idx].Tag != TagWhitespace {
			pushRing(idx)
		}
	}

	valueEnd := uint32(z.ast.Len())
	trimEnd := valueEnd
	important := false
	if ringLen >= 2 {
		lastIdx, bangIdx := ring[ringLen-1], ring[ringLen-2]
		lastC, bangC := z.ast.Components[lastIdx], z.ast.Components[bangIdx]
		if lastC.Tag == TagIdent && bangC.Tag == TagDelim && bangC.Extra.Codepoint == '!' {
			nameTok, _, terr := z.tok.NextToken(lastC.Location)
			if terr == nil && strings.EqualFold(nameTok.Text, "important") {
				trimEnd = bangIdx
				important = true
			}
		}
	}
	for trimEnd > valueStart && z.ast.Components[trimEnd-1].Tag == TagWhitespace {
		trimEnd--
	}
	if trimEnd <= valueStart {
		return 0, z.fail(CauseEmptyDeclarationValue)
	}

	z.ast.Shrink(trimEnd)
	tag := TagDeclarationNormal
	if important {
		tag = TagDeclarationImportant
	}
	z.ast.Components[declIdx].Tag = tag
	z.ast.FinishComplex(declIdx, Extra{Index: prevLast})
	return declIdx, nil
}

// consumeBoundedComponentValue is consumeComponentValue with an explicit
// nesting-depth cap, used only by zml inline style values per the
// block_depth_limit_reached cause (§4.4).
func (z *zmlParser) consumeBoundedComponentValue(depth int) (uint32, error) {
	if depth >= maxBlockDepth {
		return 0, z.fail(CauseBlockDepthLimitReached)
	}
	switch z.cur.Tag {
	case TagFunction:
		loc := z.cur.Location
		idx, err := z.ast.AddComplex(TagFunction, loc)
		if err != nil {
			return 0, err
		}
		if err := z.advance(); err != nil {
			return 0, err
		}
		for z.cur.Tag != TagRightParen && z.cur.Tag != TagEOF {
			if _, err := z.consumeBoundedComponentValue(depth + 1); err != nil {
				return 0, err
			}
		}
		if z.cur.Tag == TagRightParen {
			if err := z.advance(); err != nil {
				return 0, err
			}
		}
		z.ast.FinishComplex(idx)
		return idx, nil
	case TagLeftCurly:
		return z.consumeBoundedBlock(TagSimpleBlockCurly, TagRightCurly, depth)
	case TagLeftSquare:
		return z.consumeBoundedBlock(TagSimpleBlockSquare, TagRightSquare, depth)
	case TagLeftParen:
		return z.consumeBoundedBlock(TagSimpleBlockParen, TagRightParen, depth)
	default:
		return z.emitCurrent()
	}
}

func (z *zmlParser) consumeBoundedBlock(containerTag, closeTag Tag, depth int) (uint32, error) {
	loc := z.cur.Location
	idx, err := z.ast.AddComplex(containerTag, loc)
	if err != nil {
		return 0, err
	}
	if err := z.advance(); err != nil {
		return 0, err
	}
	for z.cur.Tag != closeTag && z.cur.Tag != TagEOF {
		if _, err := z.consumeBoundedComponentValue(depth + 1); err != nil {
			return 0, err
		}
	}
	if z.cur.Tag == closeTag {
		if err := z.advance(); err != nil {
			return 0, err
		}
	}
	z.ast.FinishComplex(idx)
	return idx, nil
}
