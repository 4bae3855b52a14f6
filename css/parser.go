package css

import "strings"

// ParseStylesheet parses source as a CSS stylesheet: a top-level list of
// rules, per "parse a CSS stylesheet" in CSS Syntax Module Level 3. It
// never fails on malformed CSS; recoverable syntax errors are absorbed by
// discarding the offending rule or declaration, exactly as real browsers
// do. It can only fail on a UTF-8 decode error or Ast overflow.
func ParseStylesheet(source SourceCode) (*Ast, error) {
	ast := NewAst(0)
	p, err := newParser(source, ast)
	if err != nil {
		return nil, err
	}
	rootIdx, err := ast.AddComplex(TagRuleList, p.cur.Location)
	if err != nil {
		return nil, err
	}
	if err := p.consumeRuleList(true); err != nil {
		return nil, err
	}
	ast.FinishComplex(rootIdx)
	return ast, nil
}

// ParseListOfComponentValues parses source as an unstructured token stream,
// per "parse a list of component values". Used for standalone value
// grammars (e.g. a property value in isolation) that don't have
// stylesheet-level rule structure.
func ParseListOfComponentValues(source SourceCode) (*Ast, error) {
	ast := NewAst(0)
	p, err := newParser(source, ast)
	if err != nil {
		return nil, err
	}
	rootIdx, err := ast.AddComplex(TagComponentList, p.cur.Location)
	if err != nil {
		return nil, err
	}
	for p.cur.Tag != TagEOF {
		if _, err := p.consumeComponentValue(); err != nil {
			return nil, err
		}
	}
	ast.FinishComplex(rootIdx)
	return ast, nil
}

// parser is a pull-based cursor over a Tokenizer's output, implementing the
// CSS Syntax grammar as recursive descent. The grammar's "frame stack"
// (§4.3) is realized here as ordinary Go call frames: each frame kind in
// the design (list_of_rules, qualified_rule, style_block) has a
// corresponding method, and nested brackets inside a single component
// value recurse through consumeComponentValue rather than threading a
// separate explicit stack structure, since Go's goroutine stacks grow on
// demand and do not carry the fixed-stack-depth risk the frame-stack
// design exists to avoid.
type parser struct {
	tok *Tokenizer
	ast *Ast
	pos Location
	cur Token
}

func newParser(source SourceCode, ast *Ast) (*parser, error) {
	p := &parser{tok: NewTokenizer(source), ast: ast}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// advance scans the next token starting at p.pos into p.cur.
func (p *parser) advance() error {
	tok, newPos, err := p.tok.NextToken(p.pos)
	if err != nil {
		return err
	}
	p.cur = tok
	p.pos = newPos
	return nil
}

func (p *parser) skipWhitespaceAndComments() error {
	for p.cur.Tag == TagWhitespace || p.cur.Tag == TagComments {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

// emitCurrent appends p.cur as an Ast leaf and advances past it, returning
// the leaf's index. Dimension tokens produce two components (§4.2).
func (p *parser) emitCurrent() (uint32, error) {
	tok := p.cur
	var idx uint32
	var err error
	if tok.Tag == TagDimension {
		idx, err = p.ast.AddDimension(tok.Location, tok.Number, tok.HasValue, tok.UnitKind)
	} else {
		extra := Extra{}
		switch tok.Tag {
		case TagInteger:
			extra.Integer, extra.HasValue = int32(tok.Number), tok.HasValue
		case TagNumber, TagPercentage:
			extra.Number, extra.HasValue = tok.Number, tok.HasValue
		case TagDelim:
			extra.Codepoint = tok.Delim
		case TagAtKeyword:
			extra.AtRule = tok.AtRule
		}
		idx, err = p.ast.AddToken(tok.Tag, tok.Location, extra)
	}
	if err != nil {
		return 0, err
	}
	if err := p.advance(); err != nil {
		return 0, err
	}
	return idx, nil
}

// consumeRuleList implements "consume a list of rules" (§4.3.1).
func (p *parser) consumeRuleList(topLevel bool) error {
	for {
		switch p.cur.Tag {
		case TagEOF:
			return nil
		case TagWhitespace:
			if err := p.advance(); err != nil {
				return err
			}
		case TagCDO, TagCDC:
			if topLevel {
				if err := p.advance(); err != nil {
					return err
				}
				continue
			}
			if err := p.consumeQualifiedRule(true); err != nil {
				return err
			}
		case TagAtKeyword:
			if err := p.consumeAtRule(); err != nil {
				return err
			}
		default:
			if err := p.consumeQualifiedRule(true); err != nil {
				return err
			}
		}
	}
}

// consumeAtRule implements "consume an at-rule" (§4.3.1). The at-rule's
// block, if present, is always a generic simple_block_curly: this package
// does not reinterpret an at-rule's block contents (e.g. as a nested rule
// list for @media), matching §4.3.1's literal wording.
func (p *parser) consumeAtRule() error {
	loc := p.cur.Location
	atRuleKw := p.cur.AtRule
	atRuleIdx, err := p.ast.AddComplex(TagAtRule, loc)
	if err != nil {
		return err
	}
	if err := p.advance(); err != nil {
		return err
	}
	for {
		switch p.cur.Tag {
		case TagEOF:
			p.ast.FinishComplex(atRuleIdx, Extra{AtRule: atRuleKw})
			return nil
		case TagSemicolon:
			if err := p.advance(); err != nil {
				return err
			}
			p.ast.FinishComplex(atRuleIdx, Extra{AtRule: atRuleKw})
			return nil
		case TagLeftCurly:
			if _, err := p.consumeSimpleBlock(TagSimpleBlockCurly, TagRightCurly); err != nil {
				return err
			}
			p.ast.FinishComplex(atRuleIdx, Extra{AtRule: atRuleKw})
			return nil
		default:
			if _, err := p.consumeComponentValue(); err != nil {
				return err
			}
		}
	}
}

// consumeQualifiedRule implements "consume a qualified rule" (§4.3.1).
// isStyleRule controls whether the rule's block, once reached, is a
// style_block (declarations) or a generic simple_block_curly.
func (p *parser) consumeQualifiedRule(isStyleRule bool) error {
	loc := p.cur.Location
	ruleIdx, err := p.ast.AddComplex(TagQualifiedRule, loc)
	if err != nil {
		return err
	}
	for {
		switch p.cur.Tag {
		case TagEOF:
			p.ast.Shrink(ruleIdx)
			return nil
		case TagLeftCurly:
			var blockIdx uint32
			if isStyleRule {
				blockIdx, err = p.consumeStyleBlock()
			} else {
				blockIdx, err = p.consumeSimpleBlock(TagSimpleBlockCurly, TagRightCurly)
			}
			if err != nil {
				return err
			}
			p.ast.FinishComplex(ruleIdx, Extra{Index: blockIdx})
			return nil
		default:
			if _, err := p.consumeComponentValue(); err != nil {
				return err
			}
		}
	}
}

// consumeStyleBlock implements "consume a style block's contents"
// (§4.3.2). p.cur must be the opening '{'.
func (p *parser) consumeStyleBlock() (uint32, error) {
	loc := p.cur.Location
	blockIdx, err := p.ast.AddComplex(TagStyleBlock, loc)
	if err != nil {
		return 0, err
	}
	if err := p.advance(); err != nil {
		return 0, err
	}
	var lastDecl uint32
	for {
		switch p.cur.Tag {
		case TagEOF:
			p.ast.FinishComplex(blockIdx, Extra{Index: lastDecl})
			return blockIdx, nil
		case TagRightCurly:
			if err := p.advance(); err != nil {
				return 0, err
			}
			p.ast.FinishComplex(blockIdx, Extra{Index: lastDecl})
			return blockIdx, nil
		case TagWhitespace, TagSemicolon, TagComments:
			if err := p.advance(); err != nil {
				return 0, err
			}
		case TagAtKeyword:
			if err := p.consumeAtRule(); err != nil {
				return 0, err
			}
		case TagIdent:
			newLast, err := p.consumeDeclaration(lastDecl)
			if err != nil {
				return 0, err
			}
			lastDecl = newLast
		default:
			if err := p.consumeQualifiedRule(true); err != nil {
				return 0, err
			}
		}
	}
}

// consumeDeclaration implements §4.3.2's five-step declaration algorithm.
// prevLast is the style block's current last-declaration index (0 if
// none); it returns the new last-declaration index, which is prevLast
// unchanged if the declaration attempt was malformed or empty and so
// discarded.
func (p *parser) consumeDeclaration(prevLast uint32) (uint32, error) {
	nameLoc := p.cur.Location
	if err := p.advance(); err != nil { // past the property-name ident
		return 0, err
	}
	if err := p.skipWhitespaceAndComments(); err != nil {
		return 0, err
	}
	if p.cur.Tag != TagColon {
		if err := p.seekDeclarationRecovery(); err != nil {
			return 0, err
		}
		return prevLast, nil
	}
	if err := p.advance(); err != nil { // past ':'
		return 0, err
	}
	if err := p.skipWhitespaceAndComments(); err != nil {
		return 0, err
	}

	declIdx, err := p.ast.AddComplex(TagDeclarationNormal, nameLoc)
	if err != nil {
		return 0, err
	}
	valueStart := uint32(p.ast.Len())

	// A 3-slot ring buffer over the last three non-whitespace value
	// components, maintained live during consumption rather than by
	// re-scanning the collected value afterward (§9).
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

consumeValue:
	for {
		switch p.cur.Tag {
		case TagEOF, TagRightCurly:
			break consumeValue
		case TagSemicolon:
			if err := p.advance(); err != nil {
				return 0, err
			}
			break consumeValue
		default:
			idx, err := p.consumeComponentValue()
			if err != nil {
				return 0, err
			}
			if p.ast.Components[idx].Tag != TagWhitespace {
				pushRing(idx)
			}
		}
	}

	valueEnd := uint32(p.ast.Len())
	trimEnd := valueEnd
	important := false
	if ringLen >= 2 {
		lastIdx, bangIdx := ring[ringLen-1], ring[ringLen-2]
		lastC, bangC := p.ast.Components[lastIdx], p.ast.Components[bangIdx]
		if lastC.Tag == TagIdent && bangC.Tag == TagDelim && bangC.Extra.Codepoint == '!' {
			nameTok, _, terr := p.tok.NextToken(lastC.Location)
			if terr == nil && strings.EqualFold(nameTok.Text, "important") {
				trimEnd = bangIdx
				important = true
			}
		}
	}
	for trimEnd > valueStart && p.ast.Components[trimEnd-1].Tag == TagWhitespace {
		trimEnd--
	}
	if trimEnd <= valueStart {
		p.ast.Shrink(declIdx)
		return prevLast, nil
	}

	p.ast.Shrink(trimEnd)
	tag := TagDeclarationNormal
	if important {
		tag = TagDeclarationImportant
	}
	p.ast.Components[declIdx].Tag = tag
	p.ast.FinishComplex(declIdx, Extra{Index: prevLast})
	return declIdx, nil
}

// seekDeclarationRecovery skips forward past a malformed declaration
// attempt to the next unnested ';'/'}'/EOF, matching nested brackets along
// the way so an unnested terminator inside a function or block is not
// mistaken for the declaration's end.
func (p *parser) seekDeclarationRecovery() error {
	depth := 0
	for {
		switch p.cur.Tag {
		case TagEOF:
			return nil
		case TagRightCurly:
			if depth == 0 {
				return nil
			}
			depth--
			if err := p.advance(); err != nil {
				return err
			}
		case TagSemicolon:
			if depth == 0 {
				return p.advance()
			}
			if err := p.advance(); err != nil {
				return err
			}
		case TagLeftCurly, TagLeftSquare, TagLeftParen, TagFunction:
			depth++
			if err := p.advance(); err != nil {
				return err
			}
		case TagRightSquare, TagRightParen:
			if depth > 0 {
				depth--
			}
			if err := p.advance(); err != nil {
				return err
			}
		default:
			if err := p.advance(); err != nil {
				return err
			}
		}
	}
}

// consumeComponentValue implements "consume a component value" (§4.3.3): a
// single leaf token, or a nested function/simple-block. Nested brackets
// recurse rather than growing an explicit local stack structure; see the
// parser doc comment.
func (p *parser) consumeComponentValue() (uint32, error) {
	switch p.cur.Tag {
	case TagFunction:
		return p.consumeFunction()
	case TagLeftCurly:
		return p.consumeSimpleBlock(TagSimpleBlockCurly, TagRightCurly)
	case TagLeftSquare:
		return p.consumeSimpleBlock(TagSimpleBlockSquare, TagRightSquare)
	case TagLeftParen:
		return p.consumeSimpleBlock(TagSimpleBlockParen, TagRightParen)
	default:
		return p.emitCurrent()
	}
}

func (p *parser) consumeFunction() (uint32, error) {
	loc := p.cur.Location
	idx, err := p.ast.AddComplex(TagFunction, loc)
	if err != nil {
		return 0, err
	}
	if err := p.advance(); err != nil {
		return 0, err
	}
	for p.cur.Tag != TagRightParen && p.cur.Tag != TagEOF {
		if _, err := p.consumeComponentValue(); err != nil {
			return 0, err
		}
	}
	if p.cur.Tag == TagRightParen {
		if err := p.advance(); err != nil {
			return 0, err
		}
	}
	p.ast.FinishComplex(idx)
	return idx, nil
}

// consumeSimpleBlock consumes a bracketed run starting at p.cur (which must
// be the opening bracket token) up to and including its matching closer,
// or EOF. A mismatched closer inside does not close the block: it is
// emitted as a leaf among the block's children, matching the
// bracket-mismatch testable property.
func (p *parser) consumeSimpleBlock(containerTag, closeTag Tag) (uint32, error) {
	loc := p.cur.Location
	idx, err := p.ast.AddComplex(containerTag, loc)
	if err != nil {
		return 0, err
	}
	if err := p.advance(); err != nil {
		return 0, err
	}
	for p.cur.Tag != closeTag && p.cur.Tag != TagEOF {
		if _, err := p.consumeComponentValue(); err != nil {
			return 0, err
		}
	}
	if p.cur.Tag == closeTag {
		if err := p.advance(); err != nil {
			return 0, err
		}
	}
	p.ast.FinishComplex(idx)
	return idx, nil
}
