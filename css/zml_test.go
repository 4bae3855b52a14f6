package css

import "testing"

func parseZMLOrFatal(t *testing.T, input string) *Ast {
	t.Helper()
	ast, err := ParseZML(NewSourceCodeString(input))
	if err != nil {
		t.Fatalf("ParseZML(%q): %v", input, err)
	}
	return ast
}

func parseZMLExpectError(t *testing.T, input string) *ParseError {
	t.Helper()
	_, err := ParseZML(NewSourceCodeString(input))
	if err == nil {
		t.Fatalf("ParseZML(%q): expected an error, got none", input)
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("ParseZML(%q): expected *ParseError, got %T (%v)", input, err, err)
	}
	return pe
}

func TestZMLSimpleElement(t *testing.T) {
	ast := parseZMLOrFatal(t, "div { }")
	docKids := children(ast, 0)
	if len(docKids) != 1 {
		t.Fatalf("expected one top-level element, got %d", len(docKids))
	}
	elem := docKids[0]
	if ast.Components[elem].Tag != TagZMLElement {
		t.Fatalf("expected TagZMLElement, got %v", ast.Components[elem].Tag)
	}
	elemKids := children(ast, elem)
	if len(elemKids) != 2 {
		t.Fatalf("expected features + children, got %d nodes", len(elemKids))
	}
	if ast.Components[elemKids[0]].Tag != TagZMLFeatures {
		t.Fatalf("expected first child TagZMLFeatures, got %v", ast.Components[elemKids[0]].Tag)
	}
	if ast.Components[elemKids[1]].Tag != TagZMLChildren {
		t.Fatalf("expected second child TagZMLChildren, got %v", ast.Components[elemKids[1]].Tag)
	}
}

func TestZMLFeatureKinds(t *testing.T) {
	ast := parseZMLOrFatal(t, "div .card #main [data-x] { }")
	elem := children(ast, 0)[0]
	feats := children(ast, elem)[0]
	kidTags := tags(ast, children(ast, feats))
	want := []Tag{TagZMLType, TagZMLClass, TagZMLID, TagZMLAttribute}
	if len(kidTags) != len(want) {
		t.Fatalf("expected %v, got %v", want, kidTags)
	}
	for i := range want {
		if kidTags[i] != want[i] {
			t.Fatalf("feature %d: expected %v, got %v", i, want[i], kidTags[i])
		}
	}
}

func TestZMLWildcardFeature(t *testing.T) {
	ast := parseZMLOrFatal(t, "* { }")
	elem := children(ast, 0)[0]
	feats := children(ast, elem)[0]
	kids := children(ast, feats)
	if len(kids) != 1 || ast.Components[kids[0]].Tag != TagZMLEmpty {
		t.Fatalf("expected a single zml_empty feature, got %v", tags(ast, kids))
	}
}

func TestZMLNestedChildren(t *testing.T) {
	ast := parseZMLOrFatal(t, "div { span { } p { } }")
	elem := children(ast, 0)[0]
	childrenContainer := children(ast, elem)[1]
	nested := children(ast, childrenContainer)
	if len(nested) != 2 {
		t.Fatalf("expected 2 nested elements, got %d", len(nested))
	}
}

func TestZMLInlineStyles(t *testing.T) {
	ast := parseZMLOrFatal(t, "div (color: red; width: 10px) { }")
	elem := children(ast, 0)[0]
	kids := children(ast, elem)
	if len(kids) != 3 {
		t.Fatalf("expected features + styles + children, got %d", len(kids))
	}
	styles := kids[1]
	if ast.Components[styles].Tag != TagZMLStyles {
		t.Fatalf("expected TagZMLStyles, got %v", ast.Components[styles].Tag)
	}
	decls := children(ast, styles)
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}
	if !decls0IsNormal(ast, decls[0]) {
		t.Fatalf("expected first declaration to be normal")
	}
}

func decls0IsNormal(ast *Ast, idx uint32) bool {
	return ast.Components[idx].Tag == TagDeclarationNormal
}

func TestZMLInlineStyleImportant(t *testing.T) {
	ast := parseZMLOrFatal(t, "div (color: red !important) { }")
	elem := children(ast, 0)[0]
	styles := children(ast, elem)[1]
	decl := children(ast, styles)[0]
	if ast.Components[decl].Tag != TagDeclarationImportant {
		t.Fatalf("expected TagDeclarationImportant, got %v", ast.Components[decl].Tag)
	}
}

func TestZMLElementWithNoFeaturesFails(t *testing.T) {
	pe := parseZMLExpectError(t, "{ }")
	if pe.Cause != CauseElementWithNoFeatures {
		t.Fatalf("expected element_with_no_features, got %v", pe.Cause)
	}
}

func TestZMLEmptyCombinedWithOtherFeaturesFails(t *testing.T) {
	pe := parseZMLExpectError(t, "*.card { }")
	if pe.Cause != CauseEmptyWithOtherFeatures {
		t.Fatalf("expected empty_with_other_features, got %v", pe.Cause)
	}
}

func TestZMLMultipleTypesFails(t *testing.T) {
	pe := parseZMLExpectError(t, "div span { }")
	if pe.Cause != CauseMultipleTypes {
		t.Fatalf("expected multiple_types, got %v", pe.Cause)
	}
}

func TestZMLMissingSpaceBetweenFeaturesFails(t *testing.T) {
	pe := parseZMLExpectError(t, "#foo#bar { }")
	if pe.Cause != CauseMissingSpaceBetweenFeatures {
		t.Fatalf("expected missing_space_between_features, got %v", pe.Cause)
	}
}

func TestZMLInlineStyleBlockBeforeFeaturesFails(t *testing.T) {
	pe := parseZMLExpectError(t, "(color: red) { }")
	if pe.Cause != CauseInlineStyleBlockBeforeFeatures {
		t.Fatalf("expected inline_style_block_before_features, got %v", pe.Cause)
	}
}

func TestZMLEmptyInlineStyleBlockFails(t *testing.T) {
	pe := parseZMLExpectError(t, "div () { }")
	if pe.Cause != CauseEmptyInlineStyleBlock {
		t.Fatalf("expected empty_inline_style_block, got %v", pe.Cause)
	}
}

func TestZMLExpectedColonFails(t *testing.T) {
	pe := parseZMLExpectError(t, "div (color red) { }")
	if pe.Cause != CauseExpectedColon {
		t.Fatalf("expected expected_colon, got %v", pe.Cause)
	}
}

func TestZMLUnexpectedEOFFails(t *testing.T) {
	pe := parseZMLExpectError(t, "div {")
	if pe.Cause != CauseUnexpectedEOF {
		t.Fatalf("expected unexpected_eof, got %v", pe.Cause)
	}
}

func TestZMLElementDepthLimit(t *testing.T) {
	input := ""
	for i := 0; i < maxElementDepth+1; i++ {
		input += "div {"
	}
	for i := 0; i < maxElementDepth+1; i++ {
		input += "}"
	}
	pe := parseZMLExpectError(t, input)
	if pe.Cause != CauseElementDepthLimitReached {
		t.Fatalf("expected element_depth_limit_reached, got %v", pe.Cause)
	}
}
