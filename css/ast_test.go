package css

import "testing"

func TestAstAddTokenAndChildren(t *testing.T) {
	ast := NewAst(0)
	root, err := ast.AddComplex(TagRuleList, 0)
	if err != nil {
		t.Fatalf("AddComplex: %v", err)
	}
	if _, err := ast.AddToken(TagIdent, 0, Extra{}); err != nil {
		t.Fatalf("AddToken: %v", err)
	}
	if _, err := ast.AddToken(TagColon, 0, Extra{}); err != nil {
		t.Fatalf("AddToken: %v", err)
	}
	ast.FinishComplex(root)

	start, end := ast.Children(root)
	if start != 1 || end != 3 {
		t.Fatalf("expected children range [1,3), got [%d,%d)", start, end)
	}
	if ast.Components[root].NextSibling != uint32(ast.Len()) {
		t.Fatalf("root NextSibling should cover the whole Ast (total coverage invariant)")
	}
}

func TestAstDimensionEmitsUnitChild(t *testing.T) {
	ast := NewAst(0)
	idx, err := ast.AddDimension(0, 10, true, KeywordUnitPX)
	if err != nil {
		t.Fatalf("AddDimension: %v", err)
	}
	if ast.Components[idx].Tag != TagDimension {
		t.Fatalf("expected TagDimension at idx")
	}
	if ast.Components[idx+1].Tag != TagUnit {
		t.Fatalf("expected TagUnit immediately after TagDimension")
	}
	if ast.Components[idx+1].Extra.Unit != KeywordUnitPX {
		t.Fatalf("expected unit extra KeywordUnitPX, got %v", ast.Components[idx+1].Extra.Unit)
	}
}

func TestAstShrinkDiscardsTail(t *testing.T) {
	ast := NewAst(0)
	idx, _ := ast.AddComplex(TagQualifiedRule, 0)
	ast.AddToken(TagIdent, 0, Extra{})
	ast.AddToken(TagIdent, 0, Extra{})
	ast.Shrink(idx)
	if ast.Len() != 0 {
		t.Fatalf("expected Shrink to discard back to idx, got len %d", ast.Len())
	}
}

func TestAstWalkVisitsOnlyImmediateChildren(t *testing.T) {
	ast := NewAst(0)
	outer, _ := ast.AddComplex(TagStyleBlock, 0)
	inner, _ := ast.AddComplex(TagQualifiedRule, 0)
	ast.AddToken(TagIdent, 0, Extra{}) // grandchild, nested inside inner
	ast.FinishComplex(inner)
	ast.FinishComplex(outer)

	var visited []uint32
	ast.Walk(outer, func(child uint32) { visited = append(visited, child) })
	if len(visited) != 1 || visited[0] != inner {
		t.Fatalf("expected Walk to skip over inner's own child, got %v", visited)
	}
}

func TestAstDeclarationChainFollowsBackLinks(t *testing.T) {
	ast := NewAst(0)
	// Index 0 is the "no previous declaration" sentinel, so it holds the
	// enclosing container, as it does in a parsed Ast.
	ast.AddComplex(TagStyleBlock, 0)
	d1, _ := ast.AddComplex(TagDeclarationNormal, 0)
	ast.FinishComplex(d1, Extra{Index: 0})
	d2, _ := ast.AddComplex(TagDeclarationNormal, 0)
	ast.FinishComplex(d2, Extra{Index: d1})
	d3, _ := ast.AddComplex(TagDeclarationNormal, 0)
	ast.FinishComplex(d3, Extra{Index: d2})

	chain := ast.DeclarationChain(d3)
	want := []uint32{d3, d2, d1}
	if len(chain) != len(want) {
		t.Fatalf("expected chain length %d, got %d (%v)", len(want), len(chain), chain)
	}
	for i, idx := range want {
		if chain[i] != idx {
			t.Fatalf("chain[%d]: expected %d, got %d", i, idx, chain[i])
		}
	}
}

func TestAstDeclarationChainEmptyWhenNoLast(t *testing.T) {
	ast := NewAst(0)
	if chain := ast.DeclarationChain(0); chain != nil {
		t.Fatalf("expected nil chain for last==0, got %v", chain)
	}
}
