package pp

import (
	"errors"
	"testing"

	"github.com/mura6/glade/token"
)

func lex(src string) *token.Stream {
	return token.Lex(src, token.DefaultOptions())
}

func TestParse_ConditionalWithTwoBranches(t *testing.T) {
	src := "#if X\n a\n#else\n b\n#endif\n"

	st, errs := Parse(lex(src))
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	if len(st.Chunks) != 1 {
		t.Fatalf("unexpected chunk count: want: %v, got: %v", 1, len(st.Chunks))
	}
	cond, ok := st.Chunks[0].(*Conditional)
	if !ok {
		t.Fatalf("unexpected chunk type: want: Conditional, got: %T", st.Chunks[0])
	}
	if len(cond.Branches) != 2 {
		t.Fatalf("unexpected branch count: want: %v, got: %v", 2, len(cond.Branches))
	}
	if cond.Branches[0].Directive.Kind != DirectiveIf {
		t.Errorf("unexpected kind of the first branch: want: %v, got: %v", DirectiveIf, cond.Branches[0].Directive.Kind)
	}
	if cond.Branches[1].Directive.Kind != DirectiveElse {
		t.Errorf("unexpected kind of the second branch: want: %v, got: %v", DirectiveElse, cond.Branches[1].Directive.Kind)
	}
	for i, text := range []string{"a", "b"} {
		br := cond.Branches[i]
		if len(br.Chunks) != 1 {
			t.Fatalf("unexpected chunk count in branch #%v: want: %v, got: %v", i, 1, len(br.Chunks))
		}
		code, ok := br.Chunks[0].(*Code)
		if !ok {
			t.Fatalf("unexpected chunk type in branch #%v: want: Code, got: %T", i, br.Chunks[0])
		}
		if len(code.Tokens) != 1 || code.Tokens[0].Text != text {
			t.Errorf("unexpected code in branch #%v: want: %q, got: %v", i, text, code.Tokens)
		}
	}
	if cond.End == nil || cond.End.Kind != DirectiveEndif {
		t.Errorf("the region must record its #endif: got: %v", cond.End)
	}
}

func TestParse_UnterminatedConditional(t *testing.T) {
	src := "#if X\n a\n"

	st, errs := Parse(lex(src))
	if len(errs) != 1 {
		t.Fatalf("unexpected diagnostic count: want: %v, got: %v (%v)", 1, len(errs), errs)
	}
	if !errors.Is(errs[0].Cause, ppErrUnterminatedConditional) {
		t.Fatalf("unexpected diagnostic: want: %v, got: %v", ppErrUnterminatedConditional, errs[0].Cause)
	}
	if errs[0].Row != 1 {
		t.Errorf("the diagnostic must point at the opener: want row: %v, got: %v", 1, errs[0].Row)
	}

	// The region keeps everything it collected.
	if len(st.Chunks) != 1 {
		t.Fatalf("unexpected chunk count: want: %v, got: %v", 1, len(st.Chunks))
	}
	cond, ok := st.Chunks[0].(*Conditional)
	if !ok {
		t.Fatalf("unexpected chunk type: want: Conditional, got: %T", st.Chunks[0])
	}
	if cond.End != nil {
		t.Errorf("an unterminated region must have no #endif: got: %v", cond.End)
	}
	if len(cond.Branches) != 1 || len(cond.Branches[0].Chunks) != 1 {
		t.Fatalf("the branch must still cover the code line: got: %v", cond.Branches)
	}
	if _, ok := cond.Branches[0].Chunks[0].(*Code); !ok {
		t.Errorf("unexpected chunk type in the branch: want: Code, got: %T", cond.Branches[0].Chunks[0])
	}
}

func TestParse_UnmatchedClosers(t *testing.T) {
	src := "#endif\n#else\na\n"

	st, errs := Parse(lex(src))
	if len(errs) != 2 {
		t.Fatalf("unexpected diagnostic count: want: %v, got: %v (%v)", 2, len(errs), errs)
	}
	for _, err := range errs {
		if !errors.Is(err.Cause, ppErrUnmatchedDirective) {
			t.Fatalf("unexpected diagnostic: want: %v, got: %v", ppErrUnmatchedDirective, err.Cause)
		}
	}

	// Unmatched closers stay in the tree as plain directive lines.
	if len(st.Chunks) != 3 {
		t.Fatalf("unexpected chunk count: want: %v, got: %v", 3, len(st.Chunks))
	}
	d0, ok := st.Chunks[0].(*Directive)
	if !ok || d0.Kind != DirectiveEndif {
		t.Errorf("unexpected chunk #0: want: #endif directive, got: %v", st.Chunks[0])
	}
	d1, ok := st.Chunks[1].(*Directive)
	if !ok || d1.Kind != DirectiveElse {
		t.Errorf("unexpected chunk #1: want: #else directive, got: %v", st.Chunks[1])
	}
	if _, ok := st.Chunks[2].(*Code); !ok {
		t.Errorf("unexpected chunk #2: want: Code, got: %T", st.Chunks[2])
	}
}

func TestParse_BranchAfterElseIsReported(t *testing.T) {
	src := "#if A\na\n#else\nb\n#elif B\nc\n#endif\n"

	st, errs := Parse(lex(src))
	if len(errs) != 1 {
		t.Fatalf("unexpected diagnostic count: want: %v, got: %v (%v)", 1, len(errs), errs)
	}
	if !errors.Is(errs[0].Cause, ppErrBranchAfterElse) {
		t.Fatalf("unexpected diagnostic: want: %v, got: %v", ppErrBranchAfterElse, errs[0].Cause)
	}
	if errs[0].Row != 5 {
		t.Errorf("unexpected diagnostic row: want: %v, got: %v", 5, errs[0].Row)
	}

	// The late branch still ends up in the tree with its chunks.
	if len(st.Chunks) != 1 {
		t.Fatalf("unexpected chunk count: want: %v, got: %v", 1, len(st.Chunks))
	}
	cond := st.Chunks[0].(*Conditional)
	if len(cond.Branches) != 3 {
		t.Fatalf("unexpected branch count: want: %v, got: %v", 3, len(cond.Branches))
	}
	if cond.Branches[2].Directive.Kind != DirectiveElif {
		t.Errorf("unexpected branch #2 directive: want: %v, got: %v", DirectiveElif, cond.Branches[2].Directive.Kind)
	}
	if len(cond.Branches[2].Chunks) != 1 {
		t.Errorf("unexpected branch #2 chunk count: want: %v, got: %v", 1, len(cond.Branches[2].Chunks))
	}
	if cond.End == nil || cond.End.Kind != DirectiveEndif {
		t.Errorf("the region must still be closed by its #endif")
	}
}

func TestParse_NestedConditionals(t *testing.T) {
	src := "#if A\n#ifdef B\nx\n#endif\n#elif C\ny\n#endif\n"

	st, errs := Parse(lex(src))
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	if len(st.Chunks) != 1 {
		t.Fatalf("unexpected chunk count: want: %v, got: %v", 1, len(st.Chunks))
	}
	outer := st.Chunks[0].(*Conditional)
	if len(outer.Branches) != 2 {
		t.Fatalf("unexpected branch count: want: %v, got: %v", 2, len(outer.Branches))
	}

	// The #ifdef nests inside the first branch, and its #endif closes
	// the inner region, not the outer one.
	if len(outer.Branches[0].Chunks) != 1 {
		t.Fatalf("unexpected chunk count in the first branch: got: %v", outer.Branches[0].Chunks)
	}
	inner, ok := outer.Branches[0].Chunks[0].(*Conditional)
	if !ok {
		t.Fatalf("unexpected chunk type in the first branch: want: Conditional, got: %T", outer.Branches[0].Chunks[0])
	}
	if inner.Branches[0].Directive.Kind != DirectiveIfdef {
		t.Errorf("unexpected kind of the inner region: want: %v, got: %v", DirectiveIfdef, inner.Branches[0].Directive.Kind)
	}
	if inner.End == nil {
		t.Errorf("the inner region must be closed")
	}
	if outer.Branches[1].Directive.Kind != DirectiveElif {
		t.Errorf("unexpected kind of the second branch: want: %v, got: %v", DirectiveElif, outer.Branches[1].Directive.Kind)
	}
	if outer.End == nil {
		t.Errorf("the outer region must be closed")
	}
}

func TestParse_DirectiveKinds(t *testing.T) {
	tests := []struct {
		src  string
		kind DirectiveKind
		text string
	}{
		{src: "#include <a.h>\n", kind: DirectiveInclude, text: "#include < a . h >"},
		{src: "#define X 1\n", kind: DirectiveDefine, text: "#define X 1"},
		{src: "#undef X\n", kind: DirectiveUndef, text: "#undef X"},
		{src: "#pragma once\n", kind: DirectivePragma, text: "#pragma once"},
		{src: "#error \"no\"\n", kind: DirectiveError, text: "#error \"no\""},
		{src: "#line 10\n", kind: DirectiveLine, text: "#line 10"},
		{src: "#frobnicate\n", kind: DirectiveUnknown, text: "#frobnicate"},
		{src: "#\n", kind: DirectiveUnknown, text: "#"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			st, errs := Parse(lex(tt.src))
			if len(errs) != 0 {
				t.Fatalf("unexpected diagnostics: %v", errs)
			}
			if len(st.Chunks) != 1 {
				t.Fatalf("unexpected chunk count: want: %v, got: %v", 1, len(st.Chunks))
			}
			d, ok := st.Chunks[0].(*Directive)
			if !ok {
				t.Fatalf("unexpected chunk type: want: Directive, got: %T", st.Chunks[0])
			}
			if d.Kind != tt.kind {
				t.Errorf("unexpected kind: want: %v, got: %v", tt.kind, d.Kind)
			}
			if d.Text() != tt.text {
				t.Errorf("unexpected text: want: %q, got: %q", tt.text, d.Text())
			}
		})
	}
}

func TestParse_HashInsideLineIsCode(t *testing.T) {
	src := "a # b\n"

	st, errs := Parse(lex(src))
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	if len(st.Chunks) != 1 {
		t.Fatalf("unexpected chunk count: want: %v, got: %v", 1, len(st.Chunks))
	}
	code, ok := st.Chunks[0].(*Code)
	if !ok {
		t.Fatalf("unexpected chunk type: want: Code, got: %T", st.Chunks[0])
	}
	if len(code.Tokens) != 3 {
		t.Errorf("unexpected token count: want: %v, got: %v", 3, len(code.Tokens))
	}
}

func TestParse_TokenCountRoundTrip(t *testing.T) {
	srcs := []string{
		"",
		"a b c\n",
		"#if X\n a\n#else\n b\n#endif\n",
		"#if X\n a\n",
		"#endif\nint x;\n#define Y\n",
		"#if A\n#if B\n#endif\n",
	}
	for _, src := range srcs {
		stream := lex(src)
		st, _ := Parse(stream)
		want := len(stream.Tokens()) - 1 // the EOF token is not part of the tree
		if got := countTokens(st.Chunks); got != want {
			t.Errorf("token count mismatch for %q: want: %v, got: %v", src, want, got)
		}
	}
}

func countTokens(chunks []Chunk) int {
	n := 0
	for _, c := range chunks {
		switch c := c.(type) {
		case *Code:
			n += len(c.Tokens)
		case *Directive:
			n += len(c.Tokens)
		case *Conditional:
			for _, br := range c.Branches {
				n += len(br.Directive.Tokens)
				n += countTokens(br.Chunks)
			}
			if c.End != nil {
				n += len(c.End.Tokens)
			}
		}
	}
	return n
}
