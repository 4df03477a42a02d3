package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupMembership(t *testing.T) {
	tests := []struct {
		kind  Kind
		group Group
	}{
		{EOF, GroupSpecial},
		{Indent, GroupSpecial},
		{LParen, GroupOperator},
		{Unwrap, GroupOperator},
		{Fn, GroupKeyword},
		{Yield, GroupKeyword},
		{TypeIdent, GroupTypeName},
		{AnyType, GroupTypeName},
		{Number, GroupLiteral},
		{Unit, GroupLiteral},
		{Variable, GroupIdentifier},
		{Constant, GroupIdentifier},
		{DocComment, GroupComment},
		{Pub, GroupQualifier},
		{TypeNoReturn, GroupQualifier},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.group, tt.kind.Group())
			assert.True(t, tt.kind.In(tt.group))
		})
	}
}

func TestBuiltinsUnique(t *testing.T) {
	seenText := make(map[string]bool)
	seenKind := make(map[Kind]bool)
	for _, b := range Builtins {
		require.False(t, seenText[b.Text], "duplicate spelling %q", b.Text)
		require.False(t, seenKind[b.Kind], "duplicate kind %s", b.Kind)
		seenText[b.Text] = true
		seenKind[b.Kind] = true
		assert.LessOrEqual(t, len(b.Text), MaxSize)
	}
}

func TestLookup(t *testing.T) {
	b, ok := Lookup("fn")
	require.True(t, ok)
	assert.Equal(t, Fn, b.Kind)
	assert.True(t, b.Pure)

	b, ok = Lookup("self")
	require.True(t, ok)
	assert.False(t, b.Pure)

	_, ok = Lookup("Fn")
	assert.False(t, ok, "keywords match only their bare spelling")
}

func TestKindText(t *testing.T) {
	assert.Equal(t, "**", Power.Text())
	assert.Equal(t, "*", Deref.Text())
	assert.Equal(t, "*", TypePointer.Text())
	assert.Equal(t, "while", While.Text())
	assert.Equal(t, "u8", U8.Text())
	assert.Equal(t, "", Variable.Text())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "EOF", EOF.String())
	assert.Equal(t, "DEREF", Deref.String())
	assert.Equal(t, "==", Eq.String())
	assert.Equal(t, "class", Class.String())
	assert.Equal(t, "KIND(0x7fff)", Kind(0x7fff).String())
}

func TestBindingPowers(t *testing.T) {
	add, ok := Infix(Plus)
	require.True(t, ok)
	mul, ok := Infix(Mul)
	require.True(t, ok)
	assert.Greater(t, mul.Left, add.Left)
	assert.Equal(t, AssocLeft, add.Assoc())

	pow, _ := Infix(Power)
	assert.Equal(t, AssocRight, pow.Assoc())

	assign, _ := Infix(Assign)
	assert.Equal(t, AssocRight, assign.Assoc())

	neg, ok := Prefix(Minus)
	require.True(t, ok)
	assert.Equal(t, AssocNone, neg.Assoc())
	assert.Greater(t, neg.Right, mul.Right)

	call, ok := Postfix(LParen)
	require.True(t, ok)
	unwrap, _ := Postfix(Unwrap)
	assert.Greater(t, call.Left, unwrap.Left)

	_, ok = Infix(Comma)
	assert.False(t, ok)
}

func TestTokenHelpers(t *testing.T) {
	tok := Token{Kind: Variable, Size: 3, Value: 70, Line: 2, Offset: 4}
	assert.Equal(t, uint32(7), tok.End())
	assert.True(t, tok.HasString())
	assert.Equal(t, 0, tok.Level())

	ind := Token{Kind: Indent, Value: 8, Line: 3}
	assert.False(t, ind.HasString())
	assert.Equal(t, 8, ind.Level())

	span := SpanOf(tok, 100)
	assert.Equal(t, 3, span.Start.Line)
	assert.Equal(t, 5, span.Start.Column)
	assert.Equal(t, 104, span.Start.Offset)
	assert.Equal(t, 107, span.End.Offset)
	assert.True(t, span.Contains(105))
}
