package token

// BindingPower is an operator's (left, right) binding-power pair. A zero side is
// absent: prefix operators have Left == 0, postfix operators Right == 0.
//
// Binding powers (higher binds tighter):
//
//	2,1    = += -= *= /= %= &= |= ^= <<= >>=   right
//	4,3    ?  (ternary, special-cased)            right
//	5,6    .. ..=
//	7,8    || or
//	9,10   && and
//	11,12  == !=
//	13,14  < > <= >=
//	15,16  |
//	17,18  ^
//	19,20  &
//	21,22  << >>
//	23,24  + -
//	25,26  * / %
//	28,27  **                                    right
//	29,30  as is  (right operand is a type)
//	0,31   prefix - + ! not ~ * &
//	33,0   postfix ! ?
//	35,0   call ( index [ member . scope ::
type BindingPower struct {
	Left  uint8
	Right uint8
}

// Assoc describes how operators of equal power group.
type Assoc int

// Associativity values.
const (
	AssocNone Assoc = iota
	AssocLeft
	AssocRight
)

// Assoc derives associativity from the power pair.
func (p BindingPower) Assoc() Assoc {
	switch {
	case p.Left == 0 || p.Right == 0:
		return AssocNone
	case p.Left < p.Right:
		return AssocLeft
	case p.Right < p.Left:
		return AssocRight
	}
	return AssocNone
}

// Binding powers referenced by the parser.
const (
	PowerPrefix  uint8 = 31
	PowerPostfix uint8 = 33
	PowerAccess  uint8 = 35
)

var infixPowers = map[Kind]BindingPower{
	Assign: {2, 1}, PlusAssign: {2, 1}, MinusAssign: {2, 1}, MulAssign: {2, 1},
	DivAssign: {2, 1}, ModAssign: {2, 1}, AndAssign: {2, 1}, OrAssign: {2, 1},
	XorAssign: {2, 1}, ShlAssign: {2, 1}, ShrAssign: {2, 1},

	Question: {4, 3},

	DotDot: {5, 6}, DotDotEq: {5, 6},

	OrOr: {7, 8}, Or: {7, 8},
	AndAnd: {9, 10}, And: {9, 10},

	Eq: {11, 12}, NotEq: {11, 12},
	Lt: {13, 14}, Gt: {13, 14}, LtEq: {13, 14}, GtEq: {13, 14},

	BitOr:  {15, 16},
	BitXor: {17, 18},
	BitAnd: {19, 20},
	Shl:    {21, 22}, Shr: {21, 22},

	Plus: {23, 24}, Minus: {23, 24},
	Mul: {25, 26}, Div: {25, 26}, Mod: {25, 26},
	Power: {28, 27},

	As: {29, 30}, Is: {29, 30},
}

var prefixPowers = map[Kind]BindingPower{
	Minus:     {0, PowerPrefix},
	Plus:      {0, PowerPrefix},
	Not:       {0, PowerPrefix},
	NotKw:     {0, PowerPrefix},
	Tilde:     {0, PowerPrefix},
	Deref:     {0, PowerPrefix},
	AddressOf: {0, PowerPrefix},
}

var postfixPowers = map[Kind]BindingPower{
	Unwrap:        {PowerPostfix, 0},
	Try:           {PowerPostfix, 0},
	TypeReference: {PowerPostfix, 0},
	LParen:        {PowerAccess, 0},
	LAngle:        {PowerAccess, 0},
	LBracket:      {PowerAccess, 0},
	Dot:           {PowerAccess, 0},
	Scope:         {PowerAccess, 0},
}

// Infix returns the binding power of k as a binary operator.
func Infix(k Kind) (BindingPower, bool) {
	p, ok := infixPowers[k]
	return p, ok
}

// Prefix returns the binding power of k as a prefix operator.
func Prefix(k Kind) (BindingPower, bool) {
	p, ok := prefixPowers[k]
	return p, ok
}

// Postfix returns the binding power of k as a postfix operator.
func Postfix(k Kind) (BindingPower, bool) {
	p, ok := postfixPowers[k]
	return p, ok
}

// IsAssign reports whether k is an assignment operator.
func IsAssign(k Kind) bool {
	return k >= Assign && k <= ShrAssign
}
