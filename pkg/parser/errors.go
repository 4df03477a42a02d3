package parser

// Syntax diagnostic messages.
const (
	ErrExpected           = "expected %s, found %s"
	ErrExpectedExpr       = "expected expression, found %s"
	ErrExpectedType       = "expected type, found %s"
	ErrExpectedName       = "expected name, found %s"
	ErrExpectedDecl       = "expected declaration, found %s"
	ErrExpectedBlock      = "expected '{' or ':' to start a block, found %s"
	ErrExpectedIndent     = "expected an indented block"
	ErrUnexpectedIndent   = "unexpected indentation"
	ErrExpectedEnd        = "expected end of statement, found %s"
	ErrExpectedMember     = "expected member declaration, found %s"
	ErrExpectedParam      = "expected parameter, found %s"
	ErrExpectedOperator   = "expected overloadable operator, found %s"
	ErrUnexpected         = "unexpected %s"
	ErrDuplicateQualifier = "duplicate qualifier %q"
	ErrQualifierConflict  = "qualifiers %q and %q conflict"
	ErrQualifierLocal     = "qualifier %q is not allowed on a local declaration"
	ErrQualifierTarget    = "qualifier %q cannot apply to %s"
	ErrExternBody         = "extern declaration cannot have a body"
	ErrMissingDefault     = "%s %q needs a default after a defaulted one"
	ErrTooDeep            = "nesting deeper than %d levels"
)
