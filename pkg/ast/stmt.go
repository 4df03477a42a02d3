package ast

// ---------- Statements ----------

// Block is a brace-delimited or indented statement sequence.
type Block struct {
	NodeInfo
	Stmts    []Stmt
	Indented bool
	Scope    ScopeID
}

func (*Block) stmtNode() {}

// DeclStmt wraps a declaration in statement position.
type DeclStmt struct {
	NodeInfo
	Decl Decl
}

func (*DeclStmt) stmtNode() {}

// ExprStmt is an expression evaluated for its effect.
type ExprStmt struct {
	NodeInfo
	X Expr
}

func (*ExprStmt) stmtNode() {}

// IfStmt is if cond body [else body].
type IfStmt struct {
	NodeInfo
	Cond Expr
	Then *Block
	Else Stmt // *Block, *IfStmt or nil
}

func (*IfStmt) stmtNode() {}

// WhileStmt is while cond body.
type WhileStmt struct {
	NodeInfo
	Cond Expr
	Body *Block
}

func (*WhileStmt) stmtNode() {}

// ForStmt is for name in iter body.
type ForStmt struct {
	NodeInfo
	Var   Name
	Iter  Expr
	Body  *Block
	Scope ScopeID
}

func (*ForStmt) stmtNode() {}

// LoopStmt is an unconditional loop.
type LoopStmt struct {
	NodeInfo
	Body *Block
}

func (*LoopStmt) stmtNode() {}

// ReturnStmt is return [value].
type ReturnStmt struct {
	NodeInfo
	Value Expr
}

func (*ReturnStmt) stmtNode() {}

// YieldStmt is yield [value].
type YieldStmt struct {
	NodeInfo
	Value Expr
}

func (*YieldStmt) stmtNode() {}

// BreakStmt is break.
type BreakStmt struct {
	NodeInfo
}

func (*BreakStmt) stmtNode() {}

// ContinueStmt is continue.
type ContinueStmt struct {
	NodeInfo
}

func (*ContinueStmt) stmtNode() {}

// DeferStmt is defer stmt.
type DeferStmt struct {
	NodeInfo
	Body Stmt
}

func (*DeferStmt) stmtNode() {}

// MatchStmt is match subject { pattern => body ... }.
type MatchStmt struct {
	NodeInfo
	Subject Expr
	Arms    []*MatchArm
}

func (*MatchStmt) stmtNode() {}

// MatchArm is pattern => body.
type MatchArm struct {
	NodeInfo
	Pattern Expr
	Body    Stmt
}

// ShellStmt is a $ shell escape line.
type ShellStmt struct {
	NodeInfo
	Words []Name
}

func (*ShellStmt) stmtNode() {}

// BadStmt stands in for a statement that failed to parse.
type BadStmt struct {
	NodeInfo
}

func (*BadStmt) stmtNode() {}
