// Package ast declares the typed abstract syntax tree of tiny programs.
//
// Nodes are owned by the arena of a compilation Unit and referenced by index;
// every node is validated against the type rules when it is constructed and is
// immutable thereafter.
package ast

// ExprID is the index of an expression in the arena of a Unit.
type ExprID int32

// StmtID is the index of a statement in the arena of a Unit.
type StmtID int32

// BlockID is the index of a code block in the arena of a Unit.
type BlockID int32

// NoBlock denotes the absence of a code block, such as an if statement without
// an else branch.
const NoBlock BlockID = -1

// === [ Expressions ] =========================================================

// Expr is an expression node.
//
// Expression nodes are one of the following types.
//
//	*ast.ConstantInt
//	*ast.ConstantBool
//	*ast.ConstantString
//	*ast.Identifier
//	*ast.UnaryExpr
//	*ast.BinaryExpr
type Expr interface {
	// Type returns the data type of the expression.
	Type() DataType
	// isExpr ensures that only expression nodes can be assigned to the
	// ast.Expr interface.
	isExpr()
}

// ConstantInt is an integer literal.
type ConstantInt struct {
	Val int32
}

// ConstantBool is a boolean literal.
type ConstantBool struct {
	Val bool
}

// ConstantString is a string literal.
type ConstantString struct {
	Val string
}

// Identifier is a named variable. It is the unit of variable binding; every
// use of a bound name refers to the Identifier node of its declaration.
type Identifier struct {
	Name string
	Typ  DataType
}

// UnaryExpr is a unary expression.
type UnaryExpr struct {
	Op  UnaryOp
	X   ExprID
	Typ DataType
}

// BinaryExpr is a binary expression.
type BinaryExpr struct {
	X   ExprID
	Op  BinaryOp
	Y   ExprID
	Typ DataType
}

// Type returns the data type of the expression.
func (*ConstantInt) Type() DataType { return Int }

// Type returns the data type of the expression.
func (*ConstantBool) Type() DataType { return Bool }

// Type returns the data type of the expression.
func (*ConstantString) Type() DataType { return String }

// Type returns the data type of the expression.
func (e *Identifier) Type() DataType { return e.Typ }

// Type returns the data type of the expression.
func (e *UnaryExpr) Type() DataType { return e.Typ }

// Type returns the data type of the expression.
func (e *BinaryExpr) Type() DataType { return e.Typ }

func (*ConstantInt) isExpr()    {}
func (*ConstantBool) isExpr()   {}
func (*ConstantString) isExpr() {}
func (*Identifier) isExpr()     {}
func (*UnaryExpr) isExpr()      {}
func (*BinaryExpr) isExpr()     {}

// === [ Statements ] ==========================================================

// Stmt is a statement node.
//
// Statement nodes are one of the following types.
//
//	*ast.Skip
//	*ast.VarDecl
//	*ast.VarAssign
//	*ast.IfStmt
//	*ast.WhileStmt
//	*ast.PrintStmt
type Stmt interface {
	// isStmt ensures that only statement nodes can be assigned to the
	// ast.Stmt interface.
	isStmt()
}

// Skip is the empty statement.
type Skip struct{}

// VarDecl declares the variable Ident and initializes it with Value.
type VarDecl struct {
	// Identifier node of the declared variable.
	Ident ExprID
	// Initializer.
	Value ExprID
}

// VarAssign assigns Value to the previously declared variable Ident.
type VarAssign struct {
	// Identifier node of the target variable.
	Ident ExprID
	Value ExprID
}

// IfStmt is a conditional statement.
type IfStmt struct {
	Cond ExprID
	Then BlockID
	// Else branch; NoBlock if absent.
	Else BlockID
}

// WhileStmt is a pre-test loop.
type WhileStmt struct {
	Cond ExprID
	Body BlockID
}

// PrintStmt prints the value of X followed by a newline using the runtime
// formatting routine.
type PrintStmt struct {
	X ExprID
}

func (*Skip) isStmt()      {}
func (*VarDecl) isStmt()   {}
func (*VarAssign) isStmt() {}
func (*IfStmt) isStmt()    {}
func (*WhileStmt) isStmt() {}
func (*PrintStmt) isStmt() {}

// === [ Code blocks ] =========================================================

// Block is an ordered sequence of statements.
type Block struct {
	Stmts []StmtID
}
