package ast

import (
	"io"
	"log"

	"github.com/mewkiz/pkg/term"
)

var (
	// dbg is a logger with the "ast:" prefix which logs debug messages to
	// standard error when enabled.
	dbg = log.New(io.Discard, term.BlueBold("ast:")+" ", 0)
)

// SetDebugOutput sets the output destination of debug messages.
func SetDebugOutput(w io.Writer) {
	dbg.SetOutput(w)
}

// Unit is a compilation unit. It owns every node of the program under
// construction and the scope used to bind names while parsing.
//
// The node constructors of Unit validate each node against the type rules;
// a node is only added to the arena if it is valid.
type Unit struct {
	// Arena of expression nodes, indexed by ExprID.
	exprs []Expr
	// Arena of statement nodes, indexed by StmtID.
	stmts []Stmt
	// Arena of code blocks, indexed by BlockID.
	blocks []Block
	// Scope of name bindings and code blocks under construction.
	scope *Scope
}

// NewUnit returns a new, empty compilation unit.
func NewUnit() *Unit {
	return &Unit{
		scope: NewScope(),
	}
}

// Scope returns the scope of the compilation unit.
func (u *Unit) Scope() *Scope {
	return u.scope
}

// Expr returns the expression node of the given ID, or nil if not present.
func (u *Unit) Expr(id ExprID) Expr {
	if id < 0 || int(id) >= len(u.exprs) {
		return nil
	}
	return u.exprs[id]
}

// Stmt returns the statement node of the given ID, or nil if not present.
func (u *Unit) Stmt(id StmtID) Stmt {
	if id < 0 || int(id) >= len(u.stmts) {
		return nil
	}
	return u.stmts[id]
}

// Block returns the code block of the given ID.
func (u *Unit) Block(id BlockID) (Block, bool) {
	if id < 0 || int(id) >= len(u.blocks) {
		return Block{}, false
	}
	return u.blocks[id], true
}

// NumExprs returns the number of expression nodes in the arena.
func (u *Unit) NumExprs() int {
	return len(u.exprs)
}

// === [ Expressions ] =========================================================

// NewInt returns a new integer literal.
func (u *Unit) NewInt(val int32) ExprID {
	return u.addExpr(&ConstantInt{Val: val})
}

// NewBool returns a new boolean literal.
func (u *Unit) NewBool(val bool) ExprID {
	return u.addExpr(&ConstantBool{Val: val})
}

// NewString returns a new string literal.
func (u *Unit) NewString(val string) ExprID {
	return u.addExpr(&ConstantString{Val: val})
}

// NewIdent returns a new identifier of the given type. The identifier is not
// bound; see Bind.
func (u *Unit) NewIdent(typ DataType, name string) (ExprID, error) {
	switch typ {
	case Int, Bool, String:
		// valid type.
	default:
		return 0, Errorf(TypeMismatch, "invalid type %v of identifier %q", typ, name)
	}
	if len(name) == 0 {
		return 0, Errorf(InternalInvariantViolation, "empty identifier name")
	}
	return u.addExpr(&Identifier{Name: name, Typ: typ}), nil
}

// Bind binds the name of the given identifier in the innermost scope.
func (u *Unit) Bind(id ExprID) error {
	ident, err := u.ident(id)
	if err != nil {
		return err
	}
	if err := u.scope.Bind(ident.Name, id); err != nil {
		return err
	}
	dbg.Printf("bind %q -> node %d", ident.Name, id)
	return nil
}

// Lookup returns the identifier bound to name in visible scope, or an
// UnboundIdentifier error.
func (u *Unit) Lookup(name string) (ExprID, error) {
	id, ok := u.scope.Lookup(name)
	if !ok {
		return 0, Errorf(UnboundIdentifier, "%q not declared", name)
	}
	return id, nil
}

// NewUnary returns a new unary expression.
func (u *Unit) NewUnary(op UnaryOp, x ExprID) (ExprID, error) {
	xx, err := u.expr(x)
	if err != nil {
		return 0, err
	}
	typ, err := UnaryType(op, xx.Type())
	if err != nil {
		return 0, err
	}
	return u.addExpr(&UnaryExpr{Op: op, X: x, Typ: typ}), nil
}

// NewBinary returns a new binary expression.
func (u *Unit) NewBinary(x ExprID, op BinaryOp, y ExprID) (ExprID, error) {
	xx, err := u.expr(x)
	if err != nil {
		return 0, err
	}
	yy, err := u.expr(y)
	if err != nil {
		return 0, err
	}
	typ, err := BinaryType(op, xx.Type(), yy.Type())
	if err != nil {
		return 0, err
	}
	return u.addExpr(&BinaryExpr{X: x, Op: op, Y: y, Typ: typ}), nil
}

// === [ Statements ] ==========================================================

// NewSkip returns a new empty statement.
func (u *Unit) NewSkip() StmtID {
	return u.addStmt(&Skip{})
}

// NewVarDecl returns a new variable declaration of the given identifier,
// initialized to value.
func (u *Unit) NewVarDecl(ident, value ExprID) (StmtID, error) {
	id, err := u.ident(ident)
	if err != nil {
		return 0, err
	}
	v, err := u.expr(value)
	if err != nil {
		return 0, err
	}
	if id.Typ != v.Type() {
		return 0, Errorf(TypeMismatch, "declaration of %q of type %v initialized with value of type %v", id.Name, id.Typ, v.Type())
	}
	return u.addStmt(&VarDecl{Ident: ident, Value: value}), nil
}

// Declare creates, binds and declares a variable of the given type and name,
// initialized to value. Nothing is bound if the declaration is invalid.
func (u *Unit) Declare(typ DataType, name string, value ExprID) (StmtID, error) {
	if _, ok := u.scope.Lookup(name); ok {
		return 0, Errorf(DuplicateDeclaration, "%q already declared", name)
	}
	ident, err := u.NewIdent(typ, name)
	if err != nil {
		return 0, err
	}
	stmt, err := u.NewVarDecl(ident, value)
	if err != nil {
		return 0, err
	}
	if err := u.Bind(ident); err != nil {
		return 0, err
	}
	return stmt, nil
}

// NewVarAssign returns a new assignment of value to the variable bound to
// name.
func (u *Unit) NewVarAssign(name string, value ExprID) (StmtID, error) {
	ident, err := u.Lookup(name)
	if err != nil {
		return 0, err
	}
	id, err := u.ident(ident)
	if err != nil {
		return 0, err
	}
	v, err := u.expr(value)
	if err != nil {
		return 0, err
	}
	if id.Typ != v.Type() {
		return 0, Errorf(TypeMismatch, "assignment to %q of type %v with value of type %v", name, id.Typ, v.Type())
	}
	return u.addStmt(&VarAssign{Ident: ident, Value: value}), nil
}

// NewIf returns a new conditional statement. els is NoBlock if the statement
// has no else branch.
func (u *Unit) NewIf(cond ExprID, then, els BlockID) (StmtID, error) {
	if err := u.checkCond("if", cond); err != nil {
		return 0, err
	}
	if _, ok := u.Block(then); !ok {
		return 0, Errorf(InternalInvariantViolation, "invalid then block %d", then)
	}
	if _, ok := u.Block(els); !ok && els != NoBlock {
		return 0, Errorf(InternalInvariantViolation, "invalid else block %d", els)
	}
	return u.addStmt(&IfStmt{Cond: cond, Then: then, Else: els}), nil
}

// NewWhile returns a new loop statement.
func (u *Unit) NewWhile(cond ExprID, body BlockID) (StmtID, error) {
	if err := u.checkCond("while", cond); err != nil {
		return 0, err
	}
	if _, ok := u.Block(body); !ok {
		return 0, Errorf(InternalInvariantViolation, "invalid loop body %d", body)
	}
	return u.addStmt(&WhileStmt{Cond: cond, Body: body}), nil
}

// NewPrint returns a new print statement.
func (u *Unit) NewPrint(x ExprID) (StmtID, error) {
	if _, err := u.expr(x); err != nil {
		return 0, err
	}
	return u.addStmt(&PrintStmt{X: x}), nil
}

// === [ Code blocks ] =========================================================

// OpenBlock starts the assembly of a code block; statements added until the
// matching CloseBlock belong to it, as do names bound in the meantime.
func (u *Unit) OpenBlock() {
	u.scope.OpenBlock()
}

// Add appends the statement to the innermost code block under construction.
func (u *Unit) Add(stmt StmtID) error {
	if u.Stmt(stmt) == nil {
		return Errorf(InternalInvariantViolation, "invalid statement %d", stmt)
	}
	return u.scope.Add(stmt)
}

// CloseBlock ends the assembly of the innermost code block and returns it.
func (u *Unit) CloseBlock() (BlockID, error) {
	names := u.scope.Names()
	stmts, err := u.scope.CloseBlock()
	if err != nil {
		return NoBlock, err
	}
	id := BlockID(len(u.blocks))
	u.blocks = append(u.blocks, Block{Stmts: stmts})
	dbg.Printf("code block %d created (%d statements); visible names %v", id, len(stmts), names)
	return id, nil
}

// ### [ Helper functions ] ####################################################

// addExpr adds the expression to the arena.
func (u *Unit) addExpr(e Expr) ExprID {
	id := ExprID(len(u.exprs))
	u.exprs = append(u.exprs, e)
	dbg.Printf("expression %d constructed: %T (%v)", id, e, e.Type())
	return id
}

// addStmt adds the statement to the arena.
func (u *Unit) addStmt(s Stmt) StmtID {
	id := StmtID(len(u.stmts))
	u.stmts = append(u.stmts, s)
	dbg.Printf("statement %d constructed: %T", id, s)
	return id
}

// expr returns the expression node of the given ID.
func (u *Unit) expr(id ExprID) (Expr, error) {
	e := u.Expr(id)
	if e == nil {
		return nil, Errorf(InternalInvariantViolation, "invalid expression %d", id)
	}
	return e, nil
}

// ident returns the identifier node of the given ID.
func (u *Unit) ident(id ExprID) (*Identifier, error) {
	e, err := u.expr(id)
	if err != nil {
		return nil, err
	}
	ident, ok := e.(*Identifier)
	if !ok {
		return nil, Errorf(InternalInvariantViolation, "invalid identifier node %d; expected *ast.Identifier, got %T", id, e)
	}
	return ident, nil
}

// checkCond checks that the condition of the named statement kind is a
// boolean expression.
func (u *Unit) checkCond(kind string, cond ExprID) error {
	c, err := u.expr(cond)
	if err != nil {
		return err
	}
	if c.Type() != Bool {
		return Errorf(TypeMismatch, "non-boolean condition of type %v in %s statement", c.Type(), kind)
	}
	return nil
}
