package ast

// WalkStmts calls fn for each statement in list and, while fn returns
// true, for the statements nested inside it. Expressions are not entered,
// so statements of nested function literals are never visited.
func WalkStmts(list []Stmt, fn func(Stmt) bool) {
	for _, s := range list {
		walkStmt(s, fn)
	}
}

func walkStmt(s Stmt, fn func(Stmt) bool) {
	if s == nil || !fn(s) {
		return
	}

	switch s := s.(type) {
	case *BlockStmt:
		WalkStmts(s.List, fn)
	case *IfStmt:
		walkStmt(s.Then, fn)
		walkStmt(s.Else, fn)
	case *SwitchStmt:
		WalkStmts(s.Body, fn)
	case *LoopStmt:
		walkStmt(s.Body, fn)
	case *TryStmt:
		if s.Block != nil {
			walkStmt(s.Block, fn)
		}

		if s.Catch != nil {
			walkStmt(s.Catch, fn)
		}

		if s.Finally != nil {
			walkStmt(s.Finally, fn)
		}
	}
}

// KindName returns a short syntactic category for n, used in messages
// about unsupported constructs.
func KindName(n Node) string {
	switch n.(type) {
	case *Ident:
		return "Identifier"
	case *NumberLit:
		return "NumericLiteral"
	case *StringLit:
		return "StringLiteral"
	case *BoolLit:
		return "BooleanLiteral"
	case *NullLit:
		return "NullLiteral"
	case *TemplateLit:
		return "TemplateExpression"
	case *TaggedTemplate:
		return "TaggedTemplateExpression"
	case *RegExpLit:
		return "RegularExpressionLiteral"
	case *JSXElement:
		return "JsxElement"
	case *ArrayLit:
		return "ArrayLiteralExpression"
	case *Omitted:
		return "OmittedExpression"
	case *ObjectLit:
		return "ObjectLiteralExpression"
	case *FuncLit:
		return "FunctionExpression"
	case *UnaryExpr:
		return "PrefixUnaryExpression"
	case *UpdateExpr:
		return "UpdateExpression"
	case *BinaryExpr:
		return "BinaryExpression"
	case *AssignExpr:
		return "AssignmentExpression"
	case *CondExpr:
		return "ConditionalExpression"
	case *ParenExpr:
		return "ParenthesizedExpression"
	case *SpreadElement:
		return "SpreadElement"
	case *AsExpr:
		return "AsExpression"
	case *NonNullExpr:
		return "NonNullExpression"
	case *MemberExpr:
		return "PropertyAccessExpression"
	case *IndexExpr:
		return "ElementAccessExpression"
	case *CallExpr:
		return "CallExpression"
	case *NewExpr:
		return "NewExpression"
	case *ThisExpr:
		return "ThisKeyword"
	case *ClassExpr:
		return "ClassExpression"
	case *SequenceExpr:
		return "CommaListExpression"
	case *BadExpr:
		return "BadExpression"
	case *FuncDecl:
		return "FunctionDeclaration"
	case *EnumDecl:
		return "EnumDeclaration"
	case *VarSpec:
		return "VariableDeclaration"
	default:
		return "Node"
	}
}
