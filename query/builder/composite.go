package builder

import (
	"github.com/satishbabariya/querykit/query/ast"
	"github.com/satishbabariya/querykit/query/qerr"
)

// BranchFunc receives a fresh, empty builder and returns the branches of
// a composite condition, each derived from it. Reaching back into the
// outer builder inside the callback is a bug; the fresh builder exists
// so branch state starts empty.
type BranchFunc[T any] func(sub *Builder[T]) []*Builder[T]

// And nests the callback's branches under one AND composite. Each branch
// must produce at least one condition; a branch with several top-level
// conditions is AND-folded before nesting.
func (b *Builder[T]) And(fn BranchFunc[T]) *Builder[T] {
	if b.err != nil {
		return b
	}
	children, err := b.foldBranches(fn, 1)
	if err != nil {
		return b.failWith(err)
	}
	return b.addCondition(ast.CompositeCondition{Op: ast.OpAnd, Children: children})
}

// Or nests the callback's branches under one OR composite. At least two
// branches are required.
func (b *Builder[T]) Or(fn BranchFunc[T]) *Builder[T] {
	if b.err != nil {
		return b
	}
	children, err := b.foldBranches(fn, 2)
	if err != nil {
		return b.failWith(err)
	}
	return b.addCondition(ast.CompositeCondition{Op: ast.OpOr, Children: children})
}

// Not negates the callback's branches. Branch conditions are AND-folded
// into the single child a NOT composite carries.
func (b *Builder[T]) Not(fn BranchFunc[T]) *Builder[T] {
	if b.err != nil {
		return b
	}
	children, err := b.foldBranches(fn, 1)
	if err != nil {
		return b.failWith(err)
	}
	child := children[0]
	if len(children) > 1 {
		child = ast.CompositeCondition{Op: ast.OpAnd, Children: children}
	}
	return b.addCondition(ast.CompositeCondition{Op: ast.OpNot, Children: []ast.Condition{child}})
}

// foldBranches runs the callback with a fresh builder, builds every
// returned branch independently and folds each branch's conditions into
// one condition.
func (b *Builder[T]) foldBranches(fn BranchFunc[T], minBranches int) ([]ast.Condition, error) {
	if fn == nil {
		return nil, qerr.New(qerr.KindInvalidValue, "composite requires a branch callback")
	}
	branches := fn(New[T]())
	if len(branches) < minBranches {
		return nil, qerr.New(qerr.KindInvalidValue,
			"composite requires at least %d branch(es), got %d", minBranches, len(branches))
	}
	children := make([]ast.Condition, 0, len(branches))
	for i, branch := range branches {
		if branch == nil {
			return nil, qerr.New(qerr.KindInvalidValue, "branch %d is nil", i)
		}
		q, err := branch.Build()
		if err != nil {
			return nil, err
		}
		switch len(q.Conditions) {
		case 0:
			return nil, qerr.New(qerr.KindInvalidValue, "branch %d produced no conditions", i)
		case 1:
			children = append(children, q.Conditions[0])
		default:
			children = append(children, ast.CompositeCondition{Op: ast.OpAnd, Children: q.Conditions})
		}
	}
	return children, nil
}

// OrWhere adds a disjunctive condition without a callback. When the last
// top-level condition is already an OR composite the new condition joins
// its children; otherwise the existing top-level conditions are folded
// (AND when several) into the left side of a new OR composite. Supported
// operators: =, !=, >, >=, <, <=.
func (b *Builder[T]) OrWhere(field, op string, value any) *Builder[T] {
	if b.err != nil {
		return b
	}

	var cond ast.Condition
	switch op {
	case "=":
		cond = ast.Equal(field, value)
	case "!=":
		cond = ast.NotEqual(field, value)
	case ">", ">=", "<", "<=":
		cond = ast.Compare(field, ast.ComparisonOp(op), value)
	default:
		return b.fail("orWhere does not support operator %q", op)
	}

	cp := b.clone()
	n := len(cp.conditions)

	if n > 0 {
		if last, ok := cp.conditions[n-1].(ast.CompositeCondition); ok && last.Op == ast.OpOr {
			last.Children = append(last.Children, cond)
			cp.conditions[n-1] = last
			return cp
		}
	}

	switch n {
	case 0:
		cp.conditions = []ast.Condition{cond}
	case 1:
		cp.conditions = []ast.Condition{
			ast.CompositeCondition{Op: ast.OpOr, Children: []ast.Condition{cp.conditions[0], cond}},
		}
	default:
		left := ast.CompositeCondition{Op: ast.OpAnd, Children: cp.conditions}
		cp.conditions = []ast.Condition{
			ast.CompositeCondition{Op: ast.OpOr, Children: []ast.Condition{left, cond}},
		}
	}
	return cp
}
