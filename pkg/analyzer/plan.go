package analyzer

// Options controls removal policy.
type Options struct {
	// Aggressive extends removal to bare unused `import module`
	// statements. Without it only unused from-import bindings and unused
	// aliased imports are removed, since a bare import may exist for its
	// side effects alone.
	Aggressive bool
}

// Action is the planned edit for one import statement.
type Action struct {
	Stmt *Statement
	// Delete removes the statement's full line span. When false the
	// statement is narrowed to the Keep bindings.
	Delete  bool
	Keep    []Binding
	Removed []Binding
}

// Plan maps import statements to edits, ordered by position in the source.
type Plan struct {
	Actions []Action
}

// Empty reports whether the plan contains no edits.
func (p *Plan) Empty() bool {
	return len(p.Actions) == 0
}

// RemovedNames returns the bound names the plan removes, in source order.
func (p *Plan) RemovedNames() []string {
	var names []string

	for _, action := range p.Actions {
		for _, binding := range action.Removed {
			names = append(names, binding.Name)
		}
	}

	return names
}

// BuildPlan computes the removal plan for an analysis. A binding is unused
// iff its name is neither referenced nor listed in __all__, it is not a
// star import, its statement is not a future import, and policy allows
// removing its statement kind.
func BuildPlan(analysis *Analysis, opts Options) *Plan {
	plan := &Plan{}

	for _, stmt := range analysis.Statements {
		action := planStatement(analysis, stmt, opts)
		if action != nil {
			plan.Actions = append(plan.Actions, *action)
		}
	}

	return plan
}

// planStatement decides the edit for one statement, or nil to leave it
// untouched.
func planStatement(analysis *Analysis, stmt *Statement, opts Options) *Action {
	if stmt.Kind == KindFuture || len(stmt.Bindings) == 0 {
		return nil
	}

	action := &Action{Stmt: stmt}

	for _, binding := range stmt.Bindings {
		if removable(stmt, binding, opts) && !analysis.Used(binding.Name) {
			action.Removed = append(action.Removed, binding)
		} else {
			action.Keep = append(action.Keep, binding)
		}
	}

	if len(action.Removed) == 0 {
		return nil
	}

	action.Delete = len(action.Keep) == 0

	return action
}

// removable reports whether policy permits removing the binding at all,
// independent of usage.
func removable(stmt *Statement, binding Binding, opts Options) bool {
	if binding.Star {
		return false
	}

	if stmt.Kind == KindFrom {
		return true
	}

	// Bare `import module`: only with the aggressive opt-in, unless the
	// import is aliased (an alias signals the name is meant to be used).
	return binding.Aliased || opts.Aggressive
}
