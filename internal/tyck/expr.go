package tyck

import (
	"fmt"
	"strings"

	"github.com/funvibe/tyck/internal/ast"
	"github.com/funvibe/tyck/internal/config"
	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/diagnostics"
)

// Synthesize infers the type of expr.
func (t *ExprTycker) Synthesize(expr ast.Expr) (Result, error) {
	switch e := expr.(type) {
	case *ast.LamExpr:
		return t.Inherit(e, t.generatePi(e))
	case *ast.UnivExpr:
		return Result{Term: core.UnivTerm{Lift: e.Lift}, Type: core.UnivTerm{Lift: e.Lift + 1}}, nil
	case *ast.RefExpr:
		switch v := e.Var.(type) {
		case *core.LocalVar:
			ty, ok := t.ctx.Get(v)
			if !ok {
				return Result{}, fatalf(e.Pos, "variable %s is not in scope", v.Name)
			}
			return Result{Term: core.RefTerm{Var: v}, Type: ty}, nil
		case *core.DefVar:
			return t.inferRef(e, v)
		}
		panic(diagnostics.Internalf("unknown variable %T", e.Var))
	case *ast.PiExpr:
		return t.synthPi(e)
	case *ast.SigmaExpr:
		return t.synthSigma(e)
	case *ast.LiftExpr:
		res, err := t.Synthesize(e.Expr)
		if err != nil {
			return Result{}, err
		}
		return Result{Term: core.Lift(res.Term, e.Levels), Type: core.Lift(res.Type, e.Levels)}, nil
	case *ast.NewExpr:
		return t.synthNew(e)
	case *ast.ProjExpr:
		return t.synthProj(e)
	case *ast.TupExpr:
		items := make([]core.Term, len(e.Items))
		params := make(core.Telescope, len(e.Items))
		for i, item := range e.Items {
			res, err := t.Synthesize(item)
			if err != nil {
				return Result{}, err
			}
			items[i] = res.Term
			params[i] = core.Param{Var: core.Anonymous(), Type: res.Type, Explicit: true}
		}
		return Result{Term: core.TupTerm{Items: items}, Type: core.SigmaTerm{Params: params}}, nil
	case *ast.AppExpr:
		return t.synthApp(e)
	case *ast.HoleExpr:
		ty := t.freshMeta(generatedName("hole")+"ty", core.UnivTerm{Lift: 0}, e.Pos)
		return t.Inherit(e, ty)
	case *ast.LitIntExpr:
		return t.fail(e, errorType(e), diagnostics.ErrT008, "cannot infer the type of literal %d", e.Value), nil
	}
	panic(diagnostics.Internalf("no synthesis rule for %T", expr))
}

// Inherit checks expr against ty, inserting an implicit lambda when ty is an
// implicit pi and expr is not an implicit lambda.
func (t *ExprTycker) Inherit(expr ast.Expr, ty core.Term) (Result, error) {
	if pi, ok := t.whnf(ty).(core.PiTerm); ok && !pi.Param.Explicit && needImplicitParamIns(expr) {
		param := core.Param{Var: core.NewLocalVar(config.AnonymousPrefix, expr.GetPos()), Type: pi.Param.Type, Explicit: false}
		body := core.Substitute(pi.Body, core.Subst{pi.Param.Var: param.ToTerm()})
		return t.ctx.With(param, func() (Result, error) {
			res, err := t.Inherit(expr, body)
			if err != nil {
				return Result{}, err
			}
			return Result{Term: core.LamTerm{Param: param, Body: res.Term}, Type: pi}, nil
		})
	}
	return t.doInherit(expr, ty)
}

func needImplicitParamIns(expr ast.Expr) bool {
	lam, ok := expr.(*ast.LamExpr)
	return !ok || lam.Param.Explicit
}

func (t *ExprTycker) doInherit(expr ast.Expr, ty core.Term) (Result, error) {
	switch e := expr.(type) {
	case *ast.TupExpr:
		return t.inheritTup(e, ty)
	case *ast.HoleExpr:
		m := t.freshMeta(generatedName("hole"), ty, e.Pos)
		if e.Filling != nil {
			// The filling is only checked; the goal stays open.
			if _, err := t.Inherit(e.Filling, ty); err != nil {
				return Result{}, err
			}
		}
		if e.Explicit {
			t.goals = append(t.goals, goal{meta: m, ctx: t.ctx.Telescope(), pos: e.Pos})
		}
		return Result{Term: m, Type: ty}, nil
	case *ast.UnivExpr:
		if univ, ok := t.whnf(ty).(core.UnivTerm); ok {
			if e.Lift+1 > univ.Lift {
				t.report(diagnostics.ErrT005, e.Pos, fmt.Sprintf("Type %d does not live in Type %d", e.Lift, univ.Lift))
			}
			return Result{Term: core.UnivTerm{Lift: e.Lift}, Type: univ}, nil
		}
		t.unifyTyReported(ty, core.UnivTerm{Lift: e.Lift + 1}, e)
		return Result{Term: core.UnivTerm{Lift: e.Lift}, Type: ty}, nil
	case *ast.LamExpr:
		return t.inheritLam(e, ty)
	case *ast.LitIntExpr:
		if call, ok := t.whnf(ty).(core.DataCall); ok {
			if shape, ok := core.RecognizeNat(call.Ref); ok {
				return Result{Term: core.IntLitTerm{Value: e.Value, Shape: shape, Type: call}, Type: ty}, nil
			}
		}
		return t.fail(e, ty, diagnostics.ErrT008, "literal %d cannot have type %s", e.Value, t.state.Freeze(ty)), nil
	}
	res, err := t.Synthesize(expr)
	if err != nil {
		return Result{}, err
	}
	return t.unifyTyMaybeInsert(ty, res, expr), nil
}

func (t *ExprTycker) inheritLam(lam *ast.LamExpr, ty core.Term) (Result, error) {
	if _, ok := t.whnf(ty).(core.MetaTerm); ok {
		t.unifyTy(ty, t.generatePi(lam), lam.Pos)
	}
	pi, ok := t.whnf(ty).(core.PiTerm)
	if !ok {
		return t.fail(lam, ty, diagnostics.ErrT002, "%s is not a pi type (expected by %s)", t.state.Freeze(ty), lam), nil
	}
	if lam.Param.Explicit != pi.Param.Explicit {
		return t.fail(lam, pi, diagnostics.ErrT003, "%s against %s", lam, t.state.Freeze(pi)), nil
	}
	paramTy := pi.Param.Type
	if lam.Param.Type != nil {
		ann, err := t.Synthesize(lam.Param.Type)
		if err != nil {
			return Result{}, err
		}
		if f := t.unifyTy(ann.Term, paramTy, lam.Param.Pos); f != nil {
			return t.fail(lam, pi, diagnostics.ErrT002, "lambda parameter %s is annotated %s but %s is expected",
				lam.Param.Var.Name, t.state.Freeze(ann.Term), t.state.Freeze(paramTy)), nil
		}
		paramTy = ann.Term
	}
	param := core.Param{Var: lam.Param.Var, Type: paramTy, Explicit: lam.Param.Explicit}
	body := core.Substitute(pi.Body, core.Subst{pi.Param.Var: param.ToTerm()})
	return t.ctx.With(param, func() (Result, error) {
		res, err := t.Inherit(lam.Body, body)
		if err != nil {
			return Result{}, err
		}
		return Result{Term: core.LamTerm{Param: param, Body: res.Term}, Type: pi}, nil
	})
}

func (t *ExprTycker) inheritTup(tup *ast.TupExpr, ty core.Term) (Result, error) {
	w := t.whnf(ty)
	if _, ok := w.(core.MetaTerm); ok {
		res, err := t.Synthesize(tup)
		if err != nil {
			return Result{}, err
		}
		return t.unifyTyMaybeInsert(ty, res, tup), nil
	}
	sigma, ok := w.(core.SigmaTerm)
	if !ok {
		return t.fail(tup, ty, diagnostics.ErrT002, "%s is not a sigma type (expected by %s)", t.state.Freeze(ty), tup), nil
	}
	if len(sigma.Params) != len(tup.Items) {
		return t.fail(tup, ty, diagnostics.ErrT009, "expected %d components, got %d", len(sigma.Params), len(tup.Items)), nil
	}
	s := make(core.Subst, len(sigma.Params))
	items := make([]core.Term, len(tup.Items))
	for i, item := range tup.Items {
		param := sigma.Params[i]
		res, err := t.Inherit(item, core.Substitute(param.Type, s))
		if err != nil {
			return Result{}, err
		}
		items[i] = res.Term
		s[param.Var] = res.Term
	}
	return Result{Term: core.TupTerm{Items: items}, Type: ty}, nil
}

// checkParamType elaborates a binder type and returns it with its level. A
// missing annotation becomes a meta.
func (t *ExprTycker) checkParamType(p *ast.Param) (core.Term, int, error) {
	if p.Type == nil {
		return t.freshMeta(generatedName(p.Var.Name)+"ty", core.UnivTerm{Lift: 0}, p.Pos), 0, nil
	}
	res, err := t.Synthesize(p.Type)
	if err != nil {
		return nil, 0, err
	}
	return res.Term, t.ensureUniv(p.Type, res.Type), nil
}

// CheckTele elaborates a telescope, leaving its variables bound in the context.
func (t *ExprTycker) CheckTele(params []*ast.Param) (core.Telescope, error) {
	tele := make(core.Telescope, 0, len(params))
	for _, p := range params {
		ty, _, err := t.checkParamType(p)
		if err != nil {
			return nil, err
		}
		t.ctx.Put(p.Var, ty)
		tele = append(tele, core.Param{Var: p.Var, Type: ty, Explicit: p.Explicit})
	}
	return tele, nil
}

// CheckType elaborates expr as a type and returns it with its level.
func (t *ExprTycker) CheckType(expr ast.Expr) (core.Term, int, error) {
	res, err := t.Synthesize(expr)
	if err != nil {
		return nil, 0, err
	}
	return res.Term, t.ensureUniv(expr, res.Type), nil
}

func (t *ExprTycker) synthPi(pi *ast.PiExpr) (Result, error) {
	dom, domLvl, err := t.checkParamType(pi.Param)
	if err != nil {
		return Result{}, err
	}
	param := core.Param{Var: pi.Param.Var, Type: dom, Explicit: pi.Param.Explicit}
	return t.ctx.With(param, func() (Result, error) {
		cod, codLvl, err := t.CheckType(pi.Body)
		if err != nil {
			return Result{}, err
		}
		return Result{Term: core.PiTerm{Param: param, Body: cod}, Type: core.UnivTerm{Lift: max(domLvl, codLvl)}}, nil
	})
}

func (t *ExprTycker) synthSigma(sigma *ast.SigmaExpr) (Result, error) {
	tele := make(core.Telescope, 0, len(sigma.Params))
	defer func() { t.ctx.Remove(tele.Vars()...) }()
	level := 0
	for _, p := range sigma.Params {
		ty, lvl, err := t.checkParamType(p)
		if err != nil {
			return Result{}, err
		}
		level = max(level, lvl)
		t.ctx.Put(p.Var, ty)
		tele = append(tele, core.Param{Var: p.Var, Type: ty, Explicit: p.Explicit})
	}
	return Result{Term: core.SigmaTerm{Params: tele}, Type: core.UnivTerm{Lift: level}}, nil
}

func (t *ExprTycker) synthApp(app *ast.AppExpr) (Result, error) {
	f, err := t.Synthesize(app.Fn)
	if err != nil {
		return Result{}, err
	}
	if isError(f.Term) || isError(f.Type) {
		return f, nil
	}
	term := f.Term
	arg := app.Arg
	fTy := t.whnf(f.Type)
	if hole, ok := fTy.(core.MetaTerm); ok {
		pi := t.asPi(hole, arg.Explicit, app.Pos)
		t.Unifier(app.Pos).Compare(fTy, pi, Eq)
		fTy = t.whnf(fTy)
	}
	pi, ok := fTy.(core.PiTerm)
	if !ok {
		return t.fail(app, errorType(app), diagnostics.ErrT002, "%s is not a pi type (type of %s)", t.state.Freeze(fTy), app.Fn), nil
	}
	for pi.Param.Explicit != arg.Explicit || arg.Name != "" && pi.Param.Var.Name != arg.Name {
		if pi.Param.Explicit {
			if arg.Name != "" {
				return t.fail(app, errorType(app), diagnostics.ErrT003, "no implicit parameter named %s in %s", arg.Name, t.state.Freeze(f.Type)), nil
			}
			return t.fail(app, errorType(app), diagnostics.ErrT003, "unexpected implicit argument {%s}", arg.Expr), nil
		}
		mock := t.mockArg(pi.Param, arg.Expr.GetPos())
		term = core.MakeApp(term, mock)
		next, ok := t.whnf(core.Substitute(pi.Body, core.Subst{pi.Param.Var: mock.Term})).(core.PiTerm)
		if !ok {
			return t.fail(app, errorType(app), diagnostics.ErrT002, "%s is applied to too many arguments", app.Fn), nil
		}
		pi = next
	}
	res, err := t.Inherit(arg.Expr, pi.Param.Type)
	if err != nil {
		return Result{}, err
	}
	term = core.MakeApp(term, core.Arg{Term: res.Term, Explicit: arg.Explicit})
	return Result{Term: term, Type: core.Substitute(pi.Body, core.Subst{pi.Param.Var: res.Term})}, nil
}

// inferRef elaborates a reference to a definition into its eta-long form.
func (t *ExprTycker) inferRef(ref *ast.RefExpr, v *core.DefVar) (Result, error) {
	sig := v.Signature()
	if sig == nil {
		return Result{}, fatalf(ref.Pos, "%s %s has no checked signature", v.Kind, v.Name)
	}
	if v.Kind == core.KindField {
		return Result{Term: core.FieldRefTerm{Field: v}, Type: core.MakePi(sig.SelfTelescope(), sig.Result)}, nil
	}
	tele, _ := core.RenameTele(sig.Telescope)
	var body core.Term
	switch v.Kind {
	case core.KindFn:
		body = core.FnCall{Ref: v, Args: tele.Args()}
		if fn, ok := v.Core().(*core.FnDef); ok && fn.Modifiers.Has(core.ModInline) {
			body = t.whnf(body)
		}
	case core.KindData:
		body = core.DataCall{Ref: v, Args: tele.Args()}
	case core.KindStruct:
		body = core.StructCall{Ref: v, Args: tele.Args()}
	case core.KindPrim:
		body = core.PrimCall{Ref: v, Args: tele.Args()}
	case core.KindCtor:
		owner, self := tele[:sig.Owner], tele[sig.Owner:]
		body = core.ConCall{Ref: v, DataRef: v.Owner, DataArgs: owner.Args(), Args: self.Args()}
	default:
		panic(diagnostics.Internalf("reference to %s of kind %s", v.Name, v.Kind))
	}
	return Result{Term: core.MakeLam(tele, body), Type: sig.Type()}, nil
}

func (t *ExprTycker) synthNew(e *ast.NewExpr) (Result, error) {
	structRes, err := t.Synthesize(e.Struct)
	if err != nil {
		return Result{}, err
	}
	call, ok := t.instImplicitsTerm(structRes.Term, e.Struct.GetPos()).(core.StructCall)
	if !ok {
		return t.fail(e, errorType(e), diagnostics.ErrT002, "%s is not a struct type", t.state.Freeze(structRes.Term)), nil
	}
	def, ok := call.Ref.Core().(*core.StructDef)
	if !ok {
		return Result{}, fatalf(e.Pos, "struct %s is used before it is checked", call.Ref.Name)
	}

	s := make(core.Subst, len(def.Tele)+len(def.Fields))
	for i, p := range def.Tele {
		s[p.Var] = call.Args[i].Term
	}
	remaining := append([]*ast.FieldAssign{}, e.Fields...)
	var fields []core.FieldValue
	var missing []string
	for _, field := range def.Fields {
		idx := -1
		for i, assign := range remaining {
			if assign.Name == field.Var.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			if field.Body == nil {
				missing = append(missing, field.Var.Name)
				continue
			}
			value := core.Substitute(field.Body, s)
			fields = append(fields, core.FieldValue{Field: field.Var, Value: value})
			s[field.Var] = value
			continue
		}
		assign := remaining[idx]
		remaining = append(remaining[:idx], remaining[idx+1:]...)

		selfTele := core.SubstTele(field.SelfTele, s)
		fieldType := core.Substitute(core.MakePi(field.SelfTele, field.Result), s)
		if len(assign.Bindings) > len(selfTele) {
			return t.fail(e, call, diagnostics.ErrT004, "field %s takes %d arguments, got %d", field.Var.Name, len(selfTele), len(assign.Bindings)), nil
		}
		var body ast.Expr = assign.Body
		for i := len(assign.Bindings) - 1; i >= 0; i-- {
			body = &ast.LamExpr{
				Pos:   assign.Pos,
				Param: &ast.Param{Pos: assign.Bindings[i].Pos, Var: assign.Bindings[i], Explicit: selfTele[i].Explicit},
				Body:  body,
			}
		}
		res, err := t.Inherit(body, fieldType)
		if err != nil {
			return Result{}, err
		}
		fields = append(fields, core.FieldValue{Field: field.Var, Value: res.Term})
		s[field.Var] = res.Term
	}

	if len(missing) > 0 {
		return t.fail(e, call, diagnostics.ErrT004, "missing fields: %s", strings.Join(missing, ", ")), nil
	}
	if len(remaining) > 0 {
		names := make([]string, len(remaining))
		for i, r := range remaining {
			names[i] = r.Name
		}
		return t.fail(e, call, diagnostics.ErrT004, "no such fields: %s", strings.Join(names, ", ")), nil
	}
	return Result{Term: core.NewTerm{Struct: call, Fields: fields}, Type: call}, nil
}

func (t *ExprTycker) synthProj(e *ast.ProjExpr) (Result, error) {
	res, err := t.Synthesize(e.Tup)
	if err != nil {
		return Result{}, err
	}
	res = t.instImplicits(res, e.Tup.GetPos())
	if isError(res.Type) {
		return Result{Term: core.ErrorTerm{Desc: e.String()}, Type: res.Type}, nil
	}

	if e.Ix > 0 {
		sigma, ok := t.whnf(res.Type).(core.SigmaTerm)
		if !ok {
			return t.fail(e, errorType(e), diagnostics.ErrT002, "%s is not a sigma type (projecting .%d)", t.state.Freeze(res.Type), e.Ix), nil
		}
		if e.Ix > len(sigma.Params) {
			return t.fail(e, errorType(e), diagnostics.ErrT009, "index %d is out of bounds for %d components", e.Ix, len(sigma.Params)), nil
		}
		s := make(core.Subst, e.Ix-1)
		for j := 0; j < e.Ix-1; j++ {
			s[sigma.Params[j].Var] = core.ProjTerm{Tup: res.Term, Ix: j + 1}
		}
		return Result{Term: core.ProjTerm{Tup: res.Term, Ix: e.Ix}, Type: core.Substitute(sigma.Params[e.Ix-1].Type, s)}, nil
	}

	call, ok := t.whnf(res.Type).(core.StructCall)
	if !ok {
		return t.fail(e, errorType(e), diagnostics.ErrT002, "%s is not a struct type (accessing .%s)", t.state.Freeze(res.Type), e.Field), nil
	}
	field := e.ResolvedField
	if field == nil || field.Owner != call.Ref || field.Signature() == nil {
		return t.fail(e, errorType(e), diagnostics.ErrT004, "no field %s in %s", e.Field, call.Ref.Name), nil
	}

	// Struct parameters become the call's arguments; earlier fields become
	// accesses on the same value.
	s := make(core.Subst)
	for _, member := range call.Ref.Members {
		if member == field {
			break
		}
		if msig := member.Signature(); msig != nil {
			mtele, _ := core.RenameTele(msig.SelfTelescope())
			s[member] = core.MakeLam(mtele, core.AccessTerm{Of: res.Term, Field: member, StructArgs: call.Args, FieldArgs: mtele.Args()})
		}
	}
	sig := field.Signature()
	for i, p := range sig.Telescope[:sig.Owner] {
		s[p.Var] = call.Args[i].Term
	}
	tele := core.SubstTele(sig.SelfTelescope(), s)
	renamed, rs := core.RenameTele(tele)
	access := core.AccessTerm{Of: res.Term, Field: field, StructArgs: call.Args, FieldArgs: renamed.Args()}
	result := core.Substitute(core.Substitute(sig.Result, s), rs)
	return Result{Term: core.MakeLam(renamed, access), Type: core.MakePi(renamed, result)}, nil
}
