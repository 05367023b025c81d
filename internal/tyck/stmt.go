package tyck

import (
	"errors"
	"fmt"

	"github.com/funvibe/tyck/internal/ast"
	"github.com/funvibe/tyck/internal/config"
	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/diagnostics"
	"github.com/funvibe/tyck/internal/source"
	"github.com/funvibe/tyck/internal/tyck/pat"
)

// Verdict summarizes the clause checks of one function.
type Verdict struct {
	Fn        *core.DefVar
	Covered   bool
	Confluent bool
	Dominated []int
}

// StmtTycker checks the declarations of a program. Headers of all declarations
// are checked first, in order, so that bodies may refer to any declaration.
type StmtTycker struct {
	reporter diagnostics.Reporter
	cfg      *config.Config
	prims    *core.PrimFactory
	defs     []core.Def
	verdicts []Verdict
}

func NewStmtTycker(reporter diagnostics.Reporter, cfg *config.Config, prims *core.PrimFactory) *StmtTycker {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if prims == nil {
		prims = core.NewPrimFactory()
	}
	return &StmtTycker{reporter: reporter, cfg: cfg, prims: prims}
}

// Defs returns the definitions filled so far, in the order they were filled.
func (s *StmtTycker) Defs() []core.Def { return s.defs }

// Verdicts returns one verdict per function defined by clauses.
func (s *StmtTycker) Verdicts() []Verdict { return s.verdicts }

// CheckProgram checks every declaration of prog. Problems are reported; a
// declaration that cannot be checked is skipped and leaves its slot unchecked.
func (s *StmtTycker) CheckProgram(prog *ast.Program) []core.Def {
	for _, decl := range prog.Decls {
		s.guard(decl, func() error { return s.checkHeader(decl) })
	}
	for _, decl := range prog.Decls {
		if fn, ok := decl.(*ast.FnDecl); ok && fn.Ref.Signature() != nil && !fn.Ref.IsChecked() {
			s.guard(decl, func() error { return s.checkFnBody(fn) })
		}
	}
	return s.defs
}

// guard reports a fatal error of one declaration and lets the others go on.
func (s *StmtTycker) guard(decl ast.Decl, check func() error) {
	err := check()
	if err == nil {
		return
	}
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		panic(diagnostics.Internalf("checking %s: %v", decl, err))
	}
	s.reporter.Report(fatal.Problem.WithHint("while checking %s", decl))
}

func (s *StmtTycker) newTycker() *ExprTycker {
	return NewExprTycker(s.reporter, Options{
		Prims:       s.prims,
		UnfoldLimit: s.cfg.UnfoldLimit,
		ShowGoals:   s.cfg.GoalsEnabled(),
	})
}

func (s *StmtTycker) fill(def core.Def) {
	def.Ref().Fill(def)
	s.defs = append(s.defs, def)
}

// finish solves what is left and reports goals of one declaration.
func finish(t *ExprTycker) *Zonker {
	t.SolveMetas()
	t.ReportGoals()
	return t.Zonker()
}

func (s *StmtTycker) checkHeader(decl ast.Decl) error {
	switch d := decl.(type) {
	case *ast.DataDecl:
		return s.checkData(d)
	case *ast.StructDecl:
		return s.checkStruct(d)
	case *ast.FnDecl:
		return s.checkFnHeader(d)
	case *ast.PrimDecl:
		if _, err := s.prims.Create(d.Ref); err != nil {
			return fatalf(d.Pos, "%v", err)
		}
		s.defs = append(s.defs, d.Ref.Core())
		return nil
	}
	panic(diagnostics.Internalf("unknown declaration %T", decl))
}

// checkResultUniv elaborates the result of a data or struct declaration, which
// must be a universe. A missing result is Type 0.
func (s *StmtTycker) checkResultUniv(t *ExprTycker, result ast.Expr) (core.UnivTerm, error) {
	if result == nil {
		return core.UnivTerm{Lift: 0}, nil
	}
	res, err := t.Synthesize(result)
	if err != nil {
		return core.UnivTerm{}, err
	}
	univ, ok := t.whnf(res.Term).(core.UnivTerm)
	if !ok {
		t.report(diagnostics.ErrT002, result.GetPos(), fmt.Sprintf("%s is not a universe", t.state.Freeze(res.Term)))
		return core.UnivTerm{Lift: 0}, nil
	}
	return univ, nil
}

func (s *StmtTycker) checkData(d *ast.DataDecl) (err error) {
	t := s.newTycker()
	tele, err := t.CheckTele(d.Tele)
	if err != nil {
		return err
	}
	univ, err := s.checkResultUniv(t, d.Result)
	if err != nil {
		return err
	}
	d.Ref.SetSignature(&core.Signature{Telescope: tele, Result: univ})
	defer func() {
		if err != nil {
			d.Ref.SetSignature(nil)
		}
	}()

	self := core.DataCall{Ref: d.Ref, Args: tele.Args()}
	ctorTeles := make([]core.Telescope, len(d.Ctors))
	for i, ctor := range d.Ctors {
		ctorTele, err := s.checkMemberTele(t, ctor.Tele, univ, ctor.Ref)
		if err != nil {
			return err
		}
		ctorTeles[i] = ctorTele
	}

	z := finish(t)
	tele = z.ZonkTele(tele, d.Pos)
	def := &core.DataDef{Var: d.Ref, Tele: tele, Result: univ}
	for i, ctor := range d.Ctors {
		def.Ctors = append(def.Ctors, &core.CtorDef{
			Var:       ctor.Ref,
			DataRef:   d.Ref,
			OwnerTele: tele,
			SelfTele:  z.ZonkTele(ctorTeles[i], ctor.Pos),
			Result:    self,
		})
	}
	d.Ref.SetSignature(nil)
	s.fill(def)
	for _, ctor := range def.Ctors {
		s.fill(ctor)
	}
	return nil
}

// checkMemberTele checks the telescope of a constructor against the level of
// its data type, leaving the owner parameters bound.
func (s *StmtTycker) checkMemberTele(t *ExprTycker, params []*ast.Param, univ core.UnivTerm, ref *core.DefVar) (core.Telescope, error) {
	tele := make(core.Telescope, 0, len(params))
	defer func() { t.ctx.Remove(tele.Vars()...) }()
	for _, p := range params {
		ty, lvl, err := t.checkParamType(p)
		if err != nil {
			return nil, err
		}
		if lvl > univ.Lift {
			t.report(diagnostics.ErrT005, p.Pos,
				fmt.Sprintf("parameter %s of %s lives in Type %d, above %s", p.Var.Name, ref.Name, lvl, univ))
		}
		t.ctx.Put(p.Var, ty)
		tele = append(tele, core.Param{Var: p.Var, Type: ty, Explicit: p.Explicit})
	}
	return tele, nil
}

func (s *StmtTycker) checkStruct(d *ast.StructDecl) (err error) {
	t := s.newTycker()
	tele, err := t.CheckTele(d.Tele)
	if err != nil {
		return err
	}
	univ, err := s.checkResultUniv(t, d.Result)
	if err != nil {
		return err
	}
	d.Ref.SetSignature(&core.Signature{Telescope: tele, Result: univ})
	defer func() {
		if err != nil {
			d.Ref.SetSignature(nil)
			for _, f := range d.Fields {
				if !f.Ref.IsChecked() {
					f.Ref.SetSignature(nil)
				}
			}
		}
	}()

	fields := make([]*core.FieldDef, len(d.Fields))
	for i, f := range d.Fields {
		field, err := s.checkField(t, f, tele, univ)
		if err != nil {
			return err
		}
		fields[i] = field
		// Later fields see this one through its signature.
		f.Ref.SetSignature(field.Signature())
	}

	z := finish(t)
	tele = z.ZonkTele(tele, d.Pos)
	def := &core.StructDef{Var: d.Ref, Tele: tele, Result: univ}
	for i, field := range fields {
		field.OwnerTele = tele
		field.SelfTele = z.ZonkTele(field.SelfTele, d.Fields[i].Pos)
		field.Result = z.Zonk(field.Result, d.Fields[i].Pos)
		if field.Body != nil {
			field.Body = z.Zonk(field.Body, d.Fields[i].Pos)
		}
		d.Fields[i].Ref.SetSignature(nil)
		def.Fields = append(def.Fields, field)
	}
	d.Ref.SetSignature(nil)
	s.fill(def)
	for _, field := range def.Fields {
		s.fill(field)
	}
	return nil
}

func (s *StmtTycker) checkField(t *ExprTycker, f *ast.StructField, owner core.Telescope, univ core.UnivTerm) (*core.FieldDef, error) {
	self, err := s.checkMemberTele(t, f.Tele, univ, f.Ref)
	if err != nil {
		return nil, err
	}
	t.ctx.PutTele(self)
	defer t.ctx.Remove(self.Vars()...)

	result, lvl, err := t.CheckType(f.Result)
	if err != nil {
		return nil, err
	}
	if lvl > univ.Lift {
		t.report(diagnostics.ErrT005, f.Result.GetPos(),
			fmt.Sprintf("field %s lives in Type %d, above %s", f.Ref.Name, lvl, univ))
	}
	field := &core.FieldDef{Var: f.Ref, StructRef: f.Ref.Owner, OwnerTele: owner, SelfTele: self, Result: result}
	if f.Body != nil {
		res, err := t.Inherit(f.Body, result)
		if err != nil {
			return nil, err
		}
		field.Body = core.MakeLam(self, res.Term)
	}
	return field, nil
}

func (s *StmtTycker) checkFnHeader(d *ast.FnDecl) error {
	t := s.newTycker()
	tele, err := t.CheckTele(d.Tele)
	if err != nil {
		return err
	}
	if d.Result == nil {
		return fatalf(d.Pos, "function %s has no result type", d.Ref.Name)
	}
	result, _, err := t.CheckType(d.Result)
	if err != nil {
		return err
	}
	z := finish(t)
	d.Ref.SetSignature(&core.Signature{Telescope: z.ZonkTele(tele, d.Pos), Result: z.Zonk(result, d.Pos)})
	return nil
}

func (s *StmtTycker) checkFnBody(d *ast.FnDecl) error {
	sig := d.Ref.Signature()
	t := s.newTycker()
	def := &core.FnDef{Var: d.Ref, Tele: sig.Telescope, Result: sig.Result, Modifiers: d.Modifiers}

	if d.Body != nil {
		t.ctx.PutTele(sig.Telescope)
		res, err := t.Inherit(d.Body, sig.Result)
		if err != nil {
			return err
		}
		def.Body = finish(t).Zonk(res.Term, d.Body.GetPos())
		d.Ref.SetSignature(nil)
		s.fill(def)
		return nil
	}

	pt := NewPatTycker(t)
	allOK := true
	for _, c := range d.Clauses {
		clause, ok, err := pt.CheckClause(c, sig)
		if err != nil {
			return err
		}
		if !ok {
			allOK = false
			continue
		}
		def.Clauses = append(def.Clauses, clause)
	}
	z := finish(t)
	for i := range def.Clauses {
		if def.Clauses[i].Body != nil {
			def.Clauses[i].Body = z.Zonk(def.Clauses[i].Body, def.Clauses[i].Pos)
		}
	}

	if allOK {
		s.verdicts = append(s.verdicts, s.checkClauses(t, def, d.Pos))
	}
	d.Ref.SetSignature(nil)
	s.fill(def)
	return nil
}

// checkClauses runs coverage, dominance and confluence checks on a function
// whose clauses all elaborated.
func (s *StmtTycker) checkClauses(t *ExprTycker, def *core.FnDef, pos source.Pos) Verdict {
	t.Overlay(def)
	classifier := pat.NewClassifier(t.whnf, s.reporter, pos)
	classes := classifier.Classify(def.Clauses, def.Tele)
	v := Verdict{Fn: def.Var, Covered: classifier.Covered(), Confluent: true}

	v.Dominated = pat.Dominated(def.Clauses, classes)
	for _, ix := range v.Dominated {
		c := def.Clauses[ix]
		t.report(diagnostics.ErrP003, c.Pos, fmt.Sprintf("clause %d of %s is never reached", ix+1, def.Var.Name))
	}

	if s.cfg.Confluence == config.ConfluenceAlways || def.Modifiers.Has(core.ModOverlap) {
		equal := func(lhs, rhs core.Term, ctx core.Telescope) bool {
			lc := NewLocalCtx()
			lc.PutTele(ctx)
			return NewDefEq(t.state, lc, t.norm, pos).Compare(lhs, rhs, Eq)
		}
		v.Confluent = pat.Confluence(def.Clauses, classes, equal, s.reporter)
	}
	return v
}
