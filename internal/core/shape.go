package core

// NatShape records that a data type looks like Peano naturals: no parameters, a
// nullary constructor and a constructor taking one argument of the type itself.
// Integer literals of such a type stand for constructor chains.
type NatShape struct {
	Data *DefVar
	Zero *DefVar
	Suc  *DefVar
}

// RecognizeNat checks data for the Nat shape. Member signatures must be checked.
func RecognizeNat(data *DefVar) (NatShape, bool) {
	if data == nil || data.Kind != KindData || len(data.Members) != 2 {
		return NatShape{}, false
	}
	if sig := data.Signature(); sig == nil || len(sig.Telescope) != 0 {
		return NatShape{}, false
	}
	shape := NatShape{Data: data}
	for _, ctor := range data.Members {
		sig := ctor.Signature()
		if sig == nil {
			return NatShape{}, false
		}
		self := sig.SelfTelescope()
		switch len(self) {
		case 0:
			if shape.Zero != nil {
				return NatShape{}, false
			}
			shape.Zero = ctor
		case 1:
			call, ok := self[0].Type.(DataCall)
			if !ok || call.Ref != data || len(call.Args) != 0 || !self[0].Explicit || shape.Suc != nil {
				return NatShape{}, false
			}
			shape.Suc = ctor
		default:
			return NatShape{}, false
		}
	}
	return shape, shape.Zero != nil && shape.Suc != nil
}

// ConstructorForm unfolds one step of the literal: 0 is zero, n is suc (n-1).
func (t IntLitTerm) ConstructorForm() ConCall {
	if t.Value == 0 {
		return ConCall{Ref: t.Shape.Zero, DataRef: t.Shape.Data}
	}
	pred := IntLitTerm{Value: t.Value - 1, Shape: t.Shape, Type: t.Type}
	return ConCall{Ref: t.Shape.Suc, DataRef: t.Shape.Data, Args: []Arg{{Term: pred, Explicit: true}}}
}
