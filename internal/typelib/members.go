package typelib

import (
	"fmt"
	"slices"
)

type Parameter struct {
	Name  string
	Type  VarType
	Flags uint16
}

// A function of an interface, copied out of its descriptor.
type FunctionMember struct {
	Name               string
	DocString          *string
	MemberID           MemberID
	InvokeKind         InvokeKind
	FuncKind           FuncKind
	VtableOffset       int16
	ReturnType         VarType
	Params             []Parameter
	OptionalParamCount int
	FuncFlags          uint16
}

// A variable of an interface, copied out of its descriptor.
type VariableMember struct {
	Name      string
	DocString *string
	MemberID  MemberID
	VarKind   VarKind
	Type      VarType
	VarFlags  uint16
	Value     any
}

// The descriptor is only read, the caller still owns and releases it.
func newFunctionMember(desc *FuncDesc, doc Documentation, names []string) FunctionMember {
	params := make([]Parameter, len(desc.Params))
	for i, param := range desc.Params {
		// names[0] is the function itself; property setters leave the value unnamed
		name := fmt.Sprintf("param%d", i)
		if i+1 < len(names) && names[i+1] != "" {
			name = names[i+1]
		}
		params[i] = Parameter{Name: name, Type: param.Type, Flags: param.Flags}
	}

	return FunctionMember{
		Name:               doc.Name,
		DocString:          doc.DocString,
		MemberID:           desc.MemberID,
		InvokeKind:         desc.InvokeKind,
		FuncKind:           desc.FuncKind,
		VtableOffset:       desc.VtableOffset,
		ReturnType:         desc.ReturnType.Type,
		Params:             params,
		OptionalParamCount: desc.OptionalParamCount,
		FuncFlags:          desc.FuncFlags,
	}
}

func newVariableMember(desc *VarDesc, doc Documentation) VariableMember {
	return VariableMember{
		Name:      doc.Name,
		DocString: doc.DocString,
		MemberID:  desc.MemberID,
		VarKind:   desc.VarKind,
		Type:      desc.ElemType.Type,
		VarFlags:  desc.VarFlags,
		Value:     desc.Value,
	}
}

// Copies the member so that the copy shares no parameters or doc string
// with the original.
func (function FunctionMember) clone() FunctionMember {
	function.Params = slices.Clone(function.Params)
	function.DocString = cloneString(function.DocString)
	return function
}

// Constant values are scalars, so only the doc string needs copying.
func (variable VariableMember) clone() VariableMember {
	variable.DocString = cloneString(variable.DocString)
	return variable
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func (function FunctionMember) String() string {
	return fmt.Sprintf("TlbFunction{name=%s, memid=%d, invkind=%s, params=%d}",
		function.Name, function.MemberID, function.InvokeKind, len(function.Params))
}

func (variable VariableMember) String() string {
	return fmt.Sprintf("TlbVariable{name=%s, memid=%d, varkind=%s, type=%s}",
		variable.Name, variable.MemberID, variable.VarKind, variable.Type)
}
