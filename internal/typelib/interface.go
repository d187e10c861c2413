package typelib

import "fmt"

// A COM interface or dispatch interface with its user-visible members.
//
// Functions and variables are kept in declaration order. Members belonging
// to the IUnknown, IDispatch and enumerator plumbing are left out, as are
// property-put-by-reference functions, which binding generators do not
// support.
type Interface struct {
	Entry

	dispatch  bool
	typeFlags TypeFlags
	functions []FunctionMember
	variables []VariableMember

	// Written by Library.Link before the interface is handed to a
	// generator. Single writer, no synchronization.
	usedAsSource         bool
	usedAsImplementation bool
}

// Reads the interface at index. A bridge failure on any member fails the
// whole interface.
func NewInterface(library *Library, index int) (*Interface, error) {
	entry, info, attr, err := readEntry(library, index)
	if err != nil {
		return nil, err
	}

	tlbInterface := &Interface{
		Entry:     entry,
		dispatch:  attr.TypeKind == TKindDispatch,
		typeFlags: attr.TypeFlags,
		functions: make([]FunctionMember, 0, attr.FuncCount),
		variables: make([]VariableMember, 0, attr.VarCount),
	}

	for position := 0; position < attr.FuncCount; position++ {
		function, include, err := readFunction(library, index, info, position)
		if err != nil {
			return nil, err
		}
		if include {
			tlbInterface.functions = append(tlbInterface.functions, function)
		}
	}

	for position := 0; position < attr.VarCount; position++ {
		variable, include, err := readVariable(library, index, info, position)
		if err != nil {
			return nil, err
		}
		if include {
			tlbInterface.variables = append(tlbInterface.variables, variable)
		}
	}

	return tlbInterface, nil
}

func readFunction(library *Library, index int, info TypeInfo, position int) (FunctionMember, bool, error) {
	desc, err := info.FuncDesc(position)
	if err != nil {
		return FunctionMember{}, false, newBridgeError(library, index, position, "get function descriptor", err)
	}
	defer info.ReleaseFuncDesc(desc)

	doc, err := info.Documentation(desc.MemberID)
	if err != nil {
		return FunctionMember{}, false, newBridgeError(library, index, position, "get function documentation", err)
	}

	// PROPERTYPUTREF is not handled by generators, skip the declaration
	if IsReservedMethod(doc.Name) || desc.InvokeKind == InvokePropertyPutRef {
		return FunctionMember{}, false, nil
	}

	names, err := info.Names(desc.MemberID)
	if err != nil {
		return FunctionMember{}, false, newBridgeError(library, index, position, "get function names", err)
	}

	return newFunctionMember(desc, doc, names), true, nil
}

func readVariable(library *Library, index int, info TypeInfo, position int) (VariableMember, bool, error) {
	desc, err := info.VarDesc(position)
	if err != nil {
		return VariableMember{}, false, newBridgeError(library, index, position, "get variable descriptor", err)
	}
	defer info.ReleaseVarDesc(desc)

	doc, err := info.Documentation(desc.MemberID)
	if err != nil {
		return VariableMember{}, false, newBridgeError(library, index, position, "get variable documentation", err)
	}

	if IsReservedMethod(doc.Name) {
		return VariableMember{}, false, nil
	}

	return newVariableMember(desc, doc), true, nil
}

// Reports whether the entry is a dispinterface (TKIND_DISPATCH).
func (tlbInterface *Interface) IsDispatch() bool {
	return tlbInterface.dispatch
}

func (tlbInterface *Interface) TypeFlags() TypeFlags {
	return tlbInterface.typeFlags
}

func (tlbInterface *Interface) IsDual() bool {
	return tlbInterface.typeFlags.Has(TypeFlagDual)
}

func (tlbInterface *Interface) IsDispatchable() bool {
	return tlbInterface.typeFlags.Has(TypeFlagDispatchable)
}

func (tlbInterface *Interface) IsOleautomation() bool {
	return tlbInterface.typeFlags.Has(TypeFlagOleAutomation)
}

// Returns a copy of the functions in declaration order.
func (tlbInterface *Interface) Functions() []FunctionMember {
	functions := make([]FunctionMember, len(tlbInterface.functions))
	for i, function := range tlbInterface.functions {
		functions[i] = function.clone()
	}
	return functions
}

// Returns a copy of the variables in declaration order.
func (tlbInterface *Interface) Variables() []VariableMember {
	variables := make([]VariableMember, len(tlbInterface.variables))
	for i, variable := range tlbInterface.variables {
		variables[i] = variable.clone()
	}
	return variables
}

// The variables of kind VAR_DISPATCH, in declaration order.
func (tlbInterface *Interface) DispatchableVariables() []VariableMember {
	result := make([]VariableMember, 0)
	for _, variable := range tlbInterface.variables {
		if variable.VarKind == VarDispatch {
			result = append(result, variable.clone())
		}
	}
	return result
}

func (tlbInterface *Interface) UsedAsSource() bool {
	return tlbInterface.usedAsSource
}

// Meant to be called once by the linking pass, before any read.
func (tlbInterface *Interface) SetUsedAsSource(usedAsSource bool) {
	tlbInterface.usedAsSource = usedAsSource
}

func (tlbInterface *Interface) UsedAsImplementation() bool {
	return tlbInterface.usedAsImplementation
}

// Meant to be called once by the linking pass, before any read.
func (tlbInterface *Interface) SetUsedAsImplementation(usedAsImplementation bool) {
	tlbInterface.usedAsImplementation = usedAsImplementation
}

func (tlbInterface *Interface) String() string {
	return fmt.Sprintf("TlbInterface{%s, dispatch=%t, functions=%v}",
		tlbInterface.Entry, tlbInterface.dispatch, tlbInterface.functions)
}
