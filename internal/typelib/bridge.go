// The package used for modeling COM type libraries for binding generators.
//
// A type library is read through a Bridge, the introspection facility that
// exposes raw documentation, type attributes and member descriptors of every
// entry. The package turns those records into Entry and Interface values and
// never writes back to the bridge.
package typelib

// Identifies a function or variable inside a single type (MEMBERID)
type MemberID int32

// The introspection facility for one opened type library.
type Bridge interface {
	// Number of entries in the library. Valid indices are [0, EntryCount).
	EntryCount() int
	Documentation(index int) (Documentation, error)
	TypeInfo(index int) (TypeInfo, error)
}

// Per-entry introspection. Descriptors returned by FuncDesc and VarDesc must
// be handed back to ReleaseFuncDesc and ReleaseVarDesc after use.
type TypeInfo interface {
	TypeAttr() (TypeAttr, error)
	FuncDesc(position int) (*FuncDesc, error)
	ReleaseFuncDesc(desc *FuncDesc)
	VarDesc(position int) (*VarDesc, error)
	ReleaseVarDesc(desc *VarDesc)
	Documentation(id MemberID) (Documentation, error)
	// Returns the member name followed by its parameter names.
	Names(id MemberID) ([]string, error)
}

// Implemented by TypeInfo values able to list the interfaces of a coclass.
type ImplTypeLister interface {
	ImplTypes() ([]ImplType, error)
}

// Name and doc string of an entry or member. Nil means the library does
// not carry the value.
type Documentation struct {
	Name      string
	DocString *string
}

type TypeAttr struct {
	GUID          GUID
	TypeKind      TypeKind
	TypeFlags     TypeFlags
	FuncCount     int
	VarCount      int
	ImplTypeCount int
}

type ElemDesc struct {
	Type  VarType
	Flags uint16
}

type FuncDesc struct {
	MemberID           MemberID
	InvokeKind         InvokeKind
	FuncKind           FuncKind
	VtableOffset       int16
	ReturnType         ElemDesc
	Params             []ElemDesc
	OptionalParamCount int
	FuncFlags          uint16
}

type VarDesc struct {
	MemberID MemberID
	VarKind  VarKind
	ElemType ElemDesc
	VarFlags uint16
	// Set only for VarConst.
	Value any
}

// An interface implemented by a coclass. RefIndex is the library index of
// the implemented interface.
type ImplType struct {
	RefIndex int
	Flags    ImplTypeFlags
}
