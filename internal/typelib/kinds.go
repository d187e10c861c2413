package typelib

import (
	"fmt"
	"strings"
)

// The kind of a type library entry (TYPEKIND)
type TypeKind int32

const (
	TKindEnum TypeKind = iota
	TKindRecord
	TKindModule
	TKindInterface
	TKindDispatch
	TKindCoClass
	TKindAlias
	TKindUnion
)

var typeKindNames = map[TypeKind]string{
	TKindEnum:      "enum",
	TKindRecord:    "record",
	TKindModule:    "module",
	TKindInterface: "interface",
	TKindDispatch:  "dispatch",
	TKindCoClass:   "coclass",
	TKindAlias:     "alias",
	TKindUnion:     "union",
}

func (k TypeKind) String() string {
	if name, found := typeKindNames[k]; found {
		return name
	}
	return fmt.Sprintf("TypeKind(%d)", int32(k))
}

// The way a member is accessed (INVOKEKIND)
type InvokeKind int32

const (
	InvokeFunc           InvokeKind = 1
	InvokePropertyGet    InvokeKind = 2
	InvokePropertyPut    InvokeKind = 4
	InvokePropertyPutRef InvokeKind = 8
)

func (k InvokeKind) String() string {
	switch k {
	case InvokeFunc:
		return "func"
	case InvokePropertyGet:
		return "propget"
	case InvokePropertyPut:
		return "propput"
	case InvokePropertyPutRef:
		return "propputref"
	}
	return fmt.Sprintf("InvokeKind(%d)", int32(k))
}

// VARKIND
type VarKind int32

const (
	VarPerInstance VarKind = iota
	VarStatic
	VarConst
	VarDispatch
)

func (k VarKind) String() string {
	switch k {
	case VarPerInstance:
		return "perinstance"
	case VarStatic:
		return "static"
	case VarConst:
		return "const"
	case VarDispatch:
		return "dispatch"
	}
	return fmt.Sprintf("VarKind(%d)", int32(k))
}

// FUNCKIND
type FuncKind int32

const (
	FuncVirtual FuncKind = iota
	FuncPureVirtual
	FuncNonVirtual
	FuncStatic
	FuncDispatch
)

func (k FuncKind) String() string {
	switch k {
	case FuncVirtual:
		return "virtual"
	case FuncPureVirtual:
		return "purevirtual"
	case FuncNonVirtual:
		return "nonvirtual"
	case FuncStatic:
		return "static"
	case FuncDispatch:
		return "dispatch"
	}
	return fmt.Sprintf("FuncKind(%d)", int32(k))
}

// The capability bitmask of a type (TYPEFLAGS)
type TypeFlags uint16

const (
	TypeFlagAppObject     TypeFlags = 0x1
	TypeFlagCanCreate     TypeFlags = 0x2
	TypeFlagLicensed      TypeFlags = 0x4
	TypeFlagPredeclID     TypeFlags = 0x8
	TypeFlagHidden        TypeFlags = 0x10
	TypeFlagControl       TypeFlags = 0x20
	TypeFlagDual          TypeFlags = 0x40
	TypeFlagNonExtensible TypeFlags = 0x80
	TypeFlagOleAutomation TypeFlags = 0x100
	TypeFlagRestricted    TypeFlags = 0x200
	TypeFlagAggregatable  TypeFlags = 0x400
	TypeFlagReplaceable   TypeFlags = 0x800
	TypeFlagDispatchable  TypeFlags = 0x1000
	TypeFlagReverseBind   TypeFlags = 0x2000
	TypeFlagProxy         TypeFlags = 0x4000
)

var typeFlagNames = []struct {
	flag TypeFlags
	name string
}{
	{TypeFlagAppObject, "appobject"},
	{TypeFlagCanCreate, "cancreate"},
	{TypeFlagLicensed, "licensed"},
	{TypeFlagPredeclID, "predeclid"},
	{TypeFlagHidden, "hidden"},
	{TypeFlagControl, "control"},
	{TypeFlagDual, "dual"},
	{TypeFlagNonExtensible, "nonextensible"},
	{TypeFlagOleAutomation, "oleautomation"},
	{TypeFlagRestricted, "restricted"},
	{TypeFlagAggregatable, "aggregatable"},
	{TypeFlagReplaceable, "replaceable"},
	{TypeFlagDispatchable, "dispatchable"},
	{TypeFlagReverseBind, "reversebind"},
	{TypeFlagProxy, "proxy"},
}

// Reports whether every bit of flag is set.
func (f TypeFlags) Has(flag TypeFlags) bool {
	return f&flag == flag
}

func (f TypeFlags) String() string {
	names := make([]string, 0)
	rest := f
	for _, entry := range typeFlagNames {
		if f.Has(entry.flag) {
			names = append(names, entry.name)
			rest &^= entry.flag
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint16(rest)))
	}
	return strings.Join(names, "|")
}

// IMPLTYPEFLAGS
type ImplTypeFlags int32

const (
	ImplTypeFlagDefault       ImplTypeFlags = 0x1
	ImplTypeFlagSource        ImplTypeFlags = 0x2
	ImplTypeFlagRestricted    ImplTypeFlags = 0x4
	ImplTypeFlagDefaultVtable ImplTypeFlags = 0x8
)

func (f ImplTypeFlags) Has(flag ImplTypeFlags) bool {
	return f&flag == flag
}

// Variant type of a parameter, return value or variable (VARTYPE).
// Only the base types are named, modifiers are kept as raw bits.
type VarType uint16

const (
	VTEmpty       VarType = 0
	VTNull        VarType = 1
	VTI2          VarType = 2
	VTI4          VarType = 3
	VTR4          VarType = 4
	VTR8          VarType = 5
	VTCy          VarType = 6
	VTDate        VarType = 7
	VTBstr        VarType = 8
	VTDispatch    VarType = 9
	VTError       VarType = 10
	VTBool        VarType = 11
	VTVariant     VarType = 12
	VTUnknown     VarType = 13
	VTDecimal     VarType = 14
	VTI1          VarType = 16
	VTUI1         VarType = 17
	VTUI2         VarType = 18
	VTUI4         VarType = 19
	VTI8          VarType = 20
	VTUI8         VarType = 21
	VTInt         VarType = 22
	VTUint        VarType = 23
	VTVoid        VarType = 24
	VTHresult     VarType = 25
	VTPtr         VarType = 26
	VTSafeArray   VarType = 27
	VTCArray      VarType = 28
	VTUserDefined VarType = 29
	VTLpstr       VarType = 30
	VTLpwstr      VarType = 31

	VTVector VarType = 0x1000
	VTArray  VarType = 0x2000
	VTByRef  VarType = 0x4000
)

var varTypeNames = map[VarType]string{
	VTEmpty:       "VT_EMPTY",
	VTNull:        "VT_NULL",
	VTI2:          "VT_I2",
	VTI4:          "VT_I4",
	VTR4:          "VT_R4",
	VTR8:          "VT_R8",
	VTCy:          "VT_CY",
	VTDate:        "VT_DATE",
	VTBstr:        "VT_BSTR",
	VTDispatch:    "VT_DISPATCH",
	VTError:       "VT_ERROR",
	VTBool:        "VT_BOOL",
	VTVariant:     "VT_VARIANT",
	VTUnknown:     "VT_UNKNOWN",
	VTDecimal:     "VT_DECIMAL",
	VTI1:          "VT_I1",
	VTUI1:         "VT_UI1",
	VTUI2:         "VT_UI2",
	VTUI4:         "VT_UI4",
	VTI8:          "VT_I8",
	VTUI8:         "VT_UI8",
	VTInt:         "VT_INT",
	VTUint:        "VT_UINT",
	VTVoid:        "VT_VOID",
	VTHresult:     "VT_HRESULT",
	VTPtr:         "VT_PTR",
	VTSafeArray:   "VT_SAFEARRAY",
	VTCArray:      "VT_CARRAY",
	VTUserDefined: "VT_USERDEFINED",
	VTLpstr:       "VT_LPSTR",
	VTLpwstr:      "VT_LPWSTR",
}

// Looks up a variant type by its VT_* name. Modifiers are not accepted.
func ParseVarType(name string) (VarType, bool) {
	upper := strings.ToUpper(name)
	if !strings.HasPrefix(upper, "VT_") {
		upper = "VT_" + upper
	}
	for vt, vtName := range varTypeNames {
		if vtName == upper {
			return vt, true
		}
	}
	return 0, false
}

func (t VarType) String() string {
	base := t &^ (VTVector | VTArray | VTByRef)
	name, found := varTypeNames[base]
	if !found {
		name = fmt.Sprintf("VT(%d)", uint16(base))
	}
	if t&VTVector != 0 {
		name += "|VT_VECTOR"
	}
	if t&VTArray != 0 {
		name += "|VT_ARRAY"
	}
	if t&VTByRef != 0 {
		name += "|VT_BYREF"
	}
	return name
}
