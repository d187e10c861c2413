// The package providing type library bridges backed by metadata files.
package metadata

import (
	"debug/pe"
	"fmt"
	"gotlb/internal/typelib"
	"strings"

	"github.com/microsoft/go-winmd"
	"github.com/microsoft/go-winmd/flags"
)

// Member ids of fields carry this bit so they do not collide with methods.
const fieldMemberBit typelib.MemberID = 0x40000000

const (
	typeAttributesInterface = 0x20
	fieldAttributesStatic   = 0x10
	fieldAttributesLiteral  = 0x40
)

// A typelib.Bridge over a Windows metadata (.winmd) file.
//
// Every TypeDef is an entry. Interface TypeDefs are reported as
// TKIND_INTERFACE, the Apis class as TKIND_MODULE and everything else as
// TKIND_RECORD. WinMD keeps GUIDs in custom attributes which are not
// decoded, so all entries report the null GUID.
type WinMdReader struct {
	metadata winmd.Metadata
}

// The map of basic element types to variant types
var builtInElementTypes map[flags.ElementType]typelib.VarType = map[flags.ElementType]typelib.VarType{
	flags.ElementType_BOOLEAN: typelib.VTBool,
	flags.ElementType_CHAR:    typelib.VTUI2,
	flags.ElementType_STRING:  typelib.VTBstr,
	flags.ElementType_I1:      typelib.VTI1,
	flags.ElementType_I2:      typelib.VTI2,
	flags.ElementType_I4:      typelib.VTI4,
	flags.ElementType_I8:      typelib.VTI8,
	flags.ElementType_U1:      typelib.VTUI1,
	flags.ElementType_U2:      typelib.VTUI2,
	flags.ElementType_U4:      typelib.VTUI4,
	flags.ElementType_U8:      typelib.VTUI8,
	flags.ElementType_R4:      typelib.VTR4,
	flags.ElementType_R8:      typelib.VTR8,
	flags.ElementType_PTR:     typelib.VTPtr,
	flags.ElementType_ARRAY:   typelib.VTCArray,
}

// The map of Win32 typedefs and well known interfaces to variant types
var builtInTypeDefs map[string]typelib.VarType = map[string]typelib.VarType{
	"BOOL":         typelib.VTI4,
	"HRESULT":      typelib.VTHresult,
	"BSTR":         typelib.VTBstr,
	"VARIANT":      typelib.VTVariant,
	"VARIANT_BOOL": typelib.VTBool,
	"PWSTR":        typelib.VTLpwstr,
	"PSTR":         typelib.VTLpstr,
	"IUnknown":     typelib.VTUnknown,
	"IDispatch":    typelib.VTDispatch,
}

// Opens the metadata file under given path.
func OpenWinMD(winMdPath string) (*WinMdReader, error) {
	peFile, err := pe.Open(winMdPath)
	if err != nil {
		return nil, fmt.Errorf("could not open metadata file: %w", err)
	}
	defer peFile.Close()

	winmdMetadata, err := winmd.New(peFile)
	if err != nil {
		return nil, fmt.Errorf("could not read metadata from '%s': %w", winMdPath, err)
	}

	return &WinMdReader{*winmdMetadata}, nil
}

func (reader *WinMdReader) EntryCount() int {
	return int(reader.metadata.Tables.TypeDef.Len)
}

func (reader *WinMdReader) Documentation(index int) (typelib.Documentation, error) {
	typeDef, err := reader.typeDef(index)
	if err != nil {
		return typelib.Documentation{}, err
	}
	return typelib.Documentation{Name: typeDef.Name.String()}, nil
}

func (reader *WinMdReader) TypeInfo(index int) (typelib.TypeInfo, error) {
	typeDef, err := reader.typeDef(index)
	if err != nil {
		return nil, err
	}
	return &winMdTypeInfo{reader, typeDef}, nil
}

// Finds the index of the TypeDef with given name.
func (reader *WinMdReader) IndexOf(name string) (int, bool) {
	return findIndexInTable(
		reader.metadata.Tables.TypeDef,
		func(typeDef *winmd.TypeDef) bool { return typeDef.Name.String() == name })
}

func (reader *WinMdReader) typeDef(index int) (*winmd.TypeDef, error) {
	if index < 0 || index >= reader.EntryCount() {
		return nil, fmt.Errorf("type definition %d: %w", index, typelib.ErrIndexOutOfRange)
	}
	typeDef, err := reader.metadata.Tables.TypeDef.Record(winmd.Index(index))
	if err != nil {
		return nil, fmt.Errorf("no matching type definition was found: %w", err)
	}
	return typeDef, nil
}

func (reader *WinMdReader) varType(sigType winmd.SigType) typelib.VarType {
	if sigType.Kind == flags.ElementType_VOID {
		return typelib.VTVoid
	}

	builtInType, found := builtInElementTypes[sigType.Kind]
	if found {
		return builtInType
	}

	codedIndex, ok := sigType.Value.(winmd.CodedIndex)
	if !ok {
		return typelib.VTUserDefined
	}
	typeRef, err := reader.metadata.Tables.TypeRef.Record(codedIndex.Index)
	if err != nil {
		return typelib.VTUserDefined
	}
	builtInType, found = builtInTypeDefs[typeRef.Name.String()]
	if found {
		return builtInType
	}

	return typelib.VTUserDefined
}

type winMdTypeInfo struct {
	reader  *WinMdReader
	typeDef *winmd.TypeDef
}

func (info *winMdTypeInfo) TypeAttr() (typelib.TypeAttr, error) {
	kind := typelib.TKindRecord
	if uint32(info.typeDef.Flags)&typeAttributesInterface != 0 {
		kind = typelib.TKindInterface
	} else if info.typeDef.Name.String() == "Apis" {
		kind = typelib.TKindModule
	}

	return typelib.TypeAttr{
		GUID:      typelib.IIDNull,
		TypeKind:  kind,
		FuncCount: int(info.typeDef.MethodList.End - info.typeDef.MethodList.Start),
		VarCount:  int(info.typeDef.FieldList.End - info.typeDef.FieldList.Start),
	}, nil
}

func (info *winMdTypeInfo) FuncDesc(position int) (*typelib.FuncDesc, error) {
	methodIndex, err := listIndex(info.typeDef.MethodList.Start, info.typeDef.MethodList.End, position)
	if err != nil {
		return nil, err
	}
	methodDef, err := info.reader.metadata.Tables.MethodDef.Record(methodIndex)
	if err != nil {
		return nil, fmt.Errorf("no matching method was found: %w", err)
	}
	methodSignature, err := info.reader.metadata.MethodDefSignature(methodDef.Signature)
	if err != nil {
		return nil, fmt.Errorf("no matching signature for method '%s' was found: %w", methodDef.Name.String(), err)
	}

	desc := &typelib.FuncDesc{
		MemberID:     typelib.MemberID(methodIndex),
		InvokeKind:   invokeKind(methodDef.Name.String()),
		FuncKind:     typelib.FuncPureVirtual,
		VtableOffset: int16(position * 8),
		ReturnType:   typelib.ElemDesc{Type: info.reader.varType(methodSignature.RetType.Type)},
		Params:       make([]typelib.ElemDesc, 0, len(methodSignature.Param)),
	}

	params, err := info.params(methodDef, len(methodSignature.Param))
	if err != nil {
		return nil, err
	}
	for i, methodParam := range methodSignature.Param {
		elemDesc := typelib.ElemDesc{Type: info.reader.varType(methodParam.Type)}
		if i < len(params) {
			elemDesc.Flags = uint16(params[i].Flags)
		}
		desc.Params = append(desc.Params, elemDesc)
	}

	return desc, nil
}

func (info *winMdTypeInfo) ReleaseFuncDesc(*typelib.FuncDesc) {}

func (info *winMdTypeInfo) VarDesc(position int) (*typelib.VarDesc, error) {
	fieldIndex, err := listIndex(info.typeDef.FieldList.Start, info.typeDef.FieldList.End, position)
	if err != nil {
		return nil, err
	}
	field, err := info.reader.metadata.Tables.Field.Record(fieldIndex)
	if err != nil {
		return nil, fmt.Errorf("no matching field was found: %w", err)
	}
	fieldSignature, err := info.reader.metadata.FieldSignature(field.Signature)
	if err != nil {
		return nil, fmt.Errorf("no matching field signature for field '%s' was found: %w", field.Name.String(), err)
	}

	kind := typelib.VarPerInstance
	if uint32(field.Flags)&fieldAttributesLiteral != 0 {
		kind = typelib.VarConst
	} else if uint32(field.Flags)&fieldAttributesStatic != 0 {
		kind = typelib.VarStatic
	}

	return &typelib.VarDesc{
		MemberID: typelib.MemberID(fieldIndex) | fieldMemberBit,
		VarKind:  kind,
		ElemType: typelib.ElemDesc{Type: info.reader.varType(fieldSignature.Type)},
	}, nil
}

func (info *winMdTypeInfo) ReleaseVarDesc(*typelib.VarDesc) {}

func (info *winMdTypeInfo) Documentation(id typelib.MemberID) (typelib.Documentation, error) {
	if id&fieldMemberBit != 0 {
		field, err := info.reader.metadata.Tables.Field.Record(winmd.Index(id &^ fieldMemberBit))
		if err != nil {
			return typelib.Documentation{}, fmt.Errorf("no matching field was found: %w", err)
		}
		return typelib.Documentation{Name: field.Name.String()}, nil
	}

	methodDef, err := info.reader.metadata.Tables.MethodDef.Record(winmd.Index(id))
	if err != nil {
		return typelib.Documentation{}, fmt.Errorf("no matching method was found: %w", err)
	}
	return typelib.Documentation{Name: memberName(methodDef.Name.String())}, nil
}

func (info *winMdTypeInfo) Names(id typelib.MemberID) ([]string, error) {
	doc, err := info.Documentation(id)
	if err != nil {
		return nil, err
	}
	if id&fieldMemberBit != 0 {
		return []string{doc.Name}, nil
	}

	methodDef, err := info.reader.metadata.Tables.MethodDef.Record(winmd.Index(id))
	if err != nil {
		return nil, fmt.Errorf("no matching method was found: %w", err)
	}
	methodSignature, err := info.reader.metadata.MethodDefSignature(methodDef.Signature)
	if err != nil {
		return nil, fmt.Errorf("no matching signature for method '%s' was found: %w", methodDef.Name.String(), err)
	}
	params, err := info.params(methodDef, len(methodSignature.Param))
	if err != nil {
		return nil, err
	}

	names := []string{doc.Name}
	for _, param := range params {
		names = append(names, param.Name.String())
	}
	return names, nil
}

// Reads the Param rows of a method. A leading row describing the return
// value is skipped.
func (info *winMdTypeInfo) params(methodDef *winmd.MethodDef, signatureParams int) ([]winmd.Param, error) {
	start := methodDef.ParamList.Start
	if int(methodDef.ParamList.End-start) > signatureParams {
		start++
	}

	params := make([]winmd.Param, 0, signatureParams)
	for idx := start; idx < methodDef.ParamList.End; idx++ {
		param, err := info.reader.metadata.Tables.Param.Record(idx)
		if err != nil {
			return nil, fmt.Errorf("no matching parameter was found: %w", err)
		}
		params = append(params, *param)
	}
	return params, nil
}

func listIndex(start winmd.Index, end winmd.Index, position int) (winmd.Index, error) {
	if position < 0 || position >= int(end-start) {
		return 0, fmt.Errorf("member %d: %w", position, typelib.ErrIndexOutOfRange)
	}
	return start + winmd.Index(position), nil
}

var accessorPrefixes = []struct {
	prefix string
	kind   typelib.InvokeKind
}{
	{"putref_", typelib.InvokePropertyPutRef},
	{"put_", typelib.InvokePropertyPut},
	{"get_", typelib.InvokePropertyGet},
}

// COM property accessors are emitted as get_X, put_X and putref_X methods.
func invokeKind(methodName string) typelib.InvokeKind {
	for _, accessor := range accessorPrefixes {
		if strings.HasPrefix(methodName, accessor.prefix) {
			return accessor.kind
		}
	}
	return typelib.InvokeFunc
}

func memberName(methodName string) string {
	for _, accessor := range accessorPrefixes {
		if strings.HasPrefix(methodName, accessor.prefix) {
			return strings.TrimPrefix(methodName, accessor.prefix)
		}
	}
	return methodName
}

// Finds element in given table and returns its index.
func findIndexInTable[T any, TP winmd.Record[T]](table winmd.Table[T, TP], match func(TP) bool) (int, bool) {
	for idx := uint32(0); idx < table.Len; idx++ {
		element, err := table.Record(winmd.Index(idx))
		if err != nil {
			return 0, false
		}
		if match(element) {
			return int(idx), true
		}
	}

	return 0, false
}
