package metadata

import (
	"fmt"
	"gotlb/internal/typelib"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// First automatically assigned member ids, as MIDL does for dual interfaces.
const (
	autoFunctionID typelib.MemberID = 0x60020000
	autoVariableID typelib.MemberID = 0x60030000
)

type yamlLibrary struct {
	Name    string      `yaml:"name"`
	Entries []yamlEntry `yaml:"entries"`
}

type yamlEntry struct {
	Name       string         `yaml:"name"`
	Kind       string         `yaml:"kind"`
	GUID       string         `yaml:"guid"`
	Doc        *string        `yaml:"doc"`
	Flags      []string       `yaml:"flags"`
	Functions  []yamlFunction `yaml:"functions"`
	Variables  []yamlVariable `yaml:"variables"`
	Implements []yamlImplType `yaml:"implements"`
}

type yamlFunction struct {
	Name     string      `yaml:"name"`
	ID       *int32      `yaml:"id"`
	Doc      *string     `yaml:"doc"`
	Invoke   string      `yaml:"invoke"`
	Kind     string      `yaml:"kind"`
	Returns  string      `yaml:"returns"`
	Params   []yamlParam `yaml:"params"`
	Optional int         `yaml:"optional"`
}

type yamlParam struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Flags uint16 `yaml:"flags"`
}

type yamlVariable struct {
	Name  string  `yaml:"name"`
	ID    *int32  `yaml:"id"`
	Doc   *string `yaml:"doc"`
	Kind  string  `yaml:"kind"`
	Type  string  `yaml:"type"`
	Value any     `yaml:"value"`
}

type yamlImplType struct {
	Ref   string   `yaml:"ref"`
	Flags []string `yaml:"flags"`
}

var implTypeFlagNames = map[string]typelib.ImplTypeFlags{
	"default":       typelib.ImplTypeFlagDefault,
	"source":        typelib.ImplTypeFlagSource,
	"restricted":    typelib.ImplTypeFlagRestricted,
	"defaultvtable": typelib.ImplTypeFlagDefaultVtable,
}

// Reads a YAML type library description from the file under given path.
func LoadYAML(path string) (*typelib.Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read type library description: %w", err)
	}

	library, err := ReadYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if library.Name() == "" {
		return typelib.NewLibrary(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), library.Bridge()), nil
	}
	return library, nil
}

// Builds a library served from memory out of a YAML description.
func ReadYAML(data []byte) (*typelib.Library, error) {
	var description yamlLibrary
	if err := yaml.Unmarshal(data, &description); err != nil {
		return nil, fmt.Errorf("invalid type library description: %w", err)
	}

	indices := make(map[string]int, len(description.Entries))
	for i, entry := range description.Entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("entry %d has no name", i)
		}
		if previous, found := indices[entry.Name]; found {
			return nil, fmt.Errorf("entry %d: name '%s' is already used by entry %d", i, entry.Name, previous)
		}
		indices[entry.Name] = i
	}

	decls := make([]typelib.EntryDecl, 0, len(description.Entries))
	for _, entry := range description.Entries {
		decl, err := entry.decl(indices)
		if err != nil {
			return nil, fmt.Errorf("entry '%s': %w", entry.Name, err)
		}
		decls = append(decls, decl)
	}

	return typelib.NewLibrary(description.Name, typelib.NewMemoryBridge(decls...)), nil
}

func (entry yamlEntry) decl(indices map[string]int) (typelib.EntryDecl, error) {
	decl := typelib.EntryDecl{Name: entry.Name, DocString: entry.Doc}

	decl.Attr.TypeKind = typelib.TKindInterface
	if entry.Kind != "" {
		kind, err := parseTypeKind(entry.Kind)
		if err != nil {
			return decl, err
		}
		decl.Attr.TypeKind = kind
	}

	if entry.GUID != "" {
		guid, err := typelib.ParseGUID(entry.GUID)
		if err != nil {
			return decl, err
		}
		decl.Attr.GUID = guid
	}

	for _, name := range entry.Flags {
		flag, err := parseTypeFlag(name)
		if err != nil {
			return decl, err
		}
		decl.Attr.TypeFlags |= flag
	}

	for position, function := range entry.Functions {
		funcDecl, err := function.decl(autoFunctionID + typelib.MemberID(position))
		if err != nil {
			return decl, fmt.Errorf("function '%s': %w", function.Name, err)
		}
		decl.Funcs = append(decl.Funcs, funcDecl)
	}

	for position, variable := range entry.Variables {
		varDecl, err := variable.decl(autoVariableID + typelib.MemberID(position))
		if err != nil {
			return decl, fmt.Errorf("variable '%s': %w", variable.Name, err)
		}
		decl.Vars = append(decl.Vars, varDecl)
	}

	for _, implemented := range entry.Implements {
		refIndex, found := indices[implemented.Ref]
		if !found {
			return decl, fmt.Errorf("implemented type '%s' is not declared", implemented.Ref)
		}
		implType := typelib.ImplType{RefIndex: refIndex}
		for _, name := range implemented.Flags {
			flag, found := implTypeFlagNames[strings.ToLower(name)]
			if !found {
				return decl, fmt.Errorf("unknown implemented type flag '%s'", name)
			}
			implType.Flags |= flag
		}
		decl.ImplTypes = append(decl.ImplTypes, implType)
	}

	return decl, nil
}

func (function yamlFunction) decl(autoID typelib.MemberID) (typelib.FuncDecl, error) {
	desc := typelib.FuncDesc{
		MemberID:           autoID,
		InvokeKind:         typelib.InvokeFunc,
		FuncKind:           typelib.FuncPureVirtual,
		ReturnType:         typelib.ElemDesc{Type: typelib.VTHresult},
		OptionalParamCount: function.Optional,
	}
	if function.ID != nil {
		desc.MemberID = typelib.MemberID(*function.ID)
	}

	if function.Invoke != "" {
		invokeKind, err := parseInvokeKind(function.Invoke)
		if err != nil {
			return typelib.FuncDecl{}, err
		}
		desc.InvokeKind = invokeKind
	}

	if function.Kind != "" {
		funcKind, err := parseFuncKind(function.Kind)
		if err != nil {
			return typelib.FuncDecl{}, err
		}
		desc.FuncKind = funcKind
	}

	if function.Returns != "" {
		returnType, err := parseVarType(function.Returns)
		if err != nil {
			return typelib.FuncDecl{}, err
		}
		desc.ReturnType.Type = returnType
	}

	names := make([]string, 0, len(function.Params))
	for _, param := range function.Params {
		paramType, err := parseVarType(param.Type)
		if err != nil {
			return typelib.FuncDecl{}, fmt.Errorf("parameter '%s': %w", param.Name, err)
		}
		desc.Params = append(desc.Params, typelib.ElemDesc{Type: paramType, Flags: param.Flags})
		names = append(names, param.Name)
	}

	return typelib.FuncDecl{Name: function.Name, DocString: function.Doc, ParamNames: names, Desc: desc}, nil
}

func (variable yamlVariable) decl(autoID typelib.MemberID) (typelib.VarDecl, error) {
	desc := typelib.VarDesc{
		MemberID: autoID,
		VarKind:  typelib.VarDispatch,
		ElemType: typelib.ElemDesc{Type: typelib.VTVariant},
		Value:    variable.Value,
	}
	if variable.ID != nil {
		desc.MemberID = typelib.MemberID(*variable.ID)
	}

	if variable.Kind != "" {
		varKind, err := parseVarKind(variable.Kind)
		if err != nil {
			return typelib.VarDecl{}, err
		}
		desc.VarKind = varKind
	}

	if variable.Type != "" {
		varType, err := parseVarType(variable.Type)
		if err != nil {
			return typelib.VarDecl{}, err
		}
		desc.ElemType.Type = varType
	}

	return typelib.VarDecl{Name: variable.Name, DocString: variable.Doc, Desc: desc}, nil
}

func parseTypeKind(name string) (typelib.TypeKind, error) {
	for kind := typelib.TKindEnum; kind <= typelib.TKindUnion; kind++ {
		if strings.EqualFold(kind.String(), name) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown type kind '%s'", name)
}

func parseTypeFlag(name string) (typelib.TypeFlags, error) {
	for flag := typelib.TypeFlagAppObject; flag <= typelib.TypeFlagProxy; flag <<= 1 {
		if strings.EqualFold(flag.String(), name) {
			return flag, nil
		}
	}
	return 0, fmt.Errorf("unknown type flag '%s'", name)
}

func parseInvokeKind(name string) (typelib.InvokeKind, error) {
	for _, kind := range []typelib.InvokeKind{typelib.InvokeFunc, typelib.InvokePropertyGet, typelib.InvokePropertyPut, typelib.InvokePropertyPutRef} {
		if strings.EqualFold(kind.String(), name) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown invoke kind '%s'", name)
}

func parseFuncKind(name string) (typelib.FuncKind, error) {
	for kind := typelib.FuncVirtual; kind <= typelib.FuncDispatch; kind++ {
		if strings.EqualFold(kind.String(), name) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown function kind '%s'", name)
}

func parseVarKind(name string) (typelib.VarKind, error) {
	for kind := typelib.VarPerInstance; kind <= typelib.VarDispatch; kind++ {
		if strings.EqualFold(kind.String(), name) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown variable kind '%s'", name)
}

func parseVarType(name string) (typelib.VarType, error) {
	varType, found := typelib.ParseVarType(name)
	if !found {
		return 0, fmt.Errorf("unknown variant type '%s'", name)
	}
	return varType, nil
}
