package typelib

import "errors"

var errBridge = errors.New("bridge failure")

func ptr(value string) *string {
	return &value
}

func method(id MemberID, name string, invokeKind InvokeKind, paramNames ...string) FuncDecl {
	params := make([]ElemDesc, len(paramNames))
	for i := range params {
		params[i] = ElemDesc{Type: VTBstr}
	}
	return FuncDecl{
		Name:       name,
		ParamNames: paramNames,
		Desc: FuncDesc{
			MemberID:   id,
			InvokeKind: invokeKind,
			FuncKind:   FuncPureVirtual,
			ReturnType: ElemDesc{Type: VTHresult},
			Params:     params,
		},
	}
}

func variable(id MemberID, name string, kind VarKind) VarDecl {
	return VarDecl{
		Name: name,
		Desc: VarDesc{MemberID: id, VarKind: kind, ElemType: ElemDesc{Type: VTI4}},
	}
}

func mustGUID(text string) GUID {
	guid, err := ParseGUID(text)
	if err != nil {
		panic(err)
	}
	return guid
}

// Wraps a MemoryBridge and injects failures into the TypeInfo of one entry.
type failingBridge struct {
	*MemoryBridge
	entry         int
	failDoc       bool
	failTypeInfo  bool
	failTypeAttr  bool
	failFuncAt    int
	failVarAt     int
	failMemberDoc MemberID
}

func newFailingBridge(inner *MemoryBridge, entry int) *failingBridge {
	return &failingBridge{MemoryBridge: inner, entry: entry, failFuncAt: -1, failVarAt: -1, failMemberDoc: -1}
}

func (bridge *failingBridge) Documentation(index int) (Documentation, error) {
	if index == bridge.entry && bridge.failDoc {
		return Documentation{}, errBridge
	}
	return bridge.MemoryBridge.Documentation(index)
}

func (bridge *failingBridge) TypeInfo(index int) (TypeInfo, error) {
	if index == bridge.entry && bridge.failTypeInfo {
		return nil, errBridge
	}
	info, err := bridge.MemoryBridge.TypeInfo(index)
	if err != nil || index != bridge.entry {
		return info, err
	}
	return &failingTypeInfo{info, bridge}, nil
}

type failingTypeInfo struct {
	TypeInfo
	bridge *failingBridge
}

func (info *failingTypeInfo) TypeAttr() (TypeAttr, error) {
	if info.bridge.failTypeAttr {
		return TypeAttr{}, errBridge
	}
	return info.TypeInfo.TypeAttr()
}

func (info *failingTypeInfo) FuncDesc(position int) (*FuncDesc, error) {
	if position == info.bridge.failFuncAt {
		return nil, errBridge
	}
	return info.TypeInfo.FuncDesc(position)
}

func (info *failingTypeInfo) VarDesc(position int) (*VarDesc, error) {
	if position == info.bridge.failVarAt {
		return nil, errBridge
	}
	return info.TypeInfo.VarDesc(position)
}

func (info *failingTypeInfo) Documentation(id MemberID) (Documentation, error) {
	if id == info.bridge.failMemberDoc {
		return Documentation{}, errBridge
	}
	return info.TypeInfo.Documentation(id)
}
