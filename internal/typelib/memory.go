package typelib

import (
	"fmt"
	"sync"
)

// Declaration of an entry served by a MemoryBridge. The counts of the type
// attribute are taken from the member slices.
type EntryDecl struct {
	Name      string
	DocString *string
	Attr      TypeAttr
	Funcs     []FuncDecl
	Vars      []VarDecl
	ImplTypes []ImplType
}

type FuncDecl struct {
	Name       string
	DocString  *string
	ParamNames []string
	Desc       FuncDesc
}

type VarDecl struct {
	Name      string
	DocString *string
	Desc      VarDesc
}

// A Bridge serving declarations held in memory. It keeps track of the
// descriptors handed out so callers can check every one of them was
// released.
type MemoryBridge struct {
	entries []EntryDecl

	mu          sync.Mutex
	outstanding map[any]struct{}
}

func NewMemoryBridge(entries ...EntryDecl) *MemoryBridge {
	return &MemoryBridge{
		entries:     entries,
		outstanding: make(map[any]struct{}),
	}
}

func (bridge *MemoryBridge) EntryCount() int {
	return len(bridge.entries)
}

func (bridge *MemoryBridge) Documentation(index int) (Documentation, error) {
	if index < 0 || index >= len(bridge.entries) {
		return Documentation{}, fmt.Errorf("entry %d: %w", index, ErrIndexOutOfRange)
	}
	entry := bridge.entries[index]
	return Documentation{Name: entry.Name, DocString: entry.DocString}, nil
}

func (bridge *MemoryBridge) TypeInfo(index int) (TypeInfo, error) {
	if index < 0 || index >= len(bridge.entries) {
		return nil, fmt.Errorf("entry %d: %w", index, ErrIndexOutOfRange)
	}
	return &memoryTypeInfo{bridge, &bridge.entries[index]}, nil
}

// Number of descriptors handed out and not yet released.
func (bridge *MemoryBridge) Outstanding() int {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	return len(bridge.outstanding)
}

func (bridge *MemoryBridge) acquire(desc any) {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	bridge.outstanding[desc] = struct{}{}
}

func (bridge *MemoryBridge) release(desc any) {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	if _, found := bridge.outstanding[desc]; !found {
		panic(fmt.Sprintf("release of a descriptor not handed out by this bridge: %v", desc))
	}
	delete(bridge.outstanding, desc)
}

type memoryTypeInfo struct {
	bridge *MemoryBridge
	entry  *EntryDecl
}

func (info *memoryTypeInfo) TypeAttr() (TypeAttr, error) {
	attr := info.entry.Attr
	attr.FuncCount = len(info.entry.Funcs)
	attr.VarCount = len(info.entry.Vars)
	attr.ImplTypeCount = len(info.entry.ImplTypes)
	return attr, nil
}

func (info *memoryTypeInfo) FuncDesc(position int) (*FuncDesc, error) {
	if position < 0 || position >= len(info.entry.Funcs) {
		return nil, fmt.Errorf("function %d of %s: %w", position, info.entry.Name, ErrIndexOutOfRange)
	}
	desc := info.entry.Funcs[position].Desc
	info.bridge.acquire(&desc)
	return &desc, nil
}

func (info *memoryTypeInfo) ReleaseFuncDesc(desc *FuncDesc) {
	info.bridge.release(desc)
}

func (info *memoryTypeInfo) VarDesc(position int) (*VarDesc, error) {
	if position < 0 || position >= len(info.entry.Vars) {
		return nil, fmt.Errorf("variable %d of %s: %w", position, info.entry.Name, ErrIndexOutOfRange)
	}
	desc := info.entry.Vars[position].Desc
	info.bridge.acquire(&desc)
	return &desc, nil
}

func (info *memoryTypeInfo) ReleaseVarDesc(desc *VarDesc) {
	info.bridge.release(desc)
}

func (info *memoryTypeInfo) Documentation(id MemberID) (Documentation, error) {
	for _, function := range info.entry.Funcs {
		if function.Desc.MemberID == id {
			return Documentation{Name: function.Name, DocString: function.DocString}, nil
		}
	}
	for _, variable := range info.entry.Vars {
		if variable.Desc.MemberID == id {
			return Documentation{Name: variable.Name, DocString: variable.DocString}, nil
		}
	}
	return Documentation{}, fmt.Errorf("member id %d of %s: %w", id, info.entry.Name, ErrIndexOutOfRange)
}

func (info *memoryTypeInfo) Names(id MemberID) ([]string, error) {
	for _, function := range info.entry.Funcs {
		if function.Desc.MemberID == id {
			return append([]string{function.Name}, function.ParamNames...), nil
		}
	}
	for _, variable := range info.entry.Vars {
		if variable.Desc.MemberID == id {
			return []string{variable.Name}, nil
		}
	}
	return nil, fmt.Errorf("member id %d of %s: %w", id, info.entry.Name, ErrIndexOutOfRange)
}

func (info *memoryTypeInfo) ImplTypes() ([]ImplType, error) {
	return append([]ImplType(nil), info.entry.ImplTypes...), nil
}
