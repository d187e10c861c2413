package typelib

import "fmt"

// An opened type library. The bridge is owned by the caller; Library only
// reads from it and never releases it.
type Library struct {
	name   string
	bridge Bridge
}

func NewLibrary(name string, bridge Bridge) *Library {
	return &Library{name, bridge}
}

func (library *Library) Name() string {
	return library.name
}

func (library *Library) Bridge() Bridge {
	return library.bridge
}

func (library *Library) EntryCount() int {
	return library.bridge.EntryCount()
}

func (library *Library) String() string {
	return fmt.Sprintf("Library{name=%s, entries=%d}", library.name, library.EntryCount())
}

// Builds an Interface for every interface and dispatch interface entry, in
// index order. The first bridge failure aborts the enumeration.
func (library *Library) Interfaces() ([]*Interface, error) {
	interfaces := make([]*Interface, 0)
	for index := 0; index < library.EntryCount(); index++ {
		kind, err := library.typeKind(index)
		if err != nil {
			return nil, err
		}
		if kind != TKindInterface && kind != TKindDispatch {
			continue
		}

		tlbInterface, err := NewInterface(library, index)
		if err != nil {
			return nil, err
		}
		interfaces = append(interfaces, tlbInterface)
	}

	return interfaces, nil
}

// Sets the usage-role flags of interfaces from the coclasses of the library.
// An interface listed as a source of a coclass is marked as used as source,
// the default non-source interface of a coclass is marked as used as
// implementation. Coclasses whose TypeInfo cannot list implemented types are
// skipped. Interfaces not present in the given slice are ignored.
func (library *Library) Link(interfaces []*Interface) error {
	byIndex := make(map[int]*Interface, len(interfaces))
	for _, tlbInterface := range interfaces {
		byIndex[tlbInterface.Index()] = tlbInterface
	}

	for index := 0; index < library.EntryCount(); index++ {
		info, err := library.typeInfo(index)
		if err != nil {
			return err
		}
		attr, err := info.TypeAttr()
		if err != nil {
			return newBridgeError(library, index, -1, "get type attributes", err)
		}
		if attr.TypeKind != TKindCoClass {
			continue
		}

		lister, ok := info.(ImplTypeLister)
		if !ok {
			continue
		}
		implTypes, err := lister.ImplTypes()
		if err != nil {
			return newBridgeError(library, index, -1, "get implemented types", err)
		}

		for _, implType := range implTypes {
			target, found := byIndex[implType.RefIndex]
			if !found {
				continue
			}
			if implType.Flags.Has(ImplTypeFlagSource) {
				target.SetUsedAsSource(true)
			} else if implType.Flags.Has(ImplTypeFlagDefault) {
				target.SetUsedAsImplementation(true)
			}
		}
	}

	return nil
}

func (library *Library) typeInfo(index int) (TypeInfo, error) {
	if index < 0 || index >= library.EntryCount() {
		return nil, newBridgeError(library, index, -1, "get type info", ErrIndexOutOfRange)
	}

	info, err := library.bridge.TypeInfo(index)
	if err != nil {
		return nil, newBridgeError(library, index, -1, "get type info", err)
	}
	return info, nil
}

func (library *Library) typeKind(index int) (TypeKind, error) {
	info, err := library.typeInfo(index)
	if err != nil {
		return 0, err
	}
	attr, err := info.TypeAttr()
	if err != nil {
		return 0, newBridgeError(library, index, -1, "get type attributes", err)
	}
	return attr.TypeKind, nil
}
