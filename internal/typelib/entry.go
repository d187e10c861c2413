package typelib

import "fmt"

// Identity snapshot of a named entry of a type library. All fields are read
// once at construction and never change afterwards.
type Entry struct {
	library   *Library
	index     int
	name      string
	guid      GUID
	docString *string
}

// Comparable identity of an entry, used for diagnostics.
type EntryIdentity struct {
	Name         string
	GUID         string
	DocString    string
	HasDocString bool
	Index        int
}

// Reads the entry at index from the library bridge.
func NewEntry(library *Library, index int) (Entry, error) {
	entry, _, _, err := readEntry(library, index)
	return entry, err
}

func readEntry(library *Library, index int) (Entry, TypeInfo, TypeAttr, error) {
	if index < 0 || index >= library.EntryCount() {
		return Entry{}, nil, TypeAttr{}, newBridgeError(library, index, -1, "get documentation", ErrIndexOutOfRange)
	}

	doc, err := library.bridge.Documentation(index)
	if err != nil {
		return Entry{}, nil, TypeAttr{}, newBridgeError(library, index, -1, "get documentation", err)
	}

	info, err := library.typeInfo(index)
	if err != nil {
		return Entry{}, nil, TypeAttr{}, err
	}

	attr, err := info.TypeAttr()
	if err != nil {
		return Entry{}, nil, TypeAttr{}, newBridgeError(library, index, -1, "get type attributes", err)
	}

	entry := Entry{
		library:   library,
		index:     index,
		name:      doc.Name,
		guid:      attr.GUID,
		docString: doc.DocString,
	}
	return entry, info, attr, nil
}

func (entry Entry) Name() string {
	return entry.name
}

func (entry Entry) Index() int {
	return entry.index
}

// The GUID in its canonical braced form. Not present when the library
// reports the null GUID.
func (entry Entry) GUID() (string, bool) {
	if entry.guid.IsNull() {
		return "", false
	}
	return entry.guid.String(), true
}

func (entry Entry) DocString() (string, bool) {
	if entry.docString == nil {
		return "", false
	}
	return *entry.docString, true
}

// The library the entry was read from. Lookup only.
func (entry Entry) Library() *Library {
	return entry.library
}

func (entry Entry) Identity() EntryIdentity {
	guid, _ := entry.GUID()
	docString, hasDocString := entry.DocString()
	return EntryIdentity{
		Name:         entry.name,
		GUID:         guid,
		DocString:    docString,
		HasDocString: hasDocString,
		Index:        entry.index,
	}
}

func (entry Entry) String() string {
	return fmt.Sprintf("TlbEntry{name=%s, guid=%s, docString=%s, index=%d}",
		entry.name, optionalString(entry.GUID()), optionalString(entry.DocString()), entry.index)
}

func optionalString(value string, present bool) string {
	if !present {
		return "<nil>"
	}
	return value
}
