package typelib

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// GUID in the in-memory layout used by type libraries.
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// The null GUID (IID_NULL). Entries reporting it have no GUID.
var IIDNull = GUID{}

// Parses a textual GUID. Accepts the hyphenated form with or without
// braces as well as the "urn:uuid:" form.
func ParseGUID(text string) (GUID, error) {
	parsed, err := uuid.Parse(text)
	if err != nil {
		return GUID{}, fmt.Errorf("invalid guid %q: %w", text, err)
	}

	return GUIDFromUUID(parsed), nil
}

// Converts a UUID to a GUID keeping the textual representation.
func GUIDFromUUID(u uuid.UUID) GUID {
	guid := GUID{
		Data1: binary.BigEndian.Uint32(u[0:4]),
		Data2: binary.BigEndian.Uint16(u[4:6]),
		Data3: binary.BigEndian.Uint16(u[6:8]),
	}
	copy(guid.Data4[:], u[8:16])
	return guid
}

func (g GUID) UUID() uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:4], g.Data1)
	binary.BigEndian.PutUint16(u[4:6], g.Data2)
	binary.BigEndian.PutUint16(u[6:8], g.Data3)
	copy(u[8:16], g.Data4[:])
	return u
}

func (g GUID) IsNull() bool {
	return g == IIDNull
}

// Formats the GUID the way the COM runtime does:
// {XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX}
func (g GUID) String() string {
	return fmt.Sprintf("{%08X-%04X-%04X-%02X%02X-%02X%02X%02X%02X%02X%02X}",
		g.Data1, g.Data2, g.Data3,
		g.Data4[0], g.Data4[1],
		g.Data4[2], g.Data4[3], g.Data4[4], g.Data4[5], g.Data4[6], g.Data4[7])
}
