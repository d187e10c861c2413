package typelib

import "strings"

// IUnknown plumbing
var iUnknownMethods = []string{"QueryInterface", "AddRef", "Release"}

// IDispatch plumbing
var iDispatchMethods = []string{"GetTypeInfoCount", "GetTypeInfo", "GetIDsOfNames", "Invoke"}

// Enumerator retrieval convention of collection interfaces
var iEnumVariantMethods = []string{"_NewEnum"}

// Lower-cased names of members that are never surfaced. Read-only after init.
var reservedMethods map[string]struct{} = buildReservedMethods(iUnknownMethods, iDispatchMethods, iEnumVariantMethods)

func buildReservedMethods(groups ...[]string) map[string]struct{} {
	reserved := make(map[string]struct{})
	for _, group := range groups {
		for _, method := range group {
			reserved[strings.ToLower(method)] = struct{}{}
		}
	}
	return reserved
}

// Reports whether name belongs to the standard COM plumbing interfaces.
// The comparison ignores case. An empty name is never reserved.
func IsReservedMethod(name string) bool {
	if name == "" {
		return false
	}
	_, found := reservedMethods[strings.ToLower(name)]
	return found
}
