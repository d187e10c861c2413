package typelib

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsReservedMethod(t *testing.T) {
	reserved := []string{
		"QueryInterface", "AddRef", "Release",
		"GetTypeInfoCount", "GetTypeInfo", "GetIDsOfNames", "Invoke",
		"_NewEnum",
	}

	for _, name := range reserved {
		t.Run(name, func(t *testing.T) {
			assert.True(t, IsReservedMethod(name))
			assert.True(t, IsReservedMethod(strings.ToLower(name)))
			assert.True(t, IsReservedMethod(strings.ToUpper(name)))
		})
	}
}

func TestIsReservedMethod_UserNames(t *testing.T) {
	for _, name := range []string{"", "Item", "Count", "NewEnum", "Releases", "InvokeVerb", "Query Interface"} {
		assert.False(t, IsReservedMethod(name), name)
	}
}

func TestReservedMethodsTableSize(t *testing.T) {
	assert.Len(t, reservedMethods, 8)
}
