package metadata

import (
	"gotlb/internal/typelib"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shellDescription = `
name: Shell32
entries:
  - name: ShellSpecialFolderConstants
    kind: enum
  - name: IShellDispatch
    kind: dispatch
    guid: "{D8F015C0-C278-11CE-A49E-444553540000}"
    doc: Definition of interface IShellDispatch
    flags: [dual, oleautomation, dispatchable, hidden]
    functions:
      - name: QueryInterface
        params:
          - {name: riid, type: VT_PTR}
          - {name: ppvObj, type: VT_PTR}
      - name: Application
        id: 1
        invoke: propget
        returns: VT_DISPATCH
      - name: Open
        id: 2
        doc: Open a folder
        params:
          - {name: vDir, type: VT_VARIANT, flags: 1}
      - name: Parent
        invoke: propputref
        params:
          - {name: value, type: VT_DISPATCH}
    variables:
      - name: Busy
        type: VT_BOOL
      - name: Version
        kind: const
        type: VT_I4
        value: 6
  - name: DShellFolderViewEvents
    kind: dispatch
    guid: 62112AA2-EBE4-11CF-A5FB-0020AFE7292D
  - name: Shell
    kind: coclass
    guid: 13709620-C279-11CE-A49E-444553540000
    implements:
      - {ref: IShellDispatch, flags: [default]}
      - {ref: DShellFolderViewEvents, flags: [default, source]}
`

func TestReadYAML_BuildsInterfaces(t *testing.T) {
	library, err := ReadYAML([]byte(shellDescription))
	require.NoError(t, err)
	assert.Equal(t, "Shell32", library.Name())
	assert.Equal(t, 4, library.EntryCount())

	interfaces, err := library.Interfaces()
	require.NoError(t, err)
	require.Len(t, interfaces, 2)

	shell := interfaces[0]
	assert.Equal(t, "IShellDispatch", shell.Name())
	assert.Equal(t, 1, shell.Index())
	guid, found := shell.GUID()
	assert.True(t, found)
	assert.Equal(t, "{D8F015C0-C278-11CE-A49E-444553540000}", guid)
	doc, found := shell.DocString()
	assert.True(t, found)
	assert.Equal(t, "Definition of interface IShellDispatch", doc)
	assert.True(t, shell.IsDispatch())
	assert.True(t, shell.IsDual())
	assert.True(t, shell.IsDispatchable())
	assert.True(t, shell.IsOleautomation())
	assert.True(t, shell.TypeFlags().Has(typelib.TypeFlagHidden))

	functions := shell.Functions()
	require.Len(t, functions, 2)
	assert.Equal(t, "Application", functions[0].Name)
	assert.Equal(t, typelib.MemberID(1), functions[0].MemberID)
	assert.Equal(t, typelib.InvokePropertyGet, functions[0].InvokeKind)
	assert.Equal(t, typelib.VTDispatch, functions[0].ReturnType)
	assert.Equal(t, "Open", functions[1].Name)
	assert.Equal(t, []typelib.Parameter{{Name: "vDir", Type: typelib.VTVariant, Flags: 1}}, functions[1].Params)
	assert.Equal(t, typelib.VTHresult, functions[1].ReturnType)

	variables := shell.Variables()
	require.Len(t, variables, 2)
	assert.Equal(t, typelib.VarDispatch, variables[0].VarKind)
	assert.Equal(t, typelib.VarConst, variables[1].VarKind)
	assert.Equal(t, 6, variables[1].Value)
	assert.Len(t, shell.DispatchableVariables(), 1)

	require.NoError(t, library.Link(interfaces))
	assert.True(t, shell.UsedAsImplementation())
	assert.True(t, interfaces[1].UsedAsSource())
}

func TestReadYAML_DefaultsToInterfaceKind(t *testing.T) {
	library, err := ReadYAML([]byte("entries:\n  - name: IFoo\n"))
	require.NoError(t, err)

	interfaces, err := library.Interfaces()
	require.NoError(t, err)
	require.Len(t, interfaces, 1)
	assert.False(t, interfaces[0].IsDispatch())
	_, found := interfaces[0].GUID()
	assert.False(t, found)
}

func TestReadYAML_Errors(t *testing.T) {
	cases := map[string]string{
		"syntax":         "entries: [",
		"unnamed entry":  "entries:\n  - kind: enum\n",
		"kind":           "entries:\n  - {name: A, kind: struct}\n",
		"guid":           "entries:\n  - {name: A, guid: nope}\n",
		"flag":           "entries:\n  - {name: A, flags: [shiny]}\n",
		"invoke kind":    "entries:\n  - name: A\n    functions:\n      - {name: F, invoke: call}\n",
		"param type":     "entries:\n  - name: A\n    functions:\n      - name: F\n        params: [{name: p, type: VT_THING}]\n",
		"variable kind":  "entries:\n  - name: A\n    variables:\n      - {name: V, kind: global}\n",
		"unknown ref":    "entries:\n  - name: C\n    kind: coclass\n    implements: [{ref: IMissing}]\n",
		"impl type flag": "entries:\n  - name: I\n  - name: C\n    kind: coclass\n    implements: [{ref: I, flags: [main]}]\n",
		"duplicate name": "entries:\n  - name: I\n  - name: I\n    kind: dispatch\n",
	}

	for name, description := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadYAML([]byte(description))
			assert.Error(t, err)
		})
	}
}

func TestReadYAML_DuplicateNameIsRejected(t *testing.T) {
	description := "entries:\n  - name: IFoo\n  - name: Foo\n    kind: coclass\n    implements: [{ref: IFoo}]\n  - name: IFoo\n    kind: dispatch\n"

	_, err := ReadYAML([]byte(description))
	assert.ErrorContains(t, err, "entry 2: name 'IFoo' is already used by entry 0")
}

func TestLoadYAML_NameFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdole.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entries:\n  - name: IFont\n"), 0644))

	library, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "stdole", library.Name())
	assert.Equal(t, 1, library.EntryCount())
}

func TestLoadYAML_MissingFile(t *testing.T) {
	_, err := LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
