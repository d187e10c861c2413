package report

import (
	"bytes"
	"encoding/json"
	"gotlb/internal/typelib"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport(t *testing.T) Library {
	t.Helper()
	guid, err := typelib.ParseGUID("{00020400-0000-0000-C000-000000000046}")
	require.NoError(t, err)

	bridge := typelib.NewMemoryBridge(
		typelib.EntryDecl{
			Name: "DEvents",
			Attr: typelib.TypeAttr{GUID: guid, TypeKind: typelib.TKindDispatch, TypeFlags: typelib.TypeFlagDispatchable},
			Funcs: []typelib.FuncDecl{
				{Name: "Invoke", Desc: typelib.FuncDesc{MemberID: 1, InvokeKind: typelib.InvokeFunc}},
				{
					Name:       "Click",
					ParamNames: []string{"x"},
					Desc: typelib.FuncDesc{
						MemberID:   2,
						InvokeKind: typelib.InvokeFunc,
						ReturnType: typelib.ElemDesc{Type: typelib.VTVoid},
						Params:     []typelib.ElemDesc{{Type: typelib.VTI4}},
					},
				},
			},
			Vars: []typelib.VarDecl{
				{Name: "Enabled", Desc: typelib.VarDesc{MemberID: 3, VarKind: typelib.VarDispatch, ElemType: typelib.ElemDesc{Type: typelib.VTBool}}},
			},
		},
		typelib.EntryDecl{
			Name:      "Control",
			Attr:      typelib.TypeAttr{TypeKind: typelib.TKindCoClass},
			ImplTypes: []typelib.ImplType{{RefIndex: 0, Flags: typelib.ImplTypeFlagDefault | typelib.ImplTypeFlagSource}},
		},
	)
	library := typelib.NewLibrary("Controls", bridge)
	interfaces, err := library.Interfaces()
	require.NoError(t, err)
	require.NoError(t, library.Link(interfaces))

	return Build(library, interfaces)
}

func TestBuild(t *testing.T) {
	report := sampleReport(t)

	assert.Equal(t, "Controls", report.Name)
	require.Len(t, report.Interfaces, 1)
	events := report.Interfaces[0]
	assert.Equal(t, "{00020400-0000-0000-C000-000000000046}", events.GUID)
	assert.True(t, events.Dispatch)
	assert.True(t, events.Dispatchable)
	assert.False(t, events.Dual)
	assert.True(t, events.UsedAsSource)
	assert.Nil(t, events.DocString)
	require.Len(t, events.Functions, 1)
	assert.Equal(t, "Click", events.Functions[0].Name)
	assert.Equal(t, []Parameter{{Name: "x", Type: "VT_I4"}}, events.Functions[0].Params)
	assert.Equal(t, []string{"Enabled"}, events.DispatchableVariables)
}

func TestWrite_JSON(t *testing.T) {
	var buffer bytes.Buffer
	require.NoError(t, Write(&buffer, "json", sampleReport(t)))

	var decoded Library
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &decoded))
	assert.Equal(t, "Controls", decoded.Name)
	assert.Equal(t, "Click", decoded.Interfaces[0].Functions[0].Name)
}

func TestWrite_YAML(t *testing.T) {
	var buffer bytes.Buffer
	require.NoError(t, Write(&buffer, "yaml", sampleReport(t)))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buffer.Bytes(), &decoded))
	assert.Equal(t, "Controls", decoded["name"])
	assert.Contains(t, buffer.String(), "usedAsSource: true")
}

func TestWrite_Text(t *testing.T) {
	color.NoColor = true

	var buffer bytes.Buffer
	require.NoError(t, Write(&buffer, "text", sampleReport(t)))

	expected := "Controls (1 interfaces)\n" +
		"dispinterface DEvents {00020400-0000-0000-C000-000000000046} [source]\n" +
		"  func       VT_VOID Click(VT_I4 x)\n" +
		"  dispatch   VT_BOOL Enabled\n"
	assert.Equal(t, expected, buffer.String())
}

func TestWrite_UnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "xml", Library{}))
}
