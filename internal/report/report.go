// The package renders the interface model of a type library for inspection.
package report

import (
	"encoding/json"
	"fmt"
	"gotlb/internal/typelib"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

type Library struct {
	Name       string      `yaml:"name" json:"name"`
	Interfaces []Interface `yaml:"interfaces" json:"interfaces"`
}

type Interface struct {
	Index                 int        `yaml:"index" json:"index"`
	Name                  string     `yaml:"name" json:"name"`
	GUID                  string     `yaml:"guid,omitempty" json:"guid,omitempty"`
	DocString             *string    `yaml:"doc,omitempty" json:"doc,omitempty"`
	Dispatch              bool       `yaml:"dispatch" json:"dispatch"`
	Dual                  bool       `yaml:"dual" json:"dual"`
	Dispatchable          bool       `yaml:"dispatchable" json:"dispatchable"`
	Oleautomation         bool       `yaml:"oleautomation" json:"oleautomation"`
	TypeFlags             string     `yaml:"typeFlags,omitempty" json:"typeFlags,omitempty"`
	UsedAsSource          bool       `yaml:"usedAsSource" json:"usedAsSource"`
	UsedAsImplementation  bool       `yaml:"usedAsImplementation" json:"usedAsImplementation"`
	Functions             []Function `yaml:"functions,omitempty" json:"functions,omitempty"`
	Variables             []Variable `yaml:"variables,omitempty" json:"variables,omitempty"`
	DispatchableVariables []string   `yaml:"dispatchableVariables,omitempty" json:"dispatchableVariables,omitempty"`
}

type Function struct {
	Name      string      `yaml:"name" json:"name"`
	MemberID  int32       `yaml:"id" json:"id"`
	Invoke    string      `yaml:"invoke" json:"invoke"`
	Returns   string      `yaml:"returns" json:"returns"`
	Params    []Parameter `yaml:"params,omitempty" json:"params,omitempty"`
	DocString *string     `yaml:"doc,omitempty" json:"doc,omitempty"`
}

type Parameter struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

type Variable struct {
	Name      string  `yaml:"name" json:"name"`
	MemberID  int32   `yaml:"id" json:"id"`
	Kind      string  `yaml:"kind" json:"kind"`
	Type      string  `yaml:"type" json:"type"`
	Value     any     `yaml:"value,omitempty" json:"value,omitempty"`
	DocString *string `yaml:"doc,omitempty" json:"doc,omitempty"`
}

func Build(library *typelib.Library, interfaces []*typelib.Interface) Library {
	report := Library{Name: library.Name(), Interfaces: make([]Interface, 0, len(interfaces))}
	for _, tlbInterface := range interfaces {
		report.Interfaces = append(report.Interfaces, buildInterface(tlbInterface))
	}
	return report
}

func buildInterface(tlbInterface *typelib.Interface) Interface {
	guid, _ := tlbInterface.GUID()
	result := Interface{
		Index:                tlbInterface.Index(),
		Name:                 tlbInterface.Name(),
		GUID:                 guid,
		Dispatch:             tlbInterface.IsDispatch(),
		Dual:                 tlbInterface.IsDual(),
		Dispatchable:         tlbInterface.IsDispatchable(),
		Oleautomation:        tlbInterface.IsOleautomation(),
		TypeFlags:            tlbInterface.TypeFlags().String(),
		UsedAsSource:         tlbInterface.UsedAsSource(),
		UsedAsImplementation: tlbInterface.UsedAsImplementation(),
	}
	if doc, found := tlbInterface.DocString(); found {
		result.DocString = &doc
	}

	for _, function := range tlbInterface.Functions() {
		params := make([]Parameter, len(function.Params))
		for i, param := range function.Params {
			params[i] = Parameter{Name: param.Name, Type: param.Type.String()}
		}
		result.Functions = append(result.Functions, Function{
			Name:      function.Name,
			MemberID:  int32(function.MemberID),
			Invoke:    function.InvokeKind.String(),
			Returns:   function.ReturnType.String(),
			Params:    params,
			DocString: function.DocString,
		})
	}

	for _, variable := range tlbInterface.Variables() {
		result.Variables = append(result.Variables, Variable{
			Name:      variable.Name,
			MemberID:  int32(variable.MemberID),
			Kind:      variable.VarKind.String(),
			Type:      variable.Type.String(),
			Value:     variable.Value,
			DocString: variable.DocString,
		})
	}

	for _, variable := range tlbInterface.DispatchableVariables() {
		result.DispatchableVariables = append(result.DispatchableVariables, variable.Name)
	}

	return result
}

func Write(w io.Writer, format string, report Library) error {
	switch format {
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(report); err != nil {
			return err
		}
		return encoder.Close()
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "text":
		return writeText(w, report)
	}
	return fmt.Errorf("unknown format '%s'", format)
}

var (
	headerColor   = color.New(color.Bold)
	dispatchColor = color.New(color.FgCyan)
	roleColor     = color.New(color.FgYellow)
)

func writeText(w io.Writer, report Library) error {
	if _, err := headerColor.Fprintf(w, "%s (%d interfaces)\n", report.Name, len(report.Interfaces)); err != nil {
		return err
	}

	for _, tlbInterface := range report.Interfaces {
		kind := "interface"
		if tlbInterface.Dispatch {
			kind = dispatchColor.Sprint("dispinterface")
		}
		fmt.Fprintf(w, "%s %s", kind, tlbInterface.Name)
		if tlbInterface.GUID != "" {
			fmt.Fprintf(w, " %s", tlbInterface.GUID)
		}

		roles := make([]string, 0, 2)
		if tlbInterface.UsedAsSource {
			roles = append(roles, "source")
		}
		if tlbInterface.UsedAsImplementation {
			roles = append(roles, "implementation")
		}
		if len(roles) > 0 {
			roleColor.Fprintf(w, " [%s]", strings.Join(roles, ", "))
		}
		fmt.Fprintln(w)

		for _, function := range tlbInterface.Functions {
			params := make([]string, len(function.Params))
			for i, param := range function.Params {
				params[i] = param.Type + " " + param.Name
			}
			fmt.Fprintf(w, "  %-10s %s %s(%s)\n", function.Invoke, function.Returns, function.Name, strings.Join(params, ", "))
		}
		for _, variable := range tlbInterface.Variables {
			fmt.Fprintf(w, "  %-10s %s %s\n", variable.Kind, variable.Type, variable.Name)
		}
	}
	return nil
}
