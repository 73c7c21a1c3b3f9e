package definition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/mitchellh/mapstructure"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/polyglotter/pkg/schema"
)

// Format identifies a definition file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("unsupported definition file %q (want .yaml, .yml, .json or .hcl)", path)
	}
}

// LoadFile reads and parses a definition file. It does not validate it.
func LoadFile(path string) (*Definition, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	def, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Parse decodes a definition in the given format.
func Parse(data []byte, format Format) (*Definition, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(data)
	case FormatJSON:
		return ParseJSON(data)
	case FormatHCL:
		return ParseHCL(data, "definition.hcl")
	default:
		return nil, fmt.Errorf("unsupported definition format %q", format)
	}
}

// ParseYAML decodes a YAML definition.
func ParseYAML(data []byte) (*Definition, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse yaml definition: %w", err)
	}
	return fromMap(raw)
}

// ParseJSON decodes a JSON definition. Integral numbers stay integers.
func ParseJSON(data []byte) (*Definition, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse json definition: %w", err)
	}
	schema.Normalize(raw)
	return fromMap(raw)
}

func fromMap(raw map[string]any) (*Definition, error) {
	if raw == nil {
		return nil, fmt.Errorf("empty definition")
	}
	var def Definition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &def,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode definition: %w", err)
	}
	return &def, nil
}

// hclDefinition represents the top-level structure of an HCL definition.
type hclDefinition struct {
	ID          string          `hcl:"id"`
	Namespace   string          `hcl:"namespace,optional"`
	Name        string          `hcl:"name,optional"`
	Description string          `hcl:"description,optional"`
	Terms       []*hclTerm      `hcl:"term,block"`
	Operations  []*hclOperation `hcl:"operation,block"`
}

type hclTerm struct {
	ID    string     `hcl:"id,label"`
	Value *cty.Value `hcl:"value,optional"`
	Key   string     `hcl:"key,optional"`
	Type  string     `hcl:"type,optional"`
}

type hclOperation struct {
	ID    string   `hcl:"id,label"`
	Kind  string   `hcl:"kind"`
	Terms []string `hcl:"terms,optional"`
}

// ParseHCL decodes an HCL definition:
//
//	id = "pricing"
//	term "price" { value = 10 }
//	operation "total" {
//	  kind  = "add"
//	  terms = ["price", "tax"]
//	}
func ParseHCL(data []byte, filename string) (*Definition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL definition: %w", diags)
	}

	var parsed hclDefinition
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL definition: %w", diags)
	}

	def := &Definition{
		ID:          parsed.ID,
		Namespace:   parsed.Namespace,
		Name:        parsed.Name,
		Description: parsed.Description,
	}
	for _, t := range parsed.Terms {
		term := Term{ID: t.ID, Key: t.Key, Type: t.Type}
		if t.Value != nil {
			v, err := ctyToGo(*t.Value)
			if err != nil {
				return nil, fmt.Errorf("term %q: %w", t.ID, err)
			}
			term.Value = v
		}
		def.Terms = append(def.Terms, term)
	}
	for _, op := range parsed.Operations {
		def.Operations = append(def.Operations, Operation{ID: op.ID, Kind: op.Kind, Terms: op.Terms})
	}
	return def, nil
}

// ctyToGo converts a cty.Value to plain Go values. Whole numbers that fit
// int64 become int64, other numbers float64.
func ctyToGo(val cty.Value) (any, error) {
	if !val.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			gv, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = gv
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := []any{}
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			gv, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
