package nlquery

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	coreagg "github.com/aevon-lab/cc-reporting/internal/core/aggregation"
	"gopkg.in/yaml.v3"
)

const systemPrompt = "You help parse reporting queries for a contact center database."

//go:embed prompt.tmpl examples.yaml
var assets embed.FS

var promptFuncs = template.FuncMap{
	"join": func(items any, sep string) string { return strings.Join(toStrings(items), sep) },
	"inc":  func(i int) int { return i + 1 },
}

var (
	promptTemplate   = template.Must(template.New("prompt.tmpl").Funcs(promptFuncs).ParseFS(assets, "prompt.tmpl"))
	examplesTemplate = template.Must(template.ParseFS(assets, "examples.yaml"))
)

// Example is one worked request and the plan it should produce.
type Example struct {
	Request string `yaml:"request"`
	Plan    string `yaml:"plan"`
}

type promptColumn struct {
	Name string
	Type string
}

type promptCatalog struct {
	Name    Kind
	Purpose string
	Columns []promptColumn
}

type promptData struct {
	Anchors   Anchors
	Kinds     []Kind
	Operators []string
	Functions []string
	Catalogs  []promptCatalog
	Examples  []Example
	Request   string
}

// LoadExamples renders the embedded examples with the given anchors.
func LoadExamples(a Anchors) ([]Example, error) {
	var buf bytes.Buffer
	if err := examplesTemplate.Execute(&buf, a); err != nil {
		return nil, fmt.Errorf("failed to render examples: %w", err)
	}
	var examples []Example
	if err := yaml.Unmarshal(buf.Bytes(), &examples); err != nil {
		return nil, fmt.Errorf("failed to parse examples: %w", err)
	}
	return examples, nil
}

// BuildPrompt renders the planner prompt for request.
func BuildPrompt(a Anchors, request string) (string, error) {
	examples, err := LoadExamples(a)
	if err != nil {
		return "", err
	}

	data := promptData{
		Anchors:   a,
		Kinds:     AllowedKinds(),
		Operators: operatorNames(),
		Functions: functionNames(),
		Examples:  examples,
		Request:   request,
	}
	for _, k := range allowedKinds {
		c := catalogs[k.name]
		pc := promptCatalog{Name: c.name, Purpose: c.purpose}
		for _, col := range c.columns {
			pc.Columns = append(pc.Columns, promptColumn{Name: col, Type: columnType(col)})
		}
		data.Catalogs = append(data.Catalogs, pc)
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

func operatorNames() []string {
	names := make([]string, 0, len(operators))
	for name := range operators {
		names = append(names, opNamespace+name)
	}
	sort.Strings(names)
	return names
}

func functionNames() []string {
	names := make([]string, 0, len(coreagg.Functions))
	for name := range coreagg.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func toStrings(items any) []string {
	switch v := items.(type) {
	case []string:
		return v
	case []Kind:
		out := make([]string, len(v))
		for i, k := range v {
			out[i] = string(k)
		}
		return out
	}
	return nil
}
