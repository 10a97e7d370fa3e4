// internal/rules/repository.go
package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/solatis/searchcond/internal/types"
)

/*
 * Rule document loading.
 *
 * The reference rule set is embedded at build time, so LoadRules cannot fail
 * at run time. Alternative documents (JSON or YAML) are read with ParseRules.
 *
 * Tolerance: each top-level collection is decoded on its own. A collection
 * with an unsupported shape is treated as empty and reported as an Issue;
 * the other collections still load. Unknown top-level keys are reported and
 * ignored. Nothing here is cached: callers load once and inject the result.
 */

//go:embed data/search_rules.json
var referenceRules []byte

// Format identifies a rule document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a format name onto Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, s)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// LoadRules returns the embedded reference rule set.
func LoadRules() *types.RuleSet {
	rs, _ := ParseRules(referenceRules, FormatJSON)
	return rs
}

// ReferenceDocument returns a copy of the embedded rule document.
func ReferenceDocument() []byte {
	out := make([]byte, len(referenceRules))
	copy(out, referenceRules)
	return out
}

// LoadRulesFile reads a rule document from disk. Only I/O and format
// selection fail; content problems are returned as issues.
func LoadRulesFile(path string) (*types.RuleSet, []Issue, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	rs, issues := ParseRules(data, format)
	return rs, issues, nil
}

// ParseRules decodes a rule document. Always returns a non-nil RuleSet.
func ParseRules(data []byte, format Format) (*types.RuleSet, []Issue) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatJSON:
		return parseJSON(data)
	default:
		return &types.RuleSet{}, []Issue{{Index: -1, Message: fmt.Sprintf("%v: %q", types.ErrUnsupportedFormat, format)}}
	}
}

func parseJSON(data []byte) (*types.RuleSet, []Issue) {
	rs := &types.RuleSet{}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return rs, []Issue{{Index: -1, Message: fmt.Sprintf("rule document is not an object: %v", err)}}
	}

	var issues []Issue
	decode := func(name string, dest any) bool {
		raw, ok := doc[name]
		if !ok || string(raw) == "null" {
			return true
		}
		if err := json.Unmarshal(raw, dest); err != nil {
			issues = append(issues, Issue{name, -1, fmt.Sprintf("unsupported shape, treated as empty: %v", err)})
			return false
		}
		return true
	}

	if !decode(CollectionFieldToAttribute, &rs.FieldToAttribute) {
		rs.FieldToAttribute = nil
	}
	if !decode(CollectionAttributeExclusion, &rs.AttributeExclusion) {
		rs.AttributeExclusion = nil
	}
	if !decode(CollectionAttributeToField, &rs.AttributeToField) {
		rs.AttributeToField = nil
	}

	issues = append(issues, unknownKeys(keysOf(doc))...)
	return rs, issues
}

func parseYAML(data []byte) (*types.RuleSet, []Issue) {
	rs := &types.RuleSet{}
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return rs, []Issue{{Index: -1, Message: fmt.Sprintf("rule document is not a mapping: %v", err)}}
	}

	var issues []Issue
	decode := func(name string, dest any) bool {
		node, ok := doc[name]
		if !ok {
			return true
		}
		if err := node.Decode(dest); err != nil {
			issues = append(issues, Issue{name, -1, fmt.Sprintf("unsupported shape, treated as empty: %v", err)})
			return false
		}
		return true
	}

	if !decode(CollectionFieldToAttribute, &rs.FieldToAttribute) {
		rs.FieldToAttribute = nil
	}
	if !decode(CollectionAttributeExclusion, &rs.AttributeExclusion) {
		rs.AttributeExclusion = nil
	}
	if !decode(CollectionAttributeToField, &rs.AttributeToField) {
		rs.AttributeToField = nil
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	issues = append(issues, unknownKeys(keys)...)
	return rs, issues
}

// EncodeRules renders a rule set in the given format.
func EncodeRules(rs *types.RuleSet, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(rs, "", "  ")
	case FormatYAML:
		return yaml.Marshal(rs)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, format)
	}
}

func keysOf(doc map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	return keys
}

// unknownKeys reports top-level keys outside the three collections, sorted
// for deterministic output.
func unknownKeys(keys []string) []Issue {
	sort.Strings(keys)
	var issues []Issue
	for _, k := range keys {
		switch k {
		case CollectionFieldToAttribute, CollectionAttributeExclusion, CollectionAttributeToField:
		default:
			issues = append(issues, Issue{Index: -1, Message: fmt.Sprintf("unknown top-level key %q ignored", k)})
		}
	}
	return issues
}
