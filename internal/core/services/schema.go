package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// ErrNotASchema is returned when text has no recognisable category/feature structure
var ErrNotASchema = errors.New("no feature categories found")

var (
	rangeMinKeys = []string{"min", "min_hours", "base_time_hours_min", "hours_min"}
	rangeMaxKeys = []string{"max", "max_hours", "base_time_hours_max", "hours_max"}

	rangeText = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*(?:-|–|to)\s*(\d+(?:\.\d+)?)`)
)

// ParseReferenceSchema reads the primary reference as a category -> feature ->
// hour-range mapping. YAML is tried first (it accepts JSON and keeps key order);
// strict JSON is the fallback for documents YAML rejects, such as tab-indented JSON.
// A top-level key containing "rule" is kept as free-form rules text and
// "metadata" is ignored.
func ParseReferenceSchema(text string) (*domain.ReferenceSchema, error) {
	root, err := parseDocumentNode(text)
	if err != nil {
		return nil, err
	}
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotASchema
	}

	schema := &domain.ReferenceSchema{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := strings.TrimSpace(root.Content[i].Value)
		value := root.Content[i+1]
		lower := strings.ToLower(key)

		switch {
		case lower == "metadata":
			continue
		case strings.Contains(lower, "rule"):
			schema.Rules = strings.TrimSpace(nodeText(value))
			continue
		}

		category := domain.ReferenceCategory{Name: key}
		switch value.Kind {
		case yaml.MappingNode:
			for j := 0; j+1 < len(value.Content); j += 2 {
				name := strings.TrimSpace(value.Content[j].Value)
				if lo, hi, ok := parseRange(value.Content[j+1]); ok && name != "" {
					category.Features = append(category.Features, referenceFeature(name, key, lo, hi))
				}
			}
		case yaml.SequenceNode:
			for _, item := range value.Content {
				if item.Kind != yaml.MappingNode {
					continue
				}
				name := strings.TrimSpace(mappingValue(item, "name", "feature"))
				if lo, hi, ok := parseRange(item); ok && name != "" {
					category.Features = append(category.Features, referenceFeature(name, key, lo, hi))
				}
			}
		}
		if len(category.Features) > 0 {
			schema.Categories = append(schema.Categories, category)
		}
	}

	if len(schema.Categories) == 0 {
		return nil, ErrNotASchema
	}
	return schema, nil
}

func parseDocumentNode(text string) (*yaml.Node, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNotASchema
	}

	var doc yaml.Node
	yamlErr := yaml.Unmarshal([]byte(text), &doc)
	if yamlErr == nil && len(doc.Content) > 0 {
		return doc.Content[0], nil
	}

	var generic map[string]any
	if err := json.Unmarshal([]byte(text), &generic); err != nil {
		if yamlErr == nil {
			yamlErr = ErrNotASchema
		}
		return nil, fmt.Errorf("parse reference: %w", yamlErr)
	}
	var node yaml.Node
	if err := node.Encode(generic); err != nil {
		return nil, fmt.Errorf("parse reference: %w", err)
	}
	return &node, nil
}

func referenceFeature(name, category string, lo, hi float64) domain.ReferenceFeature {
	if lo > hi {
		lo, hi = hi, lo
	}
	return domain.ReferenceFeature{Name: name, Category: category, MinHours: lo, MaxHours: hi}
}

// parseRange accepts {min, max}, a single number, [min, max] or "min-max"
func parseRange(n *yaml.Node) (float64, float64, bool) {
	switch n.Kind {
	case yaml.ScalarNode:
		if v, err := strconv.ParseFloat(strings.TrimSpace(n.Value), 64); err == nil {
			return v, v, v >= 0
		}
		if m := rangeText.FindStringSubmatch(n.Value); m != nil {
			lo, _ := strconv.ParseFloat(m[1], 64)
			hi, _ := strconv.ParseFloat(m[2], 64)
			return lo, hi, true
		}
	case yaml.SequenceNode:
		if len(n.Content) == 2 {
			lo, err1 := strconv.ParseFloat(n.Content[0].Value, 64)
			hi, err2 := strconv.ParseFloat(n.Content[1].Value, 64)
			return lo, hi, err1 == nil && err2 == nil
		}
	case yaml.MappingNode:
		minText := mappingValue(n, rangeMinKeys...)
		maxText := mappingValue(n, rangeMaxKeys...)
		lo, err1 := strconv.ParseFloat(minText, 64)
		hi, err2 := strconv.ParseFloat(maxText, 64)
		switch {
		case err1 == nil && err2 == nil:
			return lo, hi, true
		case err1 == nil:
			return lo, lo, true
		case err2 == nil:
			return hi, hi, true
		}
		if v, err := strconv.ParseFloat(mappingValue(n, "hours"), 64); err == nil {
			return v, v, true
		}
	}
	return 0, 0, false
}

// mappingValue returns the scalar value of the first matching key, ignoring case
func mappingValue(n *yaml.Node, keys ...string) string {
	for _, want := range keys {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if strings.EqualFold(n.Content[i].Value, want) && n.Content[i+1].Kind == yaml.ScalarNode {
				return strings.TrimSpace(n.Content[i+1].Value)
			}
		}
	}
	return ""
}

// nodeText flattens a node into readable lines
func nodeText(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value
	case yaml.SequenceNode:
		lines := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			lines = append(lines, "- "+strings.TrimSpace(nodeText(item)))
		}
		return strings.Join(lines, "\n")
	case yaml.MappingNode:
		lines := make([]string, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			lines = append(lines, n.Content[i].Value+": "+strings.TrimSpace(nodeText(n.Content[i+1])))
		}
		return strings.Join(lines, "\n")
	}
	return ""
}
