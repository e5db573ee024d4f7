package annotate

import (
	"strings"
)

// FieldDescriptor describes a recognized option, its decoded type and the
// value it resolves to when nothing sets it.
type FieldDescriptor struct {
	Path    string `json:"path"`
	Type    string `json:"type"`
	Group   string `json:"group"`
	Default any    `json:"default"`
}

// Describe lists every option in registry order.
func Describe() []FieldDescriptor {
	defaults := Resolve(nil)
	keys := AllOptions()
	out := make([]FieldDescriptor, 0, len(keys))
	for _, key := range keys {
		group, _ := GroupOf(key)
		out = append(out, FieldDescriptor{
			Path:    string(key),
			Type:    typeName(group),
			Group:   group.String(),
			Default: defaults.Value(key),
		})
	}
	return out
}

// DescribeGroup lists the options of a single group.
func DescribeGroup(group Group) []FieldDescriptor {
	var out []FieldDescriptor
	for _, field := range Describe() {
		if strings.EqualFold(field.Group, group.String()) {
			out = append(out, field)
		}
	}
	return out
}

func typeName(group Group) string {
	switch group {
	case GroupPosition:
		return "string"
	case GroupFlag:
		return "bool"
	case GroupPath:
		return "[]string"
	default:
		return "string"
	}
}
