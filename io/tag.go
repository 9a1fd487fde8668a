package io

import (
	"fmt"
	"reflect"
	"strings"
)

//Tag represent field tag
type Tag struct {
	Column        string
	PrimaryKey    bool
	Transient     bool
	Ns            string
	Discriminator bool
	Nullable      bool
	ThisKey       []string
	OtherKey      []string
	CanBeNull     bool
}

//IsAssociation returns true if tag defines association keys
func (t *Tag) IsAssociation() bool {
	return len(t.ThisKey) > 0 || len(t.OtherKey) > 0
}

//CanExpand return true if field can expend fied struct fields
func (f *Field) CanExpand() bool {
	if f.Tag.IsAssociation() {
		return false
	}
	if f.Tag.Ns != "" {
		return true
	}
	if !f.Anonymous {
		return false
	}
	candidateType := f.Type
	if candidateType.Kind() == reflect.Ptr {
		candidateType = candidateType.Elem()
	}
	return candidateType.Kind() == reflect.Struct
}

//ParseTag parses tag
func ParseTag(tagString string) *Tag {
	tag := &Tag{}
	if tagString == "-" {
		tag.Transient = true
		return tag
	}
	if tagString == "" {
		return tag
	}
	elements := strings.Split(tagString, ",")
	for i, element := range elements {
		nv := strings.Split(element, "=")
		switch len(nv) {
		case 2:
			value := strings.TrimSpace(nv[1])
			switch strings.ToLower(strings.TrimSpace(nv[0])) {
			case "name":
				tag.Column = value
			case "ns":
				tag.Ns = value
			case "primarykey":
				tag.PrimaryKey = value == "true"
			case "discriminator":
				tag.Discriminator = value == "true"
			case "nullable":
				tag.Nullable = value == "true"
			case "canbenull":
				tag.CanBeNull = value == "true"
			case "thiskey":
				tag.ThisKey = splitKeys(value)
			case "otherkey":
				tag.OtherKey = splitKeys(value)
			}
			continue
		case 1:
			element = strings.TrimSpace(element)
			switch strings.ToLower(element) {
			case "primarykey":
				tag.PrimaryKey = true
			case "discriminator":
				tag.Discriminator = true
			case "nullable":
				tag.Nullable = true
			case "canbenull":
				tag.CanBeNull = true
			default:
				if i == 0 {
					tag.Column = element
				}
			}
		}
	}
	return tag
}

func splitKeys(value string) []string {
	var result []string
	for _, key := range strings.Split(value, "|") {
		if key = strings.TrimSpace(key); key != "" {
			result = append(result, key)
		}
	}
	return result
}

func (t *Tag) getColumnName(field reflect.StructField) string {
	columnName := field.Name
	if names := t.Column; names != "" {
		columns := strings.Split(names, "|")
		columnName = columns[0]
	}
	return columnName
}

func (t *Tag) validate(field reflect.StructField) error {
	if len(t.ThisKey) != len(t.OtherKey) {
		return fmt.Errorf("invalid association %v: thisKey %v and otherKey %v differ in length", field.Name, t.ThisKey, t.OtherKey)
	}
	if t.IsAssociation() && (t.PrimaryKey || t.Discriminator) {
		return fmt.Errorf("invalid tag combination on %v: association cannot be primary key or discriminator", field.Name)
	}
	return nil
}
