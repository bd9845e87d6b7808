package types

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type StorageType int64

const (
	UnknownStorage StorageType = 0
	BoltDB         StorageType = 1
	InMemory       StorageType = 2
)

var storageTypeNames = map[StorageType]string{
	UnknownStorage: "UnknownStorage",
	BoltDB:         "BoltDB",
	InMemory:       "InMemory",
}

func (j StorageType) String() string {
	if name, ok := storageTypeNames[j]; ok {
		return name
	}
	return fmt.Sprintf("StorageType(%d)", int64(j))
}

func (j StorageType) MarshalText() ([]byte, error) {
	return []byte(j.String()), nil
}

func (j *StorageType) UnmarshalText(text []byte) error {
	out, err := ParseStorageType(string(text))
	if err != nil {
		return err
	}
	*j = out
	return nil
}

func (j StorageType) MarshalYAML() (interface{}, error) {
	return j.String(), nil
}

func (j *StorageType) UnmarshalYAML(value *yaml.Node) error {
	out, err := ParseStorageType(value.Value)
	if err != nil {
		return err
	}
	*j = out
	return nil
}

func ParseStorageType(s string) (ret StorageType, err error) {
	for typ := BoltDB; typ <= InMemory; typ++ {
		if equal(typ.String(), s) {
			return typ, nil
		}
	}

	return UnknownStorage, fmt.Errorf("StorageType: unknown type '%s' (valid types: %q)", s, []StorageType{BoltDB, InMemory})
}

func equal(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return strings.EqualFold(a, b)
}
