// File: api/params.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Host-enumerable parameter descriptors.

package api

// ParamKind tells the host how a parameter is stored and automated.
type ParamKind int

const (
	// ParamFloat is an automatable continuous control.
	ParamFloat ParamKind = iota
	// ParamPersistString is a non-automatable persisted string field.
	ParamPersistString
	// ParamPersistInt is a non-automatable persisted integer field.
	ParamPersistInt
)

func (k ParamKind) String() string {
	switch k {
	case ParamFloat:
		return "float"
	case ParamPersistString:
		return "string"
	case ParamPersistInt:
		return "int"
	default:
		return "unknown"
	}
}

// ParamInfo is a flat descriptor for one host-visible parameter.
type ParamInfo struct {
	Index   int
	ID      string
	Name    string
	Group   string
	Kind    ParamKind
	Default float32
	Min     float32
	Max     float32
}

// Automatable reports whether the host may automate the parameter.
func (p ParamInfo) Automatable() bool {
	return p.Kind == ParamFloat
}
