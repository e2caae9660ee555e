package codegen

import "fmt"

// Target selects the emission backend. The rust, wasm and node targets
// all emit Rust source; they differ only in how exported items are
// attributed. The python and c targets are recognized on the CLI but not
// yet implemented.
type Target int

const (
	TargetRust Target = iota
	TargetWasm
	TargetNode
	TargetPython
	TargetC
)

// ParseTarget resolves a CLI target name.
func ParseTarget(name string) (Target, error) {
	switch name {
	case "rust", "":
		return TargetRust, nil
	case "wasm":
		return TargetWasm, nil
	case "node":
		return TargetNode, nil
	case "python":
		return TargetPython, nil
	case "c":
		return TargetC, nil
	}
	return TargetRust, fmt.Errorf("unknown target %q (expected rust, wasm, node, python or c)", name)
}

// String returns the CLI name of the target.
func (t Target) String() string {
	switch t {
	case TargetWasm:
		return "wasm"
	case TargetNode:
		return "node"
	case TargetPython:
		return "python"
	case TargetC:
		return "c"
	default:
		return "rust"
	}
}

// Supported reports whether the target has an emitter.
func (t Target) Supported() bool {
	switch t {
	case TargetRust, TargetWasm, TargetNode:
		return true
	}
	return false
}

// exportAttribute is the attribute that @export lowers to on this target.
func (t Target) exportAttribute() string {
	switch t {
	case TargetWasm:
		return "#[wasm_bindgen]"
	case TargetNode:
		return "#[napi]"
	default:
		return ""
	}
}
