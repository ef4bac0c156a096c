package mir

import (
	"encoding/json"
	"fmt"
	"os"
)

// ---------------------
// ----- functions -----
// ---------------------

// LoadModule decodes a finalized MIR module serialized as JSON by the
// front-end and restores its internal back-references (Block.fn, and each
// Function's id counter). Lexing, parsing, and semantic analysis happen
// upstream of this package; this boundary format is the seam between that
// front-end and this backend.
func LoadModule(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mir: reading module: %w", err)
	}
	var m Module
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("mir: decoding module: %w", err)
	}
	for _, fn := range m.Functions {
		maxID := -1
		for _, p := range fn.Params {
			if p.ID > maxID {
				maxID = p.ID
			}
		}
		for _, b := range fn.Blocks {
			b.fn = fn
			for _, ins := range b.Instrs {
				if ins.ID > maxID {
					maxID = ins.ID
				}
			}
		}
		fn.counter = maxID + 1
	}
	return &m, nil
}
