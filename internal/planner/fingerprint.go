package planner

import (
	"bytes"
	"fmt"

	"github.com/danieljhkim/hdlplan/internal/hash"
)

// Fingerprint hashes the plan's manifest together with the content of every
// source file, in compile order.
func (p *BuildPlan) Fingerprint(h hash.Hasher) (string, error) {
	var buf bytes.Buffer
	if err := p.Manifest().Encode(&buf, FormatJSON); err != nil {
		return "", fmt.Errorf("failed to encode plan: %w", err)
	}

	for _, lib := range p.libraries {
		for _, f := range lib.Files {
			sum, err := h.HashFile(f.Path)
			if err != nil {
				return "", fmt.Errorf("failed to hash %s in library %s: %w", f.Path, lib.Name, err)
			}
			fmt.Fprintf(&buf, "%s\x00%s\x00%s\n", lib.Name, f.Path, sum)
		}
	}

	return h.HashBytes(buf.Bytes()), nil
}
