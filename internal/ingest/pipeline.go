package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mediazoo/laukaainfo/api/internal/entity"
)

// Pipeline runs the full CSV-to-directory conversion.
type Pipeline struct {
	opts []AssemblerOption
}

// NewPipeline returns a pipeline whose assemblers use opts.
func NewPipeline(opts ...AssemblerOption) *Pipeline {
	return &Pipeline{opts: opts}
}

// Build parses raw CSV and assembles one Company per qualifying row, in
// input order. The first company carries the normalized header for diagnostics.
func (p *Pipeline) Build(raw []byte) ([]entity.Company, error) {
	table, err := ParseTable(raw)
	if err != nil {
		return nil, err
	}

	assembler := NewAssembler(p.opts...)
	companies := make([]entity.Company, 0, len(table.Rows))
	for _, row := range table.Rows {
		companies = append(companies, assembler.Assemble(row))
	}
	if len(companies) > 0 {
		companies[0].DebugHeaders = table.Header
	}
	return companies, nil
}

// EncodeSnapshot serializes companies as an indented JSON array without
// HTML or Unicode escaping. An empty input encodes as [].
func EncodeSnapshot(companies []entity.Company) ([]byte, error) {
	if companies == nil {
		companies = []entity.Company{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(companies); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
