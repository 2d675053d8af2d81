// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"context"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/gemaraproj/reqcite-mcp/internal/evidence"
)

// declarationSchema mirrors evidence.Document. CUE definitions are closed, so
// any field not listed here fails unification.
const declarationSchema = `
#Citation: {
	target?: string
	level?:  string
	format?: string
	quote:   string
}

#Exception: {
	target?: string
	quote:   string
	reason:  string
}

#Todo: {
	target?:           string
	quote:             string
	feature?:          string
	tracking_issue?:   string
	"tracking-issue"?: string
	reason?:           string
	tags?: [...string]
}

#Declaration: {
	target?: string
	spec?: [...#Citation]
	specs?: [...#Citation]
	exception?: [...#Exception]
	exceptions?: [...#Exception]
	todo?: [...#Todo]
	todos?: [...#Todo]
	TODO?: [...#Todo]
}
`

// CUEParser decodes CUE declaration files after validating them against a
// closed declaration schema.
type CUEParser struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewCUEParser compiles the declaration schema. It panics if the embedded
// schema does not compile.
func NewCUEParser() *CUEParser {
	ctx := cuecontext.New()
	schema := ctx.CompileString(declarationSchema, cue.Filename("declaration.cue")).
		LookupPath(cue.ParsePath("#Declaration"))
	if err := schema.Err(); err != nil {
		panic(fmt.Sprintf("compile declaration schema: %v", err))
	}
	return &CUEParser{ctx: ctx, schema: schema}
}

func (p *CUEParser) Name() string {
	return "cue"
}

func (p *CUEParser) CanHandle(source evidence.DeclarationSource) bool {
	return source.FormatHint() == "cue"
}

func (p *CUEParser) Parse(_ context.Context, source evidence.DeclarationSource) (*evidence.Document, error) {
	v := p.ctx.CompileBytes(source.Content, cue.Filename(source.Path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE: %s", errors.Details(err, nil))
	}

	unified := p.schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("declaration does not match schema: %s", errors.Details(err, nil))
	}

	var doc evidence.Document
	if err := unified.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode CUE: %w", err)
	}
	return &doc, nil
}
