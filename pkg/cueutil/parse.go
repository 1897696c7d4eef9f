// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

type (
	// ParseResult contains the result of a successful CUE parse operation.
	ParseResult[T any] struct {
		// Value is the decoded Go value.
		Value *T
	}

	// Field is one decoded top-level field of a CUE struct, in declaration order.
	Field[T any] struct {
		Name  string
		Value T
	}
)

// Unify compiles schema and data, unifies data with the definition at
// schemaPath (e.g. "#Config") and validates the result.
func Unify(schema, data []byte, schemaPath string, opts ...Option) (cue.Value, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	filename := options.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, options.maxFileSize, filename); err != nil {
		return cue.Value{}, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return cue.Value{}, FormatError(userValue.Err(), filename)
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	unified := schemaRoot.Unify(userValue)
	if err := unified.Validate(cue.Concrete(options.concrete)); err != nil {
		return cue.Value{}, FormatError(err, filename)
	}

	return unified, nil
}

// ParseAndDecode validates data against the schema definition and decodes the
// unified value into T.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	unified, err := Unify(schema, data, schemaPath, opts...)
	if err != nil {
		return nil, err
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, filenameOf(opts))
	}

	return &ParseResult[T]{Value: &result}, nil
}

// DecodeFields validates data against a struct-typed schema definition and
// decodes every top-level field into T, preserving the order in which the
// fields appear in the input. Decoding into a Go map would lose that order.
func DecodeFields[T any](schema, data []byte, schemaPath string, opts ...Option) ([]Field[T], error) {
	unified, err := Unify(schema, data, schemaPath, opts...)
	if err != nil {
		return nil, err
	}

	iter, err := unified.Fields()
	if err != nil {
		return nil, FormatError(err, filenameOf(opts))
	}

	var fields []Field[T]
	for iter.Next() {
		var v T
		if err := iter.Value().Decode(&v); err != nil {
			return nil, FormatError(err, filenameOf(opts))
		}
		fields = append(fields, Field[T]{Name: iter.Selector().Unquoted(), Value: v})
	}

	return fields, nil
}

func filenameOf(opts []Option) string {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.filename == "" {
		return "<input>"
	}
	return options.filename
}
