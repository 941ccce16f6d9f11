package openapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.opentelemetry.io/otel/attribute"

	"github.com/goliatone/go-opforms/internal/telemetry"
	"github.com/goliatone/go-opforms/pkg/operator"
)

// ParseOption configures document parsing.
type ParseOption func(*parseOptions)

type parseOptions struct {
	validate     bool
	externalRefs bool
	allowEmpty   bool
}

// WithValidation validates the document with kin-openapi before conversion.
func WithValidation() ParseOption {
	return func(o *parseOptions) {
		o.validate = true
	}
}

// WithExternalRefs allows $ref values pointing outside the document.
func WithExternalRefs() ParseOption {
	return func(o *parseOptions) {
		o.externalRefs = true
	}
}

// WithPartialDocuments accepts documents without any operations.
func WithPartialDocuments() ParseOption {
	return func(o *parseOptions) {
		o.allowEmpty = true
	}
}

var methods = []string{
	http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete,
	http.MethodPatch, http.MethodHead, http.MethodOptions, http.MethodTrace,
}

// Operations converts every operation in data into an operator. The JSON
// request body becomes the inputs; the first 2xx (or default) JSON response
// becomes the outputs. Operators are sorted by name; operations without an
// operationId are named "<method>:<path>".
func Operations(ctx context.Context, data []byte, opts ...ParseOption) (ops []operator.Operator, err error) {
	ctx, span := telemetry.Start(ctx, "openapi.Operations")
	defer func() {
		span.SetAttributes(attribute.Int("openapi.operations", len(ops)))
		telemetry.End(span, err)
	}()

	cfg := parseOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	doc, err := loadDocument(ctx, data, cfg)
	if err != nil {
		return nil, err
	}

	if doc.Paths != nil {
		for path, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for _, method := range methods {
				op := item.GetOperation(method)
				if op == nil {
					continue
				}
				converted, err := convertOperation(method, path, op)
				if err != nil {
					return nil, err
				}
				ops = append(ops, converted)
			}
		}
	}

	if len(ops) == 0 && !cfg.allowEmpty {
		return nil, errors.New("openapi: no operations extracted")
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops, nil
}

// LoadOperation converts the single operation named operationID.
func LoadOperation(ctx context.Context, data []byte, operationID string, opts ...ParseOption) (operator.Operator, error) {
	ops, err := Operations(ctx, data, append(opts, WithPartialDocuments())...)
	if err != nil {
		return operator.Operator{}, err
	}
	for _, op := range ops {
		if op.Name == operationID {
			return op, nil
		}
	}
	return operator.Operator{}, fmt.Errorf("openapi: operation %q not found", operationID)
}

func loadDocument(ctx context.Context, data []byte, cfg parseOptions) (*openapi3.T, error) {
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: cfg.externalRefs,
	}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if cfg.validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return doc, nil
}

func convertOperation(method, path string, op *openapi3.Operation) (operator.Operator, error) {
	name := operationName(method, path, op)

	inputs, err := FromSchema(requestSchema(op.RequestBody))
	if err != nil {
		return operator.Operator{}, fmt.Errorf("openapi: operation %q request body: %w", name, err)
	}
	outputs, err := FromSchema(responseSchema(op.Responses))
	if err != nil {
		return operator.Operator{}, fmt.Errorf("openapi: operation %q response: %w", name, err)
	}

	converted := operator.Operator{
		Name:        name,
		Label:       op.Summary,
		Description: op.Description,
		Dynamic:     inputs.Dynamic(),
		Inputs:      inputs,
		Outputs:     outputs,
	}
	if err := converted.Normalize(); err != nil {
		return operator.Operator{}, err
	}
	return converted, nil
}

func operationName(method, path string, op *openapi3.Operation) string {
	if op.OperationID != "" {
		return op.OperationID
	}
	return strings.ToLower(method) + ":" + path
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.SchemaRef {
	if body == nil || body.Value == nil {
		return nil
	}
	return jsonSchema(body.Value.Content)
}

func responseSchema(responses *openapi3.Responses) *openapi3.SchemaRef {
	if responses == nil {
		return nil
	}
	codes := make([]string, 0, responses.Len())
	for code := range responses.Map() {
		if strings.HasPrefix(code, "2") {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	codes = append(codes, "default")

	for _, code := range codes {
		ref := responses.Value(code)
		if ref == nil || ref.Value == nil {
			continue
		}
		if schema := jsonSchema(ref.Value.Content); schema != nil && schema.Value != nil && isObjectSchema(schema.Value) {
			return schema
		}
	}
	return nil
}

func jsonSchema(content openapi3.Content) *openapi3.SchemaRef {
	if mt := content.Get("application/json"); mt != nil {
		return mt.Schema
	}
	return nil
}

// Document exports ops as an OpenAPI document. Each operator becomes
// POST /operators/{name} with its inputs as the request body and its outputs
// as the 200 response.
func Document(title, version string, ops ...operator.Operator) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: title, Version: version},
		Paths:   openapi3.NewPaths(),
	}

	for _, op := range ops {
		responses := openapi3.NewResponsesWithCapacity(1)
		responses.Set("200", &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Operator outputs").
				WithJSONSchema(ToSchema(op.Outputs)),
		})
		doc.Paths.Set("/operators/"+op.Name, &openapi3.PathItem{
			Post: &openapi3.Operation{
				OperationID: op.Name,
				Summary:     op.Label,
				Description: op.Description,
				RequestBody: &openapi3.RequestBodyRef{
					Value: openapi3.NewRequestBody().
						WithRequired(true).
						WithJSONSchema(ToSchema(op.Inputs)),
				},
				Responses: responses,
			},
		})
	}
	return doc
}
