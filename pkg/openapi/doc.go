// Package openapi converts operator forms to and from OpenAPI 3 schemas using
// kin-openapi. Object property order, which OpenAPI maps cannot carry, travels
// in the x-opforms-order extension; view descriptors travel in x-opforms-view.
package openapi
