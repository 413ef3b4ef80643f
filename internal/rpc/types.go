// Package rpc exposes the node over an HTTP JSON-RPC API. Requests
// use the {"method": ..., "params": [{...}]} convention; responses
// carry a result object with a "status" field.
package rpc

import (
	"context"
	"encoding/json"
)

// Request is a JSON-RPC request. Params is an array holding at most
// one parameter object.
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// RpcContext contains request-specific information.
type RpcContext struct {
	Context  context.Context
	IsAdmin  bool
	ClientIP string
}

// MethodHandler is implemented by all RPC methods.
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)

	// RequiresAdmin reports whether the method needs admin privileges.
	RequiresAdmin() bool
}

// MethodRegistry maps method names to handlers.
type MethodRegistry struct {
	methods map[string]MethodHandler
}

// NewMethodRegistry creates an empty registry.
func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodHandler),
	}
}

// Register installs a handler under a method name.
func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.methods[name] = handler
}

// Get looks up a handler by method name.
func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	handler, exists := r.methods[name]
	return handler, exists
}

// List returns all registered method names.
func (r *MethodRegistry) List() []string {
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	return methods
}

// LedgerSpecifier selects which ledger a query runs against:
// "current", "closed", "validated" or a sequence number.
type LedgerSpecifier struct {
	LedgerIndex string `json:"ledger_index,omitempty"`
}
