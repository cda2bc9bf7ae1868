package cloudstack

import "context"

// Handler is one stage of the call pipeline.
//
// Call may do work before and after delegating to the next stage, or
// return without delegating at all. EndpointNameFor maps a caller supplied
// endpoint name to the command the server knows; a stage that has no
// opinion forwards the question to the next stage.
type Handler interface {
	Call(ctx context.Context, env *Environment) (*Response, error)
	EndpointNameFor(name string) (string, bool)
}

// Middleware builds a stage around next.
type Middleware func(next Handler) Handler

// Chain composes middlewares around terminal. The first middleware is the
// outermost: it sees the environment first and the response last.
//
// Chain(t, a, b) is equivalent to a(b(t)).
func Chain(terminal Handler, middlewares ...Middleware) Handler {
	h := terminal
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] == nil {
			continue
		}
		h = middlewares[i](h)
	}
	return h
}

// Base carries the next stage and forwards EndpointNameFor to it. Embed it
// in stages that only care about Call.
type Base struct {
	Next Handler
}

func (b Base) EndpointNameFor(name string) (string, bool) {
	if b.Next == nil {
		return "", false
	}
	return b.Next.EndpointNameFor(name)
}

// HandlerFunc adapts a function into a stage that delegates endpoint name
// resolution to next.
type HandlerFunc func(ctx context.Context, env *Environment) (*Response, error)

// Func builds a Middleware from a function that receives the next stage.
// It is the shortest way to write a stage:
//
//	cloudstack.Func(func(next cloudstack.Handler) cloudstack.HandlerFunc {
//		return func(ctx context.Context, env *cloudstack.Environment) (*cloudstack.Response, error) {
//			// before
//			res, err := next.Call(ctx, env)
//			// after
//			return res, err
//		}
//	})
func Func(fn func(next Handler) HandlerFunc) Middleware {
	return func(next Handler) Handler {
		return funcStage{Base: Base{Next: next}, fn: fn(next)}
	}
}

type funcStage struct {
	Base
	fn HandlerFunc
}

func (s funcStage) Call(ctx context.Context, env *Environment) (*Response, error) {
	return s.fn(ctx, env)
}
