// Package middleware provides optional stages for the cloudstack call chain.
//
// Stages are listed in cloudstack.Config.Middlewares, outermost first:
//
//	cfg.Middlewares = []cloudstack.Middleware{
//		middleware.Logging(logger),
//		middleware.Normalizer(catalog.MustNew(commands...)),
//		middleware.RemoveEmptyStrings(),
//		middleware.HTTPStatus(),
//	}
package middleware

import (
	"context"

	"github.com/lestrrat-go/cloudstack"
	"github.com/lestrrat-go/cloudstack/catalog"
	"github.com/lestrrat-go/cloudstack/query"
)

type normalizer struct {
	cloudstack.Base
	catalog catalog.Catalog
}

// Normalizer resolves endpoint names through c. Names c does not know are
// passed on to the next stage.
func Normalizer(c catalog.Catalog) cloudstack.Middleware {
	return func(next cloudstack.Handler) cloudstack.Handler {
		return normalizer{Base: cloudstack.Base{Next: next}, catalog: c}
	}
}

func (n normalizer) EndpointNameFor(name string) (string, bool) {
	if n.catalog != nil {
		if cmd, ok := n.catalog.Lookup(name); ok {
			return cmd, true
		}
	}
	return n.Base.EndpointNameFor(name)
}

func (n normalizer) Call(ctx context.Context, env *cloudstack.Environment) (*cloudstack.Response, error) {
	if cmd, ok := n.EndpointNameFor(env.EndpointName); ok {
		env.EndpointName = cmd
	}
	return n.Next.Call(ctx, env)
}

// RemoveEmptyStrings drops parameters whose value is the empty string,
// regardless of the AllowEmptyStringParams setting further in.
func RemoveEmptyStrings() cloudstack.Middleware {
	return cloudstack.Func(func(next cloudstack.Handler) cloudstack.HandlerFunc {
		return func(ctx context.Context, env *cloudstack.Environment) (*cloudstack.Response, error) {
			var empty []string
			for k, v := range env.Params {
				if v == "" {
					empty = append(empty, k)
				}
			}
			if len(empty) > 0 {
				env.Params = env.Params.Without(empty...)
			}
			return next.Call(ctx, env)
		}
	})
}

// Defaults adds params to every call. Values supplied by the caller win.
//
//	middleware.Defaults(query.Params{"response": "json"})
func Defaults(params query.Params) cloudstack.Middleware {
	defaults := params.Clone()
	return cloudstack.Func(func(next cloudstack.Handler) cloudstack.HandlerFunc {
		return func(ctx context.Context, env *cloudstack.Environment) (*cloudstack.Response, error) {
			env.Params = defaults.Merge(env.Params)
			return next.Call(ctx, env)
		}
	})
}

// HTTPStatus turns responses with a non-2xx status into
// *cloudstack.StatusError failures.
func HTTPStatus() cloudstack.Middleware {
	return cloudstack.Func(func(next cloudstack.Handler) cloudstack.HandlerFunc {
		return func(ctx context.Context, env *cloudstack.Environment) (*cloudstack.Response, error) {
			res, err := next.Call(ctx, env)
			if err != nil {
				return nil, err
			}
			if !res.Success() {
				return nil, &cloudstack.StatusError{
					Endpoint:   env.EndpointName,
					StatusCode: res.Status(),
					Body:       res.Body(),
				}
			}
			return res, nil
		}
	})
}
