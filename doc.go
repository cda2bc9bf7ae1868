// Package cloudstack is a client for CloudStack style orchestration APIs.
//
// A call is an endpoint (command) name plus a set of string parameters.
// The client adds the api key and command, signs the sorted parameter set
// with the secret key, and sends it through a chain of middleware stages
// that ends in a Connection:
//
//	client, err := cloudstack.New(cloudstack.Config{
//		URL:       "https://cloud.example.com/client/api",
//		APIKey:    apiKey,
//		SecretKey: secretKey,
//		Middlewares: []cloudstack.Middleware{
//			middleware.Normalizer(catalog.MustNew("listVirtualMachines")),
//			middleware.HTTPStatus(),
//		},
//	})
//	res, err := client.Request(ctx, "list_virtual_machines", map[string]any{"listall": true})
//
// # Signing
//
// The signature is computed over the canonical query string: parameters
// sorted by key, values percent-encoded (space as %20), joined with '&',
// then lower-cased. The HMAC-SHA1 digest of that string, base64 encoded
// and escaped, is appended as the "signature" parameter.
//
// # Middleware
//
// Stages wrap the next stage. Middlewares listed first run first on the way
// in and last on the way out. Per-call state lives in the Environment;
// stages themselves are shared and must be safe for concurrent use.
package cloudstack
