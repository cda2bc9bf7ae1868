package cloudstack_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/lestrrat-go/cloudstack"
	"github.com/lestrrat-go/cloudstack/catalog"
	"github.com/lestrrat-go/cloudstack/middleware"
	"github.com/lestrrat-go/cloudstack/query"
	"github.com/rs/zerolog"
)

func ExampleNewRequest() {
	req, err := cloudstack.NewRequest("listVirtualMachines", "K", "S", query.Params{"list": "all"})
	if err != nil {
		fmt.Printf("failed to build request: %s\n", err)
		return
	}
	fmt.Println(req.Canonical())
	// Output:
	// apiKey=K&command=listVirtualMachines&list=all
}

func ExampleClient_Request() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/javascript; charset=UTF-8")
		fmt.Fprintf(w, `{"command":%q}`, r.URL.Query().Get("command"))
	}))
	defer srv.Close()

	client, err := cloudstack.New(cloudstack.Config{
		URL:       srv.URL + "/client/api",
		APIKey:    "K",
		SecretKey: "S",
		Middlewares: []cloudstack.Middleware{
			middleware.Logging(zerolog.New(os.Stderr).Level(zerolog.WarnLevel)),
			middleware.Normalizer(catalog.MustNew("listVirtualMachines")),
			middleware.Defaults(query.Params{"response": "json"}),
			middleware.HTTPStatus(),
		},
	})
	if err != nil {
		fmt.Printf("failed to create client: %s\n", err)
		return
	}

	res, err := client.Request(context.Background(), "list_virtual_machines", map[string]any{"listall": true})
	if err != nil {
		fmt.Printf("request failed: %s\n", err)
		return
	}
	fmt.Println(res.ContentType())
	fmt.Println(string(res.Body()))
	// Output:
	// text/javascript
	// {"command":"listVirtualMachines"}
}
