// Package relay runs the native messaging request loop.
//
// Each cycle reads one frame, decodes it into a typed request, dispatches it
// to its handler and writes the response frame before the next read begins.
package relay

import (
	"context"

	"github.com/pithecene-io/ccshost/types"
)

// Dispatch routes req to the matching handler in h and returns its response.
// Routing goes through types.RequestVisitor, so a new request variant does
// not compile until every handler set implements it.
func Dispatch(ctx context.Context, h types.RequestVisitor, req types.Request) types.Response {
	return req.Accept(ctx, h)
}
