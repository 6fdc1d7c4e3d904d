// Package rpc is the JSON-RPC 1.0 adapter for the Verge wallet daemon.
//
// An Adapter accepts only the wallet methods on its allow-list, builds the
// request envelope
//
//	{"method": "getbalance", "params": ["alice", 1], "id": 1}
//
// sends it through a Transport and validates the response envelope. Two
// transports are provided: HTTPTransport POSTs each envelope to the daemon's
// HTTP endpoint, StreamTransport writes it to a websocket.
//
// Failures fall in three groups:
//
//   - local errors (ErrUnsupportedMethod, ErrInvalidParams), raised before
//     anything is sent;
//   - *ConnectionError, when the daemon cannot be reached;
//   - *ResponseError, when the daemon answers with a 4xx/5xx status, an
//     undecodable body, a foreign correlation id or a non-null error member.
//
// Use errors.Is and errors.As to tell them apart:
//
//	res, err := adapter.Call(ctx, rpc.GetBalanceMethod, "alice", 1)
//	var resErr *rpc.ResponseError
//	if errors.As(err, &resErr) && resErr.Daemon != nil {
//		fmt.Println(resErr.Daemon.Code, resErr.Daemon.Message)
//	}
package rpc
