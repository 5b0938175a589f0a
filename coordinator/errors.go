package coordinator

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/EnterStudios/fabricstated/pkg/config"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate"
	"github.com/EnterStudios/fabricstated/pkg/resolver"
)

// errInterfaceNotFound reports a getInterfaceDetail miss; it carries
// resolver.ErrNotFound so it maps through toStatus like any other
// not-found condition.
func errInterfaceNotFound(ifID fabricstate.InterfaceID) error {
	return fmt.Errorf("%w: interface %d", resolver.ErrNotFound, ifID)
}

// toStatus maps a resolver/config error sentinel onto the gRPC status
// vocabulary, grounded on the teacher's pkg/statedb/grpc.go, which reuses
// google.golang.org/grpc/codes and status to report table-not-found and
// malformed-query conditions over the same RPC surface it serves reads
// through. fabricstated has no network RPC transport (spec's Non-goals
// exclude a wire protocol beyond the CLI), but the coordinator's error
// taxonomy (spec §7: InvalidInput/NotFound/StateConflict/Internal) is
// expressed in the same vocabulary so a future RPC front-end — or the
// cmd/fabricstated CLI today — can surface it without a second mapping
// layer.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, resolver.ErrInvalidInput), errors.Is(err, config.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, resolver.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, resolver.ErrStateConflict), errors.Is(err, config.ErrStateConflict):
		// spec §6's RPC error-code table puts "duplicate interface address"
		// (a StateConflict per §7's taxonomy) under InvalidArgument on the
		// wire, same as an empty next-hop set — StateConflict is a distinct
		// error *category* for logging/handling purposes, but it is not a
		// distinct gRPC code.
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, resolver.ErrInternal):
		return status.Error(codes.Internal, err.Error())
	default:
		return status.Error(codes.Unknown, err.Error())
	}
}

// rejectReason labels a rejected update for the updates_rejected_total
// metric, mirroring toStatus's classification without allocating a
// status.Status.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, resolver.ErrInvalidInput), errors.Is(err, config.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, resolver.ErrNotFound):
		return "not_found"
	case errors.Is(err, resolver.ErrStateConflict), errors.Is(err, config.ErrStateConflict):
		return "state_conflict"
	case errors.Is(err, resolver.ErrInternal):
		return "internal"
	default:
		return "unknown"
	}
}
