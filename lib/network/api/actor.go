package api

import (
	"net/http"

	"github.com/veristry/veristry/lib/errors"
	"github.com/veristry/veristry/lib/verification"
)

// actor identity comes from the gateway in front of this service; it
// terminates authentication and forwards the verified identity in
// these headers.
const (
	ActorIDHeader   = "X-Actor-ID"
	ActorRoleHeader = "X-Actor-Role"
)

func actorFromRequest(r *http.Request) (verification.Actor, error) {
	actor := verification.Actor{
		ID:   r.Header.Get(ActorIDHeader),
		Role: verification.Role(r.Header.Get(ActorRoleHeader)),
	}

	if len(actor.ID) < 1 || !actor.Role.IsValid() {
		return verification.Actor{}, errors.NotAuthorized
	}

	return actor, nil
}
