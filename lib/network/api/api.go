package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/veristry/veristry/lib/network/httpcache"
	"github.com/veristry/veristry/lib/storage"
	"github.com/veristry/veristry/lib/verification"
)

// API Endpoint patterns
const (
	PostProjectPattern        = "/projects"
	GetProjectPattern         = "/projects/{id}"
	GetVerificationPattern    = "/verifications/{id}"
	PostAssignPanelPattern    = "/verifications/{id}/panel"
	GetStatusPattern          = "/verifications/{id}/status"
	PostVotePattern           = "/verifications/{id}/votes"
	GetVotesPattern           = "/verifications/{id}/votes"
	PostExtendDeadlinePattern = "/verifications/{id}/extend-deadline"
	PostValidatorPattern      = "/validators"
	GetValidatorsPattern      = "/validators"
	GetValidatorPattern       = "/validators/{id}"
	DeleteValidatorPattern    = "/validators/{id}"
)

type NetworkHandlerAPI struct {
	sm      *verification.StateMachine
	storage *storage.LevelDBBackend
	cache   httpcache.CacheClient
	prefix  string
}

func NewNetworkHandlerAPI(sm *verification.StateMachine, st *storage.LevelDBBackend, cache httpcache.CacheClient) *NetworkHandlerAPI {
	if cache == nil {
		cache = httpcache.NewNopClient()
	}

	return &NetworkHandlerAPI{
		sm:      sm,
		storage: st,
		cache:   cache,
		prefix:  "/api/v1",
	}
}

// AddAPIHandlers registers every public endpoint on the router under
// the api prefix. The status read is wrapped with the response cache;
// every mutation goes to the state machine uncached.
func (api NetworkHandlerAPI) AddAPIHandlers(router *mux.Router) {
	s := router.PathPrefix(api.prefix).Subrouter()

	s.HandleFunc(PostProjectPattern, api.PostProjectHandler).Methods(http.MethodPost)
	s.HandleFunc(GetProjectPattern, api.GetProjectHandler).Methods(http.MethodGet)

	s.HandleFunc(GetVerificationPattern, api.GetVerificationHandler).Methods(http.MethodGet)
	s.HandleFunc(PostAssignPanelPattern, api.PostAssignPanelHandler).Methods(http.MethodPost)
	s.HandleFunc(GetStatusPattern, api.cache.WrapHandlerFunc(api.GetStatusHandler)).Methods(http.MethodGet)
	s.HandleFunc(PostVotePattern, api.PostVoteHandler).Methods(http.MethodPost)
	s.HandleFunc(GetVotesPattern, api.GetVotesHandler).Methods(http.MethodGet)
	s.HandleFunc(PostExtendDeadlinePattern, api.PostExtendDeadlineHandler).Methods(http.MethodPost)

	s.HandleFunc(PostValidatorPattern, api.PostValidatorHandler).Methods(http.MethodPost)
	s.HandleFunc(GetValidatorsPattern, api.GetValidatorsHandler).Methods(http.MethodGet)
	s.HandleFunc(GetValidatorPattern, api.GetValidatorHandler).Methods(http.MethodGet)
	s.HandleFunc(DeleteValidatorPattern, api.DeleteValidatorHandler).Methods(http.MethodDelete)
}
