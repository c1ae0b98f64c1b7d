package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/veristry/veristry/lib/errors"
	"github.com/veristry/veristry/lib/network/api/resource"
	"github.com/veristry/veristry/lib/network/httputils"
	"github.com/veristry/veristry/lib/verification"
)

type VoteBody struct {
	Decision      string `json:"decision"`
	WalletAddress string `json:"wallet_address"`
	Signature     string `json:"signature"`
	IssuedAt      string `json:"issued_at"`
	Notes         string `json:"notes,omitempty"`
}

func (api NetworkHandlerAPI) PostVoteHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	vars := mux.Vars(r)
	id := vars["id"]

	actor, err := actorFromRequest(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var body VoteBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter)
		return
	}

	proof := verification.SignatureProof{
		WalletAddress: body.WalletAddress,
		Signature:     body.Signature,
		IssuedAt:      body.IssuedAt,
	}

	vr, err := api.sm.CastVote(actor, id, verification.Decision(body.Decision), proof, body.Notes)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if err := httputils.WriteJSON(w, http.StatusOK, resource.NewVerification(vr)); err != nil {
		httputils.WriteJSONError(w, err)
	}
}

func (api NetworkHandlerAPI) GetVotesHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	if exists, err := verification.ExistsVerificationRequest(api.storage, id); err != nil {
		httputils.WriteJSONError(w, err)
		return
	} else if !exists {
		httputils.WriteJSONError(w, errors.VerificationDoesNotExist)
		return
	}

	votes, err := verification.GetVotesByRequest(api.storage, id)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var rs []resource.APIResource
	for _, v := range votes {
		rs = append(rs, resource.NewVote(v))
	}

	list := resource.NewResourceList(rs, r.URL.String(), "", "")
	if err := httputils.WriteJSON(w, http.StatusOK, list); err != nil {
		httputils.WriteJSONError(w, err)
	}
}
