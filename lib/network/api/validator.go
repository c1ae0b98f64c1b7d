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

type ValidatorRegisterBody struct {
	Address string `json:"address"`
	Alias   string `json:"alias,omitempty"`
}

func (api NetworkHandlerAPI) PostValidatorHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	actor, err := actorFromRequest(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var body ValidatorRegisterBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter)
		return
	}

	v, err := api.sm.RegisterValidator(actor, body.Address, body.Alias)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if err := httputils.WriteJSON(w, http.StatusCreated, resource.NewValidator(v)); err != nil {
		httputils.WriteJSONError(w, err)
	}
}

func (api NetworkHandlerAPI) GetValidatorsHandler(w http.ResponseWriter, r *http.Request) {
	pq, err := httputils.NewPageQuery(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	vs, cursor, err := verification.GetValidators(api.storage, pq.ListOptions())
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var rs []resource.APIResource
	for _, v := range vs {
		rs = append(rs, resource.NewValidator(v))
	}

	list := resource.NewResourceList(rs, pq.SelfLink(), pq.NextLink(cursor), pq.PrevLink(cursor))
	if err := httputils.WriteJSON(w, http.StatusOK, list); err != nil {
		httputils.WriteJSONError(w, err)
	}
}

func (api NetworkHandlerAPI) DeleteValidatorHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	actor, err := actorFromRequest(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	v, err := api.sm.DeactivateValidator(actor, id)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if err := httputils.WriteJSON(w, http.StatusOK, resource.NewValidator(v)); err != nil {
		httputils.WriteJSONError(w, err)
	}
}

func (api NetworkHandlerAPI) GetValidatorHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	v, err := verification.GetValidator(api.storage, id)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if err := httputils.WriteJSON(w, http.StatusOK, resource.NewValidator(v)); err != nil {
		httputils.WriteJSONError(w, err)
	}
}
