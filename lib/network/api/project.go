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

type ProjectSubmitBody struct {
	Title string `json:"title"`
}

func (api NetworkHandlerAPI) PostProjectHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	actor, err := actorFromRequest(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var body ProjectSubmitBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter)
		return
	}

	_, vr, err := api.sm.SubmitProject(actor, body.Title)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if err := httputils.WriteJSON(w, http.StatusCreated, resource.NewVerification(vr)); err != nil {
		httputils.WriteJSONError(w, err)
	}
}

func (api NetworkHandlerAPI) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	p, err := verification.GetProject(api.storage, id)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if err := httputils.WriteJSON(w, http.StatusOK, resource.NewProject(p)); err != nil {
		httputils.WriteJSONError(w, err)
	}
}
