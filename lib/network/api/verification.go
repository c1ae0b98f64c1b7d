package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/veristry/veristry/lib/common/observer"
	"github.com/veristry/veristry/lib/errors"
	"github.com/veristry/veristry/lib/network/api/resource"
	"github.com/veristry/veristry/lib/network/httputils"
	"github.com/veristry/veristry/lib/verification"
)

func (api NetworkHandlerAPI) GetVerificationHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	vr, err := verification.GetVerificationRequest(api.storage, id)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if err := httputils.WriteJSON(w, http.StatusOK, resource.NewVerification(vr)); err != nil {
		httputils.WriteJSONError(w, err)
	}
}

func (api NetworkHandlerAPI) PostAssignPanelHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	actor, err := actorFromRequest(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	vr, _, err := api.sm.AssignPanel(actor, id)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if err := httputils.WriteJSON(w, http.StatusOK, resource.NewVerification(vr)); err != nil {
		httputils.WriteJSONError(w, err)
	}
}

func (api NetworkHandlerAPI) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	cs, err := api.sm.GetConsensusStatus(id)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if httputils.IsEventStream(r) {
		es := NewDefaultEventStream(w, r)
		es.Render(resource.NewConsensusStatus(cs).GetMap())
		es.Run(observer.VerificationObserver,
			fmt.Sprintf("%s id=%s", observer.EventDecisionReached, id),
			fmt.Sprintf("%s id=%s", observer.EventDeadlineExtended, id),
		)
		return
	}

	if err := httputils.WriteJSON(w, http.StatusOK, resource.NewConsensusStatus(cs)); err != nil {
		httputils.WriteJSONError(w, err)
	}
}

type ExtendDeadlineBody struct {
	Extension string `json:"extension"`
}

func (api NetworkHandlerAPI) PostExtendDeadlineHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	vars := mux.Vars(r)
	id := vars["id"]

	actor, err := actorFromRequest(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var body ExtendDeadlineBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter)
		return
	}

	extension, err := time.ParseDuration(body.Extension)
	if err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("extension", body.Extension))
		return
	}

	vr, err := api.sm.ExtendDeadline(actor, id, extension)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if err := httputils.WriteJSON(w, http.StatusOK, resource.NewVerification(vr)); err != nil {
		httputils.WriteJSONError(w, err)
	}
}
