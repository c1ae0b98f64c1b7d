package api

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/require"

	"github.com/veristry/veristry/lib/storage"
	"github.com/veristry/veristry/lib/verification"
)

func testAPIServer(t *testing.T) (*verification.StateMachine, *storage.LevelDBBackend, *httptest.Server) {
	st := storage.NewTestStorage()
	t.Cleanup(func() {
		st.Close()
	})

	sm := verification.NewStateMachine(st, verification.TestConfig())

	router := mux.NewRouter()
	NewNetworkHandlerAPI(sm, st, nil).AddAPIHandlers(router)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return sm, st, ts
}

func testRequest(t *testing.T, ts *httptest.Server, method, path string, actor *verification.Actor, body interface{}) (int, map[string]interface{}) {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+"/api/v1"+path, reader)
	require.NoError(t, err)
	if actor != nil {
		req.Header.Set(ActorIDHeader, actor.ID)
		req.Header.Set(ActorRoleHeader, string(actor.Role))
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	if len(b) > 0 {
		require.NoError(t, json.Unmarshal(b, &parsed))
	}

	return resp.StatusCode, parsed
}

func TestAPIPostProject(t *testing.T) {
	_, _, ts := testAPIServer(t)

	actor := verification.TestMember("alice")
	code, body := testRequest(t, ts, "POST", "/projects", &actor, ProjectSubmitBody{Title: "solar farm audit"})
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, string(verification.StatusPending), body["status"])
	require.NotEmpty(t, body["id"])
	require.NotEmpty(t, body["project_id"])

	// the verification links back to its project
	links := body["_links"].(map[string]interface{})
	require.Contains(t, links, "project")
	require.Contains(t, links, "status")
}

func TestAPIPostProjectWithoutActor(t *testing.T) {
	_, _, ts := testAPIServer(t)

	code, body := testRequest(t, ts, "POST", "/projects", nil, ProjectSubmitBody{Title: "x"})
	require.Equal(t, http.StatusForbidden, code)
	require.Contains(t, body["type"], "problems")
}

func TestAPIVoteFlow(t *testing.T) {
	sm, st, ts := testAPIServer(t)

	_, kps := verification.TestRegisterValidators(st, 6)

	submitter := verification.TestMember("alice")
	_, vr, err := sm.SubmitProject(submitter, "bridge retrofit")
	require.NoError(t, err)

	admin := verification.TestAdmin()
	code, body := testRequest(t, ts, "POST", "/verifications/"+vr.ID+"/panel", &admin, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, string(verification.StatusInReview), body["status"])
	require.Equal(t, float64(30), body["progress"])

	assignments, err := verification.GetAssignmentsByRequest(st, vr.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 5)

	// three wallet-signed approvals reach the threshold
	for i := 0; i < 3; i++ {
		vid := assignments[i].ValidatorID
		kp := kps[vid]
		proof := verification.TestMakeProof(kp, vr.ID, vid, verification.DecisionApprove)

		voter := verification.Actor{ID: vid, Role: verification.RoleValidator}
		code, body = testRequest(t, ts, "POST", "/verifications/"+vr.ID+"/votes", &voter, VoteBody{
			Decision:      string(verification.DecisionApprove),
			WalletAddress: proof.WalletAddress,
			Signature:     proof.Signature,
			IssuedAt:      proof.IssuedAt,
		})
		require.Equal(t, http.StatusOK, code)
	}

	require.Equal(t, string(verification.StatusApproved), body["status"])
	require.Equal(t, float64(100), body["progress"])

	code, body = testRequest(t, ts, "GET", "/verifications/"+vr.ID+"/status", nil, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, string(verification.StatusApproved), body["status"])
	require.Equal(t, float64(3), body["approvals"])

	code, body = testRequest(t, ts, "GET", "/verifications/"+vr.ID+"/votes", nil, nil)
	require.Equal(t, http.StatusOK, code)
	embedded := body["_embedded"].(map[string]interface{})
	require.Len(t, embedded["records"], 3)
}

func TestAPIVoteRejectsBadSignature(t *testing.T) {
	sm, st, ts := testAPIServer(t)

	_, kps := verification.TestRegisterValidators(st, 6)

	submitter := verification.TestMember("alice")
	_, vr, err := sm.SubmitProject(submitter, "dam inspection")
	require.NoError(t, err)
	_, assignments, err := sm.AssignPanel(verification.TestAdmin(), vr.ID)
	require.NoError(t, err)

	vid := assignments[0].ValidatorID
	proof := verification.TestMakeProof(kps[vid], vr.ID, vid, verification.DecisionApprove)

	// the signature covers the decision; flipping it must fail
	voter := verification.Actor{ID: vid, Role: verification.RoleValidator}
	code, body := testRequest(t, ts, "POST", "/verifications/"+vr.ID+"/votes", &voter, VoteBody{
		Decision:      string(verification.DecisionReject),
		WalletAddress: proof.WalletAddress,
		Signature:     proof.Signature,
		IssuedAt:      proof.IssuedAt,
	})
	require.Equal(t, http.StatusUnauthorized, code)
	require.Contains(t, body["type"], "153")
}

func TestAPIExtendDeadline(t *testing.T) {
	sm, st, ts := testAPIServer(t)

	verification.TestRegisterValidators(st, 6)

	_, vr, err := sm.SubmitProject(verification.TestMember("alice"), "wind survey")
	require.NoError(t, err)
	_, _, err = sm.AssignPanel(verification.TestAdmin(), vr.ID)
	require.NoError(t, err)

	admin := verification.TestAdmin()
	code, body := testRequest(t, ts, "POST", "/verifications/"+vr.ID+"/extend-deadline", &admin, ExtendDeadlineBody{Extension: "24h"})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["deadline_extended"])

	code, _ = testRequest(t, ts, "POST", "/verifications/"+vr.ID+"/extend-deadline", &admin, ExtendDeadlineBody{Extension: "bogus"})
	require.Equal(t, http.StatusBadRequest, code)
}

func TestAPIValidators(t *testing.T) {
	_, _, ts := testAPIServer(t)

	kp, err := keypair.Random()
	require.NoError(t, err)

	admin := verification.TestAdmin()
	code, body := testRequest(t, ts, "POST", "/validators", &admin, ValidatorRegisterBody{
		Address: kp.Address(),
		Alias:   "auditor-1",
	})
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, kp.Address(), body["address"])
	id := body["id"].(string)

	code, body = testRequest(t, ts, "GET", "/validators/"+id, nil, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "auditor-1", body["alias"])

	// only admins register validators
	member := verification.TestMember("bob")
	code, _ = testRequest(t, ts, "POST", "/validators", &member, ValidatorRegisterBody{Address: kp.Address()})
	require.Equal(t, http.StatusForbidden, code)

	code, body = testRequest(t, ts, "GET", "/validators", nil, nil)
	require.Equal(t, http.StatusOK, code)
	embedded := body["_embedded"].(map[string]interface{})
	require.Len(t, embedded["records"], 1)
}

func TestAPIGetMissingVerification(t *testing.T) {
	_, _, ts := testAPIServer(t)

	code, _ := testRequest(t, ts, "GET", "/verifications/unknown", nil, nil)
	require.Equal(t, http.StatusNotFound, code)

	code, _ = testRequest(t, ts, "GET", "/verifications/unknown/status", nil, nil)
	require.Equal(t, http.StatusNotFound, code)
}
