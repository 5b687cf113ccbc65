package httpserver

import (
	"net/http"
	"testing"

	workflowhttp "legisflow/contexts/legislative-advocacy/workflow-service/transport/http"
)

func gateID(t *testing.T, server *Server, campaignID string, code string) string {
	t.Helper()
	rr := doRequest(t, server, http.MethodGet, "/v1/campaigns/"+campaignID+"/workflow/gates", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list gates: %d %s", rr.Code, rr.Body.String())
	}
	for _, gate := range decode[workflowhttp.ListGatesResponse](t, rr).Items {
		if gate.Code == code {
			return gate.GateID
		}
	}
	t.Fatalf("gate %s not found", code)
	return ""
}

func TestListProcessStates(t *testing.T) {
	rr := doRequest(t, newTestServer(), http.MethodGet, "/v1/process/states", "", nil)
	resp := decode[workflowhttp.ListProcessStatesResponse](t, rr)
	if len(resp.Items) != 6 || resp.Items[0].StateID != "PRE_EVT" || resp.Items[5].StateID != "IMPL_EVT" {
		t.Fatalf("unexpected states %+v", resp.Items)
	}
}

func TestListGateTemplates(t *testing.T) {
	server := newTestServer()
	resp := decode[workflowhttp.ListGateTemplatesResponse](t, doRequest(t, server, http.MethodGet, "/v1/process/legislative/gates", "", nil))
	if len(resp.Items) != 4 {
		t.Fatalf("expected 4 gate templates, got %d", len(resp.Items))
	}
	expectError(t, doRequest(t, server, http.MethodGet, "/v1/process/unknown/gates", "", nil), http.StatusNotFound, "not_found")
}

func TestInitializeWorkflowTwiceConflicts(t *testing.T) {
	server := newTestServer()
	rr := doRequest(t, server, http.MethodPost, "/v1/campaigns/c1/workflow", "", map[string]string{"X-User-Id": "ops"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	resp := decode[workflowhttp.InitializeWorkflowResponse](t, rr)
	if resp.State.CurrentState.StateID != "PRE_EVT" || resp.State.CanAdvance || resp.State.PendingGateID == nil {
		t.Fatalf("unexpected initial state %+v", resp.State)
	}
	expectError(t, doRequest(t, server, http.MethodPost, "/v1/campaigns/c1/workflow", "", nil), http.StatusConflict, "conflict")
}

func TestAdvanceRequiresGateApproval(t *testing.T) {
	server := newTestServer()
	doRequest(t, server, http.MethodPost, "/v1/campaigns/c1/workflow", "", nil)

	blocked := doRequest(t, server, http.MethodPost, "/v1/campaigns/c1/workflow/advance", `{"requested_by":"ops"}`, nil)
	expectError(t, blocked, http.StatusConflict, "gate_not_approved")

	approve := doRequest(t, server, http.MethodPost, "/v1/gates/"+gateID(t, server, "c1", "HR_PRE")+"/approve",
		`{"notes":"concept is sound"}`, map[string]string{"X-User-Id": "Alice"})
	if approve.Code != http.StatusOK {
		t.Fatalf("approve: %d %s", approve.Code, approve.Body.String())
	}
	approved := decode[workflowhttp.ApproveGateResponse](t, approve)
	if approved.Gate.Status != "approved" || approved.Gate.ApprovedBy == nil || *approved.Gate.ApprovedBy != "Alice" {
		t.Fatalf("unexpected gate %+v", approved.Gate)
	}

	advanced := doRequest(t, server, http.MethodPost, "/v1/campaigns/c1/workflow/advance", "", map[string]string{"X-User-Id": "ops"})
	if advanced.Code != http.StatusOK {
		t.Fatalf("advance: %d %s", advanced.Code, advanced.Body.String())
	}
	resp := decode[workflowhttp.AdvanceResponse](t, advanced)
	if resp.State.CurrentState.StateID != "INTRO_EVT" || resp.Transition.GateID == "" {
		t.Fatalf("unexpected advance result %+v", resp)
	}

	history := decode[workflowhttp.HistoryResponse](t, doRequest(t, server, http.MethodGet, "/v1/campaigns/c1/workflow/history", "", nil))
	if len(history.Items) != 1 || history.Items[0].ApprovedBy != "Alice" {
		t.Fatalf("unexpected history %+v", history.Items)
	}
}

func TestAdvanceExpectedStateMismatch(t *testing.T) {
	server := newTestServer()
	doRequest(t, server, http.MethodPost, "/v1/campaigns/c1/workflow", "", nil)
	rr := doRequest(t, server, http.MethodPost, "/v1/campaigns/c1/workflow/advance",
		`{"requested_by":"ops","expected_state_id":"COMM_EVT"}`, nil)
	expectError(t, rr, http.StatusConflict, "conflict")
}

func TestUnknownCampaignIsNotFound(t *testing.T) {
	server := newTestServer()
	expectError(t, doRequest(t, server, http.MethodGet, "/v1/campaigns/nope/workflow/state", "", nil), http.StatusNotFound, "not_found")
	expectError(t, doRequest(t, server, http.MethodPost, "/v1/campaigns/nope/workflow/advance", `{"requested_by":"ops"}`, nil), http.StatusNotFound, "not_found")
	expectError(t, doRequest(t, server, http.MethodPost, "/v1/gates/nope/approve", `{"approved_by":"Alice"}`, nil), http.StatusNotFound, "not_found")
}

func TestApproveRequiresActor(t *testing.T) {
	server := newTestServer()
	doRequest(t, server, http.MethodPost, "/v1/campaigns/c1/workflow", "", nil)
	rr := doRequest(t, server, http.MethodPost, "/v1/gates/"+gateID(t, server, "c1", "HR_PRE")+"/approve", `{}`, nil)
	expectError(t, rr, http.StatusBadRequest, "validation_error")
}

func TestApproveInactiveGate(t *testing.T) {
	server := newTestServer()
	doRequest(t, server, http.MethodPost, "/v1/campaigns/c1/workflow", "", nil)
	rr := doRequest(t, server, http.MethodPost, "/v1/gates/"+gateID(t, server, "c1", "HR_RELEASE")+"/approve", `{"approved_by":"Alice"}`, nil)
	expectError(t, rr, http.StatusConflict, "gate_not_active")
}

func TestWorkflowStatesMarkProgress(t *testing.T) {
	server := newTestServer()
	doRequest(t, server, http.MethodPost, "/v1/campaigns/c1/workflow", "", nil)
	resp := decode[workflowhttp.ListWorkflowStatesResponse](t, doRequest(t, server, http.MethodGet, "/v1/campaigns/c1/workflow/states", "", nil))
	if len(resp.Items) != 6 || resp.Items[0].Status != "current" || resp.Items[1].Status != "upcoming" {
		t.Fatalf("unexpected state statuses %+v", resp.Items)
	}
}

func TestResetRequiresUserHeader(t *testing.T) {
	server := newTestServer()
	doRequest(t, server, http.MethodPost, "/v1/campaigns/c1/workflow", "", nil)
	expectError(t, doRequest(t, server, http.MethodPost, "/v1/admin/campaigns/c1/workflow/reset", "", nil), http.StatusUnauthorized, "missing_user")

	rr := doRequest(t, server, http.MethodPost, "/v1/admin/campaigns/c1/workflow/reset", `{"reason":"restart"}`, map[string]string{"X-User-Id": "admin"})
	if rr.Code != http.StatusOK {
		t.Fatalf("reset: %d %s", rr.Code, rr.Body.String())
	}
	resp := decode[workflowhttp.ResetResponse](t, rr)
	if resp.State.CurrentState.StateID != "PRE_EVT" || resp.Transition.Kind != "reset" {
		t.Fatalf("unexpected reset response %+v", resp)
	}
}

func TestResetKeepsGateApprovals(t *testing.T) {
	server := newTestServer()
	admin := map[string]string{"X-User-Id": "admin"}
	doRequest(t, server, http.MethodPost, "/v1/campaigns/c1/workflow", "", nil)
	hrPre := gateID(t, server, "c1", "HR_PRE")
	approve := doRequest(t, server, http.MethodPost, "/v1/gates/"+hrPre+"/approve", `{"approved_by":"Alice"}`, nil)
	if approve.Code != http.StatusOK {
		t.Fatalf("approve: %d %s", approve.Code, approve.Body.String())
	}
	if rr := doRequest(t, server, http.MethodPost, "/v1/campaigns/c1/workflow/advance", `{"requested_by":"ops"}`, nil); rr.Code != http.StatusOK {
		t.Fatalf("advance: %d %s", rr.Code, rr.Body.String())
	}

	if rr := doRequest(t, server, http.MethodPost, "/v1/admin/campaigns/c1/workflow/reset", `{"reason":"restart"}`, admin); rr.Code != http.StatusOK {
		t.Fatalf("reset: %d %s", rr.Code, rr.Body.String())
	}

	gates := decode[workflowhttp.ListGatesResponse](t, doRequest(t, server, http.MethodGet, "/v1/campaigns/c1/workflow/gates", "", nil))
	for _, gate := range gates.Items {
		if gate.GateID == hrPre && gate.Status != "approved" {
			t.Fatalf("expected HR_PRE to stay approved after reset, got %s", gate.Status)
		}
	}

	rr := doRequest(t, server, http.MethodPost, "/v1/campaigns/c1/workflow/advance", `{"requested_by":"ops"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected re-advance without re-approval, got %d %s", rr.Code, rr.Body.String())
	}
	if resp := decode[workflowhttp.AdvanceResponse](t, rr); resp.State.CurrentState.StateID != "INTRO_EVT" {
		t.Fatalf("unexpected state after re-advance %s", resp.State.CurrentState.StateID)
	}
}
