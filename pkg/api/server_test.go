package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maxrand/go/pkg/probspec"
)

type stubService struct{}

func (stubService) Baseline(req BaselineRequest) (BaselineResponse, error) {
	spec, err := req.ToProbspec()
	if err != nil {
		return BaselineResponse{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if _, err := spec.Probabilities(req.N); err != nil {
		return BaselineResponse{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return BaselineResponse{N: req.N, T: req.T, Baseline: 0.5}, nil
}

func (stubService) PValue(req PValueRequest) (PValueResponse, error) {
	return PValueResponse{N: req.N, T: req.T, PValue: 1}, nil
}
func (stubService) PMF(req PointRequest) (PointResponse, error)  { return PointResponse{}, nil }
func (stubService) CDF(req PointRequest) (PointResponse, error)  { return PointResponse{}, nil }
func (stubService) Sweep(req SweepRequest) (SweepResponse, error) {
	return SweepResponse{}, nil
}
func (stubService) Evaluate(req EvaluateRequest) (EvaluateResponse, error) {
	return EvaluateResponse{}, errors.New("boom")
}
func (stubService) ListEvaluations() any { return []string{} }

func postJSON(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	j, _ := json.Marshal(body)
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(j))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestRoutes(t *testing.T) {
	srv := httptest.NewServer(New(stubService{}, "/metrics", "/healthz").Routes())
	defer srv.Close()

	p := 0.5
	resp := postJSON(t, srv, "/api/v1/baseline", BaselineRequest{N: 10, T: 1, Spec: Spec{P: &p}})
	if resp.StatusCode != 200 {
		t.Fatalf("baseline status %d", resp.StatusCode)
	}
	var br BaselineResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if br.Baseline != 0.5 {
		t.Fatalf("baseline = %g", br.Baseline)
	}

	// bad spec shape is the caller's fault
	resp = postJSON(t, srv, "/api/v1/baseline", map[string]any{"n": 10, "t": 1})
	if resp.StatusCode != 400 {
		t.Fatalf("missing spec: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// mapping mismatch is a 400, not a 500
	resp = postJSON(t, srv, "/api/v1/baseline",
		map[string]any{"n": 10, "t": 1, "labels": map[string]int{"2": 7}})
	if resp.StatusCode != 400 {
		t.Fatalf("mismatched mapping: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// service failures are 500s
	resp = postJSON(t, srv, "/api/v1/evaluate", EvaluateRequest{})
	if resp.StatusCode != 500 {
		t.Fatalf("evaluate status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// GET on a POST endpoint
	getResp, err := http.Get(srv.URL + "/api/v1/baseline")
	if err != nil {
		t.Fatal(err)
	}
	if getResp.StatusCode != 405 {
		t.Fatalf("GET status %d", getResp.StatusCode)
	}
	getResp.Body.Close()

	hz, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	if hz.StatusCode != 200 {
		t.Fatalf("healthz status %d", hz.StatusCode)
	}
	hz.Body.Close()
}

func TestSpecToProbspec(t *testing.T) {
	p := 0.5
	if _, err := (Spec{P: &p}).ToProbspec(); err != nil {
		t.Fatal(err)
	}
	if _, err := (Spec{}).ToProbspec(); !errors.Is(err, probspec.ErrUnrecognized) {
		t.Fatalf("empty spec: %v", err)
	}
	if _, err := (Spec{P: &p, PS: []float64{0.5}}).ToProbspec(); !errors.Is(err, probspec.ErrUnrecognized) {
		t.Fatalf("double spec: %v", err)
	}
	s, err := (Spec{Labels: map[int]int{2: 5}}).ToProbspec()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(probspec.LabelCounts); !ok {
		t.Fatalf("got %T", s)
	}
}
