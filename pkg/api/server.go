package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maxrand/go/pkg/probspec"
	"github.com/maxrand/go/pkg/sweep"
)

// ErrBadRequest marks service errors caused by the request itself
// (malformed probability specification, non-positive n or t, limits).
var ErrBadRequest = errors.New("bad_request")

// Spec is the wire form of the polymorphic probability argument. Exactly one
// field must be set.
type Spec struct {
	P      *float64    `json:"p,omitempty"`
	PS     []float64   `json:"ps,omitempty"`
	Labels map[int]int `json:"labels,omitempty"`
}

// ToProbspec dispatches the wire form into the tagged variant once, at the
// boundary.
func (s Spec) ToProbspec() (probspec.Spec, error) {
	set := 0
	if s.P != nil {
		set++
	}
	if s.PS != nil {
		set++
	}
	if s.Labels != nil {
		set++
	}
	if set != 1 {
		return nil, probspec.ErrUnrecognized
	}
	switch {
	case s.P != nil:
		return probspec.Uniform(*s.P), nil
	case s.PS != nil:
		return probspec.PerExample(s.PS), nil
	default:
		return probspec.LabelCounts(s.Labels), nil
	}
}

// SpecFrom builds the wire form from a tagged variant, for clients.
func SpecFrom(spec probspec.Spec) (Spec, error) {
	switch v := spec.(type) {
	case probspec.Uniform:
		p := float64(v)
		return Spec{P: &p}, nil
	case probspec.PerExample:
		return Spec{PS: v}, nil
	case probspec.LabelCounts:
		return Spec{Labels: v}, nil
	default:
		return Spec{}, probspec.ErrUnrecognized
	}
}

type BaselineRequest struct {
	N int `json:"n"`
	T int `json:"t"`
	Spec
}

type BaselineResponse struct {
	N        int     `json:"n"`
	T        int     `json:"t"`
	Baseline float64 `json:"baseline"`
	Cached   bool    `json:"cached"`
}

type PValueRequest struct {
	BaselineRequest
	Accuracy float64 `json:"accuracy"`
}

type PValueResponse struct {
	N      int     `json:"n"`
	T      int     `json:"t"`
	PValue float64 `json:"p_value"`
}

type PointRequest struct {
	BaselineRequest
	NumCorrect float64 `json:"num_correct"`
}

type PointResponse struct {
	N     int     `json:"n"`
	T     int     `json:"t"`
	Value float64 `json:"value"`
}

type SweepRequest struct {
	BaselineRequest // T is the upper end of the grid
}

type SweepResponse struct {
	N      int           `json:"n"`
	Points []sweep.Point `json:"points"`
}

type EvaluateRequest struct {
	BaselineRequest
	Name     string   `json:"name"`
	Accuracy float64  `json:"accuracy"`
	Alpha    *float64 `json:"alpha,omitempty"`
}

type EvaluateResponse struct {
	ID         string  `json:"id"`
	Verdict    string  `json:"verdict"`
	Reason     string  `json:"reason"`
	PValue     float64 `json:"p_value"`
	Baseline   float64 `json:"baseline"`
	AccuracyLB float64 `json:"accuracy_lb"`
}

type Service interface {
	Baseline(req BaselineRequest) (BaselineResponse, error)
	PValue(req PValueRequest) (PValueResponse, error)
	PMF(req PointRequest) (PointResponse, error)
	CDF(req PointRequest) (PointResponse, error)
	Sweep(req SweepRequest) (SweepResponse, error)
	Evaluate(req EvaluateRequest) (EvaluateResponse, error)
	ListEvaluations() any
}

type Server struct {
	Svc         Service
	MetricsPath string
	HealthzPath string
	reqInFlight atomic.Int64
}

func New(svc Service, metricsPath, healthzPath string) *Server {
	return &Server{Svc: svc, MetricsPath: metricsPath, HealthzPath: healthzPath}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.HealthzPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle(s.MetricsPath, promhttp.Handler())

	mux.HandleFunc("/api/v1/baseline", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		var req BaselineRequest
		if !decode(w, r, &req) {
			return
		}
		resp, err := s.Svc.Baseline(req)
		reply(w, resp, err)
	}))
	mux.HandleFunc("/api/v1/pvalue", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		var req PValueRequest
		if !decode(w, r, &req) {
			return
		}
		resp, err := s.Svc.PValue(req)
		reply(w, resp, err)
	}))
	mux.HandleFunc("/api/v1/pmf", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		var req PointRequest
		if !decode(w, r, &req) {
			return
		}
		resp, err := s.Svc.PMF(req)
		reply(w, resp, err)
	}))
	mux.HandleFunc("/api/v1/cdf", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		var req PointRequest
		if !decode(w, r, &req) {
			return
		}
		resp, err := s.Svc.CDF(req)
		reply(w, resp, err)
	}))
	mux.HandleFunc("/api/v1/sweep", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		var req SweepRequest
		if !decode(w, r, &req) {
			return
		}
		resp, err := s.Svc.Sweep(req)
		reply(w, resp, err)
	}))
	mux.HandleFunc("/api/v1/evaluate", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		var req EvaluateRequest
		if !decode(w, r, &req) {
			return
		}
		resp, err := s.Svc.Evaluate(req)
		reply(w, resp, err)
	}))
	mux.HandleFunc("/api/v1/evaluations", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		sendJSON(w, 200, s.Svc.ListEvaluations())
	}))
	return mux
}

func (s *Server) wrap(h func(w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.reqInFlight.Add(1)
		defer s.reqInFlight.Add(-1)
		h(w, r)
	}
}

func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.Routes())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		sendJSON(w, 405, errMsg("use POST"))
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		sendJSON(w, 400, errMsg("bad_json: "+err.Error()))
		return false
	}
	return true
}

func reply[T any](w http.ResponseWriter, resp T, err error) {
	if err != nil {
		code := 500
		if errors.Is(err, ErrBadRequest) {
			code = 400
		}
		sendJSON(w, code, errMsg(err.Error()))
		return
	}
	sendJSON(w, 200, resp)
}

func sendJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func errMsg(m string) map[string]any { return map[string]any{"ok": false, "error": m} }
