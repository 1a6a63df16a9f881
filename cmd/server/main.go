package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/maxrand/go/pkg/api"
	"github.com/maxrand/go/pkg/config"
	"github.com/maxrand/go/pkg/decision"
	"github.com/maxrand/go/pkg/logger"
	"github.com/maxrand/go/pkg/maxorder"
	"github.com/maxrand/go/pkg/metrics"
	"github.com/maxrand/go/pkg/probspec"
	"github.com/maxrand/go/pkg/storage"
	"github.com/maxrand/go/pkg/sweep"
)

// Service computes baseline quantities behind the JSON API. Constructed
// distributions are cached in memory by a digest of (n, ps); computed
// baselines are additionally cached in bolt across restarts.
type Service struct {
	cfg *config.Config
	log *logger.Logger
	db  *storage.DB

	mu    sync.RWMutex
	dists map[string]*maxorder.Dist
}

func NewService(cfg *config.Config, log *logger.Logger, db *storage.DB) *Service {
	return &Service{cfg: cfg, log: log, db: db, dists: map[string]*maxorder.Dist{}}
}

func badReq(err error) error {
	return fmt.Errorf("%w: %v", api.ErrBadRequest, err)
}

// dist resolves a request to a constructed distribution, reusing a cached one
// when the same evaluation set has been queried before.
func (s *Service) dist(req api.BaselineRequest) (*maxorder.Dist, string, error) {
	if req.N <= 0 || req.N > s.cfg.Limits.MaxExamples {
		return nil, "", badReq(fmt.Errorf("n must be in [1, %d], got %d", s.cfg.Limits.MaxExamples, req.N))
	}
	if err := maxorder.CheckT(req.T); err != nil {
		return nil, "", badReq(err)
	}
	if req.T > s.cfg.Limits.MaxClassifiers {
		return nil, "", badReq(fmt.Errorf("t must be <= %d, got %d", s.cfg.Limits.MaxClassifiers, req.T))
	}
	spec, err := req.ToProbspec()
	if err != nil {
		return nil, "", badReq(err)
	}
	ps, err := spec.Probabilities(req.N)
	if err != nil {
		return nil, "", badReq(err)
	}
	key := storage.SpecKey(req.N, ps)

	s.mu.RLock()
	d, ok := s.dists[key]
	s.mu.RUnlock()
	if ok {
		return d, key, nil
	}

	start := time.Now()
	d, err = maxorder.New(req.N, probspec.PerExample(ps))
	if err != nil {
		return nil, "", badReq(err)
	}
	metrics.ComputeSeconds.Observe(time.Since(start).Seconds())

	s.mu.Lock()
	if cached, ok := s.dists[key]; ok {
		d = cached
	} else {
		s.dists[key] = d
	}
	s.mu.Unlock()
	s.log.Debug("dist_built", "n", req.N, "key", key, "ms", time.Since(start).Milliseconds())
	return d, key, nil
}

func (s *Service) Baseline(req api.BaselineRequest) (api.BaselineResponse, error) {
	metrics.Queries.WithLabelValues("baseline").Inc()
	d, key, err := s.dist(req)
	if err != nil {
		return api.BaselineResponse{}, err
	}
	if s.cfg.Cache.Enabled && s.db != nil {
		if rec, err := s.db.GetBaseline(storage.BaselineKey(key, req.T)); err == nil {
			metrics.CacheHits.Inc()
			return api.BaselineResponse{N: req.N, T: req.T, Baseline: rec.Baseline, Cached: true}, nil
		}
		metrics.CacheMisses.Inc()
	}
	b := d.Baseline(req.T)
	if s.cfg.Cache.Enabled && s.db != nil {
		err := s.db.PutBaseline(storage.BaselineRecord{
			Key: storage.BaselineKey(key, req.T), N: req.N, T: req.T,
			Baseline: b, ComputedUnix: time.Now().Unix(),
		})
		if err != nil {
			s.log.Warn("cache_put_failed", "err", err.Error())
		}
	}
	return api.BaselineResponse{N: req.N, T: req.T, Baseline: b}, nil
}

func (s *Service) PValue(req api.PValueRequest) (api.PValueResponse, error) {
	metrics.Queries.WithLabelValues("pvalue").Inc()
	d, _, err := s.dist(req.BaselineRequest)
	if err != nil {
		return api.PValueResponse{}, err
	}
	return api.PValueResponse{N: req.N, T: req.T, PValue: d.PValue(req.Accuracy, req.T)}, nil
}

func (s *Service) PMF(req api.PointRequest) (api.PointResponse, error) {
	metrics.Queries.WithLabelValues("pmf").Inc()
	d, _, err := s.dist(req.BaselineRequest)
	if err != nil {
		return api.PointResponse{}, err
	}
	return api.PointResponse{N: req.N, T: req.T, Value: d.PMF(req.NumCorrect, req.T)}, nil
}

func (s *Service) CDF(req api.PointRequest) (api.PointResponse, error) {
	metrics.Queries.WithLabelValues("cdf").Inc()
	d, _, err := s.dist(req.BaselineRequest)
	if err != nil {
		return api.PointResponse{}, err
	}
	return api.PointResponse{N: req.N, T: req.T, Value: d.F(req.NumCorrect, req.T)}, nil
}

func (s *Service) Sweep(req api.SweepRequest) (api.SweepResponse, error) {
	metrics.Queries.WithLabelValues("sweep").Inc()
	d, _, err := s.dist(req.BaselineRequest)
	if err != nil {
		return api.SweepResponse{}, err
	}
	return api.SweepResponse{N: req.N, Points: sweep.Run(d, sweep.TGrid(req.T))}, nil
}

func (s *Service) Evaluate(req api.EvaluateRequest) (api.EvaluateResponse, error) {
	metrics.Queries.WithLabelValues("evaluate").Inc()
	if req.Accuracy < 0 || req.Accuracy > 1 {
		return api.EvaluateResponse{}, badReq(fmt.Errorf("accuracy %g outside [0,1]", req.Accuracy))
	}
	d, _, err := s.dist(req.BaselineRequest)
	if err != nil {
		return api.EvaluateResponse{}, err
	}
	alpha := s.cfg.Defaults.Alpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}
	if alpha <= 0 || alpha >= 1 {
		return api.EvaluateResponse{}, badReq(fmt.Errorf("alpha %g outside (0,1)", alpha))
	}
	res := decision.Evaluate(d, decision.Input{
		Name:     req.Name,
		Accuracy: req.Accuracy,
		T:        req.T,
		Alpha:    alpha,
		WilsonZ:  s.cfg.Defaults.WilsonZ,
	})
	out := api.EvaluateResponse{
		Verdict: string(res.Verdict), Reason: res.Reason,
		PValue: res.PValue, Baseline: res.Baseline, AccuracyLB: res.AccuracyLB,
	}
	if s.db != nil {
		rec, err := s.db.PutEval(storage.EvalRecord{
			Name: req.Name, N: req.N, T: req.T,
			Accuracy: req.Accuracy, PValue: res.PValue, Baseline: res.Baseline,
			Verdict: string(res.Verdict),
		})
		if err != nil {
			s.log.Warn("eval_store_failed", "err", err.Error())
		} else {
			out.ID = rec.ID
			metrics.Evaluations.Inc()
		}
	}
	s.log.Info("evaluated", "name", req.Name, "verdict", out.Verdict,
		"p_value", fmt.Sprintf("%.3g", res.PValue), "baseline", fmt.Sprintf("%.4f", res.Baseline))
	return out, nil
}

func (s *Service) ListEvaluations() any {
	if s.db == nil {
		return []storage.EvalRecord{}
	}
	evals, err := s.db.ListEvals()
	if err != nil {
		s.log.Error("eval_list_failed", "err", err.Error())
		return []storage.EvalRecord{}
	}
	return evals
}

func main() {
	cfgPath := "config.yaml"
	if len(os.Args) > 1 && os.Args[1] != "" {
		cfgPath = os.Args[1]
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if os.IsNotExist(err) && len(os.Args) <= 1 {
			cfg = config.Default()
		} else {
			fmt.Println("config_load_error:", err.Error())
			os.Exit(2)
		}
	}
	log := logger.New(cfg.Service.LogLevel)
	metrics.MustRegister()

	db, err := storage.Open(filepath.Join(cfg.Service.DataDir, "db.bolt"))
	if err != nil {
		log.Error("db_open", "err", err.Error())
		os.Exit(2)
	}
	defer db.Close()

	svc := NewService(cfg, log.With("service"), db)
	srv := api.New(svc, cfg.Service.MetricsPath, cfg.Service.HealthzPath)
	go func() {
		if err := srv.Start(cfg.Service.HTTPListen); err != nil {
			log.Error("api_start", "err", err.Error())
			os.Exit(2)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	log.Info("server_start", "listen", cfg.Service.HTTPListen,
		"max_n", cfg.Limits.MaxExamples, "cache", cfg.Cache.Enabled)
	<-ctx.Done()
	log.Info("server_stop")
}
