package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/meikuraledutech/narrative"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type server struct {
	store   narrative.Store
	cfg     Config
	log     *zap.Logger
	metrics *metrics
}

type trajectoryRequest struct {
	MaxLength int    `json:"max_length"`
	Metric    string `json:"metric"`
	Limit     int    `json:"limit"`
	Save      bool   `json:"save"`
}

type trajectoryResponse struct {
	Domain       string             `json:"domain"`
	Metric       string             `json:"metric"`
	MaxLength    int                `json:"max_length"`
	Total        int                `json:"total"`
	RankingID    string             `json:"ranking_id,omitempty"`
	Trajectories []narrative.Scored `json:"trajectories"`
}

type intentionLinks struct {
	Dependencies []string `json:"dependencies"`
	Dependents   []string `json:"dependents"`
}

type graphResponse struct {
	Roots      []string                  `json:"roots"`
	Leaves     []string                  `json:"leaves"`
	Order      []string                  `json:"order"`
	Intentions map[string]intentionLinks `json:"intentions"`
}

func newApp(store narrative.Store, cfg Config, log *zap.Logger, reg *prometheus.Registry) *fiber.App {
	s := &server{store: store, cfg: cfg, log: log, metrics: newMetrics(reg)}

	app := fiber.New()
	app.Use(requestLogger(log))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// ── Validation ────────────────────────────────────────────────────
	app.Post("/validate", func(c fiber.Ctx) error {
		d, err := decodeDomain(c)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		problems := narrative.Validate(d)
		s.metrics.observeValidation(len(problems) == 0)
		return c.JSON(fiber.Map{"valid": len(problems) == 0, "problems": problemList(problems)})
	})

	// ── Domains ───────────────────────────────────────────────────────
	app.Post("/domains", func(c fiber.Ctx) error {
		d, err := decodeDomain(c)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		if d.Name == "" {
			return c.Status(400).JSON(fiber.Map{"error": "name is required"})
		}
		problems := narrative.Validate(d)
		s.metrics.observeValidation(len(problems) == 0)
		if len(problems) > 0 {
			return c.Status(422).JSON(fiber.Map{"error": "invalid domain", "problems": problems})
		}
		if err := s.store.SaveDomain(c.Context(), d); err != nil {
			s.log.Error("save domain", zap.String("domain", d.Name), zap.Error(err))
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(d)
	})

	app.Get("/domains", func(c fiber.Ctx) error {
		names, err := s.store.ListDomains(c.Context())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(names)
	})

	app.Get("/domains/:name", func(c fiber.Ctx) error {
		d, err := s.store.GetDomain(c.Context(), c.Params("name"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if d == nil {
			return c.Status(404).JSON(fiber.Map{"error": "domain not found"})
		}
		return c.JSON(d)
	})

	app.Delete("/domains/:name", func(c fiber.Ctx) error {
		if err := s.store.DeleteDomain(c.Context(), c.Params("name")); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	// ── Graph ─────────────────────────────────────────────────────────
	app.Get("/domains/:name/graph", func(c fiber.Ctx) error {
		g, err := s.graph(c)
		if err != nil {
			return s.fail(c, err)
		}
		resp := graphResponse{
			Roots:      g.Roots(),
			Leaves:     g.Leaves(),
			Order:      g.TopologicalOrder(),
			Intentions: make(map[string]intentionLinks, g.Len()),
		}
		for _, id := range g.IDs() {
			deps, _ := g.DependenciesOf(id)
			dependents, _ := g.DependentsOf(id)
			resp.Intentions[id] = intentionLinks{Dependencies: deps, Dependents: dependents}
		}
		return c.JSON(resp)
	})

	// ── Trajectories ──────────────────────────────────────────────────
	app.Post("/domains/:name/trajectories", func(c fiber.Ctx) error {
		req := trajectoryRequest{MaxLength: s.cfg.DefaultMaxLength, Metric: narrative.MetricNovelty}
		if len(c.Body()) > 0 {
			if err := c.Bind().JSON(&req); err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
			}
		}
		g, err := s.graph(c)
		if err != nil {
			return s.fail(c, err)
		}

		ex := s.explorer(g)
		if _, err := ex.Registry().Lookup(req.Metric); err != nil {
			return s.fail(c, err)
		}

		start := time.Now()
		ts, err := ex.Trajectories(req.MaxLength)
		if err != nil {
			return s.fail(c, err)
		}
		s.metrics.trajectories.Add(float64(len(ts)))
		scored, err := ex.Registry().Score(ts, req.Metric)
		if err != nil {
			return s.fail(c, err)
		}
		s.metrics.enumeration.Observe(time.Since(start).Seconds())

		if req.Limit > 0 && len(scored) > req.Limit {
			scored = scored[:req.Limit]
		}
		resp := trajectoryResponse{
			Domain:       g.Domain().Name,
			Metric:       req.Metric,
			MaxLength:    req.MaxLength,
			Total:        len(ts),
			Trajectories: scored,
		}
		if req.Save {
			r, err := newRanking(g, req, scored)
			if err != nil {
				return s.fail(c, err)
			}
			id, err := s.store.SaveRanking(c.Context(), r)
			if err != nil {
				s.log.Error("save ranking", zap.String("domain", resp.Domain), zap.Error(err))
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
			resp.RankingID = id
		}
		return c.JSON(resp)
	})

	app.Get("/domains/:name/random", func(c fiber.Ctx) error {
		g, err := s.graph(c)
		if err != nil {
			return s.fail(c, err)
		}
		var starts []string
		if q := c.Query("start"); q != "" {
			starts = strings.Split(q, ",")
		}
		t, err := s.explorer(g).RandomTrajectoryFrom(fiber.Query[int](c, "max_length", s.cfg.DefaultMaxLength), starts...)
		if err != nil {
			return s.fail(c, err)
		}
		return c.JSON(fiber.Map{"trajectory": t, "beats": narrative.Beats(t)})
	})

	// ── Rankings ──────────────────────────────────────────────────────
	app.Get("/domains/:name/rankings", func(c fiber.Ctx) error {
		rankings, err := s.store.ListRankings(c.Context(), c.Params("name"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(rankings)
	})

	app.Get("/rankings/:id", func(c fiber.Ctx) error {
		r, err := s.store.GetRanking(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if r == nil {
			return c.Status(404).JSON(fiber.Map{"error": "ranking not found"})
		}
		return c.JSON(r)
	})

	return app
}

func (s *server) explorer(g *narrative.Graph) *narrative.Explorer {
	return narrative.NewExplorer(g,
		narrative.WithLogger(s.log),
		narrative.WithMaxTrajectories(s.cfg.MaxTrajectories),
		narrative.WithWorkers(s.cfg.Workers),
	)
}

// graph loads the domain named in the route and builds its graph.
func (s *server) graph(c fiber.Ctx) (*narrative.Graph, error) {
	d, err := s.store.GetDomain(c.Context(), c.Params("name"))
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, narrative.ErrDomainNotFound
	}
	return narrative.Build(d)
}

// fail maps core errors to status codes.
func (s *server) fail(c fiber.Ctx, err error) error {
	var buildErr *narrative.BuildError
	switch {
	case errors.Is(err, narrative.ErrDomainNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "domain not found"})
	case errors.Is(err, narrative.ErrUnknownMetric):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, narrative.ErrInvalidStart), errors.Is(err, narrative.ErrIntentionNotFound):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, narrative.ErrTrajectoryLimit):
		return c.Status(422).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &buildErr):
		return c.Status(422).JSON(fiber.Map{"error": err.Error(), "problems": buildErr.Problems})
	}
	s.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}

// newRanking checks every scored trajectory against g before it is persisted.
func newRanking(g *narrative.Graph, req trajectoryRequest, scored []narrative.Scored) (*narrative.Ranking, error) {
	for i, sc := range scored {
		if err := g.Consistent(sc.Trajectory); err != nil {
			return nil, fmt.Errorf("ranking entry %d: %w", i, err)
		}
	}
	return narrative.NewRanking(g.Domain().Name, req.Metric, req.MaxLength, scored), nil
}

// decodeDomain reads a domain body as YAML when the content type says so,
// otherwise as JSON.
func decodeDomain(c fiber.Ctx) (*narrative.Domain, error) {
	body := bytes.NewReader(c.Body())
	if strings.Contains(c.Get(fiber.HeaderContentType), "yaml") {
		return narrative.DecodeDomainYAML(body)
	}
	return narrative.DecodeDomainJSON(body)
}

func problemList(problems []narrative.ValidationError) []narrative.ValidationError {
	if problems == nil {
		return []narrative.ValidationError{}
	}
	return problems
}

func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return err
	}
}
