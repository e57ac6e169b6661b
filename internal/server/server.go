package server

import (
	"errors"
	"time"

	"CVESummary/internal/cvedb"
	"CVESummary/internal/metrics"
	"CVESummary/internal/summary"
	"CVESummary/internal/utils"
	"CVESummary/pkg/cli"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
)

// ErrorResponse 其他接口的错误返回体
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Server CVE 摘要 HTTP API
type Server struct {
	app     *fiber.App
	lookup  summary.LookupFunc
	metrics *metrics.Metrics
	logger  *utils.Logger
}

// New m 为 nil 时不提供 /metrics
func New(lookup summary.LookupFunc, m *metrics.Metrics) *Server {
	s := &Server{
		lookup:  lookup,
		metrics: m,
		logger:  utils.NewLogger("server"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "CVESummary API v1.0",
		ReadTimeout:           30 * time.Second,
		DisableStartupMessage: true,
	})

	app.Use(fiberrecover.New())
	app.Use(logger.New(logger.Config{Output: utils.Base().Out}))

	app.Get("/", s.handleBanner)
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	api := app.Group("/api/v1")
	api.Get("/summary", s.handleSummary)
	api.Get("/cves/:id", s.handleRecord)

	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	s.app = app
	return s
}

// App 供测试直接调用 app.Test
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP服务启动: %s", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleBanner(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title":   cli.DefaultBannerTitle,
		"message": cli.DefaultBannerMessage,
	})
}

func (s *Server) handleSummary(c *fiber.Ctx) error {
	cveID := c.Query("cve")

	var state summary.State
	if cveID == "" {
		state = summary.Derive("", summary.Outcome{})
	} else {
		record, err := s.lookup(c.UserContext(), cveID)
		state = summary.Derive(cveID, summary.Outcome{Record: record, Err: err})
	}
	s.metrics.ObserveState(string(state.Kind()))

	status := fiber.StatusOK
	switch st := state.(type) {
	case summary.Loading:
		status = fiber.StatusAccepted
	case summary.Failed:
		status = fiber.StatusBadGateway
		if st.Reason == cvedb.KindFormat {
			status = fiber.StatusBadRequest
		}
	}

	return c.Status(status).JSON(cli.NewStateResult(state))
}

func (s *Server) handleRecord(c *fiber.Ctx) error {
	cveID := c.Params("id")

	record, err := s.lookup(c.UserContext(), cveID)
	if err != nil {
		s.logger.Warn("查询 %s 失败: %v", cveID, err)
		return c.Status(recordErrorStatus(err)).JSON(ErrorResponse{
			Success: false,
			Message: err.Error(),
		})
	}
	if record == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Success: false,
			Message: cli.NoDataMessage,
		})
	}
	return c.JSON(record)
}

func recordErrorStatus(err error) int {
	var netErr *cvedb.NetworkError
	switch {
	case cvedb.Kind(err) == cvedb.KindFormat:
		return fiber.StatusBadRequest
	case errors.As(err, &netErr) && netErr.StatusCode == fiber.StatusNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadGateway
	}
}
