package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

const (
	checkPass     = "pass"
	checkFail     = "fail"
	checkDisabled = "disabled"
)

type HealthChecker struct {
	infra Infrastructure
}

func NewHealthChecker(infra Infrastructure) *HealthChecker {
	return &HealthChecker{
		infra: infra,
	}
}

type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Errors map[string]string `json:"errors,omitempty"`
}

// check pings every dependency in parallel. Only PostgreSQL and Redis decide readiness;
// the broker is reported but never fails the check.
func (h *HealthChecker) check(ctx context.Context) healthReport {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	report := healthReport{
		Status: checkPass,
		Checks: map[string]string{},
		Errors: map[string]string{},
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	run := func(name string, ping func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ping(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Status = checkFail
				report.Checks[name] = checkFail
				report.Errors[name] = err.Error()
				return
			}
			report.Checks[name] = checkPass
		}()
	}

	run("postgres", h.infra.Postgres().Ping)
	run("redis", h.infra.Redis().Ping)
	wg.Wait()

	switch mq := h.infra.RabbitMQ(); {
	case mq == nil:
		report.Checks["amqp"] = checkDisabled
	case mq.Connected():
		report.Checks["amqp"] = checkPass
	default:
		report.Checks["amqp"] = checkFail
	}

	return report
}

func (h *HealthChecker) Handler(c *gin.Context) {
	report := h.check(c.Request.Context())
	if report.Status != checkPass {
		c.JSON(http.StatusServiceUnavailable, report)
		return
	}

	c.JSON(http.StatusOK, report)
}
