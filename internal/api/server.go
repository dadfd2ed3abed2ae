package api

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"go-wellfound-scraper/internal/domain"
)

// JobService is what the HTTP layer needs from the orchestrator.
type JobService interface {
	Submit(ctx context.Context, details domain.Details) (string, error)
	GetJob(ctx context.Context, id string) (domain.Job, error)
	ListJobs(ctx context.Context) ([]domain.JobSummary, error)
}

type Server struct {
	svc       JobService
	maxScroll int
	engine    *gin.Engine
}

var registerValidators sync.Once

func NewServer(svc JobService, maxScroll int) *Server {
	registerValidators.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
				log.Error().Err(err).Msg("could not register notblank validator")
			}
			v.RegisterTagNameFunc(formName)
		}
	})

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(RequestLogger(), gin.Recovery())

	s := &Server{svc: svc, maxScroll: maxScroll, engine: r}
	r.GET("/", s.health)
	r.POST("/scrape", s.scrape)
	// the bundled web client starts scrapes with GET
	r.GET("/scrape", s.scrape)
	r.GET("/job/:job_id", s.getJob)
	r.GET("/jobs", s.listJobs)
	return s
}

// Handler returns the router wrapped in an allow-all CORS policy.
func (s *Server) Handler() http.Handler {
	return cors.AllowAll().Handler(s.engine)
}

func formName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}
