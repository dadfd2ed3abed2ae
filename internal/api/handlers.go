package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"go-wellfound-scraper/internal/domain"
)

var errInvalidQuery = errors.New("invalid query")

type scrapeQuery struct {
	Location string `form:"location" binding:"required,notblank"`
	Role     string `form:"role" binding:"required,notblank"`
	Scroll   *int   `form:"scroll" binding:"omitempty,min=0"`
}

const defaultScroll = 10

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Wellfound scraper API is running!",
		"status":  "healthy",
	})
}

func (s *Server) scrape(c *gin.Context) {
	var q scrapeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			err = fmt.Errorf("%w: %v", errInvalidQuery, err)
		}
		abortWithError(c, err)
		return
	}

	details := domain.Details{Location: q.Location, Role: q.Role, Scroll: defaultScroll}
	if q.Scroll != nil {
		details.Scroll = *q.Scroll
	}
	if s.maxScroll > 0 && details.Scroll > s.maxScroll {
		abortWithError(c, &FieldError{Field: "scroll", Message: fmt.Sprintf("must be at most %d", s.maxScroll)})
		return
	}

	id, err := s.svc.Submit(c.Request.Context(), details)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scraping started.", "job_id": id})
}

func (s *Server) getJob(c *gin.Context) {
	job, err := s.svc.GetJob(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) listJobs(c *gin.Context) {
	jobs, err := s.svc.ListJobs(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if jobs == nil {
		jobs = []domain.JobSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}
