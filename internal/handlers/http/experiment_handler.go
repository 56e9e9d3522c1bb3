package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"throttlelab/internal/core/domain"
	"throttlelab/internal/core/ports"
	"throttlelab/internal/core/services"
	"throttlelab/internal/infrastructure/middleware"
	"throttlelab/internal/infrastructure/navigation"
	apperrors "throttlelab/pkg/errors"
	"throttlelab/pkg/logger"
	"throttlelab/pkg/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var _ ports.HTTPHandler = (*ExperimentHandler)(nil)

type ExperimentHandler struct {
	setup  ports.SetupService
	state  ports.ExperimentState
	logger *logger.ContextLogger
}

func NewExperimentHandler(
	setup ports.SetupService,
	state ports.ExperimentState,
	log *zap.SugaredLogger,
) *ExperimentHandler {
	return &ExperimentHandler{
		setup:  setup,
		state:  state,
		logger: logger.NewContextLogger(log.Desugar()),
	}
}

func (h *ExperimentHandler) SetupRoutes(router gin.IRouter) {
	api := router.Group("/api/v1")
	{
		api.POST("/experiments", h.StartExperiment)
		api.GET("/experiments/active", h.GetActiveExperiment)
		api.DELETE("/experiments/active", h.FinishExperiment)
		api.GET("/scenarios", h.ListPermutations)
		api.GET("/scenarios/:id", h.GetScenario)
	}
}

type scenarioResponse struct {
	ExperimentID     domain.ExperimentID     `json:"experimentID"`
	PermutationIndex int                     `json:"permutationIndex"`
	Config           domain.ExperimentConfig `json:"config"`
}

type startResponse struct {
	scenarioResponse
	Started string `json:"started"`
	Target  string `json:"target"`
}

// StartExperiment accepts the setup form as JSON or form fields. On success
// it answers 303 See Other with Location set to the playback URL.
func (h *ExperimentHandler) StartExperiment(c *gin.Context) {
	form, err := bindSubjectForm(c)
	if err != nil {
		_ = c.Error(apperrors.NewInvalidInputError("malformed request body"))
		return
	}

	nav := navigation.NewRedirectNavigator(c)
	submission, err := h.setup.Submit(c.Request.Context(), form, nav)
	if submission != nil {
		c.Set(middleware.OutcomeKey, string(submission.Outcome))
		if submission.Activation != nil {
			c.Set(middleware.ExperimentIDKey, int64(submission.Activation.Record.ID))
		}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidSubject):
		appErr := apperrors.NewInvalidInputError("invalid subject")
		var fieldErrs validation.FieldErrors
		if errors.As(err, &fieldErrs) {
			for field, msg := range fieldErrs {
				appErr.WithContext(field, msg)
			}
		}
		_ = c.Error(appErr)
		return

	case errors.Is(err, domain.ErrUpstreamFailed):
		_ = c.Error(apperrors.NewBadGatewayError(err, "could not create experiment record"))
		return

	case errors.Is(err, domain.ErrPersistenceFailed):
		_ = c.Error(apperrors.NewPersistenceError(err, "could not save experiment configuration"))
		return
	}

	activation := submission.Activation
	if activation == nil {
		_ = c.Error(apperrors.NewInternalError("experiment was not activated"))
		return
	}

	resp := startResponse{
		scenarioResponse: scenarioResponse{
			ExperimentID:     activation.Record.ID,
			PermutationIndex: activation.PermutationIndex,
			Config:           activation.Config,
		},
		Started: submission.Started,
		Target:  activation.Target,
	}

	if err != nil {
		// Committed but not handed off; the client follows Target itself.
		ctx := logger.WithExperimentID(c.Request.Context(), int64(activation.Record.ID))
		h.logger.Sugar(ctx).Warnw("hand-off failed", "error", err)
		c.JSON(http.StatusCreated, resp)
		return
	}

	c.JSON(http.StatusSeeOther, resp)
}

func bindSubjectForm(c *gin.Context) (domain.SubjectForm, error) {
	if c.ContentType() != gin.MIMEJSON {
		return domain.SubjectForm{
			SubjectAge: c.PostForm("subject_age"),
			SubjectSex: c.PostForm("subject_sex"),
		}, nil
	}

	var body struct {
		SubjectAge interface{} `json:"subject_age"`
		SubjectSex string      `json:"subject_sex"`
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return domain.SubjectForm{}, err
	}

	// Age may arrive as 30, 30.0 or "30"; validation parses the text.
	var age string
	switch v := body.SubjectAge.(type) {
	case nil:
	case json.Number:
		age = v.String()
	case string:
		age = v
	default:
		return domain.SubjectForm{}, fmt.Errorf("subject_age must be a number or a string, got %T", v)
	}
	return domain.SubjectForm{SubjectAge: age, SubjectSex: body.SubjectSex}, nil
}

// GetScenario previews the scenario any experiment id would be assigned.
func (h *ExperimentHandler) GetScenario(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		_ = c.Error(apperrors.NewInvalidInputError("experiment id must be an integer").
			WithContext("id", c.Param("id")))
		return
	}

	experimentID := domain.ExperimentID(id)
	c.Set(middleware.ExperimentIDKey, id)
	c.JSON(http.StatusOK, scenarioResponse{
		ExperimentID:     experimentID,
		PermutationIndex: services.PermutationIndex(experimentID),
		Config:           domain.NewExperimentConfig(services.BuildScenario(experimentID)),
	})
}

func (h *ExperimentHandler) ListPermutations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"base":         domain.BaseBitrates,
		"permutations": services.GeneratePermutations(domain.BaseBitrates),
		"sentinel":     domain.UnconstrainedBitrate,
	})
}

func (h *ExperimentHandler) GetActiveExperiment(c *gin.Context) {
	flags, cfg, err := h.state.Active(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveExperiment) {
			_ = c.Error(apperrors.NewNotFoundError("active experiment"))
			return
		}
		_ = c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "could not read experiment state", http.StatusInternalServerError))
		return
	}

	c.Set(middleware.ExperimentIDKey, int64(flags.ExperimentID))
	c.JSON(http.StatusOK, gin.H{
		"variables": flags,
		"settings":  cfg,
	})
}

func (h *ExperimentHandler) FinishExperiment(c *gin.Context) {
	if err := h.state.Finish(c.Request.Context()); err != nil {
		_ = c.Error(apperrors.NewPersistenceError(err, "could not clear running flag"))
		return
	}
	c.Status(http.StatusNoContent)
}
