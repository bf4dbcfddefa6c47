package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/bursar/core/submission"
)

type (
	submitFeesRequest struct {
		StudentName string          `json:"student_name"`
		Fees        json.RawMessage `json:"fees"`
		File        string          `json:"file"`
	}

	submitPaymentRequest struct {
		Meta json.RawMessage `json:"meta"`
	}

	submitPaymentResponse struct {
		Accepted int `json:"accepted"`
	}
)

func registerSubmissionAPI(g *echo.Group, s *Server) {
	sg := g.Group("/students/:id")
	sg.POST("/submissions", s.submitFees)
	sg.GET("/submissions", s.history)
	sg.POST("/payment", s.submitPayment)

	g.GET("/submissions", s.queue)
}

// Handlers

func (s *Server) submitFees(ctx echo.Context) error {
	var data submitFeesRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to submitFeesRequest")
	}
	act, _ := getContextActor(ctx)

	sub, err := s.subSvc.Create(ctx.Request().Context(), act.User.ID, submission.NewSubmission{
		StudentID:   ctx.Param("id"),
		StudentName: data.StudentName,
		Fees:        data.Fees,
		File:        data.File,
	})
	if err != nil {
		return errors.Wrap(err, "creating submission")
	}
	return s.render(ctx, http.StatusCreated, sub)
}

func (s *Server) history(ctx echo.Context) error {
	act, _ := getContextActor(ctx)

	subs, err := s.subSvc.History(ctx.Request().Context(), act.User.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting billing history")
	}
	return s.render(ctx, http.StatusOK, subs)
}

func (s *Server) submitPayment(ctx echo.Context) error {
	var data submitPaymentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to submitPaymentRequest")
	}
	act, _ := getContextActor(ctx)

	accepted, err := s.subSvc.Approve(ctx.Request().Context(), act.User.ID, submission.PaymentApproval{
		StudentID: ctx.Param("id"),
		Meta:      data.Meta,
	})
	if err != nil {
		return errors.Wrap(err, "approving payment")
	}
	return s.render(ctx, http.StatusOK, submitPaymentResponse{Accepted: accepted})
}

func (s *Server) queue(ctx echo.Context) error {
	act, _ := getContextActor(ctx)

	subs, err := s.subSvc.Queue(ctx.Request().Context(), act.User.ID, submission.Status(ctx.QueryParam("status")))
	if err != nil {
		return errors.Wrap(err, "getting submissions queue")
	}
	return s.render(ctx, http.StatusOK, subs)
}
