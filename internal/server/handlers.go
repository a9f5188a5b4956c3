package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/spigell/card-advisor/internal/ai"
	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/logger"
	"github.com/spigell/card-advisor/internal/metrics"
	"github.com/spigell/card-advisor/internal/recommend"
	"github.com/spigell/card-advisor/internal/scoring"
	"github.com/spigell/card-advisor/internal/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// profileRequest keeps income and age raw so that values which are not
// numbers reach the scorer as NaN instead of failing the request.
type profileRequest struct {
	Income     json.RawMessage `json:"income" validate:"required"`
	Age        json.RawMessage `json:"age" validate:"required"`
	Employment string          `json:"employment" validate:"required"`
	Preference string          `json:"preference"`
}

func (p profileRequest) profile() scoring.Profile {
	return scoring.Profile{
		Income:     rawFloat(p.Income),
		Age:        rawFloat(p.Age),
		Employment: p.Employment,
		Preference: strings.TrimSpace(p.Preference),
	}
}

type queryRequest struct {
	profileRequest
	Query string `json:"query"`
}

type chatRequest struct {
	Message    string    `json:"message" validate:"required,max=2000"`
	History    []ai.Turn `json:"history" validate:"max=50,dive"`
	Preference string    `json:"preference"`
}

type cardResult struct {
	catalog.Card
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

func newCardResult(m recommend.Match) *cardResult {
	return &cardResult{Card: m.Card, Score: m.Result.Score, Reasons: m.Result.Reasons}
}

type recommendResponse struct {
	Recommendation *cardResult `json:"recommendation"`
}

type compareResponse struct {
	Cards []*cardResult `json:"cards"`
}

type queryResponse struct {
	Message    string   `json:"message"`
	Preference string   `json:"preference,omitempty"`
	Card       string   `json:"card,omitempty"`
	Score      *int     `json:"score,omitempty"`
	Reasons    []string `json:"reasons,omitempty"`
}

type chatResponse struct {
	Reply string `json:"reply"`
	Model string `json:"model,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCards(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"cards": s.catalog.Cards()})
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	card, ok := s.catalog.FindByName(name)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("card %q not found", name))
		return
	}

	s.jsonResponse(w, http.StatusOK, card)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	profile := req.profile()

	if all, _ := strconv.ParseBool(r.URL.Query().Get("all")); all {
		matches := recommend.ScoreAll(s.catalog, profile)
		resp := compareResponse{Cards: make([]*cardResult, 0, len(matches))}
		for _, m := range matches {
			resp.Cards = append(resp.Cards, newCardResult(m))
		}
		metrics.Recommendations.WithLabelValues("compare", metrics.OutcomeMatched).Inc()
		s.jsonResponse(w, http.StatusOK, resp)
		return
	}

	match, ok := recommend.Recommend(s.catalog, profile)
	if !ok {
		metrics.Recommendations.WithLabelValues("recommend", metrics.OutcomeEmpty).Inc()
		s.jsonResponse(w, http.StatusOK, recommendResponse{})
		return
	}

	metrics.Recommendations.WithLabelValues("recommend", metrics.OutcomeMatched).Inc()
	metrics.RecommendedCards.WithLabelValues(match.Card.Name).Inc()

	s.requestLogger(r).Debug("card recommended",
		zap.String("card", match.Card.Name),
		zap.Int("score", match.Result.Score),
	)

	s.jsonResponse(w, http.StatusOK, recommendResponse{Recommendation: newCardResult(match)})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	answer := recommend.Query(s.catalog, req.profile(), req.Query, s.minScore)

	resp := queryResponse{Message: answer.Message, Preference: string(answer.Preference)}
	outcome := metrics.OutcomeNotFound
	if answer.Match != nil {
		outcome = metrics.OutcomeMatched
		score := answer.Match.Result.Score
		resp.Card = answer.Match.Card.Name
		resp.Score = &score
		resp.Reasons = answer.Match.Result.Reasons
		metrics.RecommendedCards.WithLabelValues(answer.Match.Card.Name).Inc()
	}
	metrics.Recommendations.WithLabelValues("query", outcome).Inc()

	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	// Only known categories reach the assistant; free text in preference is
	// mapped through the keyword table like the message itself.
	preference := recommend.ResolvePreference(req.Preference)
	if preference == recommend.PreferenceNone {
		preference = recommend.ResolvePreference(req.Message)
	}

	reply, err := s.assistant.Reply(r.Context(), ai.ChatRequest{
		Message:    req.Message,
		History:    req.History,
		Preference: string(preference),
	})
	if err != nil {
		if errors.Is(err, ai.ErrDisabled) {
			metrics.ChatRequests.WithLabelValues(metrics.OutcomeDisabled).Inc()
			s.errorResponse(w, http.StatusServiceUnavailable, "chat assistant is not configured")
			return
		}

		metrics.ChatRequests.WithLabelValues(metrics.OutcomeFailed).Inc()
		s.requestLogger(r).Error("chat reply failed", zap.Error(err))
		s.errorResponse(w, http.StatusBadGateway, "chat assistant is unavailable, please try again later")
		return
	}

	metrics.ChatRequests.WithLabelValues(metrics.OutcomeOK).Inc()
	s.jsonResponse(w, http.StatusOK, chatResponse{Reply: reply.Text, Model: reply.Model})
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	return logger.WithFields(s.logger, logger.RequestFields(RequestID(r.Context()), routeTemplate(r))...)
}

// decodeAndValidate writes a 400 response and returns false when the body is
// not valid JSON or fails struct validation.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return false
	}

	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request: " + err.Error()
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must not exceed %s", fe.Field(), fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(messages, "; ")
}

// rawFloat decodes a raw JSON value into a number, yielding NaN for anything
// that is not numeric or a numeric string.
func rawFloat(raw json.RawMessage) float64 {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return math.NaN()
	}
	return utils.CoerceFloat(v)
}
