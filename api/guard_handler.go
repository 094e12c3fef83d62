package api

import (
	"net/http"
	"strings"

	"github.com/xraph/forge"
)

func (a *API) registerGuardRoutes(router forge.Router) error {
	g := router.Group("/v1/guard", forge.WithGroupTags("guard"))

	if err := g.POST("/evaluate", a.evaluate,
		forge.WithSummary("Evaluate path"),
		forge.WithDescription("Decides whether the current session may navigate to a path. Has no side effects."),
		forge.WithOperationID("guardEvaluate"),
		forge.WithRequestSchema(EvaluateRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Guard decision", EvaluateResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/rules", a.listRules,
		forge.WithSummary("List rules"),
		forge.WithDescription("Returns the rule table, most specific pattern first."),
		forge.WithOperationID("guardListRules"),
		forge.WithResponseSchema(http.StatusOK, "Rule list", []RuleResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) evaluate(ctx forge.Context, req *EvaluateRequest) (*EvaluateResponse, error) {
	if !strings.HasPrefix(req.Path, "/") {
		return nil, forge.BadRequest("path must start with /")
	}

	resp := toEvaluateResponse(a.guard.Evaluate(a.session, req.Path))
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) listRules(ctx forge.Context, _ *ListRulesRequest) ([]RuleResponse, error) {
	rules := a.guard.Rules()
	resp := make([]RuleResponse, len(rules))
	for i := range rules {
		resp[i] = toRuleResponse(&rules[i])
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}
